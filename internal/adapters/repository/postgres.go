package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vbilous/signalbot/internal/core/domain"
	"github.com/vbilous/signalbot/internal/infrastructure/metrics"
)

const pgUniqueViolation = "23505"

// PostgresRepository implements ports.KeyRepository and ports.UserRepository
// on one PostgreSQL handle. All claim and usage mutations are single atomic
// statements or row-locked transactions; correctness does not depend on
// in-process locking, so multiple bot instances may share the database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateKey(ctx context.Context, key *domain.AccessKey) error {
	query := `INSERT INTO access_keys (id, key_value, expires_at, created_by_admin_id, is_active, user_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, key.ID, key.Value, key.ExpiresAt, key.CreatedBy, key.Active, key.OwnerID, key.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrDuplicateKey
	}
	return err
}

func (r *PostgresRepository) GetKeyByValue(ctx context.Context, value string) (*domain.AccessKey, error) {
	query := `SELECT id, key_value, expires_at, created_by_admin_id, is_active, user_id, created_at
	          FROM access_keys WHERE key_value = $1`
	return r.scanKey(r.db.QueryRowContext(ctx, query, value))
}

func (r *PostgresRepository) GetKeyByID(ctx context.Context, id string) (*domain.AccessKey, error) {
	query := `SELECT id, key_value, expires_at, created_by_admin_id, is_active, user_id, created_at
	          FROM access_keys WHERE id = $1`
	return r.scanKey(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanKey(row *sql.Row) (*domain.AccessKey, error) {
	var k domain.AccessKey
	var expiresAt sql.NullTime
	var ownerID sql.NullInt64
	err := row.Scan(&k.ID, &k.Value, &expiresAt, &k.CreatedBy, &k.Active, &ownerID, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		k.ExpiresAt = &t
	}
	if ownerID.Valid {
		o := ownerID.Int64
		k.OwnerID = &o
	}
	return &k, nil
}

// ClaimKey is the one compare-and-set in the system: the owner column is
// written only if it is still NULL and the key is active. Losing callers are
// classified by re-reading the row.
func (r *PostgresRepository) ClaimKey(ctx context.Context, id string, telegramID int64) (domain.ClaimOutcome, error) {
	query := `UPDATE access_keys SET user_id = $1 WHERE id = $2 AND user_id IS NULL AND is_active = TRUE`
	res, err := r.db.ExecContext(ctx, query, telegramID, id)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 1 {
		return domain.ClaimOK, nil
	}

	key, err := r.GetKeyByID(ctx, id)
	if err != nil {
		return "", err
	}
	switch {
	case key == nil || !key.Active:
		return domain.ClaimInactive, nil
	case key.OwnerID != nil && *key.OwnerID == telegramID:
		return domain.ClaimOwnedBySelf, nil
	default:
		return domain.ClaimAlreadyOwned, nil
	}
}

func (r *PostgresRepository) DeactivateKey(ctx context.Context, id string) error {
	query := `UPDATE access_keys SET is_active = FALSE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *PostgresRepository) ListKeys(ctx context.Context) ([]domain.AccessKey, error) {
	query := `SELECT id, key_value, expires_at, created_by_admin_id, is_active, user_id, created_at
	          FROM access_keys ORDER BY created_at DESC`
	rows, errQuery := r.db.QueryContext(ctx, query)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var keys []domain.AccessKey
	for rows.Next() {
		var k domain.AccessKey
		var expiresAt sql.NullTime
		var ownerID sql.NullInt64
		if errScan := rows.Scan(&k.ID, &k.Value, &expiresAt, &k.CreatedBy, &k.Active, &ownerID, &k.CreatedAt); errScan != nil {
			return nil, errScan
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			k.ExpiresAt = &t
		}
		if ownerID.Valid {
			o := ownerID.Int64
			k.OwnerID = &o
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	metrics.DBConnectionsActive.Set(float64(r.db.Stats().OpenConnections))
	return r.db.PingContext(ctx)
}

// GetOrCreateUser relies on the telegram_id unique constraint: a concurrent
// insert race collapses to "already exists" and the row is re-fetched.
func (r *PostgresRepository) GetOrCreateUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	insert := `INSERT INTO users (id, telegram_id) VALUES ($1, $2) ON CONFLICT (telegram_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.New().String(), telegramID); err != nil {
		return nil, err
	}

	query := `SELECT id, telegram_id, current_key_id, last_signal_timestamp, signal_count, language_code
	          FROM users WHERE telegram_id = $1`
	var u domain.User
	var keyID, lang sql.NullString
	var windowStart sql.NullTime
	err := r.db.QueryRowContext(ctx, query, telegramID).
		Scan(&u.ID, &u.TelegramID, &keyID, &windowStart, &u.UsageCount, &lang)
	if err != nil {
		return nil, err
	}
	if keyID.Valid {
		v := keyID.String
		u.BoundKeyID = &v
	}
	if windowStart.Valid {
		t := windowStart.Time
		u.UsageWindowStart = &t
	}
	if lang.Valid {
		v := lang.String
		u.Language = &v
	}
	return &u, nil
}

func (r *PostgresRepository) BindKey(ctx context.Context, telegramID int64, keyID string) error {
	query := `UPDATE users SET current_key_id = $1 WHERE telegram_id = $2`
	_, err := r.db.ExecContext(ctx, query, keyID, telegramID)
	return err
}

func (r *PostgresRepository) UnbindKey(ctx context.Context, telegramID int64) error {
	query := `UPDATE users SET current_key_id = NULL WHERE telegram_id = $1`
	_, err := r.db.ExecContext(ctx, query, telegramID)
	return err
}

func (r *PostgresRepository) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	query := `UPDATE users SET language_code = $1 WHERE telegram_id = $2`
	_, err := r.db.ExecContext(ctx, query, lang, telegramID)
	return err
}

// ApplyUsage runs the admission policy against the stored counters while
// holding the user's row lock, so two concurrent attempts cannot both read
// the old count. Denied attempts persist nothing.
func (r *PostgresRepository) ApplyUsage(ctx context.Context, telegramID int64, decide domain.UsageFunc) (domain.UsageDecision, error) {
	tx, errTx := r.db.BeginTx(ctx, nil)
	if errTx != nil {
		return domain.UsageDecision{}, errTx
	}
	defer func() {
		if errRollback := tx.Rollback(); errRollback != nil && !errors.Is(errRollback, sql.ErrTxDone) {
			log.Printf("failed to rollback transaction: %v", errRollback)
		}
	}()

	var windowStart sql.NullTime
	var count int
	query := `SELECT last_signal_timestamp, signal_count FROM users WHERE telegram_id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, telegramID).Scan(&windowStart, &count); err != nil {
		return domain.UsageDecision{}, err
	}

	var start *time.Time
	if windowStart.Valid {
		t := windowStart.Time
		start = &t
	}

	decision := decide(start, count)
	if decision.Admit {
		update := `UPDATE users SET last_signal_timestamp = $1, signal_count = $2 WHERE telegram_id = $3`
		if _, err := tx.ExecContext(ctx, update, decision.WindowStart, decision.Count, telegramID); err != nil {
			return domain.UsageDecision{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.UsageDecision{}, err
	}
	return decision, nil
}
