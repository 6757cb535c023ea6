package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vbilous/signalbot/internal/core/domain"
)

func TestPostgresRepository_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewPostgresRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	keyColumns := []string{"id", "key_value", "expires_at", "created_by_admin_id", "is_active", "user_id", "created_at"}

	t.Run("CreateKey", func(t *testing.T) {
		key := &domain.AccessKey{ID: "k1", Value: "sig_a", CreatedBy: 1, Active: true, CreatedAt: now}
		mock.ExpectExec(`INSERT INTO access_keys`).
			WithArgs(key.ID, key.Value, key.ExpiresAt, key.CreatedBy, key.Active, key.OwnerID, key.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := repo.CreateKey(ctx, key); err != nil {
			t.Errorf("CreateKey failed: %v", err)
		}
	})

	t.Run("CreateKey duplicate value", func(t *testing.T) {
		key := &domain.AccessKey{ID: "k2", Value: "sig_a", CreatedBy: 1, Active: true, CreatedAt: now}
		mock.ExpectExec(`INSERT INTO access_keys`).
			WithArgs(key.ID, key.Value, key.ExpiresAt, key.CreatedBy, key.Active, key.OwnerID, key.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		if err := repo.CreateKey(ctx, key); !errors.Is(err, domain.ErrDuplicateKey) {
			t.Errorf("expected ErrDuplicateKey, got %v", err)
		}
	})

	t.Run("GetKeyByValue", func(t *testing.T) {
		rows := sqlmock.NewRows(keyColumns).
			AddRow("k1", "sig_a", nil, int64(1), true, nil, now)

		mock.ExpectQuery(`SELECT (.+) FROM access_keys WHERE key_value = \$1`).
			WithArgs("sig_a").
			WillReturnRows(rows)

		key, err := repo.GetKeyByValue(ctx, "sig_a")
		if err != nil {
			t.Errorf("GetKeyByValue failed: %v", err)
		}
		if key == nil || key.ID != "k1" || key.ExpiresAt != nil || key.OwnerID != nil {
			t.Errorf("Unexpected key: %+v", key)
		}
	})

	t.Run("GetKeyByValue not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM access_keys WHERE key_value = \$1`).
			WithArgs("sig_missing").
			WillReturnRows(sqlmock.NewRows(keyColumns))

		key, err := repo.GetKeyByValue(ctx, "sig_missing")
		if err != nil {
			t.Errorf("GetKeyByValue failed: %v", err)
		}
		if key != nil {
			t.Errorf("expected nil for unknown value, got %+v", key)
		}
	})

	t.Run("GetKeyByID with expiry and owner", func(t *testing.T) {
		expires := now.Add(48 * time.Hour)
		rows := sqlmock.NewRows(keyColumns).
			AddRow("k1", "sig_a", expires, int64(1), true, int64(100), now)

		mock.ExpectQuery(`SELECT (.+) FROM access_keys WHERE id = \$1`).
			WithArgs("k1").
			WillReturnRows(rows)

		key, err := repo.GetKeyByID(ctx, "k1")
		if err != nil {
			t.Errorf("GetKeyByID failed: %v", err)
		}
		if key == nil || key.ExpiresAt == nil || !key.ExpiresAt.Equal(expires) {
			t.Fatalf("Unexpected key: %+v", key)
		}
		if key.OwnerID == nil || *key.OwnerID != 100 {
			t.Errorf("expected owner 100, got %v", key.OwnerID)
		}
	})

	t.Run("ClaimKey wins", func(t *testing.T) {
		mock.ExpectExec(`UPDATE access_keys SET user_id = \$1 WHERE id = \$2 AND user_id IS NULL AND is_active = TRUE`).
			WithArgs(int64(100), "k1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		outcome, err := repo.ClaimKey(ctx, "k1", 100)
		if err != nil {
			t.Errorf("ClaimKey failed: %v", err)
		}
		if outcome != domain.ClaimOK {
			t.Errorf("expected ClaimOK, got %s", outcome)
		}
	})

	t.Run("ClaimKey loses to another owner", func(t *testing.T) {
		mock.ExpectExec(`UPDATE access_keys SET user_id = \$1`).
			WithArgs(int64(200), "k1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM access_keys WHERE id = \$1`).
			WithArgs("k1").
			WillReturnRows(sqlmock.NewRows(keyColumns).
				AddRow("k1", "sig_a", nil, int64(1), true, int64(100), now))

		outcome, err := repo.ClaimKey(ctx, "k1", 200)
		if err != nil {
			t.Errorf("ClaimKey failed: %v", err)
		}
		if outcome != domain.ClaimAlreadyOwned {
			t.Errorf("expected ClaimAlreadyOwned, got %s", outcome)
		}
	})

	t.Run("ClaimKey re-entered by owner", func(t *testing.T) {
		mock.ExpectExec(`UPDATE access_keys SET user_id = \$1`).
			WithArgs(int64(100), "k1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM access_keys WHERE id = \$1`).
			WithArgs("k1").
			WillReturnRows(sqlmock.NewRows(keyColumns).
				AddRow("k1", "sig_a", nil, int64(1), true, int64(100), now))

		outcome, err := repo.ClaimKey(ctx, "k1", 100)
		if err != nil {
			t.Errorf("ClaimKey failed: %v", err)
		}
		if outcome != domain.ClaimOwnedBySelf {
			t.Errorf("expected ClaimOwnedBySelf, got %s", outcome)
		}
	})

	t.Run("ClaimKey on revoked key", func(t *testing.T) {
		mock.ExpectExec(`UPDATE access_keys SET user_id = \$1`).
			WithArgs(int64(100), "k1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM access_keys WHERE id = \$1`).
			WithArgs("k1").
			WillReturnRows(sqlmock.NewRows(keyColumns).
				AddRow("k1", "sig_a", nil, int64(1), false, nil, now))

		outcome, err := repo.ClaimKey(ctx, "k1", 100)
		if err != nil {
			t.Errorf("ClaimKey failed: %v", err)
		}
		if outcome != domain.ClaimInactive {
			t.Errorf("expected ClaimInactive, got %s", outcome)
		}
	})

	t.Run("DeactivateKey", func(t *testing.T) {
		mock.ExpectExec(`UPDATE access_keys SET is_active = FALSE WHERE id = \$1`).
			WithArgs("k1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.DeactivateKey(ctx, "k1"); err != nil {
			t.Errorf("DeactivateKey failed: %v", err)
		}
	})

	t.Run("ListKeys", func(t *testing.T) {
		rows := sqlmock.NewRows(keyColumns).
			AddRow("k1", "sig_a", nil, int64(1), true, nil, now).
			AddRow("k2", "sig_b", nil, int64(1), false, int64(100), now)

		mock.ExpectQuery(`SELECT (.+) FROM access_keys ORDER BY created_at DESC`).
			WillReturnRows(rows)

		keys, err := repo.ListKeys(ctx)
		if err != nil {
			t.Errorf("ListKeys failed: %v", err)
		}
		if len(keys) != 2 || keys[1].OwnerID == nil {
			t.Errorf("Unexpected keys: %+v", keys)
		}
	})

	t.Run("GetOrCreateUser", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users \(id, telegram_id\) VALUES \(\$1, \$2\) ON CONFLICT \(telegram_id\) DO NOTHING`).
			WithArgs(sqlmock.AnyArg(), int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE telegram_id = \$1`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "telegram_id", "current_key_id", "last_signal_timestamp", "signal_count", "language_code"}).
				AddRow("u1", int64(100), "k1", now, 3, "de"))

		user, err := repo.GetOrCreateUser(ctx, 100)
		if err != nil {
			t.Errorf("GetOrCreateUser failed: %v", err)
		}
		if user == nil || user.BoundKeyID == nil || *user.BoundKeyID != "k1" {
			t.Fatalf("Unexpected user: %+v", user)
		}
		if user.UsageCount != 3 || user.Language == nil || *user.Language != "de" {
			t.Errorf("Unexpected counters: %+v", user)
		}
	})

	t.Run("BindKey", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET current_key_id = \$1 WHERE telegram_id = \$2`).
			WithArgs("k1", int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.BindKey(ctx, 100, "k1"); err != nil {
			t.Errorf("BindKey failed: %v", err)
		}
	})

	t.Run("UnbindKey", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET current_key_id = NULL WHERE telegram_id = \$1`).
			WithArgs(int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.UnbindKey(ctx, 100); err != nil {
			t.Errorf("UnbindKey failed: %v", err)
		}
	})

	t.Run("SetLanguage", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET language_code = \$1 WHERE telegram_id = \$2`).
			WithArgs("fr", int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.SetLanguage(ctx, 100, "fr"); err != nil {
			t.Errorf("SetLanguage failed: %v", err)
		}
	})

	t.Run("ApplyUsage admits and persists", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT last_signal_timestamp, signal_count FROM users WHERE telegram_id = \$1 FOR UPDATE`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"last_signal_timestamp", "signal_count"}).
				AddRow(now, 3))
		mock.ExpectExec(`UPDATE users SET last_signal_timestamp = \$1, signal_count = \$2 WHERE telegram_id = \$3`).
			WithArgs(now, 4, int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		decision, err := repo.ApplyUsage(ctx, 100, func(windowStart *time.Time, count int) domain.UsageDecision {
			if windowStart == nil || !windowStart.Equal(now) || count != 3 {
				t.Errorf("unexpected stored state: %v, %d", windowStart, count)
			}
			return domain.UsageDecision{Admit: true, WindowStart: *windowStart, Count: count + 1}
		})
		if err != nil {
			t.Errorf("ApplyUsage failed: %v", err)
		}
		if !decision.Admit || decision.Count != 4 {
			t.Errorf("Unexpected decision: %+v", decision)
		}
	})

	t.Run("ApplyUsage denial persists nothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT last_signal_timestamp, signal_count FROM users WHERE telegram_id = \$1 FOR UPDATE`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"last_signal_timestamp", "signal_count"}).
				AddRow(now, 5))
		mock.ExpectCommit()

		decision, err := repo.ApplyUsage(ctx, 100, func(windowStart *time.Time, count int) domain.UsageDecision {
			return domain.UsageDecision{Admit: false, WindowStart: *windowStart, Count: count}
		})
		if err != nil {
			t.Errorf("ApplyUsage failed: %v", err)
		}
		if decision.Admit {
			t.Error("expected denial")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
