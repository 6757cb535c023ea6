package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vbilous/signalbot/internal/core/domain"
	"github.com/vbilous/signalbot/internal/core/ports"
	"github.com/vbilous/signalbot/internal/infrastructure/metrics"
)

const keyPrefix = "sig_"

type accessService struct {
	keys  ports.KeyRepository
	users ports.UserRepository
	quota QuotaPolicy
	now   func() time.Time
}

// NewAccessService wires the key and user stores with the quota policy. This
// is the single decision point for expiry and admission; no handler checks
// either on its own.
func NewAccessService(keys ports.KeyRepository, users ports.UserRepository, quota QuotaPolicy) ports.AccessService {
	return &accessService{
		keys:  keys,
		users: users,
		quota: quota,
		now:   time.Now,
	}
}

func (s *accessService) Authorize(ctx context.Context, telegramID int64) (domain.AccessResult, error) {
	user, err := s.users.GetOrCreateUser(ctx, telegramID)
	if err != nil {
		return "", storeErr(err)
	}

	if user.BoundKeyID == nil {
		metrics.AccessDecisions.WithLabelValues(string(domain.AccessNoKey)).Inc()
		return domain.AccessNoKey, nil
	}

	key, err := s.keys.GetKeyByID(ctx, *user.BoundKeyID)
	if err != nil {
		return "", storeErr(err)
	}

	if key == nil || !key.Active || key.Expired(s.now()) {
		if err := s.retireKey(ctx, key, telegramID); err != nil {
			return "", err
		}
		if key == nil {
			// Dangling reference; the user simply has no key anymore.
			metrics.AccessDecisions.WithLabelValues(string(domain.AccessNoKey)).Inc()
			return domain.AccessNoKey, nil
		}
		metrics.AccessDecisions.WithLabelValues(string(domain.AccessKeyExpired)).Inc()
		return domain.AccessKeyExpired, nil
	}

	decision, err := s.users.ApplyUsage(ctx, telegramID, func(windowStart *time.Time, count int) domain.UsageDecision {
		return s.quota.Evaluate(s.now(), windowStart, count)
	})
	if err != nil {
		return "", storeErr(err)
	}

	if !decision.Admit {
		metrics.AccessDecisions.WithLabelValues(string(domain.AccessQuotaExceeded)).Inc()
		return domain.AccessQuotaExceeded, nil
	}
	metrics.AccessDecisions.WithLabelValues(string(domain.AccessAdmitted)).Inc()
	return domain.AccessAdmitted, nil
}

// retireKey deactivates an expired key and clears the user's binding. A User
// must never carry a reference to a dead key past one access check.
func (s *accessService) retireKey(ctx context.Context, key *domain.AccessKey, telegramID int64) error {
	if key != nil && key.Active {
		if err := s.keys.DeactivateKey(ctx, key.ID); err != nil {
			return storeErr(err)
		}
	}
	if err := s.users.UnbindKey(ctx, telegramID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *accessService) Claim(ctx context.Context, telegramID int64, value string) (ports.ClaimResult, error) {
	if _, err := s.users.GetOrCreateUser(ctx, telegramID); err != nil {
		return "", storeErr(err)
	}

	key, err := s.keys.GetKeyByValue(ctx, value)
	if err != nil {
		return "", storeErr(err)
	}
	if key == nil {
		metrics.Claims.WithLabelValues("unknown_value").Inc()
		return ports.ClaimInvalid, nil
	}

	if !key.Active {
		metrics.Claims.WithLabelValues("inactive").Inc()
		return ports.ClaimNotActive, nil
	}

	// Dead-on-arrival keys are retired on the spot and never claimed.
	if key.Expired(s.now()) {
		if err := s.keys.DeactivateKey(ctx, key.ID); err != nil {
			return "", storeErr(err)
		}
		metrics.Claims.WithLabelValues("expired_on_arrival").Inc()
		return ports.ClaimNotActive, nil
	}

	outcome, err := s.keys.ClaimKey(ctx, key.ID, telegramID)
	if err != nil {
		return "", storeErr(err)
	}

	switch outcome {
	case domain.ClaimOK, domain.ClaimOwnedBySelf:
		// ClaimOwnedBySelf happens when a previous attempt won the claim but
		// failed before the bind was recorded; binding again is safe.
		if err := s.users.BindKey(ctx, telegramID, key.ID); err != nil {
			return "", storeErr(err)
		}
		metrics.Claims.WithLabelValues("won").Inc()
		return ports.ClaimActivated, nil
	case domain.ClaimInactive:
		metrics.Claims.WithLabelValues("inactive").Inc()
		return ports.ClaimNotActive, nil
	default:
		metrics.Claims.WithLabelValues("lost_race").Inc()
		return ports.ClaimInvalid, nil
	}
}

func (s *accessService) IssueKey(ctx context.Context, adminID int64, d domain.KeyDuration) (*ports.IssuedKey, error) {
	now := s.now()
	expiresAt := d.ExpiryFrom(now)

	// One retry on a value collision; at 128 bits of entropy a second
	// collision means the RNG is broken.
	for attempt := 0; attempt < 2; attempt++ {
		value, err := generateKeyValue()
		if err != nil {
			return nil, err
		}

		key := &domain.AccessKey{
			ID:        uuid.New().String(),
			Value:     value,
			ExpiresAt: expiresAt,
			CreatedBy: adminID,
			Active:    true,
			CreatedAt: now,
		}

		err = s.keys.CreateKey(ctx, key)
		if err == nil {
			metrics.KeysIssued.Inc()
			return &ports.IssuedKey{ID: key.ID, Value: value, ExpiresAt: expiresAt}, nil
		}
		if err != domain.ErrDuplicateKey {
			return nil, storeErr(err)
		}
	}
	return nil, fmt.Errorf("key value collided twice, giving up")
}

func (s *accessService) SubscriptionInfo(ctx context.Context, telegramID int64) (*ports.Subscription, error) {
	user, err := s.users.GetOrCreateUser(ctx, telegramID)
	if err != nil {
		return nil, storeErr(err)
	}
	if user.BoundKeyID == nil {
		return &ports.Subscription{}, nil
	}

	key, err := s.keys.GetKeyByID(ctx, *user.BoundKeyID)
	if err != nil {
		return nil, storeErr(err)
	}

	if key == nil || !key.Active || key.Expired(s.now()) {
		if err := s.retireKey(ctx, key, telegramID); err != nil {
			return nil, err
		}
		return &ports.Subscription{Expired: key != nil}, nil
	}

	return &ports.Subscription{HasKey: true, ExpiresAt: key.ExpiresAt}, nil
}

func (s *accessService) Profile(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.users.GetOrCreateUser(ctx, telegramID)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *accessService) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	if _, err := s.users.GetOrCreateUser(ctx, telegramID); err != nil {
		return storeErr(err)
	}
	if err := s.users.SetLanguage(ctx, telegramID, lang); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *accessService) HealthCheck(ctx context.Context) error {
	return s.keys.Ping(ctx)
}

func generateKeyValue() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return keyPrefix + hex.EncodeToString(raw), nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
