package ports

import (
	"context"
	"time"

	"github.com/vbilous/signalbot/internal/core/domain"
)

// KeyRepository owns access-key records. Implementations must make ClaimKey a
// single atomic conditional write: two concurrent claims on the same key must
// yield exactly one ClaimOK.
type KeyRepository interface {
	// CreateKey persists a new key. Returns domain.ErrDuplicateKey when the
	// value collides with an existing one.
	CreateKey(ctx context.Context, key *domain.AccessKey) error
	GetKeyByValue(ctx context.Context, value string) (*domain.AccessKey, error)
	GetKeyByID(ctx context.Context, id string) (*domain.AccessKey, error)
	// ClaimKey sets the owner to telegramID only if the key is active and
	// unowned. Losing claims report who owns the key instead.
	ClaimKey(ctx context.Context, id string, telegramID int64) (domain.ClaimOutcome, error)
	// DeactivateKey permanently retires a key. Idempotent.
	DeactivateKey(ctx context.Context, id string) error
	ListKeys(ctx context.Context) ([]domain.AccessKey, error)
	Ping(ctx context.Context) error
}

// UserRepository owns per-chat-user records.
type UserRepository interface {
	// GetOrCreateUser returns the record for telegramID, creating it with
	// empty defaults on first contact. Concurrent first contacts collapse to
	// a single record.
	GetOrCreateUser(ctx context.Context, telegramID int64) (*domain.User, error)
	BindKey(ctx context.Context, telegramID int64, keyID string) error
	UnbindKey(ctx context.Context, telegramID int64) error
	SetLanguage(ctx context.Context, telegramID int64, lang string) error
	// ApplyUsage runs decide against the stored usage counters inside one
	// atomic read-modify-write and persists the new state only when admitted.
	ApplyUsage(ctx context.Context, telegramID int64, decide domain.UsageFunc) (domain.UsageDecision, error)
}

// Subscription describes the state of a user's bound key for display.
type Subscription struct {
	HasKey    bool
	Expired   bool
	ExpiresAt *time.Time // nil means lifetime access
}

// IssuedKey is the one-time report of a freshly generated key. Value is shown
// to the issuing admin exactly once and never logged.
type IssuedKey struct {
	ID        string
	Value     string
	ExpiresAt *time.Time
}

// ClaimResult classifies a key-submission attempt for the user.
type ClaimResult string

const (
	// ClaimActivated means the key is now bound to the user.
	ClaimActivated ClaimResult = "activated"
	// ClaimInvalid covers unknown values and claim races lost to another user.
	ClaimInvalid ClaimResult = "invalid"
	// ClaimNotActive means the key was found but is dead (expired on arrival
	// or revoked) and can never be claimed.
	ClaimNotActive ClaimResult = "not_active"
)

// AccessService orchestrates the key and user stores with the quota policy.
// Every feature invocation and key submission funnels through it; handlers
// never re-implement expiry or quota checks.
type AccessService interface {
	// Authorize decides whether telegramID may consume the feature right now,
	// advancing usage counters when admitted.
	Authorize(ctx context.Context, telegramID int64) (domain.AccessResult, error)
	// Claim processes a submitted key value for an unbound user.
	Claim(ctx context.Context, telegramID int64, value string) (ClaimResult, error)
	// IssueKey generates and stores a new key for the given validity period.
	IssueKey(ctx context.Context, adminID int64, d domain.KeyDuration) (*IssuedKey, error)
	// SubscriptionInfo reports the user's bound-key state, lazily retiring a
	// key discovered expired.
	SubscriptionInfo(ctx context.Context, telegramID int64) (*Subscription, error)
	// Profile loads (or lazily creates) the user record, giving the transport
	// access to the language preference and key binding.
	Profile(ctx context.Context, telegramID int64) (*domain.User, error)
	SetLanguage(ctx context.Context, telegramID int64, lang string) error
	HealthCheck(ctx context.Context) error
}

// Button is one inline keyboard button. Exactly one of Data or URL is set.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Messenger delivers replies to a chat. Delivery is fire-and-forget from the
// core's point of view: failures are logged by the adapter, never fatal.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard [][]Button) error
	SendPhoto(ctx context.Context, chatID int64, path string, caption string) error
}

// Localizer resolves a phrase key for a locale. It never fails: missing
// locales fall back to the default and missing keys render a visible
// placeholder.
type Localizer interface {
	T(locale *string, key string, params map[string]string) string
}

// ImageCatalog maps (locale, steps) to a local asset path. Absence is not an
// error; the caller degrades to a text-only reply.
type ImageCatalog interface {
	Lookup(locale string, steps int) (string, bool)
}

// FloodLimiter is the transport-level abuse guard, distinct from the domain
// quota policy. A denied chat is ignored for the current tick.
type FloodLimiter interface {
	Allow(ctx context.Context, chatID int64) (bool, error)
}
