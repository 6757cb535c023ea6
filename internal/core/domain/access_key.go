// Package domain contains the core business logic and entities for signalbot.
package domain

import (
	"time"
)

// KeyDuration is the enumerated validity period an admin can pick when
// issuing a new access key.
type KeyDuration string

const (
	// DurationTwoDays keeps the key valid for two days.
	DurationTwoDays KeyDuration = "2days"
	// DurationFourDays keeps the key valid for four days.
	DurationFourDays KeyDuration = "4days"
	// DurationWeek keeps the key valid for seven days.
	DurationWeek KeyDuration = "week"
	// DurationMonth keeps the key valid for one calendar month.
	DurationMonth KeyDuration = "month"
	// DurationForever issues a key that never expires.
	DurationForever KeyDuration = "forever"
)

// ParseKeyDuration validates a duration selector submitted by an admin.
func ParseKeyDuration(s string) (KeyDuration, bool) {
	switch KeyDuration(s) {
	case DurationTwoDays, DurationFourDays, DurationWeek, DurationMonth, DurationForever:
		return KeyDuration(s), true
	}
	return "", false
}

// ExpiryFrom computes the expiry timestamp for a key issued at the given
// moment. Forever keys have no expiry and return nil.
func (d KeyDuration) ExpiryFrom(now time.Time) *time.Time {
	var t time.Time
	switch d {
	case DurationTwoDays:
		t = now.AddDate(0, 0, 2)
	case DurationFourDays:
		t = now.AddDate(0, 0, 4)
	case DurationWeek:
		t = now.AddDate(0, 0, 7)
	case DurationMonth:
		t = now.AddDate(0, 1, 0)
	case DurationForever:
		return nil
	default:
		return nil
	}
	return &t
}

// AccessKey is a capability token granting a user the right to invoke the
// signal feature until expiry or revocation.
type AccessKey struct {
	ID        string     `json:"id"`
	Value     string     `json:"-"` // The secret a user submits to claim the key. Never logged.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedBy int64      `json:"created_by_admin_id"`
	Active    bool       `json:"is_active"`
	OwnerID   *int64     `json:"user_id,omitempty"` // Telegram ID of the claimant, nil until claimed.
	CreatedAt time.Time  `json:"created_at"`
}

// Claimable reports whether the key can still be bound to a user:
// never claimed and not revoked. Expiry is checked separately against a
// caller-supplied clock.
func (k *AccessKey) Claimable() bool {
	return k.Active && k.OwnerID == nil
}

// Expired reports whether the key's validity period has passed at the given
// moment. Keys without an expiry never expire.
func (k *AccessKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}
