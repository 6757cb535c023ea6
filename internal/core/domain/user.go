package domain

import (
	"time"
)

// User is one record per distinct chat identity.
type User struct {
	ID               string     `json:"id"`
	TelegramID       int64      `json:"telegram_id"`
	BoundKeyID       *string    `json:"current_key_id,omitempty"`
	UsageWindowStart *time.Time `json:"last_signal_timestamp,omitempty"`
	UsageCount       int        `json:"signal_count"`
	Language         *string    `json:"language_code,omitempty"`
}

// UsageDecision is the outcome of a quota evaluation. WindowStart and Count
// are the counter state to persist when Admit is true; when Admit is false
// the stored state must remain untouched.
type UsageDecision struct {
	Admit       bool
	WindowStart time.Time
	Count       int
}

// UsageFunc is the pure admission policy the user store invokes inside its
// read-modify-write transaction. windowStart is nil for users who never
// consumed the feature.
type UsageFunc func(windowStart *time.Time, count int) UsageDecision
