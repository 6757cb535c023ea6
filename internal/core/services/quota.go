package services

import (
	"time"

	"github.com/vbilous/signalbot/internal/core/domain"
)

// WindowKind selects how the usage window resets.
type WindowKind string

const (
	// WindowDaily resets when the UTC calendar date of now differs from the
	// window start. A use at 23:59 and another at 00:01 land in different
	// windows even though two minutes elapsed.
	WindowDaily WindowKind = "daily"
	// WindowRolling resets when a fixed duration has elapsed since the
	// window start.
	WindowRolling WindowKind = "rolling"
)

// QuotaPolicy is the pure admission rule for one usage attempt. It does no
// I/O; the repository runs it inside the usage transaction.
type QuotaPolicy struct {
	Limit  int
	Kind   WindowKind
	Window time.Duration // rolling window length; ignored for WindowDaily
}

// Evaluate decides whether an attempt at now is admitted given the stored
// counters. A fresh or elapsed window always admits with count 1. Within a
// live window the incremented count is admitted while it stays at or under
// the limit; a denied attempt leaves the stored state untouched.
func (p QuotaPolicy) Evaluate(now time.Time, windowStart *time.Time, count int) domain.UsageDecision {
	if windowStart == nil || p.elapsed(now, *windowStart) {
		return domain.UsageDecision{Admit: true, WindowStart: now, Count: 1}
	}

	next := count + 1
	if next > p.Limit {
		return domain.UsageDecision{Admit: false, WindowStart: *windowStart, Count: count}
	}
	return domain.UsageDecision{Admit: true, WindowStart: *windowStart, Count: next}
}

func (p QuotaPolicy) elapsed(now, start time.Time) bool {
	switch p.Kind {
	case WindowRolling:
		return now.Sub(start) > p.Window
	default:
		// Compare UTC calendar dates, not elapsed duration.
		ny, nm, nd := now.UTC().Date()
		sy, sm, sd := start.UTC().Date()
		return ny != sy || nm != sm || nd != sd
	}
}
