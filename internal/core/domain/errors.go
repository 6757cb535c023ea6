package domain

import "errors"

var (
	// ErrDuplicateKey is returned by the key store when a generated key value
	// collides with an existing one. Callers retry with a fresh value.
	ErrDuplicateKey = errors.New("access key value already exists")

	// ErrStoreUnavailable wraps any underlying persistence failure. The
	// access service maps it to a generic retry-later reply; details are
	// logged, never shown to end users.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ClaimOutcome classifies the result of an atomic claim attempt.
type ClaimOutcome string

const (
	// ClaimOK means the caller won the claim and now owns the key.
	ClaimOK ClaimOutcome = "claimed"
	// ClaimAlreadyOwned means another user owns the key. Surfaced to the
	// claiming user as "invalid or used".
	ClaimAlreadyOwned ClaimOutcome = "already_owned"
	// ClaimOwnedBySelf means the caller already owns the key. Happens when a
	// claim succeeded but the bind step failed and the flow is re-entered.
	ClaimOwnedBySelf ClaimOutcome = "owned_by_self"
	// ClaimInactive means the key was revoked or expired-deactivated.
	ClaimInactive ClaimOutcome = "inactive"
)

// AccessResult is the decision of the access controller for one feature
// invocation attempt.
type AccessResult string

const (
	// AccessAdmitted allows the invocation; usage counters were advanced.
	AccessAdmitted AccessResult = "admitted"
	// AccessNoKey means the user has no bound key and must submit one.
	AccessNoKey AccessResult = "no_key"
	// AccessKeyExpired means the bound key passed its expiry; it has been
	// deactivated and unbound.
	AccessKeyExpired AccessResult = "key_expired"
	// AccessQuotaExceeded denies the invocation until the window resets.
	// Stored counters are left unchanged so the user can retry next tick.
	AccessQuotaExceeded AccessResult = "quota_exceeded"
)
