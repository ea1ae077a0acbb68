package inter

import (
	"errors"
)

// Failure taxonomy shared by every package in this module.
//
// Each kind below is a distinct sentinel: callers classify failures with
// errors.Is and never by string matching. Call sites wrap these with
// pkg/errors to attach the offending draw id, pick index or timestamp, so the
// chain keeps both a stable identity and a human-readable cause.
//
// None of these are retried internally, and none of them overlap with the
// defined zero-result behaviors of the balance ledger (pre-history queries
// return zero, post-history queries return the newest amount); those are
// outcomes, not failures.
var (
	// ErrConfiguration marks malformed draw settings. Settings failing
	// validation are rejected before storage and are never persisted.
	ErrConfiguration = errors.New("prizepool: invalid draw settings")

	// ErrSequence marks an ordering violation: a pushed draw id that does not
	// strictly exceed the newest stored one, a checkpoint older than the
	// newest retained observation, or claim pick indices that are not
	// strictly ascending and unique.
	ErrSequence = errors.New("prizepool: sequence violation")

	// ErrRange marks a reference to a draw id or timestamp outside the
	// retained window. It is deliberately distinct from ErrSequence so that
	// callers can tell "no longer (or not yet) available" from "malformed".
	ErrRange = errors.New("prizepool: out of retained range")

	// ErrBudget marks a claim that requests more picks than the user's
	// time-weighted share entitles them to, or than the per-user cap allows.
	ErrBudget = errors.New("prizepool: pick budget exceeded")

	// ErrOverflow marks a checkpoint amount that exceeds the fixed bit-width
	// cap. Oversized amounts are rejected up front to protect the downstream
	// fixed-point arithmetic from silent wraparound.
	ErrOverflow = errors.New("prizepool: amount exceeds bit-width cap")

	// ErrExpired marks a claim against a draw whose expiry window has fully
	// elapsed. Expiry is a data-level validity window measured in logical
	// time, not a liveness timeout.
	ErrExpired = errors.New("prizepool: draw expired")

	// ErrZeroTotalSupply marks a claim over an averaging window in which the
	// aggregate supply averages to zero, leaving no denominator for the
	// user's proportional share.
	ErrZeroTotalSupply = errors.New("prizepool: zero average total supply")
)
