// Package twab implements the time-weighted average balance ledger: bounded,
// append-only histories of balance checkpoints supporting point-in-time and
// averaged-range queries. One Ring holds the checkpoints of a single account
// (or of the aggregate supply); History aggregates the per-account rings and
// the supply singleton behind a serialized write interface.
//
// Key concepts:
//   - Checkpoints are (amount, timestamp) observations recorded after every
//     balance-affecting event; the amount is the balance level itself.
//   - Capacity is fixed. Once the ring saturates, each new checkpoint
//     overwrites the oldest slot, giving a sliding window of history.
//   - Queries between checkpoints interpolate the balance level linearly.
//     This is a deliberate approximation of holdings over time, not an
//     area-under-the-curve integral.
package twab

import (
	"math/big"

	"github.com/rony4d/go-prize-pool/inter"
)

// BoundaryConvention selects how a zero-width averaging window that lands
// exactly on a checkpoint timestamp resolves.
//
// The legacy convention reproduces the historically observed behavior: the
// query answers with the NEXT checkpoint's amount (or the newest amount when
// no next exists) rather than the amount recorded at the boundary itself.
// Downstream systems have settled on payouts computed under this convention,
// so it is the default; the symmetric convention answers with the boundary
// checkpoint's own amount and is available for consumers that prefer
// average(t,t) == balance(t) everywhere.
type BoundaryConvention uint8

const (
	// BoundaryLegacy resolves a zero-width window on a checkpoint boundary
	// to the next checkpoint's amount.
	BoundaryLegacy BoundaryConvention = iota

	// BoundarySymmetric resolves it to the boundary checkpoint's own amount.
	BoundarySymmetric
)

// Ring is a fixed-capacity circular buffer of observations ordered by
// strictly increasing timestamp. The (nextIndex, count) cursor pair tracks
// the write position and saturation: count grows until it reaches capacity
// and stays there while overwrites slide the window forward.
type Ring struct {
	slots     []inter.Observation
	nextIndex int
	count     int
}

// NewRing allocates a ring for up to capacity observations.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		panic("twab: ring capacity must be positive")
	}
	return &Ring{
		slots: make([]inter.Observation, capacity),
	}
}

// Capacity returns the fixed slot count.
func (r *Ring) Capacity() int {
	return len(r.slots)
}

// Count returns the number of retained observations, at most Capacity.
func (r *Ring) Count() int {
	return r.count
}

// at returns the observation at the given logical index, where 0 is the
// oldest retained observation and Count()-1 the newest.
func (r *Ring) at(logical int) inter.Observation {
	start := (r.nextIndex - r.count + len(r.slots)) % len(r.slots)
	return r.slots[(start+logical)%len(r.slots)]
}

// Newest returns the most recent observation. ok is false when empty.
func (r *Ring) Newest() (o inter.Observation, ok bool) {
	if r.count == 0 {
		return inter.Observation{}, false
	}
	return r.at(r.count - 1), true
}

// Oldest returns the earliest retained observation. ok is false when empty.
func (r *Ring) Oldest() (o inter.Observation, ok bool) {
	if r.count == 0 {
		return inter.Observation{}, false
	}
	return r.at(0), true
}

// push appends an observation, overwriting the oldest slot once saturated.
// The caller has already handled same-instant collapse and ordering.
func (r *Ring) push(o inter.Observation) {
	r.slots[r.nextIndex] = o
	r.nextIndex = (r.nextIndex + 1) % len(r.slots)
	if r.count < len(r.slots) {
		r.count++
	}
}

// replaceNewest overwrites the newest observation's amount in place. Used
// for the same-instant collapse: a second checkpoint within one logical
// instant updates the existing slot and count does not grow.
func (r *Ring) replaceNewest(amount *big.Int) {
	newestIdx := (r.nextIndex - 1 + len(r.slots)) % len(r.slots)
	r.slots[newestIdx].Amount = new(big.Int).Set(amount)
}

// Bracket locates the latest observation at-or-before t and the earliest
// at-or-after t, searching the logical (unwrapped) order.
//
// Edge behavior:
//   - empty ring: both brackets are a zero-amount sentinel at t;
//   - t at-or-after the newest timestamp: both equal the newest entry
//     (flat forward projection);
//   - t at-or-before the oldest timestamp: both equal the oldest entry;
//   - t exactly on a checkpoint: both equal that checkpoint, so exact
//     matches always surface the recorded amount, never an interpolation.
func (r *Ring) Bracket(t inter.Timestamp) (before, after inter.Observation) {
	if r.count == 0 {
		sentinel := inter.Observation{Amount: new(big.Int), Time: t}
		return sentinel, sentinel
	}

	newest := r.at(r.count - 1)
	if t >= newest.Time {
		return newest, newest
	}
	oldest := r.at(0)
	if t <= oldest.Time {
		return oldest, oldest
	}

	// binary search for the greatest logical index with Time <= t;
	// oldest.Time < t < newest.Time here, so 0 <= lo < count-1 at the end
	lo, hi := 0, r.count-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if r.at(mid).Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}

	before = r.at(lo)
	if before.Time == t {
		return before, before
	}
	return before, r.at(lo + 1)
}

// InterpolateAt estimates the balance level at t by linear interpolation
// between the bracketing checkpoints, with flat projection outside the
// retained window and exact amounts on checkpoint timestamps.
func (r *Ring) InterpolateAt(t inter.Timestamp) *big.Int {
	before, after := r.Bracket(t)
	if before.Time == after.Time {
		return new(big.Int).Set(before.Amount)
	}

	// before.Time < t < after.Time
	span := new(big.Int).SetUint64(uint64(after.Time - before.Time))
	elapsed := new(big.Int).SetUint64(uint64(t - before.Time))

	delta := new(big.Int).Sub(after.Amount, before.Amount)
	delta.Mul(delta, elapsed)
	delta.Quo(delta, span)

	return delta.Add(delta, before.Amount)
}

// nextAfter returns the earliest observation strictly newer than t.
// ok is false when t is at-or-after the newest timestamp.
func (r *Ring) nextAfter(t inter.Timestamp) (o inter.Observation, ok bool) {
	if r.count == 0 {
		return inter.Observation{}, false
	}
	if newest := r.at(r.count - 1); t >= newest.Time {
		return inter.Observation{}, false
	}
	_, after := r.Bracket(t)
	if after.Time > t {
		return after, true
	}
	// t sits exactly on a checkpoint; step one logical index forward
	lo, hi := 0, r.count-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if r.at(mid).Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	return r.at(lo + 1), true
}

// AverageBetween returns the representative balance held over [t0, t1]:
// the floor mean of the interpolated levels at the two endpoints.
//
// Defined zero results (not errors): an empty ring, or a window ending
// at-or-before the oldest retained timestamp, average to zero.
//
// A zero-width window normally answers InterpolateAt(t0); when t0 lands
// exactly on a checkpoint the convention decides between that checkpoint's
// amount and the next one's (see BoundaryConvention).
func (r *Ring) AverageBetween(t0, t1 inter.Timestamp, convention BoundaryConvention) *big.Int {
	if r.count == 0 {
		return new(big.Int)
	}
	if oldest := r.at(0); t1 <= oldest.Time {
		return new(big.Int)
	}

	if t0 == t1 {
		if convention == BoundaryLegacy {
			if exact, _ := r.Bracket(t0); exact.Time == t0 {
				if next, ok := r.nextAfter(t0); ok {
					return new(big.Int).Set(next.Amount)
				}
			}
		}
		return r.InterpolateAt(t0)
	}

	v0 := r.InterpolateAt(t0)
	v1 := r.InterpolateAt(t1)

	sum := v0.Add(v0, v1)
	return sum.Quo(sum, big.NewInt(2))
}
