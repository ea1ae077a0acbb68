package inter

import (
	"time"
)

// Timestamp is the ledger's logical clock value: whole seconds since the Unix
// epoch, truncated to 32 bits. Every checkpoint, draw close and expiry window
// is expressed in this unit. The host ledger supplies timestamps explicitly
// with each call; nothing in this module reads a wall clock, which keeps
// repeated computation over the same stored state bit-identical.
type Timestamp uint32

// FromUnix converts a time.Time into a ledger Timestamp, dropping sub-second
// precision.
func FromUnix(t time.Time) Timestamp {
	return Timestamp(t.Unix())
}

// Time converts the Timestamp back into a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Add returns t shifted forward by d seconds.
func (t Timestamp) Add(d Timestamp) Timestamp {
	return t + d
}

// SaturatingSub returns t shifted backward by d seconds, clamped at zero.
// Averaging windows are anchored at a draw's close time minus a start offset;
// for draws close to the epoch the window start clamps to the epoch instead
// of wrapping.
func (t Timestamp) SaturatingSub(d Timestamp) Timestamp {
	if d >= t {
		return 0
	}
	return t - d
}
