package inter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-prize-pool/utils/cser"
)

// Draw is the close-of-round record: the instant a draw was sealed and the
// winning random value supplied for it. The random value arrives from an
// external beacon at draw close; this module never generates entropy, it
// only resolves picks against whatever value was recorded here.
//
// Like DrawSettings, a Draw may be corrected only while it is the newest
// entry of the draw ledger (the window before the first claim lands, used to
// fix a mis-relayed random value), and is immutable afterwards.
type Draw struct {
	// ID is the round identifier, strictly increasing across pushes.
	ID DrawID

	// Time is the logical close time of the round. Averaging windows and the
	// expiry window are both anchored at it.
	Time Timestamp

	// WinningRandom is the 256-bit value every pick of this draw is matched
	// against.
	WinningRandom common.Hash
}

// String returns a compact representation for logs.
func (d Draw) String() string {
	return fmt.Sprintf("{id=%d, time=%d, winning=%s}", d.ID, d.Time, d.WinningRandom.Hex())
}

// MarshalCSER writes the draw record in canonical field order.
func (d Draw) MarshalCSER(w *cser.Writer) error {
	w.U32(uint32(d.ID))
	w.U32(uint32(d.Time))
	w.FixedBytes(d.WinningRandom[:])
	return nil
}

// UnmarshalCSER reads a draw record written by MarshalCSER.
func (d *Draw) UnmarshalCSER(r *cser.Reader) error {
	d.ID = DrawID(r.U32())
	d.Time = Timestamp(r.U32())
	r.FixedBytes(d.WinningRandom[:])
	return nil
}
