package inter

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/utils/cser"
)

// MaxAmountBits is the fixed bit width of a recorded balance amount. Amounts
// are capped below 2^224 so that the downstream share arithmetic
// (amount * 1e18 scaling, prize * fraction products) always fits a 256-bit
// intermediate without wrapping.
const MaxAmountBits = 224

// MaxAmount is the largest amount an Observation may carry: 2^224 - 1.
var MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), MaxAmountBits), big.NewInt(1))

// Observation is one checkpoint of the balance ledger: the full balance of an
// account (or of the aggregate supply) as of a logical instant. Observations
// are recorded immediately after every balance-affecting event and are never
// mutated afterwards, except that a second checkpoint within the same logical
// instant collapses into the existing slot. Eviction happens implicitly when
// the history ring wraps; nothing deletes an Observation explicitly.
type Observation struct {
	// Amount is the recorded balance level, 0 <= Amount <= MaxAmount.
	// This is the balance itself, not a running balance-time accumulator.
	Amount *big.Int

	// Time is the logical instant the balance took effect.
	Time Timestamp
}

// NewObservation builds a checkpoint, deep-copying the amount so later
// mutations of the caller's big.Int cannot reach into stored history.
func NewObservation(amount *big.Int, t Timestamp) Observation {
	return Observation{
		Amount: new(big.Int).Set(amount),
		Time:   t,
	}
}

// Validate checks the amount against the fixed bit-width cap.
func (o Observation) Validate() error {
	if o.Amount == nil || o.Amount.Sign() < 0 {
		return errors.Wrap(ErrOverflow, "amount must be a non-negative integer")
	}
	if o.Amount.Cmp(MaxAmount) > 0 {
		return errors.Wrapf(ErrOverflow, "amount has %d bits, cap is %d bits", o.Amount.BitLen(), MaxAmountBits)
	}
	return nil
}

// String returns a compact representation for logs and test failures.
func (o Observation) String() string {
	return fmt.Sprintf("{amount=%s, time=%d}", o.Amount, o.Time)
}

// MarshalCSER writes the observation in its canonical order: amount first,
// then timestamp. The order is fixed forever; persisted history snapshots
// rely on it for upgrade compatibility.
func (o Observation) MarshalCSER(w *cser.Writer) error {
	if err := o.Validate(); err != nil {
		return err
	}
	w.BigInt(o.Amount)
	w.U32(uint32(o.Time))
	return nil
}

// UnmarshalCSER reads an observation written by MarshalCSER.
func (o *Observation) UnmarshalCSER(r *cser.Reader) error {
	o.Amount = r.BigInt()
	o.Time = Timestamp(r.U32())
	return o.Validate()
}
