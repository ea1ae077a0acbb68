package twab

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/inter"
)

// TimeRange is a closed averaging window [Start, End].
type TimeRange struct {
	Start inter.Timestamp
	End   inter.Timestamp
}

// accountHistory pairs an account's ring with its own lock, so that writers
// for different accounts never contend with each other.
type accountHistory struct {
	mu   sync.RWMutex
	ring *Ring
}

// History is the balance ledger: one checkpoint ring per account plus a
// singleton ring for the total supply. Writes to a single account are
// serialized by a per-account mutex; reads take the same lock shared.
// A rejected checkpoint leaves the ring untouched.
type History struct {
	capacity   int
	convention BoundaryConvention

	mu       sync.RWMutex // guards accounts map shape only
	accounts map[common.Address]*accountHistory
	supply   *accountHistory
}

// NewHistory creates an empty ledger. Every ring it spawns has the given
// capacity; the convention applies to all zero-width average queries.
func NewHistory(capacity int, convention BoundaryConvention) *History {
	return &History{
		capacity:   capacity,
		convention: convention,
		accounts:   make(map[common.Address]*accountHistory),
		supply: &accountHistory{
			ring: NewRing(capacity),
		},
	}
}

// Capacity returns the per-ring slot count.
func (h *History) Capacity() int {
	return h.capacity
}

// Convention returns the zero-width boundary convention in force.
func (h *History) Convention() BoundaryConvention {
	return h.convention
}

// account returns the history of id, creating it when absent and create
// is set. Returns nil when absent and create is unset.
func (h *History) account(id common.Address, create bool) *accountHistory {
	h.mu.RLock()
	acc := h.accounts[id]
	h.mu.RUnlock()
	if acc != nil || !create {
		return acc
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if acc = h.accounts[id]; acc == nil {
		acc = &accountHistory{
			ring: NewRing(h.capacity),
		}
		h.accounts[id] = acc
	}
	return acc
}

// checkpoint validates and records a new balance level on the given ring.
// Errors leave the cursor unmoved, so the caller's balance mutation and
// the history commit succeed or fail together.
func checkpoint(acc *accountHistory, amount *big.Int, now inter.Timestamp) error {
	if amount == nil || amount.Sign() < 0 || amount.Cmp(inter.MaxAmount) > 0 {
		return errors.Wrapf(inter.ErrOverflow, "checkpoint amount %v outside [0, 2^%d)", amount, inter.MaxAmountBits)
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	if newest, ok := acc.ring.Newest(); ok {
		if now < newest.Time {
			return errors.Wrapf(inter.ErrSequence, "checkpoint time %d older than newest %d", now, newest.Time)
		}
		if now == newest.Time {
			acc.ring.replaceNewest(amount)
			return nil
		}
	}
	acc.ring.push(inter.NewObservation(amount, now))
	return nil
}

// Checkpoint records the account's new balance level at now. A repeated
// checkpoint within the same instant collapses into the newest slot.
func (h *History) Checkpoint(id common.Address, amount *big.Int, now inter.Timestamp) error {
	return checkpoint(h.account(id, true), amount, now)
}

// CheckpointSupply records the new total supply level at now.
func (h *History) CheckpointSupply(amount *big.Int, now inter.Timestamp) error {
	return checkpoint(h.supply, amount, now)
}

// GetBalance returns the account's balance level at t: the recorded amount
// on an exact checkpoint hit, a linear interpolation between checkpoints,
// flat values outside the retained window, zero for an unknown account.
func (h *History) GetBalance(id common.Address, t inter.Timestamp) *big.Int {
	acc := h.account(id, false)
	if acc == nil {
		return new(big.Int)
	}
	acc.mu.RLock()
	defer acc.mu.RUnlock()
	return acc.ring.InterpolateAt(t)
}

// GetTotalSupply returns the supply level at t, same semantics as GetBalance.
func (h *History) GetTotalSupply(t inter.Timestamp) *big.Int {
	h.supply.mu.RLock()
	defer h.supply.mu.RUnlock()
	return h.supply.ring.InterpolateAt(t)
}

func averageBetween(acc *accountHistory, r TimeRange, convention BoundaryConvention) (*big.Int, error) {
	if r.End < r.Start {
		return nil, errors.Wrapf(inter.ErrRange, "average window [%d, %d] reversed", r.Start, r.End)
	}
	acc.mu.RLock()
	defer acc.mu.RUnlock()
	return acc.ring.AverageBetween(r.Start, r.End, convention), nil
}

// GetAverageBalanceBetween returns the account's representative balance
// over [t0, t1]. Zero (not an error) for an unknown account, an empty
// history, or a window ending at-or-before the oldest checkpoint.
func (h *History) GetAverageBalanceBetween(id common.Address, t0, t1 inter.Timestamp) (*big.Int, error) {
	acc := h.account(id, false)
	if acc == nil {
		if t1 < t0 {
			return nil, errors.Wrapf(inter.ErrRange, "average window [%d, %d] reversed", t0, t1)
		}
		return new(big.Int), nil
	}
	return averageBetween(acc, TimeRange{t0, t1}, h.convention)
}

// GetAverageTotalSupplyBetween returns the representative supply over [t0, t1].
func (h *History) GetAverageTotalSupplyBetween(t0, t1 inter.Timestamp) (*big.Int, error) {
	return averageBetween(h.supply, TimeRange{t0, t1}, h.convention)
}

// GetBalancesAt answers one point query per timestamp, results strictly
// in input order.
func (h *History) GetBalancesAt(id common.Address, times []inter.Timestamp) []*big.Int {
	out := make([]*big.Int, len(times))
	acc := h.account(id, false)
	if acc == nil {
		for i := range out {
			out[i] = new(big.Int)
		}
		return out
	}
	acc.mu.RLock()
	defer acc.mu.RUnlock()
	for i, t := range times {
		out[i] = acc.ring.InterpolateAt(t)
	}
	return out
}

// GetTotalSuppliesAt answers one supply point query per timestamp, in order.
func (h *History) GetTotalSuppliesAt(times []inter.Timestamp) []*big.Int {
	out := make([]*big.Int, len(times))
	h.supply.mu.RLock()
	defer h.supply.mu.RUnlock()
	for i, t := range times {
		out[i] = h.supply.ring.InterpolateAt(t)
	}
	return out
}

// GetAverageBalancesBetween answers one averaging window per range, results
// strictly in input order. Any reversed window fails the whole batch.
func (h *History) GetAverageBalancesBetween(id common.Address, ranges []TimeRange) ([]*big.Int, error) {
	out := make([]*big.Int, len(ranges))
	acc := h.account(id, false)
	if acc == nil {
		for i, r := range ranges {
			if r.End < r.Start {
				return nil, errors.Wrapf(inter.ErrRange, "average window [%d, %d] reversed", r.Start, r.End)
			}
			out[i] = new(big.Int)
		}
		return out, nil
	}
	acc.mu.RLock()
	defer acc.mu.RUnlock()
	for i, r := range ranges {
		if r.End < r.Start {
			return nil, errors.Wrapf(inter.ErrRange, "average window [%d, %d] reversed", r.Start, r.End)
		}
		out[i] = acc.ring.AverageBetween(r.Start, r.End, h.convention)
	}
	return out, nil
}

// GetAverageTotalSuppliesBetween answers one supply averaging window per
// range, in order.
func (h *History) GetAverageTotalSuppliesBetween(ranges []TimeRange) ([]*big.Int, error) {
	out := make([]*big.Int, len(ranges))
	h.supply.mu.RLock()
	defer h.supply.mu.RUnlock()
	for i, r := range ranges {
		if r.End < r.Start {
			return nil, errors.Wrapf(inter.ErrRange, "average window [%d, %d] reversed", r.Start, r.End)
		}
		out[i] = h.supply.ring.AverageBetween(r.Start, r.End, h.convention)
	}
	return out, nil
}

// Accounts returns the ids with a recorded history, in unspecified order.
func (h *History) Accounts() []common.Address {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]common.Address, 0, len(h.accounts))
	for id := range h.accounts {
		out = append(out, id)
	}
	return out
}
