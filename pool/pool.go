package pool

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/draw"
	"github.com/rony4d/go-prize-pool/inter"
	"github.com/rony4d/go-prize-pool/twab"
)

// Pool bundles the accounting core of one deployment: the balance ledger,
// the draw settings registry, the closed-draw ledger and the claim
// calculator, all sized by one Rules profile.
type Pool struct {
	rules    Rules
	closeMu  sync.Mutex
	History  *twab.History
	Settings *draw.SettingsBuffer
	Draws    *draw.Ledger

	calc *draw.Calculator
}

// New builds an empty pool from the profile.
func New(rules Rules) (*Pool, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	rules = rules.Copy()

	history := twab.NewHistory(int(rules.HistoryCardinality), rules.ZeroWindowBoundary)
	settings := draw.NewSettingsBuffer(int(rules.BufferCardinality))
	draws := draw.NewLedger(int(rules.BufferCardinality))

	return &Pool{
		rules:    rules,
		History:  history,
		Settings: settings,
		Draws:    draws,
		calc:     draw.NewCalculator(history, settings, draws, rules.PickScale),
	}, nil
}

// Rules returns a copy of the profile the pool was built from.
func (p *Pool) Rules() Rules {
	return p.rules.Copy()
}

// Checkpoint records an account's new balance level.
func (p *Pool) Checkpoint(id common.Address, amount *big.Int, now inter.Timestamp) error {
	return p.History.Checkpoint(id, amount, now)
}

// CheckpointSupply records the new total supply level.
func (p *Pool) CheckpointSupply(amount *big.Int, now inter.Timestamp) error {
	return p.History.CheckpointSupply(amount, now)
}

// CloseDraw records a closed draw and its validated settings as one step.
// Either both registries accept the entry or neither is touched.
func (p *Pool) CloseDraw(d inter.Draw, s inter.DrawSettings) error {
	if d.ID != s.DrawID {
		return errors.Wrapf(inter.ErrSequence, "draw %d closed with settings for draw %d", d.ID, s.DrawID)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	// Check the draw against the ledger before touching the settings
	// registry, so a rejected draw leaves no half-recorded settings entry.
	if newest, ok := p.Draws.Newest(); ok {
		if d.ID <= newest.ID {
			return errors.Wrapf(inter.ErrSequence, "draw id %d is not greater than newest %d", d.ID, newest.ID)
		}
		if d.Time < newest.Time {
			return errors.Wrapf(inter.ErrSequence, "draw %d closed at %d, before draw %d at %d", d.ID, d.Time, newest.ID, newest.Time)
		}
	}
	if err := p.Settings.Push(s); err != nil {
		return err
	}
	return p.Draws.Push(d)
}

// Calculate resolves a batch claim. See draw.Calculator.
func (p *Pool) Calculate(user common.Address, seed common.Hash, drawIDs []inter.DrawID, pickIndices [][]uint64, now inter.Timestamp) ([]draw.Result, error) {
	return p.calc.Calculate(user, seed, drawIDs, pickIndices, now)
}
