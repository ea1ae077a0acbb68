// Package pool assembles the prize pool: capacity rules, named presets and
// the facade bundling the balance ledger, the draw stores and the claim
// calculator behind one handle.
package pool

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/inter"
	"github.com/rony4d/go-prize-pool/twab"
)

const (
	DefaultName = "default"
	LiteName    = "lite"
	ArchiveName = "archive"
	FakeName    = "fake"
)

const (
	DefaultHistoryCardinality = 4096
	DefaultBufferCardinality  = 256
)

// Rules describes the fixed shape of one pool deployment. Rules are read at
// construction time only; changing capacities on a live pool would silently
// re-window retained history.
type Rules struct {
	// Name tags the profile in logs and dumps.
	Name string

	// HistoryCardinality is the checkpoint capacity of every balance ring.
	HistoryCardinality uint32

	// BufferCardinality is the capacity of the draw settings registry and
	// of the closed-draw ledger.
	BufferCardinality uint32

	// PickScale is the fixed-point base of the normalized balance share.
	PickScale *big.Int

	// ZeroWindowBoundary selects how zero-width averaging windows resolve
	// on exact checkpoint boundaries.
	ZeroWindowBoundary twab.BoundaryConvention
}

// DefaultRules returns the standard deployment profile.
func DefaultRules() Rules {
	return Rules{
		Name:               DefaultName,
		HistoryCardinality: DefaultHistoryCardinality,
		BufferCardinality:  DefaultBufferCardinality,
		PickScale:          math.BigPow(10, 18),
		ZeroWindowBoundary: twab.BoundaryLegacy,
	}
}

// FakeRules returns a small-capacity profile for tests and simulations,
// where ring eviction should be easy to reach.
func FakeRules() Rules {
	r := DefaultRules()
	r.Name = FakeName
	r.HistoryCardinality = 8
	r.BufferCardinality = 4
	return r
}

// Validate rejects profiles the pool cannot be built from.
func (r Rules) Validate() error {
	if r.HistoryCardinality == 0 {
		return errors.Wrap(inter.ErrConfiguration, "zero history cardinality")
	}
	if r.BufferCardinality == 0 {
		return errors.Wrap(inter.ErrConfiguration, "zero buffer cardinality")
	}
	if r.PickScale == nil || r.PickScale.Sign() <= 0 {
		return errors.Wrap(inter.ErrConfiguration, "pick scale must be a positive integer")
	}
	return nil
}

// Copy returns a deep copy.
func (r Rules) Copy() Rules {
	cp := r
	if r.PickScale != nil {
		cp.PickScale = new(big.Int).Set(r.PickScale)
	}
	return cp
}

// String returns the JSON representation.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
