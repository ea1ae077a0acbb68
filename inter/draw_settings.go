package inter

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/utils/cser"
)

// DrawID identifies one lottery round. Ids are assigned strictly
// monotonically by the draw beacon; both ring buffers in this module order
// their contents by it.
type DrawID uint32

const (
	// RandomWidthBits is the bit width of a winning random value and of every
	// per-pick derived random. Bit-range matching partitions this width, so
	// BitRangeSize*MatchCardinality may never exceed it.
	RandomWidthBits = 256

	// MinBitRangeSize and MaxBitRangeSize bound the size of one comparison
	// chunk. A chunk wider than 8 bits would make even the grand-prize tier
	// practically unreachable at the configured pick budgets.
	MinBitRangeSize = 1
	MaxBitRangeSize = 8

	// DistributionBase is the fixed-point base of prize tier distributions.
	// A tier distribution of DistributionBase/2 allocates half of the draw's
	// prize to that tier. The distributions of one draw sum to at most the
	// base; any remainder is simply not paid out by that draw.
	DistributionBase = 1000000000
)

// DrawSettings is the per-draw prize configuration, created once by the
// privileged draw manager before a draw can be claimed against. While a
// settings entry is the newest one in the registry it may be corrected in
// place; once a newer draw is pushed it is immutable until evicted.
//
// The field order below is canonical. Both the RLP encoding (derived from
// struct order) and MarshalCSER depend on it, and persisted snapshots are
// only upgrade-compatible while the order is preserved. Append new fields at
// the end, never reorder.
type DrawSettings struct {
	// DrawID is the draw this configuration belongs to.
	DrawID DrawID

	// BitRangeSize is the width in bits of one comparison chunk, in
	// [MinBitRangeSize, MaxBitRangeSize].
	BitRangeSize uint8

	// MatchCardinality is the number of chunks compared between a pick's
	// derived random and the draw's winning random. It is also the sentinel
	// tier index meaning "no win".
	MatchCardinality uint8

	// Distributions allocates the prize across tiers in DistributionBase
	// fixed point, ordered from the grand-prize tier (index 0) outward.
	// Tiers beyond the list length pay nothing.
	Distributions []uint32

	// NumberOfPicks is the total pick budget of the draw; a user's picks are
	// their time-weighted supply share of this number, rounded down.
	NumberOfPicks uint64

	// StartOffset and EndOffset anchor the averaging window around the
	// draw's close time T: balances are averaged over
	// [T - StartOffset, T + EndOffset].
	StartOffset Timestamp
	EndOffset   Timestamp

	// ExpiryDuration is how long after the draw's close time claims remain
	// valid. Zero is rejected: a draw that can never be claimed is a
	// configuration mistake, not a policy.
	ExpiryDuration Timestamp

	// MaxPicksPerUser caps how many pick indices a single claim may submit
	// for this draw.
	MaxPicksPerUser uint64

	// Prize is the total amount allocated to this draw, in the same units as
	// ledger balances.
	Prize *big.Int
}

// Validate rejects malformed settings before they can reach storage. All
// violations report ErrConfiguration; the wrap message names the field.
func (s DrawSettings) Validate() error {
	if s.BitRangeSize < MinBitRangeSize || s.BitRangeSize > MaxBitRangeSize {
		return errors.Wrapf(ErrConfiguration, "bit range size %d outside [%d, %d]", s.BitRangeSize, MinBitRangeSize, MaxBitRangeSize)
	}
	if s.MatchCardinality == 0 {
		return errors.Wrap(ErrConfiguration, "match cardinality is zero")
	}
	if int(s.BitRangeSize)*int(s.MatchCardinality) > RandomWidthBits {
		return errors.Wrapf(ErrConfiguration, "bit range size %d * cardinality %d exceeds the %d-bit random width", s.BitRangeSize, s.MatchCardinality, RandomWidthBits)
	}
	if len(s.Distributions) > int(s.MatchCardinality) {
		return errors.Wrapf(ErrConfiguration, "%d tier distributions for %d winning tiers", len(s.Distributions), s.MatchCardinality)
	}
	total := uint64(0)
	for _, d := range s.Distributions {
		total += uint64(d)
	}
	if total > DistributionBase {
		return errors.Wrapf(ErrConfiguration, "distributions sum to %d, base is %d", total, DistributionBase)
	}
	if s.ExpiryDuration == 0 {
		return errors.Wrap(ErrConfiguration, "expiry duration is zero")
	}
	if s.MaxPicksPerUser == 0 {
		return errors.Wrap(ErrConfiguration, "max picks per user is zero")
	}
	if s.Prize == nil || s.Prize.Sign() < 0 {
		return errors.Wrap(ErrConfiguration, "prize must be a non-negative integer")
	}
	if s.Prize.Cmp(MaxAmount) > 0 {
		return errors.Wrapf(ErrConfiguration, "prize has %d bits, cap is %d bits", s.Prize.BitLen(), MaxAmountBits)
	}
	return nil
}

// Copy returns a deep copy. DrawSettings carries a *big.Int and a slice, so
// a plain assignment would share state between the registry and its callers.
func (s DrawSettings) Copy() DrawSettings {
	cp := s
	cp.Distributions = make([]uint32, len(s.Distributions))
	copy(cp.Distributions, s.Distributions)
	if s.Prize != nil {
		cp.Prize = new(big.Int).Set(s.Prize)
	}
	return cp
}

// String returns a JSON representation for logs and config dumps.
func (s DrawSettings) String() string {
	b, _ := json.Marshal(&s)
	return string(b)
}

// Hash returns the settings identity: keccak256 over the RLP encoding.
// RLP derives its layout from the struct order, so the identity is stable
// across versions as long as the canonical field order holds.
func (s DrawSettings) Hash() (common.Hash, error) {
	b, err := rlp.EncodeToBytes(&s)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(b), nil
}

// MarshalCSER writes the settings in canonical field order.
func (s DrawSettings) MarshalCSER(w *cser.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.U32(uint32(s.DrawID))
	w.U8(s.BitRangeSize)
	w.U8(s.MatchCardinality)
	w.U32Slice(s.Distributions)
	w.U64(s.NumberOfPicks)
	w.U32(uint32(s.StartOffset))
	w.U32(uint32(s.EndOffset))
	w.U32(uint32(s.ExpiryDuration))
	w.U64(s.MaxPicksPerUser)
	w.BigInt(s.Prize)
	return nil
}

// UnmarshalCSER reads settings written by MarshalCSER and re-validates them,
// so a corrupted or hand-edited snapshot cannot smuggle malformed settings
// past the push-time checks.
func (s *DrawSettings) UnmarshalCSER(r *cser.Reader) error {
	s.DrawID = DrawID(r.U32())
	s.BitRangeSize = r.U8()
	s.MatchCardinality = r.U8()
	s.Distributions = r.U32Slice(RandomWidthBits)
	s.NumberOfPicks = r.U64()
	s.StartOffset = Timestamp(r.U32())
	s.EndOffset = Timestamp(r.U32())
	s.ExpiryDuration = Timestamp(r.U32())
	s.MaxPicksPerUser = r.U64()
	s.Prize = r.BigInt()
	return s.Validate()
}
