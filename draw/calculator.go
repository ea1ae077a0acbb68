package draw

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/inter"
	"github.com/rony4d/go-prize-pool/twab"
)

// Calculator resolves claims against closed draws. It owns no state of its
// own: every claim reads the balance ledger, the settings registry and the
// draw ledger, computes deterministically, and mutates nothing. A failed
// claim therefore has no effect by construction.
//
// Each claim runs the same phases per draw:
// validate the draw reference, normalize the user's pick entitlement from
// time-weighted balances, match every requested pick against the winning
// random, accumulate the payout.
type Calculator struct {
	history   *twab.History
	settings  *SettingsBuffer
	ledger    *Ledger
	pickScale *big.Int
}

// DefaultPickScale is the fixed-point base of the normalized balance share.
var DefaultPickScale = math.BigPow(10, 18)

// NewCalculator wires a calculator over the three stores. A nil pickScale
// selects DefaultPickScale.
func NewCalculator(history *twab.History, settings *SettingsBuffer, ledger *Ledger, pickScale *big.Int) *Calculator {
	if pickScale == nil {
		pickScale = DefaultPickScale
	}
	return &Calculator{
		history:   history,
		settings:  settings,
		ledger:    ledger,
		pickScale: pickScale,
	}
}

// Result is one draw's outcome within a claim.
type Result struct {
	DrawID inter.DrawID
	// Payout is the claimed amount for this draw, in prize units.
	Payout *big.Int
	// UserPicks is the entitlement the user's balance share normalized to.
	UserPicks uint64
	// TierCounts[i] counts the requested picks that won tier i. Telemetry
	// only; the payout above is the authoritative figure.
	TierCounts []uint64
}

// PickRandom derives the deterministic 256-bit random of one pick:
// keccak256(seed || pickIndex), the index left-padded to 32 bytes.
func PickRandom(seed common.Hash, pickIndex uint64) *big.Int {
	idx := common.LeftPadBytes(new(big.Int).SetUint64(pickIndex).Bytes(), 32)
	return new(big.Int).SetBytes(crypto.Keccak256(seed[:], idx))
}

// Calculate resolves a batch claim: one pick-index list per requested draw
// id, all weighted by the user's time-weighted balance share around each
// draw. Results come back strictly in input order. Any failure on any draw
// fails the whole claim; since the calculator mutates nothing, no partial
// outcome survives.
func (c *Calculator) Calculate(user common.Address, seed common.Hash, drawIDs []inter.DrawID, pickIndices [][]uint64, now inter.Timestamp) ([]Result, error) {
	if len(drawIDs) != len(pickIndices) {
		return nil, errors.Wrapf(inter.ErrRange, "%d draw ids but %d pick lists", len(drawIDs), len(pickIndices))
	}

	results := make([]Result, len(drawIDs))
	for i, id := range drawIDs {
		r, err := c.calculateDraw(user, seed, id, pickIndices[i], now)
		if err != nil {
			return nil, errors.Wrapf(err, "draw %d", id)
		}
		results[i] = r
	}
	return results, nil
}

func (c *Calculator) calculateDraw(user common.Address, seed common.Hash, id inter.DrawID, picks []uint64, now inter.Timestamp) (Result, error) {
	// Validate
	d, err := c.ledger.GetByDrawID(id)
	if err != nil {
		return Result{}, err
	}
	s, err := c.settings.GetByDrawID(id)
	if err != nil {
		return Result{}, err
	}
	// Elapsed time is compared directly so an expiry reaching past the end
	// of the timestamp range does not wrap around to the epoch start.
	if now >= d.Time && now-d.Time >= s.ExpiryDuration {
		return Result{}, errors.Wrapf(inter.ErrExpired, "claimed at %d, draw closed %d, expiry %d", now, d.Time, s.ExpiryDuration)
	}
	for j := 1; j < len(picks); j++ {
		if picks[j] <= picks[j-1] {
			return Result{}, errors.Wrapf(inter.ErrSequence, "pick indices not strictly ascending at position %d", j)
		}
	}
	if uint64(len(picks)) > s.MaxPicksPerUser {
		return Result{}, errors.Wrapf(inter.ErrBudget, "%d picks requested, cap %d", len(picks), s.MaxPicksPerUser)
	}

	// NormalizePicks
	userPicks, err := c.normalizePicks(user, d, s)
	if err != nil {
		return Result{}, err
	}
	if len(picks) > 0 && picks[len(picks)-1] >= userPicks {
		return Result{}, errors.Wrapf(inter.ErrBudget, "pick index %d outside entitlement %d", picks[len(picks)-1], userPicks)
	}

	// MatchAndAccumulate
	masks := CreateBitMasks(s.MatchCardinality, s.BitRangeSize)
	winning := new(big.Int).SetBytes(d.WinningRandom[:])
	payout := new(big.Int)
	tierCounts := make([]uint64, s.MatchCardinality)
	base := new(big.Int).SetUint64(inter.DistributionBase)
	for _, pick := range picks {
		tier := CalculateTierIndex(PickRandom(seed, pick), winning, masks)
		if tier >= s.MatchCardinality {
			continue
		}
		fraction := CalculatePrizeTierFraction(distributionFor(s, tier), s.BitRangeSize, tier)
		fraction.Mul(fraction, s.Prize)
		fraction.Quo(fraction, base)
		payout.Add(payout, fraction)
		tierCounts[tier]++
	}

	return Result{
		DrawID:     id,
		Payout:     payout,
		UserPicks:  userPicks,
		TierCounts: tierCounts,
	}, nil
}

// normalizePicks converts the user's time-weighted balance share around the
// draw into a whole number of picks:
// floor(userAvg * scale / supplyAvg * numberOfPicks / scale).
func (c *Calculator) normalizePicks(user common.Address, d inter.Draw, s inter.DrawSettings) (uint64, error) {
	from := d.Time.SaturatingSub(s.StartOffset)
	to := d.Time.Add(s.EndOffset)

	supplyAvg, err := c.history.GetAverageTotalSupplyBetween(from, to)
	if err != nil {
		return 0, err
	}
	if supplyAvg.Sign() == 0 {
		return 0, errors.Wrapf(inter.ErrZeroTotalSupply, "no supply over [%d, %d]", from, to)
	}
	userAvg, err := c.history.GetAverageBalanceBetween(user, from, to)
	if err != nil {
		return 0, err
	}

	normalized := new(big.Int).Mul(userAvg, c.pickScale)
	normalized.Quo(normalized, supplyAvg)

	picks := normalized.Mul(normalized, new(big.Int).SetUint64(s.NumberOfPicks))
	picks.Quo(picks, c.pickScale)
	if !picks.IsUint64() {
		return 0, errors.Wrapf(inter.ErrOverflow, "normalized pick count %v", picks)
	}
	return picks.Uint64(), nil
}
