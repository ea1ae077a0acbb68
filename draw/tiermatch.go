package draw

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/rony4d/go-prize-pool/inter"
)

// The tier matcher is pure and stateless: it compares two 256-bit randoms
// chunk by chunk and maps the comparison onto a prize tier. Chunk i covers
// bits [i*bitRangeSize, (i+1)*bitRangeSize); matching runs from chunk 0
// upward and stops at the first mismatch.

var bigOne = big.NewInt(1)

// CreateBitMasks returns one mask per chunk:
// mask[i] = ((1 << bitRangeSize) - 1) << (i * bitRangeSize).
// The caller has validated bitRangeSize*matchCardinality <= 256.
func CreateBitMasks(matchCardinality, bitRangeSize uint8) []*big.Int {
	masks := make([]*big.Int, matchCardinality)
	base := new(big.Int).Sub(math.BigPow(2, int64(bitRangeSize)), bigOne)
	for i := range masks {
		masks[i] = new(big.Int).Lsh(base, uint(i)*uint(bitRangeSize))
	}
	return masks
}

// CalculateTierIndex counts the chunks of userRandom and winningRandom that
// match consecutively from chunk 0 and returns
// len(masks) - matched: 0 is the grand prize (all chunks match), and the
// sentinel value len(masks) means no chunk matched at all (no win).
func CalculateTierIndex(userRandom, winningRandom *big.Int, masks []*big.Int) uint8 {
	matched := 0
	u := new(big.Int)
	w := new(big.Int)
	for _, mask := range masks {
		u.And(userRandom, mask)
		w.And(winningRandom, mask)
		if u.Cmp(w) != 0 {
			break
		}
		matched++
	}
	return uint8(len(masks) - matched)
}

// NumberOfPrizesForIndex returns how many distinct randoms land exactly on
// tier i: 1 for the grand prize, otherwise
// 2^(bitRangeSize*i) - 2^(bitRangeSize*(i-1)). Exponents reach 256, hence
// big.Int.
func NumberOfPrizesForIndex(bitRangeSize, tierIndex uint8) *big.Int {
	if tierIndex == 0 {
		return big.NewInt(1)
	}
	outer := math.BigPow(2, int64(bitRangeSize)*int64(tierIndex))
	inner := math.BigPow(2, int64(bitRangeSize)*int64(tierIndex-1))
	return outer.Sub(outer, inner)
}

// CalculatePrizeTierFraction splits tier i's distribution share evenly over
// the tier's prize count. The result is a fraction of the draw's total
// prize, expressed in the 1e9 distribution base (floor division).
func CalculatePrizeTierFraction(distribution uint32, bitRangeSize, tierIndex uint8) *big.Int {
	f := new(big.Int).SetUint64(uint64(distribution))
	return f.Quo(f, NumberOfPrizesForIndex(bitRangeSize, tierIndex))
}

// distributionFor returns tier i's share from the settings, zero when the
// distribution list is shorter than the tier index.
func distributionFor(s inter.DrawSettings, tierIndex uint8) uint32 {
	if int(tierIndex) >= len(s.Distributions) {
		return 0
	}
	return s.Distributions[tierIndex]
}
