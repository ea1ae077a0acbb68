package pool

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-prize-pool/draw"
	"github.com/rony4d/go-prize-pool/inter"
)

func testSettings(id inter.DrawID) inter.DrawSettings {
	return inter.DrawSettings{
		DrawID:           id,
		BitRangeSize:     4,
		MatchCardinality: 2,
		Distributions:    []uint32{800000000, 200000000},
		NumberOfPicks:    10000,
		StartOffset:      500,
		ExpiryDuration:   10000,
		MaxPicksPerUser:  100,
		Prize:            big.NewInt(1000),
	}
}

// TestPoolCloseDraw checks the combined record step: settings and draw go
// in together or not at all.
func TestPoolCloseDraw(t *testing.T) {
	require := require.New(t)
	p, err := New(FakeRules())
	require.NoError(err)

	{ // mismatched ids
		err := p.CloseDraw(inter.Draw{ID: 2, Time: 1000}, testSettings(1))
		require.True(errors.Is(err, inter.ErrSequence))
		require.Equal(0, p.Settings.Count())
		require.Equal(0, p.Draws.Count())
	}
	{ // rejected settings record nothing
		s := testSettings(1)
		s.BitRangeSize = 0
		err := p.CloseDraw(inter.Draw{ID: 1, Time: 1000}, s)
		require.True(errors.Is(err, inter.ErrConfiguration))
		require.Equal(0, p.Draws.Count())
	}

	require.NoError(p.CloseDraw(inter.Draw{ID: 1, Time: 1000}, testSettings(1)))
	require.Equal(1, p.Settings.Count())
	require.Equal(1, p.Draws.Count())

	{ // a regressing close time records nothing and leaves no wedged settings
		err := p.CloseDraw(inter.Draw{ID: 2, Time: 500}, testSettings(2))
		require.True(errors.Is(err, inter.ErrSequence))
		require.Equal(1, p.Settings.Count())
		require.Equal(1, p.Draws.Count())
		_, err = p.Settings.GetByDrawID(2)
		require.True(errors.Is(err, inter.ErrRange))
	}
	{ // a stale id records nothing either
		err := p.CloseDraw(inter.Draw{ID: 1, Time: 1500}, testSettings(1))
		require.True(errors.Is(err, inter.ErrSequence))
		require.Equal(1, p.Settings.Count())
	}

	// a corrected close for the same id still goes through
	require.NoError(p.CloseDraw(inter.Draw{ID: 2, Time: 1500}, testSettings(2)))
	require.Equal(2, p.Settings.Count())
	require.Equal(2, p.Draws.Count())
}

// TestPoolEndToEnd drives a whole round through the facade: checkpoints, a
// draw close and a winning claim.
func TestPoolEndToEnd(t *testing.T) {
	require := require.New(t)
	p, err := New(FakeRules())
	require.NoError(err)

	user := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	seed := common.HexToHash("0x01")

	require.NoError(p.Checkpoint(user, big.NewInt(10), 1000))
	require.NoError(p.CheckpointSupply(big.NewInt(100), 1000))

	winning := draw.PickRandom(seed, 1)
	d := inter.Draw{
		ID:            1,
		Time:          2000,
		WinningRandom: common.BytesToHash(common.LeftPadBytes(winning.Bytes(), 32)),
	}
	require.NoError(p.CloseDraw(d, testSettings(1)))

	results, err := p.Calculate(user, seed, []inter.DrawID{1}, [][]uint64{{1}}, 2500)
	require.NoError(err)
	require.Len(results, 1)
	require.Equal(uint64(1000), results[0].UserPicks)
	require.Equal(int64(800), results[0].Payout.Int64())

	// the profile handed back is isolated from the pool's own copy
	r := p.Rules()
	r.PickScale.SetInt64(1)
	again, err := p.Calculate(user, seed, []inter.DrawID{1}, [][]uint64{{1}}, 2500)
	require.NoError(err)
	require.Equal(int64(800), again[0].Payout.Int64())
}
