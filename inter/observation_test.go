package inter

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-prize-pool/utils/cser"
)

// TestObservationValidate covers the 224-bit amount cap.
func TestObservationValidate(t *testing.T) {
	require := require.New(t)

	require.NoError(NewObservation(big.NewInt(0), 1).Validate())
	require.NoError(NewObservation(MaxAmount, 1).Validate())

	over := Observation{Amount: new(big.Int).Add(MaxAmount, big.NewInt(1)), Time: 1}
	require.True(errors.Is(over.Validate(), ErrOverflow))

	neg := Observation{Amount: big.NewInt(-1), Time: 1}
	require.True(errors.Is(neg.Validate(), ErrOverflow))

	require.True(errors.Is(Observation{}.Validate(), ErrOverflow))
}

// TestObservationDeepCopy checks that stored amounts are isolated from the
// caller's big.Int.
func TestObservationDeepCopy(t *testing.T) {
	require := require.New(t)

	amount := big.NewInt(100)
	o := NewObservation(amount, 5)
	amount.SetInt64(0)

	require.Equal(int64(100), o.Amount.Int64())
}

// TestObservationCSER round-trips the canonical encoding.
func TestObservationCSER(t *testing.T) {
	require := require.New(t)

	for _, o := range []Observation{
		NewObservation(big.NewInt(0), 0),
		NewObservation(big.NewInt(123456789), 1600000000),
		NewObservation(MaxAmount, ^Timestamp(0)),
	} {
		raw, err := cser.MarshalBinaryAdapter(o.MarshalCSER)
		require.NoError(err)

		var got Observation
		require.NoError(cser.UnmarshalBinaryAdapter(raw, got.UnmarshalCSER))
		require.Equal(o.String(), got.String())
	}
}

// TestTimestamp covers the clock conversions and saturating arithmetic.
func TestTimestamp(t *testing.T) {
	require := require.New(t)

	at := time.Date(2021, 9, 1, 12, 0, 0, 500, time.UTC)
	ts := FromUnix(at)
	require.Equal(at.Unix(), ts.Time().Unix())
	require.True(ts.Time().Equal(at.Truncate(time.Second)))

	require.Equal(Timestamp(150), Timestamp(100).Add(50))
	require.Equal(Timestamp(50), Timestamp(100).SaturatingSub(50))
	require.Equal(Timestamp(0), Timestamp(100).SaturatingSub(100))
	require.Equal(Timestamp(0), Timestamp(100).SaturatingSub(500))
}
