package cser

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-prize-pool/utils/bits"
	"github.com/rony4d/go-prize-pool/utils/fast"
)

// newReaderFromWriter connects a Reader directly to a Writer's streams,
// bypassing the blob framing of binary.go.
func newReaderFromWriter(w *Writer) *Reader {
	return &Reader{
		BitsR:  bits.NewReader(w.BitsW.Array),
		BytesR: fast.NewReader(w.BytesW.Bytes()),
	}
}

// TestIntegersRoundTrip round-trips every integer primitive across zero,
// one-byte, and max-width values.
func TestIntegersRoundTrip(t *testing.T) {
	w := NewWriter()

	u8Vals := []uint8{0, 1, 0xFF}
	u16Vals := []uint16{0, 1, 0xFF, 0xFFFF}
	u32Vals := []uint32{0, 1, 0xFFFF, 0xFFFFFFFF}
	u64Vals := []uint64{0, 1, 0xFFFF, 0xFFFFFFFF, 0xFFFFFFFFFFFFFFFF}
	i64Vals := []int64{0, 1, -1, math.MinInt64, math.MaxInt64}
	u56Vals := []uint64{0, 1, (1 << 56) - 1}

	for _, v := range u8Vals {
		w.U8(v)
	}
	for _, v := range u16Vals {
		w.U16(v)
	}
	for _, v := range u32Vals {
		w.U32(v)
	}
	for _, v := range u64Vals {
		w.U64(v)
	}
	for _, v := range u64Vals {
		w.VarUint(v)
	}
	for _, v := range i64Vals {
		w.I64(v)
	}
	for _, v := range u56Vals {
		w.U56(v)
	}

	r := newReaderFromWriter(w)

	for i, want := range u8Vals {
		assert.Equal(t, want, r.U8(), "U8 mismatch at index %d", i)
	}
	for i, want := range u16Vals {
		assert.Equal(t, want, r.U16(), "U16 mismatch at index %d", i)
	}
	for i, want := range u32Vals {
		assert.Equal(t, want, r.U32(), "U32 mismatch at index %d", i)
	}
	for i, want := range u64Vals {
		assert.Equal(t, want, r.U64(), "U64 mismatch at index %d", i)
	}
	for i, want := range u64Vals {
		assert.Equal(t, want, r.VarUint(), "VarUint mismatch at index %d", i)
	}
	for i, want := range i64Vals {
		assert.Equal(t, want, r.I64(), "I64 mismatch at index %d", i)
	}
	for i, want := range u56Vals {
		assert.Equal(t, want, r.U56(), "U56 mismatch at index %d", i)
	}

	assert.True(t, r.BytesR.Empty(), "Bytes buffer should be empty after reading all values")

	// only zero padding bits may remain in the bit stream
	remainingBits := r.BitsR.NonReadBits()
	assert.Less(t, remainingBits, 8, "Remaining bits should be padding only")
	if remainingBits > 0 {
		val := r.BitsR.Read(remainingBits)
		assert.Equal(t, uint(0), val, "Padding bits must be zero")
	}
}

// TestBoolRoundTrip round-trips a boolean sequence.
func TestBoolRoundTrip(t *testing.T) {
	w := NewWriter()
	vals := []bool{true, false, true, true, false}

	for _, v := range vals {
		w.Bool(v)
	}

	r := newReaderFromWriter(w)
	for i, want := range vals {
		assert.Equal(t, want, r.Bool(), "Bool index %d", i)
	}
}

// TestBytesRoundTrip round-trips FixedBytes and SliceBytes, including the
// empty slice.
func TestBytesRoundTrip(t *testing.T) {
	w := NewWriter()

	fixed1 := []byte{1, 2, 3}
	fixed2 := []byte{4, 5}
	slice1 := []byte{6, 7, 8, 9}
	slice2 := []byte{}

	w.FixedBytes(fixed1)
	w.FixedBytes(fixed2)
	w.SliceBytes(slice1)
	w.SliceBytes(slice2)

	r := newReaderFromWriter(w)

	buf1 := make([]byte, len(fixed1))
	r.FixedBytes(buf1)
	assert.Equal(t, fixed1, buf1)

	buf2 := make([]byte, len(fixed2))
	r.FixedBytes(buf2)
	assert.Equal(t, fixed2, buf2)

	gotSlice1 := r.SliceBytes(100)
	assert.Equal(t, slice1, gotSlice1)

	gotSlice2 := r.SliceBytes(100)
	assert.Equal(t, slice2, gotSlice2)
}

// TestU32SliceRoundTrip round-trips distribution-style uint32 lists and
// checks the allocation cap.
func TestU32SliceRoundTrip(t *testing.T) {
	w := NewWriter()

	empty := []uint32{}
	tiers := []uint32{800000000, 200000000, 0, 1}

	w.U32Slice(empty)
	w.U32Slice(tiers)

	r := newReaderFromWriter(w)
	assert.Equal(t, empty, r.U32Slice(16))
	assert.Equal(t, tiers, r.U32Slice(16))

	// a list longer than the cap must panic with ErrTooLargeAlloc
	w2 := NewWriter()
	w2.U32Slice(tiers)
	r2 := newReaderFromWriter(w2)
	assert.PanicsWithError(t, ErrTooLargeAlloc.Error(), func() {
		r2.U32Slice(len(tiers) - 1)
	})
}

// TestBigIntRoundTrip verifies magnitude encoding of big integers. The codec
// stores no sign: ledger amounts are non-negative by construction.
func TestBigIntRoundTrip(t *testing.T) {
	w := NewWriter()
	vals := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(123456789),
		new(big.Int).Lsh(big.NewInt(1), 223),
	}

	for _, v := range vals {
		w.BigInt(v)
	}

	r := newReaderFromWriter(w)
	for i, v := range vals {
		got := r.BigInt()
		assert.Equal(t, v, got, "BigInt index %d", i)
	}
}

// TestPaddedBytes verifies the left-padding helper.
func TestPaddedBytes(t *testing.T) {
	tests := []struct {
		in       []byte
		n        int
		expected []byte
	}{
		{[]byte{1}, 2, []byte{0, 1}},
		{[]byte{1, 2}, 2, []byte{1, 2}},
		{[]byte{1, 2, 3}, 2, []byte{1, 2, 3}},
		{[]byte{}, 3, []byte{0, 0, 0}},
	}

	for i, tc := range tests {
		got := PaddedBytes(tc.in, tc.n)
		assert.Equal(t, tc.expected, got, "Case %d", i)
	}
}

// TestSliceBytesAllocLimit verifies SliceBytes enforces its maxLen argument.
func TestSliceBytesAllocLimit(t *testing.T) {
	w := NewWriter()
	data := make([]byte, 100)
	w.SliceBytes(data)

	r := newReaderFromWriter(w)

	assert.PanicsWithError(t, ErrTooLargeAlloc.Error(), func() {
		r.SliceBytes(50)
	})
}

// TestU56Overflow verifies oversize U56 writes panic.
func TestU56Overflow(t *testing.T) {
	w := NewWriter()
	assert.Panics(t, func() {
		w.U56(1 << 56)
	})
}

// TestCompactEncodingStructure inspects raw stream bytes to pin the compact
// layout: small values occupy one byte, and the length selector in the bit
// stream reflects the extra bytes used.
func TestCompactEncodingStructure(t *testing.T) {
	w := NewWriter()
	w.U64(0)
	require.Equal(t, []byte{0}, w.BytesW.Bytes())

	w = NewWriter()
	w.U64(256)
	require.Equal(t, []byte{0, 1}, w.BytesW.Bytes())

	r := newReaderFromWriter(w)
	sizeOffset := r.BitsR.Read(3)
	assert.Equal(t, uint(1), sizeOffset, "Size offset for 256 should be 1 (total 2 bytes)")
}
