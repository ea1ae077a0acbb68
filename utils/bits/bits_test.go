package bits

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testWord is one value to round-trip: v written as a `bits`-wide word.
type testWord struct {
	bits int
	v    uint
}

// bytesToFit returns the minimum number of bytes holding the given bit count.
func bytesToFit(bits int) int {
	if bits%8 == 0 {
		return bits / 8
	}
	return bits/8 + 1
}

// genTestWords produces a random word sequence, each word 1..maxBits wide
// with a value fitting its width.
func genTestWords(r *rand.Rand, maxCount int, maxBits int) []testWord {
	count := r.Intn(maxCount)
	words := make([]testWord, count)
	for i := range words {
		if maxBits == 1 {
			words[i].bits = 1
		} else {
			words[i].bits = 1 + r.Intn(maxBits-1)
		}
		words[i].v = uint(r.Intn(1 << words[i].bits))
	}
	return words
}

// testBitArray writes all words, checks the backing array length, reads the
// words back, and verifies cursor bookkeeping plus EOF behavior.
func testBitArray(t *testing.T, words []testWord, name string) {
	arr := Array{make([]byte, 0, 100)}
	writer := NewWriter(&arr)
	reader := NewReader(&arr)

	totalBitsWritten := 0
	for _, w := range words {
		writer.Write(w.bits, w.v)
		totalBitsWritten += w.bits
	}

	expectedBytes := bytesToFit(totalBitsWritten)
	assert.EqualValuesf(t, expectedBytes, len(arr.Bytes), "%s: byte length mismatch", name)

	totalBitsRead := 0
	for _, w := range words {
		remainingBits := bytesToFit(totalBitsWritten)*8 - totalBitsRead
		assert.EqualValuesf(t, remainingBits, reader.NonReadBits(), "%s: NonReadBits mismatch before read", name)
		assert.EqualValuesf(t, bytesToFit(reader.NonReadBits()), reader.NonReadBytes(), "%s: NonReadBytes mismatch before read", name)

		v := reader.Read(w.bits)
		assert.EqualValuesf(t, w.v, v, "%s: read value mismatch", name)
		totalBitsRead += w.bits

		remainingBitsAfter := bytesToFit(totalBitsWritten)*8 - totalBitsRead
		assert.EqualValuesf(t, remainingBitsAfter, reader.NonReadBits(), "%s: NonReadBits mismatch after read", name)
		assert.EqualValuesf(t, bytesToFit(reader.NonReadBits()), reader.NonReadBytes(), "%s: NonReadBytes mismatch after read", name)
	}

	// reading past EOF must panic
	assert.Panicsf(t, func() {
		reader.Read(reader.NonReadBits() + 1)
	}, "%s: should panic when reading past EOF", name)

	// trailing padding bits of the last byte must be zero
	zero := reader.Read(reader.NonReadBits())
	assert.EqualValuesf(t, uint(0), zero, "%s: padding bits must be zero", name)

	assert.EqualValuesf(t, int(0), reader.NonReadBits(), "%s: should have 0 bits left", name)
	assert.EqualValuesf(t, int(0), reader.NonReadBytes(), "%s: should have 0 bytes left", name)
}

// TestBitArrayEmpty verifies an empty word set produces an empty array.
func TestBitArrayEmpty(t *testing.T) {
	testBitArray(t, []testWord{}, "empty")
}

// TestBitArrayB0 round-trips a single 0 bit.
func TestBitArrayB0(t *testing.T) {
	testBitArray(t, []testWord{
		{1, 0b0},
	}, "b0")
}

// TestBitArrayB1 round-trips a single 1 bit.
func TestBitArrayB1(t *testing.T) {
	testBitArray(t, []testWord{
		{1, 0b1},
	}, "b1")
}

// TestBitArrayPattern01 round-trips a 9-bit word crossing one byte boundary.
func TestBitArrayPattern01(t *testing.T) {
	testBitArray(t, []testWord{
		{9, 0b010101010},
	}, "b010101010")
}

// TestBitArrayPatternLong round-trips a 17-bit word crossing two boundaries.
func TestBitArrayPatternLong(t *testing.T) {
	testBitArray(t, []testWord{
		{17, 0b01010101010101010},
	}, "b01010101010101010")
}

// TestBitArrayRand1 streams random booleans.
func TestBitArrayRand1(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 50; i++ {
		testBitArray(t, genTestWords(r, 24, 1), fmt.Sprintf("1 bit, case#%d", i))
	}
}

// TestBitArrayRand8 mixes aligned and unaligned words up to 8 bits.
func TestBitArrayRand8(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 50; i++ {
		testBitArray(t, genTestWords(r, 100, 8), fmt.Sprintf("8 bits, case#%d", i))
	}
}

// TestBitArrayRand17 mixes words wider than one byte.
func TestBitArrayRand17(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 50; i++ {
		testBitArray(t, genTestWords(r, 50, 17), fmt.Sprintf("17 bits, case#%d", i))
	}
}

// TestBitArrayView ensures View peeks without advancing the cursor.
func TestBitArrayView(t *testing.T) {
	arr := Array{make([]byte, 0, 10)}
	writer := NewWriter(&arr)
	reader := NewReader(&arr)

	val1 := uint(0xAA)
	val2 := uint(0x55)
	writer.Write(8, val1)
	writer.Write(8, val2)

	viewVal1 := reader.View(8)
	assert.EqualValues(t, val1, viewVal1, "View() should return correct value")
	assert.Equal(t, 16, reader.NonReadBits(), "View() should not consume bits")

	readVal1 := reader.Read(8)
	assert.EqualValues(t, val1, readVal1, "Read() should match View() value")
	assert.Equal(t, 8, reader.NonReadBits(), "Read() should consume bits")

	viewVal2 := reader.View(8)
	assert.EqualValues(t, val2, viewVal2, "View() should return next value")

	readVal2 := reader.Read(8)
	assert.EqualValues(t, val2, readVal2, "Read() should match View() value")
}

// TestBitArrayBoundaries targets byte-boundary crossings explicitly.
func TestBitArrayBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		words []testWord
	}{
		{
			name:  "Aligned byte",
			words: []testWord{{8, 0xFF}},
		},
		{
			name:  "Byte + 4 bits",
			words: []testWord{{8, 0xFF}, {4, 0xA}},
		},
		{
			name:  "4 bits + byte",
			words: []testWord{{4, 0xA}, {8, 0xFF}},
		},
		{
			name:  "Exact 16 bits",
			words: []testWord{{16, 0xFFFF}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testBitArray(t, tc.words, tc.name)
		})
	}
}

func BenchmarkArray_write(b *testing.B) {
	for bits := 1; bits <= 9; bits++ {
		b.Run(fmt.Sprintf("%d bits", bits), func(b *testing.B) {
			b.ResetTimer()

			arr := Array{make([]byte, 0, bytesToFit(bits*b.N))}
			writer := NewWriter(&arr)

			for i := 0; i < b.N; i++ {
				writer.Write(bits, 0xff)
			}
		})
	}
}

func BenchmarkArray_read(b *testing.B) {
	for bits := 1; bits <= 9; bits++ {
		b.Run(fmt.Sprintf("%d bits", bits), func(b *testing.B) {
			b.ResetTimer()

			arr := Array{make([]byte, bytesToFit(bits*b.N))}
			reader := NewReader(&arr)

			for i := 0; i < b.N; i++ {
				_ = reader.Read(bits)
			}
		})
	}
}
