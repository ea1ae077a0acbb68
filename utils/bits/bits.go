package bits

// Package bits implements a bit-granular stream over a byte slice. The
// canonical snapshot codec stores its side-channel data here: booleans as
// single bits and the byte-length selectors of compact integers as 1-3 bit
// words, instead of burning a whole byte on each.
//
// Bits are packed least-significant-first within each byte, so a Reader
// recovers words in exactly the order a Writer emitted them.

type (
	// Array is the backing byte slice of a bitstream.
	Array struct {
		Bytes []byte
	}

	// Writer appends words of 1-8+ bits to an Array.
	Writer struct {
		*Array
		bitOffset int // 0-7, next bit to write within the last byte
	}

	// Reader consumes words from an Array.
	Reader struct {
		*Array
		byteOffset int // current byte index
		bitOffset  int // 0-7, next bit to read within that byte
	}
)

// NewWriter creates a bitstream writer appending to arr.
func NewWriter(arr *Array) *Writer {
	return &Writer{
		Array: arr,
	}
}

// NewReader creates a bitstream reader consuming arr from the start.
func NewReader(arr *Array) *Reader {
	return &Reader{
		Array: arr,
	}
}

func (a *Writer) byteBitsFree() int {
	return 8 - a.bitOffset
}

// writeIntoLastByte merges the low bits of v into the current byte at the
// write cursor.
func (a *Writer) writeIntoLastByte(v uint) {
	a.Bytes[len(a.Bytes)-1] |= byte(v << a.bitOffset)
}

// zeroTopByteBits masks v down to its low (8 - bits) bits.
func zeroTopByteBits(v uint, bits int) uint {
	mask := uint(0xff) >> bits
	return v & mask
}

// Write appends the lowest `bits` bits of v to the stream.
func (a *Writer) Write(bits int, v uint) {
	if a.bitOffset == 0 {
		a.Bytes = append(a.Bytes, byte(0))
	}

	free := a.byteBitsFree()

	if bits <= free {
		// fits in the current byte
		toWrite := bits
		a.writeIntoLastByte(v)
		if toWrite == free {
			a.bitOffset = 0
		} else {
			a.bitOffset += toWrite
		}
	} else {
		// spills over: fill this byte, recurse for the rest
		toWrite := free
		clear := a.bitOffset

		a.writeIntoLastByte(zeroTopByteBits(v, clear))
		a.bitOffset = 0
		a.Write(bits-toWrite, v>>toWrite)
	}
}

func (a *Reader) byteBitsFree() int {
	return 8 - a.bitOffset
}

// Read consumes `bits` bits and returns them as an integer. Panics when the
// stream has fewer bits left.
func (a *Reader) Read(bits int) (v uint) {
	if bits == 0 {
		return 0
	}

	free := a.byteBitsFree()

	if bits <= free {
		toRead := bits
		// isolate [bitOffset, bitOffset+toRead) of the current byte
		clear := 8 - (a.bitOffset + toRead)
		v = zeroTopByteBits(uint(a.Bytes[a.byteOffset]), clear) >> a.bitOffset
		if toRead == free {
			a.bitOffset = 0
			a.byteOffset++
		} else {
			a.bitOffset += toRead
		}
	} else {
		// spans bytes: take the rest of this byte, recurse for the remainder
		toRead := free
		v = uint(a.Bytes[a.byteOffset]) >> a.bitOffset
		a.bitOffset = 0
		a.byteOffset++

		rest := a.Read(bits - toRead)
		v |= rest << toRead
	}
	return
}

// View returns the next `bits` bits without advancing the cursor.
func (a *Reader) View(bits int) (v uint) {
	cp := *a
	cpp := &cp
	return cpp.Read(bits)
}

// NonReadBytes returns the number of bytes not fully consumed yet.
func (a *Reader) NonReadBytes() int {
	return len(a.Bytes) - a.byteOffset
}

// NonReadBits returns the total number of unread bits.
func (a *Reader) NonReadBits() int {
	return a.NonReadBytes()*8 - a.bitOffset
}
