package cser

import (
	"errors"
	"math/big"

	"github.com/rony4d/go-prize-pool/utils/bits"
	"github.com/rony4d/go-prize-pool/utils/fast"
)

// Encoding validation errors.
var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding: data not packed minimally or unused bits non-zero")
	ErrMalformedEncoding    = errors.New("malformed encoding: structure invalid or truncated")
	ErrTooLargeAlloc        = errors.New("too large allocation: decoded size exceeds limits")
)

// MaxAlloc caps decoded byte-slice sizes to keep a corrupted snapshot from
// forcing a huge allocation.
const MaxAlloc = 100 * 1024

// Writer emits values into the two split streams.
type Writer struct {
	BitsW  *bits.Writer // booleans and length selectors
	BytesW *fast.Writer // raw value bytes
}

// Reader consumes values from the two split streams.
type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

// NewWriter creates a ready-to-use canonical writer.
func NewWriter() *Writer {
	bbits := &bits.Array{Bytes: make([]byte, 0, 32)}
	bbytes := make([]byte, 0, 200)
	return &Writer{
		BitsW:  bits.NewWriter(bbits),
		BytesW: fast.NewWriter(bbytes),
	}
}

// writeUint64Compact emits a varint with inverted continuation logic: the
// high bit set means STOP. Used only for the blob's length suffix, where the
// reversed byte order makes backwards decoding terminate on the marker.
func writeUint64Compact(bytesW *fast.Writer, v uint64) {
	for i := 0; ; i++ {
		chunk := v & 0b01111111
		v = v >> 7
		if v == 0 {
			chunk |= 0b10000000
		}
		bytesW.WriteByte(byte(chunk))
		if v == 0 {
			break
		}
	}
	return
}

// readUint64Compact decodes the STOP-marker varint, rejecting padded forms.
func readUint64Compact(bytesR *fast.Reader) uint64 {
	v := uint64(0)
	stop := false
	for i := 0; !stop; i++ {
		chunk := uint64(bytesR.ReadByte())
		stop = (chunk & 0b10000000) != 0
		word := chunk & 0b01111111
		v |= word << (i * 7)

		// a trailing zero data byte means the value was padded
		if i > 0 && stop && word == 0 {
			panic(ErrNonCanonicalEncoding)
		}
	}
	return v
}

// writeUint64BitCompact writes v little-endian using the fewest bytes that
// hold it, but at least minSize. Returns the byte count written.
func writeUint64BitCompact(bytesW *fast.Writer, v uint64, minSize int) (size int) {
	for size < minSize || v != 0 {
		bytesW.WriteByte(byte(v))
		size++
		v = v >> 8
	}
	return
}

// readUint64BitCompact reads `size` little-endian bytes, rejecting encodings
// whose most significant byte is a zero pad.
func readUint64BitCompact(bytesR *fast.Reader, size int) uint64 {
	var (
		v    uint64
		last byte
	)
	buf := bytesR.Read(size)
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
		last = b
	}

	if size > 1 && last == 0 {
		panic(ErrNonCanonicalEncoding)
	}

	return v
}

// readU64_bits reads a length selector (bitsForSize bits) from the bit
// stream, then that many bytes beyond minSize from the byte stream.
func (r *Reader) readU64_bits(minSize int, bitsForSize int) uint64 {
	size := r.BitsR.Read(bitsForSize)
	size += uint(minSize)
	return readUint64BitCompact(r.BytesR, int(size))
}

// writeU64_bits writes the value bytes, then the length selector.
func (w *Writer) writeU64_bits(minSize int, bitsForSize int, v uint64) {
	size := writeUint64BitCompact(w.BytesW, v, minSize)
	w.BitsW.Write(bitsForSize, uint(size-minSize))
}

// U8 writes one raw byte; no length selector needed.
func (w *Writer) U8(v uint8) {
	w.BytesW.WriteByte(v)
}
func (r *Reader) U8() uint8 {
	return r.BytesR.ReadByte()
}

// U16 uses a 1-bit selector: 1 or 2 value bytes.
func (w *Writer) U16(v uint16) {
	w.writeU64_bits(1, 1, uint64(v))
}
func (r *Reader) U16() uint16 {
	v64 := r.readU64_bits(1, 1)
	return uint16(v64)
}

// U32 uses a 2-bit selector: 1..4 value bytes.
func (w *Writer) U32(v uint32) {
	w.writeU64_bits(1, 2, uint64(v))
}
func (r *Reader) U32() uint32 {
	v64 := r.readU64_bits(1, 2)
	return uint32(v64)
}

// U64 uses a 3-bit selector: 1..8 value bytes.
func (w *Writer) U64(v uint64) {
	w.writeU64_bits(1, 3, v)
}
func (r *Reader) U64() uint64 {
	return r.readU64_bits(1, 3)
}

// VarUint aliases the U64 encoding; used for counts and map sizes.
func (r *Reader) VarUint() uint64 {
	return r.readU64_bits(1, 3)
}
func (w *Writer) VarUint(v uint64) {
	w.writeU64_bits(1, 3, v)
}

// I64 writes a sign bit to the bit stream and the magnitude as U64.
func (w *Writer) I64(v int64) {
	w.Bool(v < 0)
	if v < 0 {
		w.U64(uint64(-v))
	} else {
		w.U64(uint64(v))
	}
}
func (r *Reader) I64() int64 {
	neg := r.Bool()
	abs := r.U64()

	// negative zero is non-canonical
	if neg && abs == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	if neg {
		return -int64(abs)
	}
	return int64(abs)
}

// U56 encodes slice lengths: 0..7 value bytes behind a 3-bit selector.
func (w *Writer) U56(v uint64) {
	const max = 1<<(8*7) - 1
	if v > max {
		panic("Value too big")
	}
	w.writeU64_bits(0, 3, v)
}
func (r *Reader) U56() uint64 {
	return r.readU64_bits(0, 3)
}

// Bool writes a single bit.
func (w *Writer) Bool(v bool) {
	u8 := uint(0)
	if v {
		u8 = 1
	}
	w.BitsW.Write(1, u8)
}
func (r *Reader) Bool() bool {
	u8 := r.BitsR.Read(1)
	return u8 != 0
}

// FixedBytes reads/writes a fixed-length run of raw bytes.
func (w *Writer) FixedBytes(v []byte) {
	w.BytesW.Write(v)
}
func (r *Reader) FixedBytes(v []byte) {
	buf := r.BytesR.Read(len(v))
	copy(v, buf)
}

// SliceBytes writes [length as U56][raw bytes].
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}
func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}

// U32Slice writes [count as U56][each item as U32]. Used for tier
// distribution lists.
func (w *Writer) U32Slice(v []uint32) {
	w.U56(uint64(len(v)))
	for _, item := range v {
		w.U32(item)
	}
}
func (r *Reader) U32Slice(maxLen int) []uint32 {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]uint32, size)
	for i := range buf {
		buf[i] = r.U32()
	}
	return buf
}

// PaddedBytes left-pads b with zeroes up to n bytes.
func PaddedBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	padding := make([]byte, n-len(b))
	return append(padding, b...)
}

// BigInt writes a non-negative big integer as its big-endian magnitude
// behind a U56 length. Ledger amounts are always non-negative, so no sign
// is carried.
func (w *Writer) BigInt(v *big.Int) {
	bigBytes := []byte{}
	if v.Sign() != 0 {
		bigBytes = v.Bytes()
	}
	w.SliceBytes(bigBytes)
}

func (r *Reader) BigInt() *big.Int {
	buf := r.SliceBytes(512)
	if len(buf) == 0 {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(buf)
}
