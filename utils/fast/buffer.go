package fast

// Package fast provides minimal byte-slice cursors used by the canonical
// snapshot codec. The Writer appends, the Reader advances an index; neither
// checks bounds. Overruns panic, which the codec's adapter translates into a
// malformed-encoding error, so only trusted length-prefixed snapshot data
// goes through these.

// Reader consumes a byte slice front to back.
type Reader struct {
	buf    []byte
	offset int
}

// Writer accumulates bytes by appending to a slice.
type Writer struct {
	buf []byte
}

// NewReader wraps the given slice for consumption.
func NewReader(bb []byte) *Reader {
	return &Reader{
		buf:    bb,
		offset: 0,
	}
}

// NewWriter wraps the given slice for appending. Callers usually pass
// make([]byte, 0, capacity) sized to the expected snapshot.
func NewWriter(bb []byte) *Writer {
	return &Writer{
		buf: bb,
	}
}

// WriteByte appends one byte.
func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

// Write appends a slice of bytes.
func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// Read consumes the next n bytes. The returned slice aliases the underlying
// buffer; callers copy before mutating. Panics past the end.
func (b *Reader) Read(n int) []byte {
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res
}

// ReadByte consumes one byte. Panics past the end.
func (b *Reader) ReadByte() byte {
	res := b.buf[b.offset]
	b.offset++
	return res
}

// Position returns how many bytes have been consumed.
func (b *Reader) Position() int {
	return b.offset
}

// Bytes returns the Reader's whole underlying buffer.
func (b *Reader) Bytes() []byte {
	return b.buf
}

// Bytes returns the accumulated content of the Writer.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// Empty reports whether the Reader has consumed everything.
func (b *Reader) Empty() bool {
	return len(b.buf) == b.offset
}
