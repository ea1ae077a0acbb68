package cser

import (
	"github.com/rony4d/go-prize-pool/utils/bits"
	"github.com/rony4d/go-prize-pool/utils/fast"
)

// Package cser implements the canonical serialization format used for ledger
// snapshots and buffer persistence. Values split across two streams: raw
// bytes go to a byte stream, while booleans and the byte-length selectors of
// compact integers go to a separate bit stream. The two streams are packed
// into one blob:
//
//	[ body bytes ] [ bit-stream bytes ] [ reversed varint(len(bit-stream)) ]
//
// The length suffix is written reversed so a reader can decode it by
// scanning backwards from the end of the blob.
//
// The format is canonical: every value has exactly one valid encoding, and
// decoding rejects padded integers, unconsumed trailing data and non-zero
// unused bits. Canonicality is what makes snapshot digests stable: equal
// ledger state always produces byte-identical snapshots.

// MarshalBinaryAdapter runs the given serialization callback against a fresh
// Writer and packs both streams into a single blob.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()

	err := marshalCser(w)
	if err != nil {
		return nil, err
	}

	return binaryFromCSER(w.BitsW.Array, w.BytesW.Bytes())
}

// binaryFromCSER packs the body bytes and the bit stream into the wire
// layout described above.
func binaryFromCSER(bbits *bits.Array, bbytes []byte) (raw []byte, err error) {
	bodyBytes := fast.NewWriter(bbytes)
	bodyBytes.Write(bbits.Bytes)

	// length suffix, reversed for backwards decoding
	sizeWriter := fast.NewWriter(make([]byte, 0, 4))
	writeUint64Compact(sizeWriter, uint64(len(bbits.Bytes)))
	bodyBytes.Write(reversed(sizeWriter.Bytes()))

	return bodyBytes.Bytes(), nil
}

// binaryToCSER splits a blob back into its bit stream and body bytes.
func binaryToCSER(raw []byte) (bbits *bits.Array, bbytes []byte, err error) {
	// decode the reversed length suffix (a 64-bit varint spans at most 9 bytes)
	bitsSizeBuf := reversed(tail(raw, 9))
	bitsSizeReader := fast.NewReader(bitsSizeBuf)
	bitsSize := readUint64Compact(bitsSizeReader)

	raw = raw[:len(raw)-bitsSizeReader.Position()]
	if uint64(len(raw)) < bitsSize {
		err = ErrMalformedEncoding
		return
	}

	bbits = &bits.Array{Bytes: raw[uint64(len(raw))-bitsSize:]}
	bbytes = raw[:uint64(len(raw))-bitsSize]
	return
}

// UnmarshalBinaryAdapter splits the blob, runs the given deserialization
// callback, and enforces full canonical consumption of both streams.
// Cursor overruns inside the callback surface as ErrMalformedEncoding.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(reader *Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrMalformedEncoding
		}
	}()

	bbits, bbytes, err := binaryToCSER(raw)
	if err != nil {
		return err
	}

	bodyReader := &Reader{
		BitsR:  bits.NewReader(bbits),
		BytesR: fast.NewReader(bbytes),
	}

	err = unmarshalCser(bodyReader)
	if err != nil {
		return err
	}

	// strict mode: everything must be consumed, unused trailing bits must be zero
	if bodyReader.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	tail := bodyReader.BitsR.Read(bodyReader.BitsR.NonReadBits())
	if tail != 0 {
		return ErrNonCanonicalEncoding
	}
	if !bodyReader.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}

	return nil
}

// tail returns the last `cap` bytes of b, or all of b when shorter.
func tail(b []byte, cap int) []byte {
	if len(b) > cap {
		return b[len(b)-cap:]
	}
	return b
}

// reversed returns a new slice with the bytes of b in reverse order.
func reversed(b []byte) []byte {
	reversed := make([]byte, len(b))
	for i, v := range b {
		reversed[len(b)-1-i] = v
	}
	return reversed
}
