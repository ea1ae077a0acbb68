package twab

import (
	"bytes"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/inter"
	"github.com/rony4d/go-prize-pool/utils/cser"
)

// marshalRingCSER writes the ring's retained observations in logical order,
// oldest first.
func marshalRingCSER(r *Ring, w *cser.Writer) error {
	w.U32(uint32(r.count))
	for i := 0; i < r.count; i++ {
		o := r.at(i)
		if err := o.MarshalCSER(w); err != nil {
			return err
		}
	}
	return nil
}

// unmarshalRingCSER reads observations back into a fresh ring of the given
// capacity, enforcing strictly increasing timestamps and the amount cap.
func unmarshalRingCSER(capacity int, r *cser.Reader) (*Ring, error) {
	count := r.U32()
	if int(count) > capacity {
		return nil, errors.Wrapf(cser.ErrMalformedEncoding, "ring count %d exceeds capacity %d", count, capacity)
	}
	ring := NewRing(capacity)
	var prev inter.Timestamp
	for i := uint32(0); i < count; i++ {
		var o inter.Observation
		if err := o.UnmarshalCSER(r); err != nil {
			return nil, err
		}
		if err := o.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && o.Time <= prev {
			return nil, errors.Wrapf(inter.ErrSequence, "snapshot observation %d time %d not after %d", i, o.Time, prev)
		}
		prev = o.Time
		ring.push(o)
	}
	return ring, nil
}

// MarshalCSER encodes the full ledger: capacity, the supply ring, then the
// account rings ordered by address bytes so equal ledgers produce equal
// snapshots.
func (h *History) MarshalCSER(w *cser.Writer) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.marshalCSER(w)
}

// marshalCSER is the body of MarshalCSER. The caller holds h.mu.
func (h *History) marshalCSER(w *cser.Writer) error {
	w.U32(uint32(h.capacity))

	h.supply.mu.RLock()
	err := marshalRingCSER(h.supply.ring, w)
	h.supply.mu.RUnlock()
	if err != nil {
		return err
	}

	ids := make([]common.Address, 0, len(h.accounts))
	for id := range h.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	w.U56(uint64(len(ids)))
	for _, id := range ids {
		w.FixedBytes(id[:])
		acc := h.accounts[id]
		acc.mu.RLock()
		err := marshalRingCSER(acc.ring, w)
		acc.mu.RUnlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalCSER decodes a snapshot, replacing all retained history. The
// capacity travels with the snapshot; the boundary convention is runtime
// configuration and is kept as-is.
func (h *History) UnmarshalCSER(r *cser.Reader) error {
	capacity := int(r.U32())
	if capacity == 0 {
		return errors.Wrap(cser.ErrMalformedEncoding, "zero snapshot capacity")
	}

	supply, err := unmarshalRingCSER(capacity, r)
	if err != nil {
		return err
	}

	n := r.U56()
	if n > uint64(cser.MaxAlloc) {
		return cser.ErrTooLargeAlloc
	}
	accounts := make(map[common.Address]*accountHistory, n)
	var prev common.Address
	for i := uint64(0); i < n; i++ {
		var id common.Address
		r.FixedBytes(id[:])
		if i > 0 && bytes.Compare(id[:], prev[:]) <= 0 {
			return errors.Wrap(cser.ErrNonCanonicalEncoding, "snapshot accounts out of order")
		}
		prev = id
		ring, err := unmarshalRingCSER(capacity, r)
		if err != nil {
			return err
		}
		accounts[id] = &accountHistory{ring: ring}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.capacity = capacity
	h.supply = &accountHistory{ring: supply}
	h.accounts = accounts
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler over the CSER form.
func (h *History) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(h.MarshalCSER)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler over the CSER form.
func (h *History) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, h.UnmarshalCSER)
}

// Hash returns the snapshot digest: keccak256 over the capacity in
// canonical byte order followed by the serialized ledger. Two ledgers with
// identical retained history hash identically.
func (h *History) Hash() (common.Hash, error) {
	// Capacity and ledger content are read under one lock so a concurrent
	// snapshot restore cannot split the digest across two states.
	h.mu.RLock()
	defer h.mu.RUnlock()
	capacity := uint32(h.capacity)
	b, err := cser.MarshalBinaryAdapter(h.marshalCSER)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(bigendian.Uint32ToBytes(capacity), b), nil
}
