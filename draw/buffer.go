// Package draw holds the per-draw state and the prize computation: the
// registry of draw settings, the ledger of closed draws, the bit-range tier
// matcher and the claim calculator.
package draw

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/inter"
)

// SettingsBuffer is a bounded registry of validated draw settings, ordered
// by strictly increasing draw id. Once full, each accepted push evicts the
// oldest entry. Rejected settings are never stored; the only permitted
// correction is overwriting the newest entry in place.
type SettingsBuffer struct {
	mu        sync.RWMutex
	slots     []inter.DrawSettings
	nextIndex int
	count     int
}

// NewSettingsBuffer allocates a registry retaining up to capacity entries.
func NewSettingsBuffer(capacity int) *SettingsBuffer {
	if capacity <= 0 {
		panic("draw: buffer capacity must be positive")
	}
	return &SettingsBuffer{
		slots: make([]inter.DrawSettings, capacity),
	}
}

// Capacity returns the fixed slot count.
func (b *SettingsBuffer) Capacity() int {
	return len(b.slots)
}

// Count returns the number of retained entries, at most Capacity.
func (b *SettingsBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

func (b *SettingsBuffer) at(logical int) inter.DrawSettings {
	start := (b.nextIndex - b.count + len(b.slots)) % len(b.slots)
	return b.slots[(start+logical)%len(b.slots)]
}

// Push validates and inserts new settings. The draw id must strictly exceed
// the newest stored id; gaps are allowed.
func (b *SettingsBuffer) Push(s inter.DrawSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count > 0 {
		newest := b.at(b.count - 1)
		if s.DrawID <= newest.DrawID {
			return errors.Wrapf(inter.ErrSequence, "draw id %d not above newest %d", s.DrawID, newest.DrawID)
		}
	}
	b.slots[b.nextIndex] = s.Copy()
	b.nextIndex = (b.nextIndex + 1) % len(b.slots)
	if b.count < len(b.slots) {
		b.count++
	}
	return nil
}

// ReplaceNewest overwrites the newest entry in place. The id must equal the
// current newest id and the settings must validate; older entries are
// immutable.
func (b *SettingsBuffer) ReplaceNewest(s inter.DrawSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return errors.Wrap(inter.ErrRange, "empty settings registry")
	}
	newestIdx := (b.nextIndex - 1 + len(b.slots)) % len(b.slots)
	if s.DrawID != b.slots[newestIdx].DrawID {
		return errors.Wrapf(inter.ErrRange, "draw id %d is not the newest %d", s.DrawID, b.slots[newestIdx].DrawID)
	}
	b.slots[newestIdx] = s.Copy()
	return nil
}

// GetByDrawID returns the settings stored for id. ErrRange when id falls
// outside the retained window or was never pushed.
func (b *SettingsBuffer) GetByDrawID(id inter.DrawID) (inter.DrawSettings, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return inter.DrawSettings{}, errors.Wrapf(inter.ErrRange, "draw %d: empty settings registry", id)
	}
	if id < b.at(0).DrawID || id > b.at(b.count-1).DrawID {
		return inter.DrawSettings{}, errors.Wrapf(inter.ErrRange, "draw %d outside retained window [%d, %d]",
			id, b.at(0).DrawID, b.at(b.count-1).DrawID)
	}

	lo, hi := 0, b.count-1
	for lo < hi {
		mid := (lo + hi) / 2
		if b.at(mid).DrawID < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if got := b.at(lo); got.DrawID == id {
		return got.Copy(), nil
	}
	return inter.DrawSettings{}, errors.Wrapf(inter.ErrRange, "draw %d was never registered", id)
}

// Newest returns the most recent entry. ok is false when empty.
func (b *SettingsBuffer) Newest() (s inter.DrawSettings, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return inter.DrawSettings{}, false
	}
	return b.at(b.count - 1).Copy(), true
}
