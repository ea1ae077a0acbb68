package draw

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/rony4d/go-prize-pool/inter"
)

// Ledger is the bounded record of closed draws: the draw id, its close time
// and the externally supplied winning random. Push and correction rules
// mirror SettingsBuffer: strictly increasing ids, newest-only replacement,
// oldest entry evicted once full.
type Ledger struct {
	mu        sync.RWMutex
	slots     []inter.Draw
	nextIndex int
	count     int
}

// NewLedger allocates a ledger retaining up to capacity closed draws.
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		panic("draw: ledger capacity must be positive")
	}
	return &Ledger{
		slots: make([]inter.Draw, capacity),
	}
}

// Capacity returns the fixed slot count.
func (l *Ledger) Capacity() int {
	return len(l.slots)
}

// Count returns the number of retained draws, at most Capacity.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

func (l *Ledger) at(logical int) inter.Draw {
	start := (l.nextIndex - l.count + len(l.slots)) % len(l.slots)
	return l.slots[(start+logical)%len(l.slots)]
}

// Push records a closed draw. The id must strictly exceed the newest stored
// id and the close time must not regress.
func (l *Ledger) Push(d inter.Draw) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count > 0 {
		newest := l.at(l.count - 1)
		if d.ID <= newest.ID {
			return errors.Wrapf(inter.ErrSequence, "draw id %d not above newest %d", d.ID, newest.ID)
		}
		if d.Time < newest.Time {
			return errors.Wrapf(inter.ErrSequence, "draw %d close time %d older than %d", d.ID, d.Time, newest.Time)
		}
	}
	l.slots[l.nextIndex] = d
	l.nextIndex = (l.nextIndex + 1) % len(l.slots)
	if l.count < len(l.slots) {
		l.count++
	}
	return nil
}

// ReplaceNewest overwrites the newest draw in place, keyed by its id.
func (l *Ledger) ReplaceNewest(d inter.Draw) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		return errors.Wrap(inter.ErrRange, "empty draw ledger")
	}
	newestIdx := (l.nextIndex - 1 + len(l.slots)) % len(l.slots)
	if d.ID != l.slots[newestIdx].ID {
		return errors.Wrapf(inter.ErrRange, "draw id %d is not the newest %d", d.ID, l.slots[newestIdx].ID)
	}
	if l.count > 1 {
		if prev := l.at(l.count - 2); d.Time < prev.Time {
			return errors.Wrapf(inter.ErrSequence, "draw %d close time %d older than %d", d.ID, d.Time, prev.Time)
		}
	}
	l.slots[newestIdx] = d
	return nil
}

// GetByDrawID returns the closed draw with the given id. ErrRange when id
// falls outside the retained window or was never recorded.
func (l *Ledger) GetByDrawID(id inter.DrawID) (inter.Draw, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.count == 0 {
		return inter.Draw{}, errors.Wrapf(inter.ErrRange, "draw %d: empty draw ledger", id)
	}
	if id < l.at(0).ID || id > l.at(l.count-1).ID {
		return inter.Draw{}, errors.Wrapf(inter.ErrRange, "draw %d outside retained window [%d, %d]",
			id, l.at(0).ID, l.at(l.count-1).ID)
	}

	lo, hi := 0, l.count-1
	for lo < hi {
		mid := (lo + hi) / 2
		if l.at(mid).ID < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if got := l.at(lo); got.ID == id {
		return got, nil
	}
	return inter.Draw{}, errors.Wrapf(inter.ErrRange, "draw %d was never recorded", id)
}

// Newest returns the most recently closed draw. ok is false when empty.
func (l *Ledger) Newest() (d inter.Draw, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.count == 0 {
		return inter.Draw{}, false
	}
	return l.at(l.count - 1), true
}
