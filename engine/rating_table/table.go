package rating_table

import (
	engine_errors "github.com/gunnermanx/simplematchmaker/engine/errors"
	"github.com/pkg/errors"
)

const (
	DEFAULT_TABLE_SIZE = 1024
)

// emptyKey marks a free slot, so 0 is never a valid player id
const emptyKey = 0

type entry struct {
	key    int
	rating int
}

// Table maps player ids to ratings with open addressing and linear probing.
// The table never resizes; Put reports ErrTableCapacityExceeded once every
// slot is taken.
type Table struct {
	entries []entry
	count   int
}

func New(size int) *Table {
	if size <= 0 {
		size = DEFAULT_TABLE_SIZE
	}
	return &Table{
		entries: make([]entry, size),
	}
}

func (t *Table) Size() int {
	return len(t.entries)
}

func (t *Table) Len() int {
	return t.count
}

func (t *Table) home(playerID int) int {
	size := len(t.entries)
	idx := playerID % size
	if idx < 0 {
		idx += size
	}
	return idx
}

// Put writes rating for playerID, overwriting an existing entry for the same id
func (t *Table) Put(playerID int, rating int) (err error) {
	if playerID == emptyKey {
		err = errors.Wrap(engine_errors.ErrInvalidPlayerID, "rating table")
		return
	}

	size := len(t.entries)
	idx := t.home(playerID)
	for probes := 0; probes < size; probes++ {
		e := &t.entries[idx]
		if e.key == emptyKey {
			e.key = playerID
			e.rating = rating
			t.count++
			return
		}
		if e.key == playerID {
			e.rating = rating
			return
		}
		idx = (idx + 1) % size
	}

	err = errors.Wrapf(engine_errors.ErrTableCapacityExceeded, "no free slot for player %d in table of size %d", playerID, size)
	return
}

// Get returns the rating stored for playerID, stopping at the first empty slot
func (t *Table) Get(playerID int) (rating int, ok bool) {
	var idx int
	if idx, ok = t.find(playerID); ok {
		rating = t.entries[idx].rating
	}
	return
}

// Delete removes playerID. Entries further along the probe chain are shifted
// back so that Get never stops early at the freed slot.
func (t *Table) Delete(playerID int) bool {
	hole, ok := t.find(playerID)
	if !ok {
		return false
	}

	size := len(t.entries)
	t.entries[hole] = entry{}
	t.count--

	for idx := (hole + 1) % size; t.entries[idx].key != emptyKey; idx = (idx + 1) % size {
		home := t.home(t.entries[idx].key)
		// the entry may move into the hole only if its home does not lie
		// cyclically in (hole, idx]
		if cyclicBetween(hole, home, idx) {
			continue
		}
		t.entries[hole] = t.entries[idx]
		t.entries[idx] = entry{}
		hole = idx
	}
	return true
}

func (t *Table) find(playerID int) (idx int, ok bool) {
	if playerID == emptyKey {
		return
	}
	size := len(t.entries)
	idx = t.home(playerID)
	for probes := 0; probes < size && t.entries[idx].key != emptyKey; probes++ {
		if t.entries[idx].key == playerID {
			ok = true
			return
		}
		idx = (idx + 1) % size
	}
	return
}

// cyclicBetween reports whether x is in the half-open ring interval (lo, hi]
func cyclicBetween(lo, x, hi int) bool {
	if lo <= hi {
		return lo < x && x <= hi
	}
	return lo < x || x <= hi
}
