package memorystore

import "quotemaker/pkg/quote"

// DefaultCapacity is the number of quotes retained per (symbol, side) key.
const DefaultCapacity = 100

// InsertResult describes the effect of a single Insert.
type InsertResult struct {
	Updated   bool        // ID was already retained; value replaced in place
	Evicted   bool        // oldest quote of the key was dropped to make room
	EvictedID uint64      // ID of the dropped quote when Evicted
	Key       quote.Key   // key the quote was filed under
	Previous  quote.Quote // value replaced when Updated
}

// idRing is a fixed-capacity FIFO of quote IDs in insertion order.
type idRing struct {
	ids  []uint64
	head int
	size int
}

func newIDRing(capacity int) *idRing {
	return &idRing{ids: make([]uint64, capacity)}
}

func (r *idRing) full() bool { return r.size == len(r.ids) }

func (r *idRing) push(id uint64) {
	r.ids[(r.head+r.size)%len(r.ids)] = id
	r.size++
}

func (r *idRing) pop() uint64 {
	id := r.ids[r.head]
	r.head = (r.head + 1) % len(r.ids)
	r.size--
	return id
}

// each visits IDs from oldest to newest.
func (r *idRing) each(fn func(id uint64)) {
	for i := 0; i < r.size; i++ {
		fn(r.ids[(r.head+i)%len(r.ids)])
	}
}
