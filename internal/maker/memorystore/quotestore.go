package memorystore

import (
	"errors"
	"fmt"

	"quotemaker/pkg/quote"
)

var ErrIdentifierConflict = errors.New("quote id already retained under another key")

// QuoteStore keeps the most recent quotes per (symbol, side) key with O(1) lookup by ID.
//
// Each key owns a ring of IDs in insertion order; quote values live only in byID, so a
// key sequence always reflects the latest value stored for each of its IDs. Eviction is
// strict FIFO by first insertion and updates never refresh a quote's position.
//
// QuoteStore is not safe for concurrent use: the producer loop is its only writer and
// reader.
type QuoteStore struct {
	capacity int
	byID     map[uint64]quote.Quote
	byKey    map[quote.Key]*idRing
}

// NewQuoteStore returns a store retaining capacity quotes per key.
// A non-positive capacity selects DefaultCapacity.
func NewQuoteStore(capacity int) *QuoteStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &QuoteStore{
		capacity: capacity,
		byID:     make(map[uint64]quote.Quote),
		byKey:    make(map[quote.Key]*idRing),
	}
}

// Insert files q under its key. An already retained ID is overwritten in place. A new
// ID is appended; when the key is at capacity its oldest ID is evicted first.
//
// Reusing a retained ID under a different key returns ErrIdentifierConflict and leaves
// the store unchanged.
func (s *QuoteStore) Insert(q quote.Quote) (InsertResult, error) {
	key := q.Key()
	res := InsertResult{Key: key}

	if prev, ok := s.byID[q.ID]; ok {
		if prev.Key() != key {
			return res, fmt.Errorf("%w: id=%d held by %s, offered by %s", ErrIdentifierConflict, q.ID, prev.Key(), key)
		}
		s.byID[q.ID] = q
		res.Updated = true
		res.Previous = prev
		return res, nil
	}

	ring, ok := s.byKey[key]
	if !ok {
		ring = newIDRing(s.capacity)
		s.byKey[key] = ring
	}

	if ring.full() {
		oldest := ring.pop()
		delete(s.byID, oldest)
		res.Evicted = true
		res.EvictedID = oldest
	}

	ring.push(q.ID)
	s.byID[q.ID] = q
	return res, nil
}

// Conflicts reports whether q's ID is retained under a different key, in which case
// Insert would reject it.
func (s *QuoteStore) Conflicts(q quote.Quote) bool {
	prev, ok := s.byID[q.ID]
	return ok && prev.Key() != q.Key()
}

// Get returns the retained quote with the given ID.
func (s *QuoteStore) Get(id uint64) (quote.Quote, bool) {
	q, ok := s.byID[id]
	return q, ok
}

// SizeOf returns how many quotes are retained for (symbol, side).
func (s *QuoteStore) SizeOf(symbol quote.Symbol, side quote.Side) int {
	ring, ok := s.byKey[quote.Key{Symbol: symbol, Side: side}]
	if !ok {
		return 0
	}
	return ring.size
}

// Quotes returns a copy of the (symbol, side) sequence, oldest first.
func (s *QuoteStore) Quotes(symbol quote.Symbol, side quote.Side) []quote.Quote {
	ring, ok := s.byKey[quote.Key{Symbol: symbol, Side: side}]
	if !ok {
		return nil
	}

	out := make([]quote.Quote, 0, ring.size)
	ring.each(func(id uint64) {
		out = append(out, s.byID[id])
	})
	return out
}

// Len returns the total number of retained quotes across all keys.
func (s *QuoteStore) Len() int {
	return len(s.byID)
}

// Capacity returns the per-key bound.
func (s *QuoteStore) Capacity() int {
	return s.capacity
}
