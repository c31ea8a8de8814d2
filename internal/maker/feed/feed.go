package feed

import (
	"context"
	"errors"
	"sync"

	"quotemaker/pkg/quote"
)

// ErrClosed is returned by Send once the consumer has abandoned the feed.
var ErrClosed = errors.New("feed closed by consumer")

// MaxCapacity bounds the buffer so a large rate cannot ask for an unallocatable channel.
const MaxCapacity = 1 << 24

// Feed is the bounded single-producer/single-consumer buffer between the producer loop
// and the consumer. A full buffer suspends Send (backpressure). The consumer side owns
// closing: after Close every pending and future Send fails with ErrClosed.
type Feed struct {
	ch        chan quote.Quote
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a feed holding up to capacity quotes, clamped to [1, MaxCapacity].
func New(capacity int) *Feed {
	capacity = min(max(capacity, 1), MaxCapacity)
	return &Feed{
		ch:   make(chan quote.Quote, capacity),
		done: make(chan struct{}),
	}
}

// Capacity sizes a feed to buffer bufferSeconds worth of quotes at maxRate, saturating
// at MaxCapacity.
func Capacity(bufferSeconds, maxRate int) int {
	if bufferSeconds < 1 || maxRate < 1 {
		return 1
	}
	if bufferSeconds > MaxCapacity/maxRate {
		return MaxCapacity
	}
	return bufferSeconds * maxRate
}

// Send enqueues q, waiting while the buffer is full. It fails with ErrClosed when the
// consumer is gone and with ctx.Err() when ctx ends first.
func (f *Feed) Send(ctx context.Context, q quote.Quote) error {
	// A closed feed wins over free buffer space.
	select {
	case <-f.done:
		return ErrClosed
	default:
	}

	select {
	case f.ch <- q:
		return nil
	case <-f.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Quotes is the receive side, in send order.
func (f *Feed) Quotes() <-chan quote.Quote {
	return f.ch
}

// Done is closed once the consumer abandons the feed.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

// Close marks the consumer as gone. Quotes still buffered are dropped. Safe to call
// more than once.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

// Len returns the number of buffered quotes.
func (f *Feed) Len() int {
	return len(f.ch)
}

// Cap returns the buffer capacity.
func (f *Feed) Cap() int {
	return cap(f.ch)
}
