package stream

import (
	"bufio"
	"context"
	"io"
	"sync"

	"quotemaker/pkg/quote"
)

// LineSink writes each quote in its text form, one per line.
type LineSink struct {
	name string
	mu   sync.Mutex
	w    *bufio.Writer
	dst  io.Writer
}

func NewLineSink(name string, w io.Writer) *LineSink {
	return &LineSink{name: name, w: bufio.NewWriter(w), dst: w}
}

func (s *LineSink) Name() string { return s.name }

func (s *LineSink) Handle(_ context.Context, q quote.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(q.String()); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	// Keep the line log close to real time without a syscall per quote.
	if s.w.Buffered() >= 32*1024 {
		return s.w.Flush()
	}
	return nil
}

// Flush writes any buffered lines to the destination.
func (s *LineSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// Close flushes and closes the destination when it is closable.
func (s *LineSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if c, ok := s.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
