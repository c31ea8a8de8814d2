package stream

import (
	"context"

	"quotemaker/pkg/quote"
)

// Sink is a downstream destination for received quotes.
type Sink interface {
	Name() string
	Handle(ctx context.Context, q quote.Quote) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, q quote.Quote) error
}

func (s SinkFunc) Name() string { return s.SinkName }

func (s SinkFunc) Handle(ctx context.Context, q quote.Quote) error { return s.Fn(ctx, q) }
