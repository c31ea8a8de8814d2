package stream

import (
	"context"

	"quotemaker/internal/maker/feed"
	"quotemaker/pkg/quote"

	"go.uber.org/zap"
)

// Consume drains f in send order and hands every quote to each sink. A failing sink is
// logged and skipped; it does not stop delivery to the others. When ctx ends the feed
// is closed, which is how the producer learns the consumer is gone.
func Consume(ctx context.Context, logger *zap.Logger, f *feed.Feed, sinks ...Sink) {
	defer f.Close()

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Info("consumer started", zap.Strings("sinks", names))

	var received uint64
	for {
		select {
		case <-ctx.Done():
			logger.Info("consumer stopped", zap.Uint64("received", received))
			return
		case q := <-f.Quotes():
			received++
			dispatch(ctx, logger, q, sinks)
		}
	}
}

func dispatch(ctx context.Context, logger *zap.Logger, q quote.Quote, sinks []Sink) {
	for _, s := range sinks {
		if err := s.Handle(ctx, q); err != nil {
			logger.Warn("failed to handle quote",
				zap.String("sink", s.Name()),
				zap.Uint64("id", q.ID),
				zap.Error(err),
			)
		}
	}
}
