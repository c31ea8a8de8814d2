package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quotemaker/config"
	"quotemaker/internal/maker/feed"
	"quotemaker/internal/maker/generator"
	"quotemaker/internal/maker/memorystore"
	"quotemaker/internal/maker/producer"
	"quotemaker/internal/maker/ratecontrol"
	"quotemaker/internal/maker/stream"

	"go.uber.org/zap"
)

// Maker is the assembled producer/consumer pair.
type Maker struct {
	logger   *zap.Logger
	producer *producer.Producer
	feed     *feed.Feed
	store    *memorystore.QuoteStore
	sinks    []stream.Sink
	cleanup  func()
}

// New builds the maker from cfg with the given sinks. A configuration error is returned
// before anything is started.
func New(cfg *config.Config, logger *zap.Logger, sinks []stream.Sink) (*Maker, error) {
	m := cfg.Maker

	rate, err := ratecontrol.NewWithStep(m.MinRate, m.MaxRate, m.RateStep, time.Now())
	if err != nil {
		return nil, fmt.Errorf("rate controller: %w", err)
	}

	gen, err := generator.NewQuoteGenerator(generator.NewRand(m.Seed), generator.RealClock{}, nil)
	if err != nil {
		return nil, fmt.Errorf("quote generator: %w", err)
	}

	store := memorystore.NewQuoteStore(m.StoreCapacity)
	f := feed.New(feed.Capacity(m.BufferSeconds, m.MaxRate))

	logger.Info("maker configured",
		zap.Int("min_rate", m.MinRate),
		zap.Int("max_rate", m.MaxRate),
		zap.Int("feed_capacity", f.Cap()),
		zap.Int("store_capacity", store.Capacity()),
	)

	return &Maker{
		logger:   logger,
		producer: producer.New(logger.Named("producer"), gen, rate, store, f, m.Tick),
		feed:     f,
		store:    store,
		sinks:    sinks,
		cleanup:  func() {},
	}, nil
}

// Run starts the consumer and runs the producer until the consumer goes away or
// production fails. Cancelling ctx stops the consumer, which closes the feed; the
// producer observes that on its next send.
func (mk *Maker) Run(ctx context.Context) error {
	defer mk.cleanup()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		stream.Consume(consumerCtx, mk.logger.Named("consumer"), mk.feed, mk.sinks...)
	}()

	// The producer has no cancellation of its own: the closed feed is its stop signal.
	err := mk.producer.Run(context.Background())

	stopConsumer()
	wg.Wait()

	if errors.Is(err, feed.ErrClosed) {
		mk.logger.Info("consumer gone, production stopped", zap.Int("retained", mk.store.Len()))
		return nil
	}
	return err
}
