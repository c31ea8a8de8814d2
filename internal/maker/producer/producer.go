package producer

import (
	"context"
	"fmt"
	"time"

	"quotemaker/internal/maker/memorystore"
	"quotemaker/internal/maker/ratecontrol"
	"quotemaker/pkg/quote"

	"go.uber.org/zap"
)

// DefaultTick is the producer period.
const DefaultTick = time.Second

// maxRedraws bounds how often a quote whose ID the store would reject is regenerated.
const maxRedraws = 8

// Source produces one quote per call.
type Source interface {
	Produce() (quote.Quote, error)
}

// Sender delivers quotes downstream, blocking while the consumer is behind.
type Sender interface {
	Send(ctx context.Context, q quote.Quote) error
}

// Producer emits Rate() quotes per tick. Every quote is sent first and only retained
// in the store after a successful send. The producer is the sole owner of the store
// and the rate controller.
type Producer struct {
	logger *zap.Logger
	source Source
	rate   *ratecontrol.RateController
	store  *memorystore.QuoteStore
	out    Sender
	tick   time.Duration

	ticks uint64
}

func New(logger *zap.Logger, source Source, rate *ratecontrol.RateController,
	store *memorystore.QuoteStore, out Sender, tick time.Duration) *Producer {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Producer{
		logger: logger,
		source: source,
		rate:   rate,
		store:  store,
		out:    out,
		tick:   tick,
	}
}

// Run drives the loop from a fixed-period ticker. Missed ticks are coalesced by the
// ticker rather than replayed.
func (p *Producer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	return p.RunTicks(ctx, ticker.C)
}

// RunTicks runs one Tick per value received on ticks until a tick fails, ticks is
// closed, or ctx ends.
func (p *Producer) RunTicks(ctx context.Context, ticks <-chan time.Time) error {
	p.logger.Info("producer started",
		zap.Int("rate", p.rate.Rate()),
		zap.Int("max_rate", p.rate.MaxRate()),
		zap.Duration("tick", p.tick),
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("producer stopped", zap.Error(ctx.Err()))
			return ctx.Err()
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			if err := p.Tick(ctx, now); err != nil {
				return err
			}
		}
	}
}

// Tick adjusts the rate for now and emits that many quotes.
func (p *Producer) Tick(ctx context.Context, now time.Time) error {
	p.ticks++
	if p.rate.Adjust(now) {
		p.logger.Info("rate increased", zap.Int("rate", p.rate.Rate()))
	}

	n := p.rate.Rate()
	for i := 0; i < n; i++ {
		q, ok, err := p.draw()
		if err != nil {
			p.logger.Error("quote generation failed", zap.Error(err))
			return fmt.Errorf("generate quote: %w", err)
		}
		if !ok {
			p.logger.Warn("quote dropped, id held under another key", zap.Uint64("id", q.ID), zap.Stringer("key", q.Key()))
			continue
		}

		if err := p.out.Send(ctx, q); err != nil {
			p.logger.Error("error sending quote", zap.Uint64("id", q.ID), zap.Error(err))
			return fmt.Errorf("send quote: %w", err)
		}

		p.retain(q)
	}

	p.logger.Debug("tick done",
		zap.Uint64("tick", p.ticks),
		zap.Int("emitted", n),
		zap.Int("retained", p.store.Len()),
	)
	return nil
}

// draw produces a quote the store can accept, regenerating while its ID is retained
// under another key. ok is false when every attempt conflicted.
func (p *Producer) draw() (q quote.Quote, ok bool, err error) {
	for attempt := 0; attempt <= maxRedraws; attempt++ {
		q, err = p.source.Produce()
		if err != nil {
			return q, false, err
		}
		if !p.store.Conflicts(q) {
			return q, true, nil
		}
		p.logger.Debug("redrawing quote, id held under another key", zap.Uint64("id", q.ID))
	}
	return q, false, nil
}

func (p *Producer) retain(q quote.Quote) {
	res, err := p.store.Insert(q)
	if err != nil {
		// draw already filtered conflicts
		p.logger.Warn("quote not retained", zap.Error(err))
		return
	}

	if res.Updated {
		p.logger.Warn("updated existing quote", zap.Uint64("id", q.ID), zap.Stringer("key", res.Key))
	}
	if res.Evicted {
		p.logger.Debug("reached maximum capacity, removed oldest quote",
			zap.Uint64("id", res.EvictedID), zap.Stringer("key", res.Key))
	}
}
