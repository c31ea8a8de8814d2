package redisstore

import (
	"context"
	"time"

	"quotemaker/pkg/quote"

	"github.com/redis/go-redis/v9"
)

// Publisher fans quotes out through Redis: every quote line is published on
// <prefix><symbol> and the newest quote per (symbol, side) is kept under
// <prefix>latest:<symbol>:<side> for LatestTTL.
type Publisher struct {
	Client    *redis.Client
	Prefix    string
	LatestTTL time.Duration
}

func New(client *redis.Client, prefix string, latestTTL time.Duration) *Publisher {
	return &Publisher{Client: client, Prefix: prefix, LatestTTL: latestTTL}
}

func (p *Publisher) Name() string { return "redis" }

// Handle publishes and records q in one pipeline round trip.
func (p *Publisher) Handle(ctx context.Context, q quote.Quote) error {
	line := q.String()

	pipe := p.Client.Pipeline()
	pipe.Publish(ctx, p.Channel(q.Symbol), line)
	pipe.Set(ctx, p.LatestKey(q.Symbol, q.Side), line, p.LatestTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Latest returns the newest quote published for (symbol, side).
func (p *Publisher) Latest(ctx context.Context, symbol quote.Symbol, side quote.Side) (quote.Quote, bool, error) {
	line, err := p.Client.Get(ctx, p.LatestKey(symbol, side)).Result()
	if err == redis.Nil {
		return quote.Quote{}, false, nil
	}
	if err != nil {
		return quote.Quote{}, false, err
	}

	q, err := quote.Parse(line)
	if err != nil {
		return quote.Quote{}, false, err
	}
	return q, true, nil
}

func (p *Publisher) Channel(symbol quote.Symbol) string {
	return p.Prefix + symbol.String()
}

func (p *Publisher) LatestKey(symbol quote.Symbol, side quote.Side) string {
	return p.Prefix + "latest:" + symbol.String() + ":" + side.String()
}

func (p *Publisher) Close() error {
	return p.Client.Close()
}
