package generator

import (
	"errors"
	"fmt"
	"time"

	"quotemaker/pkg/quote"
)

const (
	// Fluctuation bounds the relative distance from the base price, [-Fluctuation, Fluctuation).
	Fluctuation = 0.05

	MinSize = 0.1
	MaxSize = 10.0
)

var (
	ErrNegativePrice    = errors.New("generated negative price")
	ErrClockBeforeEpoch = errors.New("system clock is before unix epoch")
	ErrUnknownSymbol    = errors.New("no base price for symbol")
)

var epoch = time.Unix(0, 0)

// DefaultBasePrices is the pricing table used when none is configured.
var DefaultBasePrices = map[quote.Symbol]float64{
	quote.BTCUSD: 50_000.0,
	quote.ETHUSD: 1_850.0,
	quote.ETHBTC: 0.035,
}

// QuoteGenerator produces one randomized quote per call. All randomness comes from
// the injected Rand, so a seeded source yields a reproducible stream.
type QuoteGenerator struct {
	rand       Rand
	clock      Clock
	basePrices map[quote.Symbol]float64
}

// NewQuoteGenerator validates the pricing table and returns a generator.
// A nil table selects DefaultBasePrices.
func NewQuoteGenerator(rnd Rand, clock Clock, basePrices map[quote.Symbol]float64) (*QuoteGenerator, error) {
	if basePrices == nil {
		basePrices = DefaultBasePrices
	}
	for _, sym := range quote.Symbols {
		base, ok := basePrices[sym]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, sym)
		}
		if base < 0 {
			return nil, fmt.Errorf("%w: base %f for %s", ErrNegativePrice, base, sym)
		}
	}

	return &QuoteGenerator{
		rand:       rnd,
		clock:      clock,
		basePrices: basePrices,
	}, nil
}

// Produce draws symbol and side uniformly, moves the base price by a uniform
// fluctuation, and stamps the quote with the current wall clock in whole seconds.
func (g *QuoteGenerator) Produce() (quote.Quote, error) {
	sym := g.symbol()
	side := g.side()

	base, ok := g.basePrices[sym]
	if !ok {
		return quote.Quote{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, sym)
	}
	fluctuation := -Fluctuation + g.rand.Float64()*2*Fluctuation
	price := base * (1 + fluctuation)
	if price < 0 {
		return quote.Quote{}, fmt.Errorf("%w: %f for %s", ErrNegativePrice, price, sym)
	}

	size := MinSize + g.rand.Float64()*(MaxSize-MinSize)
	id := g.rand.Uint64()

	now := g.clock.Now()
	if now.Before(epoch) {
		return quote.Quote{}, ErrClockBeforeEpoch
	}

	return quote.Quote{
		Timestamp: now.Unix(),
		Symbol:    sym,
		Side:      side,
		Price:     price,
		Size:      size,
		ID:        id,
	}, nil
}

func (g *QuoteGenerator) symbol() quote.Symbol {
	return quote.Symbols[g.rand.Intn(len(quote.Symbols))]
}

func (g *QuoteGenerator) side() quote.Side {
	return quote.Sides[g.rand.Intn(len(quote.Sides))]
}
