package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"quotemaker/config"
	"quotemaker/internal/maker/ratecontrol"
	"quotemaker/internal/maker/stream"
	"quotemaker/pkg/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Maker: config.MakerConfig{
			MinRate:       20,
			MaxRate:       40,
			BufferSeconds: 1,
			Tick:          10 * time.Millisecond,
			RateStep:      time.Minute,
			StoreCapacity: 100,
			Seed:          1,
		},
		Log: config.LogConfig{Level: "info", Environment: "dev"},
	}
}

type countingSink struct {
	mu     sync.Mutex
	quotes []quote.Quote
}

func (c *countingSink) Name() string { return "counting" }

func (c *countingSink) Handle(_ context.Context, q quote.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = append(c.quotes, q)
	return nil
}

func (c *countingSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.quotes)
}

// go test -v --run TestMaker_RunUntilCancelled
func TestMaker_RunUntilCancelled(t *testing.T) {
	sink := &countingSink{}
	mk, err := New(testConfig(), zap.NewNop(), []stream.Sink{sink})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mk.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.len() >= 100 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("maker did not stop after cancellation")
	}

	// every retained quote was delivered
	delivered := map[uint64]bool{}
	for _, q := range sink.quotes {
		delivered[q.ID] = true
	}
	for _, sym := range quote.Symbols {
		for _, side := range quote.Sides {
			require.LessOrEqual(t, mk.store.SizeOf(sym, side), 100)
			for _, q := range mk.store.Quotes(sym, side) {
				assert.True(t, delivered[q.ID])
			}
		}
	}
}

// go test -v --run TestNew_InvalidRates
func TestNew_InvalidRates(t *testing.T) {
	cfg := testConfig()
	cfg.Maker.MinRate = 50
	cfg.Maker.MaxRate = 10

	mk, err := New(cfg, zap.NewNop(), nil)
	assert.ErrorIs(t, err, ratecontrol.ErrInvalidRateParams)
	assert.Nil(t, mk)
}

// go test -v --run TestBuildSinks_QuoteFile
func TestBuildSinks_QuoteFile(t *testing.T) {
	cfg := testConfig()
	cfg.Sinks.QuoteFile = filepath.Join(t.TempDir(), "quotes.log")

	sinks, cleanup, err := BuildSinks(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	require.Len(t, sinks, 1)
	assert.Equal(t, "quote_file", sinks[0].Name())
}
