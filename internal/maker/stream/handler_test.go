package stream

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"quotemaker/internal/maker/feed"
	"quotemaker/pkg/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu  sync.Mutex
	ids []uint64
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Handle(_ context.Context, q quote.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, q.ID)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// go test -v --run TestConsume_DeliversInOrderToEverySink
func TestConsume_DeliversInOrderToEverySink(t *testing.T) {
	f := feed.New(16)
	for i := uint64(0); i < 10; i++ {
		require.NoError(t, f.Send(context.Background(), quote.Quote{ID: i}))
	}

	failing := SinkFunc{SinkName: "failing", Fn: func(context.Context, quote.Quote) error {
		return errors.New("down")
	}}
	rec := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Consume(ctx, zap.NewNop(), f, failing, rec)
		close(done)
	}()

	require.Eventually(t, func() bool { return rec.count() == 10 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i, id := range rec.ids {
		assert.Equal(t, uint64(i), id)
	}
}

// go test -v --run TestConsume_ClosesFeedOnExit
func TestConsume_ClosesFeedOnExit(t *testing.T) {
	f := feed.New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	Consume(ctx, zap.NewNop(), f)

	select {
	case <-f.Done():
	default:
		t.Fatal("feed should be closed once the consumer exits")
	}
	assert.ErrorIs(t, f.Send(context.Background(), quote.Quote{}), feed.ErrClosed)
}

// go test -v --run TestLineSink_WritesTextFormat
func TestLineSink_WritesTextFormat(t *testing.T) {
	var buf bytes.Buffer
	s := NewLineSink("stdout", &buf)

	q1 := quote.Quote{Timestamp: 1, Symbol: quote.BTCUSD, Side: quote.Bid, Price: 50000, Size: 1, ID: 1}
	q2 := quote.Quote{Timestamp: 2, Symbol: quote.ETHBTC, Side: quote.Ask, Price: 0.035, Size: 2, ID: 2}
	require.NoError(t, s.Handle(context.Background(), q1))
	require.NoError(t, s.Handle(context.Background(), q2))
	require.NoError(t, s.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,BTCUSD,Bid,50000.0000000,1.0000000,1", lines[0])

	back, err := quote.Parse(lines[1])
	require.NoError(t, err)
	assert.Equal(t, q2, back)
}
