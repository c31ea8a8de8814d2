package postgres_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"quotemaker/pkg/quote"
	"quotemaker/pkg/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestToQuoteRecord
func TestToQuoteRecord(t *testing.T) {
	q := quote.Quote{Timestamp: 1700000000, Symbol: quote.ETHUSD, Side: quote.Bid, Price: 1849.5, Size: 2.25, ID: 1 << 63}

	rec, err := postgres.ToQuoteRecord(q)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), rec.QuoteIdentifier())
	assert.Less(t, rec.QuoteID, int64(0))
	assert.Equal(t, "ETHUSD", rec.Symbol)
	assert.Equal(t, "Bid", rec.Side)
	assert.Equal(t, 1849.5, rec.Price)
	assert.Equal(t, 2.25, rec.Size)
	assert.True(t, rec.Timestamp.Equal(time.Unix(1700000000, 0)))

	_, err = postgres.ToQuoteRecord(quote.Quote{Symbol: quote.Symbol(9)})
	assert.Error(t, err)
}

// go test -v --run TestArchiveUpsert
func TestArchiveUpsert(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	archive := postgres.NewArchive(client, time.Second)

	id := rand.Uint64() | 1<<63
	q := quote.Quote{Timestamp: time.Now().Unix(), Symbol: quote.BTCUSD, Side: quote.Ask, Price: 100, Size: 1, ID: id}
	before, err := client.CountQuotes(ctx, quote.BTCUSD, quote.Ask)
	require.NoError(t, err)
	require.NoError(t, archive.Handle(ctx, q))

	q.Price = 200
	require.NoError(t, archive.Handle(ctx, q))

	// the upsert keeps a single row per id
	after, err := client.CountQuotes(ctx, quote.BTCUSD, quote.Ask)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	got, err := client.GetQuote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.Price)
	assert.Equal(t, "BTCUSD", got.Symbol)
	assert.Equal(t, id, got.QuoteIdentifier())

	require.NoError(t, client.DeleteOldQuotes(ctx, time.Now().Add(time.Hour)))
	_, err = client.GetQuote(ctx, id)
	assert.Error(t, err)
}
