package generator

import (
	"errors"
	"math"
	"testing"
	"time"

	"quotemaker/pkg/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	current time.Time
}

func (m *mockClock) Now() time.Time { return m.current }

// mockRand replays fixed values in call order.
type mockRand struct {
	ints   []int
	floats []float64
	ids    []uint64
}

func (m *mockRand) Intn(n int) int {
	v := m.ints[0]
	m.ints = m.ints[1:]
	return v % n
}

func (m *mockRand) Float64() float64 {
	v := m.floats[0]
	m.floats = m.floats[1:]
	return v
}

func (m *mockRand) Uint64() uint64 {
	v := m.ids[0]
	m.ids = m.ids[1:]
	return v
}

// go test -v --run TestProduce_Deterministic
func TestProduce_Deterministic(t *testing.T) {
	rnd := &mockRand{
		ints:   []int{1, 1},        // ETHUSD, Ask
		floats: []float64{0.5, 0}, // zero fluctuation, minimum size
		ids:    []uint64{7},
	}
	clock := &mockClock{current: time.Unix(1700000000, 999)}

	gen, err := NewQuoteGenerator(rnd, clock, nil)
	require.NoError(t, err)

	q, err := gen.Produce()
	require.NoError(t, err)

	assert.Equal(t, quote.ETHUSD, q.Symbol)
	assert.Equal(t, quote.Ask, q.Side)
	assert.InDelta(t, 1850.0, q.Price, 1e-9)
	assert.InDelta(t, MinSize, q.Size, 1e-12)
	assert.Equal(t, uint64(7), q.ID)
	assert.Equal(t, int64(1700000000), q.Timestamp)
}

// go test -v --run TestProduce_Bounds
func TestProduce_Bounds(t *testing.T) {
	gen, err := NewQuoteGenerator(NewRand(42), &mockClock{current: time.Unix(1, 0)}, nil)
	require.NoError(t, err)

	seenSym := map[quote.Symbol]int{}
	seenSide := map[quote.Side]int{}
	for i := 0; i < 5000; i++ {
		q, err := gen.Produce()
		require.NoError(t, err)

		base := DefaultBasePrices[q.Symbol]
		rel := q.Price/base - 1
		require.GreaterOrEqual(t, rel, -Fluctuation-1e-12)
		require.Less(t, rel, Fluctuation+1e-12)
		require.GreaterOrEqual(t, q.Size, MinSize)
		require.Less(t, q.Size, MaxSize)

		seenSym[q.Symbol]++
		seenSide[q.Side]++
	}

	// every outcome shows up in roughly equal share
	for _, sym := range quote.Symbols {
		assert.InDelta(t, 5000.0/3, float64(seenSym[sym]), 250, "symbol %s", sym)
	}
	for _, side := range quote.Sides {
		assert.InDelta(t, 2500.0, float64(seenSide[side]), 250, "side %s", side)
	}
}

// go test -v --run TestProduce_SameSeedSameStream
func TestProduce_SameSeedSameStream(t *testing.T) {
	clock := &mockClock{current: time.Unix(100, 0)}
	a, err := NewQuoteGenerator(NewRand(7), clock, nil)
	require.NoError(t, err)
	b, err := NewQuoteGenerator(NewRand(7), clock, nil)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		qa, err := a.Produce()
		require.NoError(t, err)
		qb, err := b.Produce()
		require.NoError(t, err)
		require.Equal(t, qa, qb)
	}
}

// go test -v --run TestProduce_NegativePriceIsFatal
func TestProduce_NegativePriceIsFatal(t *testing.T) {
	_, err := NewQuoteGenerator(NewRand(1), RealClock{}, map[quote.Symbol]float64{
		quote.BTCUSD: 1, quote.ETHUSD: -1, quote.ETHBTC: 1,
	})
	assert.True(t, errors.Is(err, ErrNegativePrice))

	_, err = NewQuoteGenerator(NewRand(1), RealClock{}, map[quote.Symbol]float64{quote.BTCUSD: 1})
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
}

// go test -v --run TestProduce_ClockBeforeEpoch
func TestProduce_ClockBeforeEpoch(t *testing.T) {
	rnd := &mockRand{ints: []int{0, 0}, floats: []float64{0.5, 0.5}, ids: []uint64{1}}
	gen, err := NewQuoteGenerator(rnd, &mockClock{current: time.Unix(-10, 0)}, nil)
	require.NoError(t, err)

	_, err = gen.Produce()
	assert.ErrorIs(t, err, ErrClockBeforeEpoch)
}

// go test -v --run TestProduce_FullIdentifierRange
func TestProduce_FullIdentifierRange(t *testing.T) {
	rnd := &mockRand{ints: []int{2, 0}, floats: []float64{0, 0.999999}, ids: []uint64{math.MaxUint64}}
	gen, err := NewQuoteGenerator(rnd, &mockClock{current: time.Unix(5, 0)}, nil)
	require.NoError(t, err)

	q, err := gen.Produce()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), q.ID)
	assert.Equal(t, quote.ETHBTC, q.Symbol)
	assert.Equal(t, quote.Bid, q.Side)
	assert.InDelta(t, 0.035*0.95, q.Price, 1e-12)
}
