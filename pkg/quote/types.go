package quote

import (
	"fmt"
	"strconv"
	"strings"
)

// Quote is one synthetic market data record. It is a value type: updating a quote
// means storing a new value under the same ID.
type Quote struct {
	Timestamp int64   `json:"ts"`    // Seconds since epoch
	Symbol    Symbol  `json:"sym"`   // Instrument
	Side      Side    `json:"side"`  // Book side
	Price     float64 `json:"price"` // Never negative
	Size      float64 `json:"size"`  // Always positive
	ID        uint64  `json:"id"`    // Random, may collide
}

// Key identifies the (symbol, side) partition a quote belongs to.
type Key struct {
	Symbol Symbol
	Side   Side
}

// Key returns the partition key of q.
func (q Quote) Key() Key {
	return Key{Symbol: q.Symbol, Side: q.Side}
}

func (k Key) String() string {
	return k.Symbol.String() + ":" + k.Side.String()
}

// String renders q in the line format used for logs and interop:
// timestamp,symbol,side,price,size,id with seven decimals on price and size.
func (q Quote) String() string {
	return fmt.Sprintf("%d,%s,%s,%.7f,%.7f,%d", q.Timestamp, q.Symbol, q.Side, q.Price, q.Size, q.ID)
}

// Parse converts a line produced by Quote.String back into a Quote.
func Parse(line string) (Quote, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 6 {
		return Quote{}, fmt.Errorf("quote line: expected 6 fields, got %d", len(fields))
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("parse timestamp: %w", err)
	}
	sym, err := ParseSymbol(fields[1])
	if err != nil {
		return Quote{}, err
	}
	side, err := ParseSide(fields[2])
	if err != nil {
		return Quote{}, err
	}
	price, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Quote{}, fmt.Errorf("parse price: %w", err)
	}
	size, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Quote{}, fmt.Errorf("parse size: %w", err)
	}
	id, err := strconv.ParseUint(fields[5], 10, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("parse id: %w", err)
	}

	return Quote{
		Timestamp: ts,
		Symbol:    sym,
		Side:      side,
		Price:     price,
		Size:      size,
		ID:        id,
	}, nil
}
