package quote

import "fmt"

// Symbol is a tradeable instrument the maker quotes.
type Symbol uint8

// Side is the book side a quote is placed on.
type Side uint8

const (
	BTCUSD Symbol = iota
	ETHUSD
	ETHBTC
)

const (
	Bid Side = iota
	Ask
)

// Symbols lists every quoted instrument in sampling order.
var Symbols = []Symbol{BTCUSD, ETHUSD, ETHBTC}

// Sides lists both book sides in sampling order.
var Sides = []Side{Bid, Ask}

var symbolNames = map[Symbol]string{
	BTCUSD: "BTCUSD",
	ETHUSD: "ETHUSD",
	ETHBTC: "ETHBTC",
}

var sideNames = map[Side]string{
	Bid: "Bid",
	Ask: "Ask",
}

func (s Symbol) String() string {
	if name, ok := symbolNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Symbol(%d)", uint8(s))
}

// IsValid checks if the Symbol is one of the predefined instruments
func (s Symbol) IsValid() bool {
	_, ok := symbolNames[s]
	return ok
}

func (s Side) String() string {
	if name, ok := sideNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Side(%d)", uint8(s))
}

// IsValid checks if the Side is Bid or Ask
func (s Side) IsValid() bool {
	_, ok := sideNames[s]
	return ok
}

// ParseSymbol parses an instrument name such as "ETHUSD".
func ParseSymbol(s string) (Symbol, error) {
	for sym, name := range symbolNames {
		if name == s {
			return sym, nil
		}
	}
	return 0, fmt.Errorf("invalid symbol: %s", s)
}

// ParseSide parses "Bid" or "Ask".
func ParseSide(s string) (Side, error) {
	for side, name := range sideNames {
		if name == s {
			return side, nil
		}
	}
	return 0, fmt.Errorf("invalid side: %s", s)
}
