package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a best-bid/best-ask snapshot for a pair on one exchange.
type Quote struct {
	Pair      TradingPair     `json:"pair"`
	Exchange  ExchangeID      `json:"exchange"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewQuote builds a quote stamped with the current time.
func NewQuote(ex ExchangeID, pair TradingPair, bid, ask, volume decimal.Decimal) Quote {
	return Quote{
		Pair:      pair,
		Exchange:  ex,
		Bid:       bid,
		Ask:       ask,
		Volume:    volume,
		Timestamp: time.Now().UTC(),
	}
}

// Valid reports whether both sides of the book are populated. Quotes
// with a zero or negative bid or ask are unusable for spread math.
func (q Quote) Valid() bool {
	return q.Bid.IsPositive() && q.Ask.IsPositive()
}

// QuoteTable holds quotes per exchange, keyed by canonical pair string.
type QuoteTable map[ExchangeID]map[string]Quote

// Add inserts a quote, creating the exchange bucket on first use.
func (t QuoteTable) Add(q Quote) {
	bucket, ok := t[q.Exchange]
	if !ok {
		bucket = make(map[string]Quote)
		t[q.Exchange] = bucket
	}
	bucket[q.Pair.String()] = q
}

// Lookup returns the quote for pair on ex, if present.
func (t QuoteTable) Lookup(ex ExchangeID, pair TradingPair) (Quote, bool) {
	bucket, ok := t[ex]
	if !ok {
		return Quote{}, false
	}
	q, ok := bucket[pair.String()]
	return q, ok
}

// Exchanges returns the exchanges present in the table.
func (t QuoteTable) Exchanges() []ExchangeID {
	out := make([]ExchangeID, 0, len(t))
	for ex := range t {
		out = append(out, ex)
	}
	return out
}

// FilterQuotes keeps only quotes for the requested pairs. A nil or
// empty pair set keeps everything.
func FilterQuotes(quotes []Quote, pairs []TradingPair) []Quote {
	if len(pairs) == 0 {
		return quotes
	}
	wanted := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		wanted[p.String()] = struct{}{}
	}
	out := make([]Quote, 0, len(pairs))
	for _, q := range quotes {
		if _, ok := wanted[q.Pair.String()]; ok {
			out = append(out, q)
		}
	}
	return out
}

// QuotesFor collects every exchange's quote for a single pair.
func (t QuoteTable) QuotesFor(pair TradingPair) []Quote {
	key := pair.String()
	var out []Quote
	for _, bucket := range t {
		if q, ok := bucket[key]; ok {
			out = append(out, q)
		}
	}
	return out
}
