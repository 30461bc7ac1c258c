package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustQuote(ex ExchangeID, raw, bid, ask string) Quote {
	pair, err := ParsePair(raw)
	if err != nil {
		panic(err)
	}
	return NewQuote(ex,
		pair,
		decimal.RequireFromString(bid),
		decimal.RequireFromString(ask),
		decimal.NewFromInt(1000),
	)
}

func TestQuote_Valid(t *testing.T) {
	tests := []struct {
		name string
		bid  string
		ask  string
		want bool
	}{
		{"both_positive", "100", "101", true},
		{"zero_bid", "0", "101", false},
		{"zero_ask", "100", "0", false},
		{"both_zero", "0", "0", false},
		{"negative_bid", "-1", "101", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustQuote(ExchangeMEXC, "BTC/USDT", tt.bid, tt.ask)
			if got := q.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuoteTable(t *testing.T) {
	table := make(QuoteTable)
	table.Add(mustQuote(ExchangeMEXC, "BTC/USDT", "100", "101"))
	table.Add(mustQuote(ExchangeOKX, "BTC/USDT", "103", "104"))
	table.Add(mustQuote(ExchangeOKX, "ETH/USDT", "10", "11"))

	btc := NewPair("BTC", "USDT")

	q, ok := table.Lookup(ExchangeMEXC, btc)
	if !ok {
		t.Fatal("Lookup(MEXC, BTC/USDT) missing")
	}
	if !q.Bid.Equal(decimal.NewFromInt(100)) {
		t.Errorf("bid = %s, want 100", q.Bid)
	}

	if _, ok := table.Lookup(ExchangeBybit, btc); ok {
		t.Error("Lookup(BYBIT, BTC/USDT) should miss")
	}

	if got := len(table.QuotesFor(btc)); got != 2 {
		t.Errorf("QuotesFor(BTC/USDT) = %d quotes, want 2", got)
	}

	if got := len(table.Exchanges()); got != 2 {
		t.Errorf("Exchanges() = %d, want 2", got)
	}
}

func TestQuoteTable_AddOverwrites(t *testing.T) {
	table := make(QuoteTable)
	table.Add(mustQuote(ExchangeMEXC, "BTC/USDT", "100", "101"))
	table.Add(mustQuote(ExchangeMEXC, "BTC/USDT", "200", "201"))

	q, _ := table.Lookup(ExchangeMEXC, NewPair("BTC", "USDT"))
	if !q.Bid.Equal(decimal.NewFromInt(200)) {
		t.Errorf("bid = %s, want 200 after overwrite", q.Bid)
	}
	if len(table[ExchangeMEXC]) != 1 {
		t.Errorf("bucket size = %d, want 1", len(table[ExchangeMEXC]))
	}
}
