package domain

import (
	"strings"

	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
)

// TradingPair is a base/counter currency pair, symbols normalized to
// upper case.
type TradingPair struct {
	Base    string
	Counter string
}

// NewPair builds a pair from already-split symbols.
func NewPair(base, counter string) TradingPair {
	return TradingPair{
		Base:    strings.ToUpper(strings.TrimSpace(base)),
		Counter: strings.ToUpper(strings.TrimSpace(counter)),
	}
}

// ParsePair parses "BASE/COUNTER" or "BASE_COUNTER". Anything that does
// not split into exactly two non-blank tokens is rejected.
func ParsePair(raw string) (TradingPair, error) {
	sep := "/"
	if !strings.Contains(raw, sep) {
		sep = "_"
	}

	tokens := strings.Split(raw, sep)
	if len(tokens) != 2 {
		return TradingPair{}, apperror.Validation(apperror.CodeInvalidPairFormat, raw)
	}

	base := strings.TrimSpace(tokens[0])
	counter := strings.TrimSpace(tokens[1])
	if base == "" || counter == "" {
		return TradingPair{}, apperror.Validation(apperror.CodeInvalidPairFormat, raw)
	}

	return NewPair(base, counter), nil
}

// String returns the canonical "BASE/COUNTER" form.
func (p TradingPair) String() string {
	return p.Base + "/" + p.Counter
}

// Symbol joins the pair with a venue-specific separator, e.g.
// Symbol("_") -> "BTC_USDT", Symbol("") -> "BTCUSDT".
func (p TradingPair) Symbol(sep string) string {
	return p.Base + sep + p.Counter
}

// IsZero reports whether the pair is unset.
func (p TradingPair) IsZero() bool {
	return p.Base == "" && p.Counter == ""
}

// knownCounters are the counter currencies tried when splitting a
// concatenated venue symbol. Longest first so "BTCUSDC" does not match
// the "USD" suffix.
var knownCounters = []string{"USDT", "USDC", "TUSD", "FDUSD", "USD", "EUR", "BTC", "ETH", "BNB"}

// ParseConcatSymbol splits a separator-less venue symbol such as
// "BTCUSDT" by matching a known counter-currency suffix. Returns false
// when no known counter matches.
func ParseConcatSymbol(symbol string) (TradingPair, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, counter := range knownCounters {
		if len(symbol) > len(counter) && strings.HasSuffix(symbol, counter) {
			return NewPair(symbol[:len(symbol)-len(counter)], counter), true
		}
	}
	return TradingPair{}, false
}
