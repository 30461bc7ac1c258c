// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
)

// ExchangeClient talks to one exchange's public market data API.
type ExchangeClient interface {
	// ExchangeID identifies the venue this client serves.
	ExchangeID() domain.ExchangeID

	// FetchQuotes returns best bid/ask quotes for the requested pairs.
	// A nil or empty pairs slice requests the whole market. Pairs the
	// venue does not list are silently absent from the result.
	FetchQuotes(ctx context.Context, pairs []domain.TradingPair) ([]domain.Quote, error)

	// FetchPairs lists every pair the venue currently trades.
	FetchPairs(ctx context.Context) ([]domain.TradingPair, error)
}

// ClientFactory constructs a client for one exchange. Construction may
// fail, e.g. on bad credentials or an unreachable endpoint.
type ClientFactory interface {
	NewClient(ex domain.ExchangeID) (ExchangeClient, error)
}
