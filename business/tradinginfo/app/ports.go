// Package app contains application services and port definitions for the trading-info context.
package app

import (
	"context"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
)

// Provider fetches network metadata for single coins from one venue.
type Provider interface {
	ExchangeID() market.ExchangeID

	// FetchInfo returns the coin's per-network metadata. Unknown coins
	// are an error here; the service layer turns failures into stubs.
	FetchInfo(ctx context.Context, coin string) (domain.CoinTradingInfo, error)
}

// BulkProvider is implemented by venues whose only economical endpoint
// returns all coins at once. The service caches the whole snapshot and
// picks coins out of it, instead of caching per coin.
type BulkProvider interface {
	Provider

	// FetchAll returns metadata for every coin the venue lists.
	FetchAll(ctx context.Context) ([]domain.CoinTradingInfo, error)
}
