// Package app contains application services and port definitions for the spread context.
package app

import (
	"context"
	"sync"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/business/spread/domain"
	tradinginfo "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// TradingInfoLookup resolves network metadata for a coin on one
// exchange. Implementations never fail: unknown coins and venue
// errors come back as the stub value.
type TradingInfoLookup interface {
	GetInfo(ctx context.Context, ex market.ExchangeID, coin string) tradinginfo.CoinTradingInfo
}

// Bounds are the acceptance filters applied to a candidate.
type Bounds struct {
	MinVolume        decimal.Decimal
	MinProfitPercent decimal.Decimal
	MaxProfitPercent decimal.Decimal
}

// Engine computes best realizable cross-exchange spreads from a quote
// table, enriching accepted candidates with network metadata.
type Engine struct {
	info TradingInfoLookup
	log  logger.LoggerInterface
}

func NewEngine(info TradingInfoLookup, log logger.LoggerInterface) *Engine {
	return &Engine{info: info, log: log}
}

// BestSpread evaluates one pair against the table. It returns nil when
// no combination passes the filters; that is an ordinary outcome, not
// an error. Enrichment happens only after a candidate is accepted so
// the trading-info lookups are paid for survivors only.
func (e *Engine) BestSpread(ctx context.Context, pair market.TradingPair, table market.QuoteTable, bounds Bounds) *domain.SpreadResult {
	candidate, ok := domain.SelectCandidate(table.QuotesFor(pair), bounds.MinVolume)
	if !ok {
		return nil
	}

	profit := candidate.ProfitPercent()
	if profit.LessThan(bounds.MinProfitPercent) || profit.GreaterThan(bounds.MaxProfitPercent) {
		return nil
	}

	result := &domain.SpreadResult{
		Pair:      pair,
		Candidate: candidate,
		BuyInfo:   e.info.GetInfo(ctx, candidate.BuyExchange, pair.Base),
		SellInfo:  e.info.GetInfo(ctx, candidate.SellExchange, pair.Base),
	}

	e.log.Debug(ctx, "spread accepted",
		"pair", pair.String(),
		"buy", candidate.BuyExchange.String(),
		"sell", candidate.SellExchange.String(),
		"profitPercent", profit.String())

	return result
}

// BestSpreads evaluates many pairs against one table, each pair
// independently and in parallel.
func (e *Engine) BestSpreads(ctx context.Context, pairs []market.TradingPair, table market.QuoteTable, bounds Bounds) []domain.SpreadResult {
	var mu sync.Mutex
	var results []domain.SpreadResult

	g, gctx := errgroup.WithContext(ctx)
	for _, pair := range pairs {
		g.Go(func() error {
			if r := e.BestSpread(gctx, pair, table, bounds); r != nil {
				mu.Lock()
				results = append(results, *r)
				mu.Unlock()
			}
			return nil
		})
	}

	// Workers never return errors; the group is used for the join.
	_ = g.Wait()

	return results
}
