package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/cache"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

// DefaultInfoTTL is how long network metadata is trusted. Fees and
// enablement flags change rarely, so a long TTL saves signed requests.
const DefaultInfoTTL = 24 * time.Hour

// stubTTL bounds how often a failing venue endpoint is retried. Stubs
// are cached briefly so one broken signed endpoint is not re-hit for
// every accepted candidate of every scan cycle.
const stubTTL = 5 * time.Minute

// Service dispatches trading-info lookups to per-venue providers with
// a shared long-TTL cache in front. GetInfo never fails: any miss,
// venue error or unknown coin degrades to the stub value, because a
// missing fee datum must not abort spread reporting.
type Service struct {
	providers map[market.ExchangeID]Provider
	store     cache.Store
	log       logger.LoggerInterface
	ttl       time.Duration
}

type ServiceOption func(*Service)

func WithInfoTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(providers []Provider, store cache.Store, log logger.LoggerInterface, opts ...ServiceOption) *Service {
	byExchange := make(map[market.ExchangeID]Provider, len(providers))
	for _, p := range providers {
		byExchange[p.ExchangeID()] = p
	}

	s := &Service{
		providers: byExchange,
		store:     store,
		log:       log,
		ttl:       DefaultInfoTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func coinKey(ex market.ExchangeID, coin string) string {
	return fmt.Sprintf("tradingInfo:%s:%s", strings.ToLower(ex.String()), strings.ToUpper(coin))
}

func blobKey(ex market.ExchangeID) string {
	return fmt.Sprintf("tradingInfo:%s:all", strings.ToLower(ex.String()))
}

// GetInfo resolves network metadata for coin on ex.
func (s *Service) GetInfo(ctx context.Context, ex market.ExchangeID, coin string) domain.CoinTradingInfo {
	coin = strings.ToUpper(coin)

	provider, ok := s.providers[ex]
	if !ok {
		return domain.Stub(ex, coin)
	}

	if bulk, ok := provider.(BulkProvider); ok {
		return s.fromBlob(ctx, bulk, coin)
	}
	return s.fromCoin(ctx, provider, coin)
}

// fromCoin is the per-coin strategy: one cache entry per coin.
func (s *Service) fromCoin(ctx context.Context, provider Provider, coin string) domain.CoinTradingInfo {
	ex := provider.ExchangeID()

	var info domain.CoinTradingInfo
	if err := cache.GetJSON(ctx, s.store, coinKey(ex, coin), &info); err == nil {
		return info
	}

	info, err := provider.FetchInfo(ctx, coin)
	if err != nil {
		s.log.Warn(ctx, "trading info fetch failed, using stub",
			"exchange", ex.String(), "coin", coin, "error", err)
		stub := domain.Stub(ex, coin)
		if serr := cache.SetJSON(ctx, s.store, coinKey(ex, coin), stub, stubTTL); serr != nil {
			s.log.Warn(ctx, "trading info cache write failed",
				"exchange", ex.String(), "coin", coin, "error", serr)
		}
		return stub
	}

	if err := cache.SetJSON(ctx, s.store, coinKey(ex, coin), info, s.ttl); err != nil {
		s.log.Warn(ctx, "trading info cache write failed",
			"exchange", ex.String(), "coin", coin, "error", err)
	}

	return info
}

// fromBlob is the whole-exchange strategy: one snapshot under a long
// TTL, picked apart per coin on each call.
func (s *Service) fromBlob(ctx context.Context, provider BulkProvider, coin string) domain.CoinTradingInfo {
	ex := provider.ExchangeID()

	var snapshot []domain.CoinTradingInfo
	if err := cache.GetJSON(ctx, s.store, blobKey(ex), &snapshot); err != nil {
		fetched, ferr := provider.FetchAll(ctx)
		if ferr != nil {
			s.log.Warn(ctx, "trading info bulk fetch failed, using stub",
				"exchange", ex.String(), "coin", coin, "error", ferr)
			return domain.Stub(ex, coin)
		}
		snapshot = fetched

		if serr := cache.SetJSON(ctx, s.store, blobKey(ex), snapshot, s.ttl); serr != nil {
			s.log.Warn(ctx, "trading info cache write failed", "exchange", ex.String(), "error", serr)
		}
	}

	for _, info := range snapshot {
		if strings.EqualFold(info.Coin, coin) {
			return info
		}
	}

	return domain.Stub(ex, coin)
}
