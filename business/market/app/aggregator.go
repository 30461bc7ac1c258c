package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/cache"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// DefaultBulkThreshold is the pair count above which an exchange is
// queried with one whole-market request instead of per-pair requests.
const DefaultBulkThreshold = 40

// DefaultQuoteTTL bounds how stale a cached quote may be.
const DefaultQuoteTTL = 300 * time.Second

// Aggregator fans out quote fetches across exchanges and merges the
// results into one QuoteTable, fronted by a two-tier TTL cache.
type Aggregator struct {
	registry      *ClientRegistry
	store         cache.Store
	log           logger.LoggerInterface
	quoteTTL      time.Duration
	bulkThreshold int

	fetches metric.Int64Counter
}

type AggregatorOption func(*Aggregator)

func WithQuoteTTL(ttl time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if ttl > 0 {
			a.quoteTTL = ttl
		}
	}
}

func WithBulkThreshold(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.bulkThreshold = n
		}
	}
}

func NewAggregator(registry *ClientRegistry, store cache.Store, log logger.LoggerInterface, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry:      registry,
		store:         store,
		log:           log,
		quoteTTL:      DefaultQuoteTTL,
		bulkThreshold: DefaultBulkThreshold,
	}

	for _, opt := range opts {
		opt(a)
	}

	meter := otel.GetMeterProvider().Meter("market.aggregator")
	a.fetches, _ = meter.Int64Counter("aggregator_exchange_fetches_total",
		metric.WithDescription("Upstream exchange fetches issued by the aggregator"))

	return a
}

// Fetch collects quotes for pairs across exchanges. Empty exchanges
// means all known venues; empty pairs means the whole market. Each
// exchange is fetched concurrently and a failing venue contributes
// nothing instead of failing the call.
func (a *Aggregator) Fetch(ctx context.Context, exchanges []domain.ExchangeID, pairs []domain.TradingPair) (domain.QuoteTable, error) {
	if len(exchanges) == 0 {
		exchanges = domain.AllExchanges()
	}

	table := make(domain.QuoteTable)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range exchanges {
		g.Go(func() error {
			quotes, err := a.fetchExchange(gctx, ex, pairs)
			if err != nil {
				a.log.Warn(gctx, "exchange fetch failed, skipping venue",
					"exchange", ex.String(), "error", err)
				return nil
			}

			mu.Lock()
			for _, q := range quotes {
				table.Add(q)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return table, nil
}

// fetchExchange resolves one venue's quotes through the cache tier
// picked by request fan-out size.
func (a *Aggregator) fetchExchange(ctx context.Context, ex domain.ExchangeID, pairs []domain.TradingPair) ([]domain.Quote, error) {
	if len(pairs) == 0 || len(pairs) > a.bulkThreshold {
		return a.fetchBulk(ctx, ex, pairs)
	}
	return a.fetchPerPair(ctx, ex, pairs)
}

func bulkKey(ex domain.ExchangeID) string {
	return fmt.Sprintf("%s:ALL", ex)
}

func pairKey(ex domain.ExchangeID, pair domain.TradingPair) string {
	return fmt.Sprintf("%s:%s", ex, pair)
}

// fetchBulk serves the request from the whole-market snapshot, fetching
// and caching it when absent, then filters to the requested subset.
func (a *Aggregator) fetchBulk(ctx context.Context, ex domain.ExchangeID, pairs []domain.TradingPair) ([]domain.Quote, error) {
	var snapshot []domain.Quote
	err := cache.GetJSON(ctx, a.store, bulkKey(ex), &snapshot)
	if err != nil {
		client, cerr := a.registry.GetOrCreate(ctx, ex)
		if cerr != nil {
			return nil, cerr
		}

		a.fetches.Add(ctx, 1, metric.WithAttributes(
			attribute.String("exchange", ex.String()),
			attribute.String("tier", "bulk"),
		))

		snapshot, cerr = client.FetchQuotes(ctx, nil)
		if cerr != nil {
			return nil, cerr
		}

		if serr := cache.SetJSON(ctx, a.store, bulkKey(ex), snapshot, a.quoteTTL); serr != nil {
			a.log.Warn(ctx, "bulk cache write failed", "exchange", ex.String(), "error", serr)
		}
	}

	if len(pairs) == 0 {
		return snapshot, nil
	}

	wanted := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		wanted[p.String()] = struct{}{}
	}

	out := snapshot[:0:0]
	for _, q := range snapshot {
		if _, ok := wanted[q.Pair.String()]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// fetchPerPair looks each pair up individually and batches the misses
// into one venue call, populating their individual cache entries.
func (a *Aggregator) fetchPerPair(ctx context.Context, ex domain.ExchangeID, pairs []domain.TradingPair) ([]domain.Quote, error) {
	out := make([]domain.Quote, 0, len(pairs))
	var missing []domain.TradingPair

	for _, p := range pairs {
		var q domain.Quote
		if err := cache.GetJSON(ctx, a.store, pairKey(ex, p), &q); err != nil {
			missing = append(missing, p)
			continue
		}
		out = append(out, q)
	}

	if len(missing) == 0 {
		return out, nil
	}

	client, err := a.registry.GetOrCreate(ctx, ex)
	if err != nil {
		return nil, err
	}

	a.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("exchange", ex.String()),
		attribute.String("tier", "per_pair"),
	))

	fetched, err := client.FetchQuotes(ctx, missing)
	if err != nil {
		return nil, err
	}

	for _, q := range fetched {
		if serr := cache.SetJSON(ctx, a.store, pairKey(ex, q.Pair), q, a.quoteTTL); serr != nil {
			a.log.Warn(ctx, "quote cache write failed",
				"exchange", ex.String(), "pair", q.Pair.String(), "error", serr)
		}
		out = append(out, q)
	}

	return out, nil
}

// AvailablePairs returns the union of tradable pairs across exchanges.
// Venue failures reduce the set instead of failing the call.
func (a *Aggregator) AvailablePairs(ctx context.Context, exchanges []domain.ExchangeID) ([]domain.TradingPair, error) {
	if len(exchanges) == 0 {
		exchanges = domain.AllExchanges()
	}

	seen := make(map[string]domain.TradingPair)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range exchanges {
		g.Go(func() error {
			client, err := a.registry.GetOrCreate(gctx, ex)
			if err != nil {
				a.log.Warn(gctx, "skipping venue for pair listing", "exchange", ex.String(), "error", err)
				return nil
			}

			pairs, err := client.FetchPairs(gctx)
			if err != nil {
				a.log.Warn(gctx, "pair listing failed", "exchange", ex.String(), "error", err)
				return nil
			}

			mu.Lock()
			for _, p := range pairs {
				seen[p.String()] = p
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.TradingPair, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}
