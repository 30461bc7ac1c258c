package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/cache"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"github.com/shopspring/decimal"
)

type countingClient struct {
	id         domain.ExchangeID
	market     []domain.Quote
	fetchCalls atomic.Int64
	err        error
}

func (c *countingClient) ExchangeID() domain.ExchangeID { return c.id }

func (c *countingClient) FetchQuotes(_ context.Context, pairs []domain.TradingPair) ([]domain.Quote, error) {
	c.fetchCalls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	if len(pairs) == 0 {
		return c.market, nil
	}

	wanted := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		wanted[p.String()] = struct{}{}
	}
	var out []domain.Quote
	for _, q := range c.market {
		if _, ok := wanted[q.Pair.String()]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (c *countingClient) FetchPairs(_ context.Context) ([]domain.TradingPair, error) {
	if c.err != nil {
		return nil, c.err
	}
	pairs := make([]domain.TradingPair, 0, len(c.market))
	for _, q := range c.market {
		pairs = append(pairs, q.Pair)
	}
	return pairs, nil
}

type staticFactory struct {
	clients map[domain.ExchangeID]*countingClient
	fail    map[domain.ExchangeID]error
}

func (f *staticFactory) NewClient(ex domain.ExchangeID) (ExchangeClient, error) {
	if err := f.fail[ex]; err != nil {
		return nil, err
	}
	c, ok := f.clients[ex]
	if !ok {
		return nil, errors.New("no fixture for exchange")
	}
	return c, nil
}

func marketQuote(ex domain.ExchangeID, raw, bid, ask string) domain.Quote {
	pair, err := domain.ParsePair(raw)
	if err != nil {
		panic(err)
	}
	return domain.NewQuote(ex, pair,
		decimal.RequireFromString(bid),
		decimal.RequireFromString(ask),
		decimal.NewFromInt(5000))
}

func newTestAggregator(t *testing.T, factory ClientFactory, opts ...AggregatorOption) (*Aggregator, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore()
	reg := NewClientRegistry(factory, time.Minute, logger.Nop())
	return NewAggregator(reg, store, logger.Nop(), opts...), store
}

func TestAggregator_PerPairCacheRoundTrip(t *testing.T) {
	mexc := &countingClient{id: domain.ExchangeMEXC, market: []domain.Quote{
		marketQuote(domain.ExchangeMEXC, "BTC/USDT", "100", "101"),
	}}
	factory := &staticFactory{clients: map[domain.ExchangeID]*countingClient{domain.ExchangeMEXC: mexc}}

	agg, store := newTestAggregator(t, factory)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	ctx := context.Background()
	pairs := []domain.TradingPair{domain.NewPair("BTC", "USDT")}
	exchanges := []domain.ExchangeID{domain.ExchangeMEXC}

	table, err := agg.Fetch(ctx, exchanges, pairs)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	if _, ok := table.Lookup(domain.ExchangeMEXC, pairs[0]); !ok {
		t.Fatal("quote missing from table")
	}

	// Second call inside the TTL window is served from cache.
	if _, err := agg.Fetch(ctx, exchanges, pairs); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if got := mexc.fetchCalls.Load(); got != 1 {
		t.Errorf("upstream calls within TTL = %d, want 1", got)
	}

	// After the TTL elapses the venue is asked again.
	now = now.Add(DefaultQuoteTTL + time.Second)
	if _, err := agg.Fetch(ctx, exchanges, pairs); err != nil {
		t.Fatalf("post-expiry Fetch: %v", err)
	}
	if got := mexc.fetchCalls.Load(); got != 2 {
		t.Errorf("upstream calls after expiry = %d, want 2", got)
	}
}

func TestAggregator_BulkTierForWholeMarket(t *testing.T) {
	okx := &countingClient{id: domain.ExchangeOKX, market: []domain.Quote{
		marketQuote(domain.ExchangeOKX, "BTC/USDT", "103", "104"),
		marketQuote(domain.ExchangeOKX, "ETH/USDT", "10", "11"),
	}}
	factory := &staticFactory{clients: map[domain.ExchangeID]*countingClient{domain.ExchangeOKX: okx}}

	agg, store := newTestAggregator(t, factory)
	ctx := context.Background()

	table, err := agg.Fetch(ctx, []domain.ExchangeID{domain.ExchangeOKX}, nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := len(table[domain.ExchangeOKX]); got != 2 {
		t.Errorf("quotes in table = %d, want 2", got)
	}

	// The whole-market snapshot lands under the bulk key, not per-pair keys.
	if _, err := store.Get(ctx, "OKX:ALL"); err != nil {
		t.Error("bulk snapshot not cached")
	}
	if _, err := store.Get(ctx, "OKX:BTC/USDT"); err == nil {
		t.Error("per-pair key written on bulk path")
	}
}

func TestAggregator_BulkThresholdSelectsBulkTier(t *testing.T) {
	var market []domain.Quote
	var pairs []domain.TradingPair
	for _, sym := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
		market = append(market, marketQuote(domain.ExchangeGateIO, sym+"/USDT", "1", "2"))
		pairs = append(pairs, domain.NewPair(sym, "USDT"))
	}
	gate := &countingClient{id: domain.ExchangeGateIO, market: market}
	factory := &staticFactory{clients: map[domain.ExchangeID]*countingClient{domain.ExchangeGateIO: gate}}

	// Threshold 3: five requested pairs go through the bulk tier and
	// get filtered to the requested subset.
	agg, store := newTestAggregator(t, factory, WithBulkThreshold(3))
	ctx := context.Background()

	subset := pairs[:4]
	table, err := agg.Fetch(ctx, []domain.ExchangeID{domain.ExchangeGateIO}, subset)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := len(table[domain.ExchangeGateIO]); got != 4 {
		t.Errorf("quotes in table = %d, want 4 (filtered from bulk)", got)
	}
	if _, err := store.Get(ctx, "GATEIO:ALL"); err != nil {
		t.Error("bulk snapshot not cached")
	}
}

func TestAggregator_FailingVenueDegrades(t *testing.T) {
	mexc := &countingClient{id: domain.ExchangeMEXC, market: []domain.Quote{
		marketQuote(domain.ExchangeMEXC, "BTC/USDT", "100", "101"),
	}}
	broken := &countingClient{id: domain.ExchangeBybit, err: errors.New("502 bad gateway")}
	factory := &staticFactory{clients: map[domain.ExchangeID]*countingClient{
		domain.ExchangeMEXC:  mexc,
		domain.ExchangeBybit: broken,
	}}

	agg, _ := newTestAggregator(t, factory)

	table, err := agg.Fetch(context.Background(),
		[]domain.ExchangeID{domain.ExchangeMEXC, domain.ExchangeBybit},
		[]domain.TradingPair{domain.NewPair("BTC", "USDT")})
	if err != nil {
		t.Fatalf("Fetch should not fail on partial outage: %v", err)
	}

	if _, ok := table[domain.ExchangeMEXC]; !ok {
		t.Error("healthy venue missing from table")
	}
	if _, ok := table[domain.ExchangeBybit]; ok {
		t.Error("failed venue should contribute nothing")
	}
}

func TestAggregator_ClientInitFailureDegrades(t *testing.T) {
	mexc := &countingClient{id: domain.ExchangeMEXC, market: []domain.Quote{
		marketQuote(domain.ExchangeMEXC, "BTC/USDT", "100", "101"),
	}}
	factory := &staticFactory{
		clients: map[domain.ExchangeID]*countingClient{domain.ExchangeMEXC: mexc},
		fail:    map[domain.ExchangeID]error{domain.ExchangeOKX: errors.New("bad credentials")},
	}

	agg, _ := newTestAggregator(t, factory)

	table, err := agg.Fetch(context.Background(),
		[]domain.ExchangeID{domain.ExchangeMEXC, domain.ExchangeOKX},
		[]domain.TradingPair{domain.NewPair("BTC", "USDT")})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(table) != 1 {
		t.Errorf("table has %d venues, want only the healthy one", len(table))
	}
}

func TestAggregator_AvailablePairsUnion(t *testing.T) {
	mexc := &countingClient{id: domain.ExchangeMEXC, market: []domain.Quote{
		marketQuote(domain.ExchangeMEXC, "BTC/USDT", "100", "101"),
		marketQuote(domain.ExchangeMEXC, "ETH/USDT", "10", "11"),
	}}
	okx := &countingClient{id: domain.ExchangeOKX, market: []domain.Quote{
		marketQuote(domain.ExchangeOKX, "BTC/USDT", "100", "101"),
		marketQuote(domain.ExchangeOKX, "SOL/USDT", "20", "21"),
	}}
	factory := &staticFactory{clients: map[domain.ExchangeID]*countingClient{
		domain.ExchangeMEXC: mexc,
		domain.ExchangeOKX:  okx,
	}}

	agg, _ := newTestAggregator(t, factory)

	pairs, err := agg.AvailablePairs(context.Background(),
		[]domain.ExchangeID{domain.ExchangeMEXC, domain.ExchangeOKX})
	if err != nil {
		t.Fatalf("AvailablePairs: %v", err)
	}
	if len(pairs) != 3 {
		t.Errorf("union size = %d, want 3", len(pairs))
	}
}
