package app

import (
	"context"
	"errors"
	"testing"
	"time"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/cache"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"github.com/shopspring/decimal"
)

type coinProvider struct {
	id    market.ExchangeID
	coins map[string]domain.CoinTradingInfo
	err   error
	calls int
}

func (p *coinProvider) ExchangeID() market.ExchangeID { return p.id }

func (p *coinProvider) FetchInfo(_ context.Context, coin string) (domain.CoinTradingInfo, error) {
	p.calls++
	if p.err != nil {
		return domain.CoinTradingInfo{}, p.err
	}
	info, ok := p.coins[coin]
	if !ok {
		return domain.CoinTradingInfo{}, errors.New("unknown coin")
	}
	return info, nil
}

type blobProvider struct {
	coinProvider
	bulkCalls int
}

func (p *blobProvider) FetchAll(_ context.Context) ([]domain.CoinTradingInfo, error) {
	p.bulkCalls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]domain.CoinTradingInfo, 0, len(p.coins))
	for _, info := range p.coins {
		out = append(out, info)
	}
	return out, nil
}

func infoFixture(ex market.ExchangeID, coin, network, fee string) domain.CoinTradingInfo {
	return domain.CoinTradingInfo{
		Exchange: ex,
		Coin:     coin,
		Networks: []domain.NetworkInfo{{
			Network:         network,
			WithdrawFee:     decimal.RequireFromString(fee),
			DepositEnabled:  true,
			WithdrawEnabled: true,
		}},
	}
}

func TestService_PerCoinCaching(t *testing.T) {
	provider := &coinProvider{
		id: market.ExchangeOKX,
		coins: map[string]domain.CoinTradingInfo{
			"BTC": infoFixture(market.ExchangeOKX, "BTC", domain.NetworkBitcoin, "0.0005"),
		},
	}
	store := cache.NewMemoryStore()
	svc := NewService([]Provider{provider}, store, logger.Nop())
	ctx := context.Background()

	first := svc.GetInfo(ctx, market.ExchangeOKX, "btc")
	if first.IsStub() {
		t.Fatal("expected real info, got stub")
	}

	second := svc.GetInfo(ctx, market.ExchangeOKX, "BTC")
	if second.IsStub() {
		t.Fatal("expected cached info, got stub")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second served from cache)", provider.calls)
	}
}

func TestService_BlobCaching(t *testing.T) {
	provider := &blobProvider{coinProvider: coinProvider{
		id: market.ExchangeMEXC,
		coins: map[string]domain.CoinTradingInfo{
			"BTC": infoFixture(market.ExchangeMEXC, "BTC", domain.NetworkBitcoin, "0.0003"),
			"ETH": infoFixture(market.ExchangeMEXC, "ETH", domain.NetworkERC20, "0.001"),
		},
	}}
	store := cache.NewMemoryStore()
	svc := NewService([]Provider{provider}, store, logger.Nop())
	ctx := context.Background()

	btc := svc.GetInfo(ctx, market.ExchangeMEXC, "BTC")
	eth := svc.GetInfo(ctx, market.ExchangeMEXC, "ETH")
	if btc.IsStub() || eth.IsStub() {
		t.Fatal("expected real info for both coins")
	}

	// Both coins come out of one whole-exchange snapshot.
	if provider.bulkCalls != 1 {
		t.Errorf("bulk calls = %d, want 1", provider.bulkCalls)
	}
	if provider.calls != 0 {
		t.Errorf("per-coin calls = %d, want 0 for a bulk venue", provider.calls)
	}

	// A coin absent from the snapshot degrades to the stub.
	if got := svc.GetInfo(ctx, market.ExchangeMEXC, "DOGE"); !got.IsStub() {
		t.Error("expected stub for a coin missing from the snapshot")
	}
}

func TestService_FailureDegradesToStub(t *testing.T) {
	provider := &coinProvider{id: market.ExchangeGateIO, err: errors.New("429 too many requests")}
	svc := NewService([]Provider{provider}, cache.NewMemoryStore(), logger.Nop())

	got := svc.GetInfo(context.Background(), market.ExchangeGateIO, "BTC")
	if !got.IsStub() {
		t.Fatalf("expected stub on provider failure, got %+v", got)
	}
	if got.Exchange != market.ExchangeGateIO || got.Coin != "BTC" {
		t.Error("stub should carry the requested exchange and coin")
	}
}

func TestService_StubCachedAfterFailure(t *testing.T) {
	provider := &coinProvider{id: market.ExchangeGateIO, err: errors.New("401 unauthorized")}
	store := cache.NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	svc := NewService([]Provider{provider}, store, logger.Nop())
	ctx := context.Background()

	if got := svc.GetInfo(ctx, market.ExchangeGateIO, "BTC"); !got.IsStub() {
		t.Fatal("expected stub on provider failure")
	}
	if got := svc.GetInfo(ctx, market.ExchangeGateIO, "BTC"); !got.IsStub() {
		t.Fatal("expected cached stub on the second lookup")
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1 (stub served from cache)", provider.calls)
	}

	// Once the stub entry expires the venue is retried, and a recovered
	// endpoint replaces the stub with real data.
	provider.err = nil
	provider.coins = map[string]domain.CoinTradingInfo{
		"BTC": infoFixture(market.ExchangeGateIO, "BTC", domain.NetworkBitcoin, "0.0006"),
	}
	now = now.Add(stubTTL + time.Second)

	if got := svc.GetInfo(ctx, market.ExchangeGateIO, "BTC"); got.IsStub() {
		t.Fatal("expected real info after the stub entry expired")
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 after stub expiry", provider.calls)
	}
}

func TestService_UnknownExchangeIsStub(t *testing.T) {
	svc := NewService(nil, cache.NewMemoryStore(), logger.Nop())

	if got := svc.GetInfo(context.Background(), market.ExchangeBybit, "BTC"); !got.IsStub() {
		t.Error("expected stub when no provider is registered")
	}
}

func TestService_TTLExpiry(t *testing.T) {
	provider := &coinProvider{
		id: market.ExchangeOKX,
		coins: map[string]domain.CoinTradingInfo{
			"BTC": infoFixture(market.ExchangeOKX, "BTC", domain.NetworkBitcoin, "0.0005"),
		},
	}
	store := cache.NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	svc := NewService([]Provider{provider}, store, logger.Nop(), WithInfoTTL(time.Hour))
	ctx := context.Background()

	svc.GetInfo(ctx, market.ExchangeOKX, "BTC")
	now = now.Add(61 * time.Minute)
	svc.GetInfo(ctx, market.ExchangeOKX, "BTC")

	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 after TTL expiry", provider.calls)
	}
}
