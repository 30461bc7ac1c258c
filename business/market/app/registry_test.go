package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

type fakeClient struct {
	id     domain.ExchangeID
	quotes []domain.Quote
	pairs  []domain.TradingPair
	err    error
}

func (f *fakeClient) ExchangeID() domain.ExchangeID { return f.id }

func (f *fakeClient) FetchQuotes(_ context.Context, _ []domain.TradingPair) ([]domain.Quote, error) {
	return f.quotes, f.err
}

func (f *fakeClient) FetchPairs(_ context.Context) ([]domain.TradingPair, error) {
	return f.pairs, f.err
}

type fakeFactory struct {
	mu    sync.Mutex
	calls atomic.Int64
	fail  map[domain.ExchangeID]error
}

func (f *fakeFactory) NewClient(ex domain.ExchangeID) (ExchangeClient, error) {
	f.calls.Add(1)
	f.mu.Lock()
	err := f.fail[ex]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fakeClient{id: ex}, nil
}

func (f *fakeFactory) setFailure(ex domain.ExchangeID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail == nil {
		f.fail = make(map[domain.ExchangeID]error)
	}
	f.fail[ex] = err
}

func newTestRegistry(factory ClientFactory) *ClientRegistry {
	return NewClientRegistry(factory, time.Minute, logger.Nop())
}

func TestClientRegistry_CachesClient(t *testing.T) {
	factory := &fakeFactory{}
	reg := newTestRegistry(factory)
	ctx := context.Background()

	first, err := reg.GetOrCreate(ctx, domain.ExchangeMEXC)
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	second, err := reg.GetOrCreate(ctx, domain.ExchangeMEXC)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}

	if first != second {
		t.Error("expected the same cached client instance")
	}
	if got := factory.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
	if state := reg.State(domain.ExchangeMEXC); state.Status != domain.ClientReady {
		t.Errorf("state = %v, want ready", state.Status)
	}
}

func TestClientRegistry_CooldownAfterFailure(t *testing.T) {
	factory := &fakeFactory{}
	factory.setFailure(domain.ExchangeOKX, errors.New("dial tcp: refused"))

	reg := newTestRegistry(factory)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.SetClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := reg.GetOrCreate(ctx, domain.ExchangeOKX)
	if !apperror.HasCode(err, apperror.CodeClientInitFailed) {
		t.Fatalf("first attempt error = %v, want client init failed", err)
	}

	// During cooldown the factory is not retried.
	now = now.Add(30 * time.Second)
	_, err = reg.GetOrCreate(ctx, domain.ExchangeOKX)
	if !apperror.HasCode(err, apperror.CodeClientUnavailable) {
		t.Fatalf("cooldown error = %v, want client unavailable", err)
	}
	if got := factory.calls.Load(); got != 1 {
		t.Errorf("factory calls during cooldown = %d, want 1", got)
	}

	// After the cooldown elapses a fixed venue comes back.
	factory.setFailure(domain.ExchangeOKX, nil)
	now = now.Add(31 * time.Second)
	client, err := reg.GetOrCreate(ctx, domain.ExchangeOKX)
	if err != nil {
		t.Fatalf("post-cooldown GetOrCreate: %v", err)
	}
	if client.ExchangeID() != domain.ExchangeOKX {
		t.Errorf("client exchange = %v, want OKX", client.ExchangeID())
	}
}

func TestClientRegistry_FailureIsolatedPerExchange(t *testing.T) {
	factory := &fakeFactory{}
	factory.setFailure(domain.ExchangeOKX, errors.New("boom"))

	reg := newTestRegistry(factory)
	ctx := context.Background()

	if _, err := reg.GetOrCreate(ctx, domain.ExchangeOKX); err == nil {
		t.Fatal("expected OKX construction to fail")
	}
	if _, err := reg.GetOrCreate(ctx, domain.ExchangeBybit); err != nil {
		t.Fatalf("Bybit should be unaffected by OKX failure: %v", err)
	}
}

func TestClientRegistry_UnsupportedExchange(t *testing.T) {
	reg := newTestRegistry(&fakeFactory{})

	_, err := reg.GetOrCreate(context.Background(), domain.ExchangeID("HYPERLIQUID"))
	if !apperror.HasCode(err, apperror.CodeUnsupportedExchange) {
		t.Fatalf("error = %v, want unsupported exchange", err)
	}
}

func TestClientRegistry_ConcurrentGetOrCreate(t *testing.T) {
	factory := &fakeFactory{}
	reg := newTestRegistry(factory)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.GetOrCreate(ctx, domain.ExchangeGateIO); err != nil {
				t.Errorf("GetOrCreate: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := factory.calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want exactly 1 under concurrency", got)
	}
}

func TestClientRegistry_Invalidate(t *testing.T) {
	factory := &fakeFactory{}
	reg := newTestRegistry(factory)
	ctx := context.Background()

	if _, err := reg.GetOrCreate(ctx, domain.ExchangeBitget); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	reg.Invalidate(domain.ExchangeBitget)

	if state := reg.State(domain.ExchangeBitget); state.Status != domain.ClientUninitialized {
		t.Errorf("state after Invalidate = %v, want uninitialized", state.Status)
	}
	if _, err := reg.GetOrCreate(ctx, domain.ExchangeBitget); err != nil {
		t.Fatalf("GetOrCreate after Invalidate: %v", err)
	}
	if got := factory.calls.Load(); got != 2 {
		t.Errorf("factory calls = %d, want 2", got)
	}
}
