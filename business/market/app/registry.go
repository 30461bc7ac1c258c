package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

// DefaultFailureCooldown is how long a failed exchange slot is held
// before construction is retried.
const DefaultFailureCooldown = 60 * time.Second

type clientSlot struct {
	mu     sync.Mutex
	client ExchangeClient
	state  domain.ClientState
}

// ClientRegistry lazily constructs exchange clients and caches them.
// A failed construction puts the exchange into cooldown so callers
// don't retry a broken venue on every scan.
type ClientRegistry struct {
	factory  ClientFactory
	cooldown time.Duration
	log      logger.LoggerInterface
	now      func() time.Time

	mu    sync.RWMutex
	slots map[domain.ExchangeID]*clientSlot
}

func NewClientRegistry(factory ClientFactory, cooldown time.Duration, log logger.LoggerInterface) *ClientRegistry {
	if cooldown <= 0 {
		cooldown = DefaultFailureCooldown
	}
	return &ClientRegistry{
		factory:  factory,
		cooldown: cooldown,
		log:      log,
		now:      time.Now,
		slots:    make(map[domain.ExchangeID]*clientSlot),
	}
}

// SetClock replaces the registry clock. Test hook.
func (r *ClientRegistry) SetClock(now func() time.Time) {
	r.now = now
}

func (r *ClientRegistry) slot(ex domain.ExchangeID) *clientSlot {
	r.mu.RLock()
	s, ok := r.slots[ex]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.slots[ex]; ok {
		return s
	}
	s = &clientSlot{}
	r.slots[ex] = s
	return s
}

// GetOrCreate returns the cached client for ex, constructing it on
// first use. During cooldown after a failed construction it returns
// ClientUnavailable without touching the factory. Construction for
// different exchanges proceeds independently.
func (r *ClientRegistry) GetOrCreate(ctx context.Context, ex domain.ExchangeID) (ExchangeClient, error) {
	if !ex.Valid() {
		return nil, apperror.Validation(apperror.CodeUnsupportedExchange, ex.String())
	}

	s := r.slot(ex)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == domain.ClientReady {
		return s.client, nil
	}

	now := r.now()
	if cooling, remaining := s.state.InCooldown(now, r.cooldown); cooling {
		return nil, apperror.New(
			apperror.CodeClientUnavailable,
			apperror.WithContext(fmt.Sprintf("exchange=%s cooldownRemaining=%s", ex, remaining)),
		)
	}

	client, err := r.factory.NewClient(ex)
	if err != nil {
		s.state = domain.ClientState{Status: domain.ClientFailed, FailedAt: now}
		r.log.Warn(ctx, "exchange client init failed, entering cooldown",
			"exchange", ex.String(), "cooldown", r.cooldown.String(), "error", err)
		return nil, apperror.External(apperror.CodeClientInitFailed, ex.String(), err)
	}

	s.client = client
	s.state = domain.ClientState{Status: domain.ClientReady}
	r.log.Info(ctx, "exchange client ready", "exchange", ex.String())

	return client, nil
}

// State reports the current lifecycle state for ex.
func (r *ClientRegistry) State(ex domain.ExchangeID) domain.ClientState {
	r.mu.RLock()
	s, ok := r.slots[ex]
	r.mu.RUnlock()
	if !ok {
		return domain.ClientState{Status: domain.ClientUninitialized}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Invalidate drops the cached client for ex so the next GetOrCreate
// constructs a fresh one.
func (r *ClientRegistry) Invalidate(ex domain.ExchangeID) {
	r.mu.RLock()
	s, ok := r.slots[ex]
	r.mu.RUnlock()
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.state = domain.ClientState{Status: domain.ClientUninitialized}
}
