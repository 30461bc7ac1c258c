package coinlist

import (
	"context"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

// Filter drops pairs whose counter currency is not whitelisted or is
// explicitly blacklisted. An empty whitelist allows everything not
// blacklisted.
type Filter struct {
	store Store
	log   logger.LoggerInterface
}

func NewFilter(store Store, log logger.LoggerInterface) *Filter {
	return &Filter{store: store, log: log}
}

// Apply returns the pairs that pass both lists. When the store cannot
// be read the input is returned unfiltered; list filtering is an
// optimization, not a correctness requirement.
func (f *Filter) Apply(ctx context.Context, pairs []market.TradingPair) []market.TradingPair {
	whitelist, err := f.store.ListWhitelist(ctx)
	if err != nil {
		f.log.Warn(ctx, "whitelist unavailable, skipping list filter", "error", err)
		return pairs
	}
	blacklist, err := f.store.ListBlacklist(ctx)
	if err != nil {
		f.log.Warn(ctx, "blacklist unavailable, skipping list filter", "error", err)
		return pairs
	}

	out := make([]market.TradingPair, 0, len(pairs))
	for _, p := range pairs {
		if _, blocked := blacklist[p.Counter]; blocked {
			continue
		}
		if len(whitelist) > 0 {
			if _, allowed := whitelist[p.Counter]; !allowed {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
