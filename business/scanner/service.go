package scanner

import (
	"context"
	"strings"
	"time"

	"github.com/protsenkopavel/CryptoBridge/business/coinlist"
	marketapp "github.com/protsenkopavel/CryptoBridge/business/market/app"
	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	spreadapp "github.com/protsenkopavel/CryptoBridge/business/spread/app"
	spread "github.com/protsenkopavel/CryptoBridge/business/spread/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/config"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

// QuoteSource is the slice of the aggregator the scanner depends on.
type QuoteSource interface {
	Fetch(ctx context.Context, exchanges []market.ExchangeID, pairs []market.TradingPair) (market.QuoteTable, error)
	AvailablePairs(ctx context.Context, exchanges []market.ExchangeID) ([]market.TradingPair, error)
}

// SpreadEvaluator is the slice of the spread engine the scanner depends on.
type SpreadEvaluator interface {
	BestSpreads(ctx context.Context, pairs []market.TradingPair, table market.QuoteTable, bounds spreadapp.Bounds) []spread.SpreadResult
}

// PairFilter narrows the candidate pair set before aggregation.
type PairFilter interface {
	Apply(ctx context.Context, pairs []market.TradingPair) []market.TradingPair
}

var (
	_ QuoteSource     = (*marketapp.Aggregator)(nil)
	_ SpreadEvaluator = (*spreadapp.Engine)(nil)
	_ PairFilter      = (*coinlist.Filter)(nil)
)

// Service drives the scan loop: every interval it resolves the pair set,
// fetches quotes across venues, evaluates spreads and publishes the
// results. Failures within a cycle are logged and the next cycle runs
// normally.
type Service struct {
	quotes    QuoteSource
	evaluator SpreadEvaluator
	filter    PairFilter
	publisher Publisher
	cfg       config.ScannerConfig
	log       logger.LoggerInterface

	exchanges []market.ExchangeID
	pairs     []market.TradingPair
}

func NewService(
	quotes QuoteSource,
	evaluator SpreadEvaluator,
	filter PairFilter,
	publisher Publisher,
	cfg config.ScannerConfig,
	log logger.LoggerInterface,
) *Service {
	s := &Service{
		quotes:    quotes,
		evaluator: evaluator,
		filter:    filter,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
	s.exchanges = parseExchanges(cfg.Exchanges, log)
	s.pairs = parsePairs(cfg.Pairs, log)
	return s
}

func parseExchanges(names []string, log logger.LoggerInterface) []market.ExchangeID {
	var out []market.ExchangeID
	for _, name := range names {
		ex := market.ExchangeID(strings.ToUpper(strings.TrimSpace(name)))
		if !ex.Valid() {
			log.Warn(context.Background(), "skipping unknown exchange in scanner config", "exchange", name)
			continue
		}
		out = append(out, ex)
	}
	return out
}

func parsePairs(raw []string, log logger.LoggerInterface) []market.TradingPair {
	var out []market.TradingPair
	for _, r := range raw {
		pair, err := market.ParsePair(r)
		if err != nil {
			log.Warn(context.Background(), "skipping malformed pair in scanner config", "pair", r, "error", err)
			continue
		}
		out = append(out, pair)
	}
	return out
}

// Run blocks until ctx is cancelled, scanning once immediately and then
// on every tick.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info(ctx, "scanner started",
		"interval", s.cfg.Interval.String(),
		"exchanges", len(s.exchanges),
		"configuredPairs", len(s.pairs))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.Scan(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "scanner stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan performs a single scan cycle and returns the published results.
func (s *Service) Scan(ctx context.Context) []spread.SpreadResult {
	started := time.Now()

	pairs, err := s.resolvePairs(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to resolve pair set, skipping cycle", "error", err)
		return nil
	}
	if len(pairs) == 0 {
		s.log.Warn(ctx, "no pairs to scan after filtering")
		return nil
	}

	table, err := s.quotes.Fetch(ctx, s.exchanges, pairs)
	if err != nil {
		s.log.Error(ctx, "quote aggregation failed, skipping cycle", "error", err)
		return nil
	}

	bounds := spreadapp.Bounds{
		MinVolume:        s.cfg.MinVolumeDecimal(),
		MinProfitPercent: s.cfg.MinProfitDecimal(),
		MaxProfitPercent: s.cfg.MaxProfitDecimal(),
	}
	results := s.evaluator.BestSpreads(ctx, pairs, table, bounds)

	for _, result := range results {
		if err := s.publisher.Publish(ctx, result); err != nil {
			s.log.Warn(ctx, "failed to publish opportunity",
				"pair", result.Pair.String(), "error", err)
		}
	}

	s.log.Info(ctx, "scan cycle complete",
		"pairs", len(pairs),
		"opportunities", len(results),
		"elapsed", time.Since(started).String())
	return results
}

func (s *Service) resolvePairs(ctx context.Context) ([]market.TradingPair, error) {
	pairs := s.pairs
	if len(pairs) == 0 {
		discovered, err := s.quotes.AvailablePairs(ctx, s.exchanges)
		if err != nil {
			return nil, err
		}
		pairs = discovered
	}
	if s.filter != nil {
		pairs = s.filter.Apply(ctx, pairs)
	}
	return pairs, nil
}
