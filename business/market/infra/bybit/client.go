// Package bybit implements the Bybit market data adapter.
package bybit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/apm"
	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
	"github.com/protsenkopavel/CryptoBridge/internal/circuitbreaker"
	"github.com/protsenkopavel/CryptoBridge/internal/httpclient"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"github.com/protsenkopavel/CryptoBridge/internal/ratelimit"
	"github.com/shopspring/decimal"
)

const (
	BaseAPIURL      = "https://api.bybit.com"
	tickersEndpoint = "/v5/market/tickers"

	tracerName = "market.bybit"
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches spot tickers from Bybit.
type Client struct {
	http    httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]domain.Quote]
	log     logger.LoggerInterface
	tracer  apm.Tracer
}

func New(cfg Config, log logger.LoggerInterface) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}

	http, err := httpclient.New(httpclient.Options{
		ProviderName:   "bybit",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("bybit http client: %w", err)
	}

	return &Client{
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Quote](circuitbreaker.DefaultConfig("bybit")),
		log:     log,
		tracer:  apm.NewTracer(tracerName),
	}, nil
}

func (c *Client) ExchangeID() domain.ExchangeID { return domain.ExchangeBybit }

// Bybit v5 wraps payloads in {retCode, retMsg, result}; retCode 0 is
// success.
type tickersEnvelope struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol      string `json:"symbol"`
			Bid1Price   string `json:"bid1Price"`
			Ask1Price   string `json:"ask1Price"`
			Turnover24h string `json:"turnover24h"`
		} `json:"list"`
	} `json:"result"`
}

func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}

func (c *Client) FetchQuotes(ctx context.Context, pairs []domain.TradingPair) ([]domain.Quote, error) {
	quotes, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterQuotes(quotes, pairs), nil
}

func (c *Client) FetchPairs(ctx context.Context) ([]domain.TradingPair, error) {
	quotes, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	pairs := make([]domain.TradingPair, 0, len(quotes))
	for _, q := range quotes {
		pairs = append(pairs, q.Pair)
	}
	return pairs, nil
}

func (c *Client) fetchAll(ctx context.Context) ([]domain.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperror.External(apperror.CodeFetchFailed, "bybit", err)
	}

	ctx, span := c.tracer.StartSpanFromContext(ctx, "bybit.fetch_tickers")
	defer span.End()

	quotes, err := c.breaker.Execute(func() ([]domain.Quote, error) {
		var env tickersEnvelope
		resp, err := c.http.NewRequest().
			SetQueryParam("category", "spot").
			SetResult(&env).
			SetErrorHandler(errorHandler).
			Get(ctx, tickersEndpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
		}
		if env.RetCode != 0 {
			return nil, fmt.Errorf("bybit API error %d: %s", env.RetCode, env.RetMsg)
		}

		quotes := make([]domain.Quote, 0, len(env.Result.List))
		for _, t := range env.Result.List {
			pair, ok := domain.ParseConcatSymbol(t.Symbol)
			if !ok {
				continue
			}
			bid, berr := decimal.NewFromString(t.Bid1Price)
			ask, aerr := decimal.NewFromString(t.Ask1Price)
			if berr != nil || aerr != nil {
				continue
			}
			volume, verr := decimal.NewFromString(t.Turnover24h)
			if verr != nil {
				volume = decimal.Zero
			}
			quotes = append(quotes, domain.NewQuote(domain.ExchangeBybit, pair, bid, ask, volume))
		}
		return quotes, nil
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.External(apperror.CodeCircuitOpen, "bybit", err)
		}
		return nil, apperror.External(apperror.CodeFetchFailed, "bybit", err)
	}

	span.SetAttributes(attribute.Int("tickers", len(quotes)))
	c.log.Debug(ctx, "fetched tickers", "exchange", "bybit", "count", len(quotes))

	return quotes, nil
}
