// Package kucoin implements the KuCoin market data adapter.
package kucoin

import (
	"context"
	"fmt"
	"strings"
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
	BaseAPIURL         = "https://api.kucoin.com"
	allTickersEndpoint = "/api/v1/market/allTickers"

	tracerName = "market.kucoin"
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches spot tickers from KuCoin.
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
		ProviderName:   "kucoin",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("kucoin http client: %w", err)
	}

	return &Client{
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Quote](circuitbreaker.DefaultConfig("kucoin")),
		log:     log,
		tracer:  apm.NewTracer(tracerName),
	}, nil
}

func (c *Client) ExchangeID() domain.ExchangeID { return domain.ExchangeKuCoin }

// KuCoin wraps responses in {code, data}; "200000" is success.
type allTickersEnvelope struct {
	Code string `json:"code"`
	Data struct {
		Ticker []struct {
			Symbol   string `json:"symbol"`
			Buy      string `json:"buy"`
			Sell     string `json:"sell"`
			VolValue string `json:"volValue"`
		} `json:"ticker"`
	} `json:"data"`
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
		return nil, apperror.External(apperror.CodeFetchFailed, "kucoin", err)
	}

	ctx, span := c.tracer.StartSpanFromContext(ctx, "kucoin.fetch_tickers")
	defer span.End()

	quotes, err := c.breaker.Execute(func() ([]domain.Quote, error) {
		var env allTickersEnvelope
		resp, err := c.http.NewRequest().
			SetResult(&env).
			SetErrorHandler(errorHandler).
			Get(ctx, allTickersEndpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
		}
		if env.Code != "200000" {
			return nil, fmt.Errorf("kucoin API error %s", env.Code)
		}

		quotes := make([]domain.Quote, 0, len(env.Data.Ticker))
		for _, t := range env.Data.Ticker {
			// Symbols are "BTC-USDT".
			tokens := strings.Split(t.Symbol, "-")
			if len(tokens) != 2 {
				continue
			}
			bid, berr := decimal.NewFromString(t.Buy)
			ask, aerr := decimal.NewFromString(t.Sell)
			if berr != nil || aerr != nil {
				continue
			}
			volume, verr := decimal.NewFromString(t.VolValue)
			if verr != nil {
				volume = decimal.Zero
			}
			quotes = append(quotes, domain.NewQuote(domain.ExchangeKuCoin,
				domain.NewPair(tokens[0], tokens[1]), bid, ask, volume))
		}
		return quotes, nil
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.External(apperror.CodeCircuitOpen, "kucoin", err)
		}
		return nil, apperror.External(apperror.CodeFetchFailed, "kucoin", err)
	}

	span.SetAttributes(attribute.Int("tickers", len(quotes)))
	c.log.Debug(ctx, "fetched tickers", "exchange", "kucoin", "count", len(quotes))

	return quotes, nil
}
