// Package okx implements the OKX market data adapter.
package okx

import (
	"context"
	"encoding/json"
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
	BaseAPIURL      = "https://www.okx.com"
	tickersEndpoint = "/api/v5/market/tickers"

	tracerName = "market.okx"
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches spot tickers from OKX.
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
		ProviderName:   "okx",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("okx http client: %w", err)
	}

	return &Client{
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Quote](circuitbreaker.DefaultConfig("okx")),
		log:     log,
		tracer:  apm.NewTracer(tracerName),
	}, nil
}

func (c *Client) ExchangeID() domain.ExchangeID { return domain.ExchangeOKX }

// OKX wraps every payload in a {code, msg, data} envelope; code "0"
// means success even on HTTP 200.
type tickersEnvelope struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		InstID    string `json:"instId"`
		BidPx     string `json:"bidPx"`
		AskPx     string `json:"askPx"`
		VolCcy24h string `json:"volCcy24h"`
	} `json:"data"`
}

func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var env tickersEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Code != "" && env.Code != "0" {
			return fmt.Errorf("okx API error %s: %s", env.Code, env.Msg)
		}
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
		return nil, apperror.External(apperror.CodeFetchFailed, "okx", err)
	}

	ctx, span := c.tracer.StartSpanFromContext(ctx, "okx.fetch_tickers")
	defer span.End()

	quotes, err := c.breaker.Execute(func() ([]domain.Quote, error) {
		var env tickersEnvelope
		resp, err := c.http.NewRequest().
			SetQueryParam("instType", "SPOT").
			SetResult(&env).
			SetErrorHandler(errorHandler).
			Get(ctx, tickersEndpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
		}
		if env.Code != "0" {
			return nil, fmt.Errorf("okx API error %s: %s", env.Code, env.Msg)
		}

		quotes := make([]domain.Quote, 0, len(env.Data))
		for _, t := range env.Data {
			// instId is "BTC-USDT".
			tokens := strings.Split(t.InstID, "-")
			if len(tokens) != 2 {
				continue
			}
			bid, berr := decimal.NewFromString(t.BidPx)
			ask, aerr := decimal.NewFromString(t.AskPx)
			if berr != nil || aerr != nil {
				continue
			}
			volume, verr := decimal.NewFromString(t.VolCcy24h)
			if verr != nil {
				volume = decimal.Zero
			}
			quotes = append(quotes, domain.NewQuote(domain.ExchangeOKX,
				domain.NewPair(tokens[0], tokens[1]), bid, ask, volume))
		}
		return quotes, nil
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.External(apperror.CodeCircuitOpen, "okx", err)
		}
		return nil, apperror.External(apperror.CodeFetchFailed, "okx", err)
	}

	span.SetAttributes(attribute.Int("tickers", len(quotes)))
	c.log.Debug(ctx, "fetched tickers", "exchange", "okx", "count", len(quotes))

	return quotes, nil
}
