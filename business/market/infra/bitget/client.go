// Package bitget implements the Bitget market data adapter.
package bitget

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
	BaseAPIURL      = "https://api.bitget.com"
	tickersEndpoint = "/api/v2/spot/market/tickers"

	tracerName = "market.bitget"
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches spot tickers from Bitget.
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
		ProviderName:   "bitget",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("bitget http client: %w", err)
	}

	return &Client{
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Quote](circuitbreaker.DefaultConfig("bitget")),
		log:     log,
		tracer:  apm.NewTracer(tracerName),
	}, nil
}

func (c *Client) ExchangeID() domain.ExchangeID { return domain.ExchangeBitget }

// Bitget wraps payloads in {code, msg, data}; "00000" is success.
type tickersEnvelope struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Symbol     string `json:"symbol"`
		BidPr      string `json:"bidPr"`
		AskPr      string `json:"askPr"`
		USDTVolume string `json:"usdtVolume"`
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
		return nil, apperror.External(apperror.CodeFetchFailed, "bitget", err)
	}

	ctx, span := c.tracer.StartSpanFromContext(ctx, "bitget.fetch_tickers")
	defer span.End()

	quotes, err := c.breaker.Execute(func() ([]domain.Quote, error) {
		var env tickersEnvelope
		resp, err := c.http.NewRequest().
			SetResult(&env).
			SetErrorHandler(errorHandler).
			Get(ctx, tickersEndpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
		}
		if env.Code != "00000" {
			return nil, fmt.Errorf("bitget API error %s: %s", env.Code, env.Msg)
		}

		quotes := make([]domain.Quote, 0, len(env.Data))
		for _, t := range env.Data {
			pair, ok := domain.ParseConcatSymbol(t.Symbol)
			if !ok {
				continue
			}
			bid, berr := decimal.NewFromString(t.BidPr)
			ask, aerr := decimal.NewFromString(t.AskPr)
			if berr != nil || aerr != nil {
				continue
			}
			volume, verr := decimal.NewFromString(t.USDTVolume)
			if verr != nil {
				volume = decimal.Zero
			}
			quotes = append(quotes, domain.NewQuote(domain.ExchangeBitget, pair, bid, ask, volume))
		}
		return quotes, nil
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.External(apperror.CodeCircuitOpen, "bitget", err)
		}
		return nil, apperror.External(apperror.CodeFetchFailed, "bitget", err)
	}

	span.SetAttributes(attribute.Int("tickers", len(quotes)))
	c.log.Debug(ctx, "fetched tickers", "exchange", "bitget", "count", len(quotes))

	return quotes, nil
}
