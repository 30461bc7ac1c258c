// Package mexc implements the MEXC market data adapter.
package mexc

import (
	"context"
	"encoding/json"
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
	BaseAPIURL      = "https://api.mexc.com"
	tickersEndpoint = "/api/v3/ticker/24hr"

	tracerName = "market.mexc"
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches spot tickers from MEXC.
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
		ProviderName:   "mexc",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("mexc http client: %w", err)
	}

	return &Client{
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Quote](circuitbreaker.DefaultConfig("mexc")),
		log:     log,
		tracer:  apm.NewTracer(tracerName),
	}, nil
}

func (c *Client) ExchangeID() domain.ExchangeID { return domain.ExchangeMEXC }

type tickerMessage struct {
	Symbol      string `json:"symbol"`
	BidPrice    string `json:"bidPrice"`
	AskPrice    string `json:"askPrice"`
	QuoteVolume string `json:"quoteVolume"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("mexc API error %d: %s", e.Code, e.Message)
}

func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
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
		return nil, apperror.External(apperror.CodeFetchFailed, "mexc", err)
	}

	ctx, span := c.tracer.StartSpanFromContext(ctx, "mexc.fetch_tickers")
	defer span.End()

	quotes, err := c.breaker.Execute(func() ([]domain.Quote, error) {
		var tickers []tickerMessage
		resp, err := c.http.NewRequest().
			SetResult(&tickers).
			SetErrorHandler(errorHandler).
			Get(ctx, tickersEndpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
		}

		quotes := make([]domain.Quote, 0, len(tickers))
		for _, t := range tickers {
			// MEXC symbols are concatenated, e.g. "BTCUSDT".
			pair, ok := domain.ParseConcatSymbol(t.Symbol)
			if !ok {
				continue
			}
			bid, berr := decimal.NewFromString(t.BidPrice)
			ask, aerr := decimal.NewFromString(t.AskPrice)
			if berr != nil || aerr != nil {
				continue
			}
			volume, verr := decimal.NewFromString(t.QuoteVolume)
			if verr != nil {
				volume = decimal.Zero
			}
			quotes = append(quotes, domain.NewQuote(domain.ExchangeMEXC, pair, bid, ask, volume))
		}
		return quotes, nil
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.External(apperror.CodeCircuitOpen, "mexc", err)
		}
		return nil, apperror.External(apperror.CodeFetchFailed, "mexc", err)
	}

	span.SetAttributes(attribute.Int("tickers", len(quotes)))
	c.log.Debug(ctx, "fetched tickers", "exchange", "mexc", "count", len(quotes))

	return quotes, nil
}
