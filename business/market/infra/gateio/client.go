// Package gateio implements the Gate.io market data adapter.
package gateio

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
	BaseAPIURL      = "https://api.gateio.ws"
	tickersEndpoint = "/api/v4/spot/tickers"

	tracerName = "market.gateio"
)

// Config holds Gate.io client settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches spot tickers from Gate.io.
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
		ProviderName:   "gateio",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("gateio http client: %w", err)
	}

	return &Client{
		http:    http,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Quote](circuitbreaker.DefaultConfig("gateio")),
		log:     log,
		tracer:  apm.NewTracer(tracerName),
	}, nil
}

func (c *Client) ExchangeID() domain.ExchangeID { return domain.ExchangeGateIO }

type tickerMessage struct {
	CurrencyPair string `json:"currency_pair"`
	HighestBid   string `json:"highest_bid"`
	LowestAsk    string `json:"lowest_ask"`
	QuoteVolume  string `json:"quote_volume"`
}

type apiError struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gateio API error %s: %s", e.Label, e.Message)
}

func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Label != "" {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}

// FetchQuotes returns quotes for the requested pairs, or the whole
// market when pairs is empty.
func (c *Client) FetchQuotes(ctx context.Context, pairs []domain.TradingPair) ([]domain.Quote, error) {
	quotes, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterQuotes(quotes, pairs), nil
}

// FetchPairs lists the venue's tradable pairs.
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
		return nil, apperror.External(apperror.CodeFetchFailed, "gateio", err)
	}

	ctx, span := c.tracer.StartSpanFromContext(ctx, "gateio.fetch_tickers")
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
			pair, perr := domain.ParsePair(t.CurrencyPair)
			if perr != nil {
				continue
			}
			bid, berr := decimal.NewFromString(t.HighestBid)
			ask, aerr := decimal.NewFromString(t.LowestAsk)
			if berr != nil || aerr != nil {
				continue
			}
			volume, verr := decimal.NewFromString(t.QuoteVolume)
			if verr != nil {
				volume = decimal.Zero
			}
			quotes = append(quotes, domain.NewQuote(domain.ExchangeGateIO, pair, bid, ask, volume))
		}
		return quotes, nil
	})
	if err != nil {
		span.NoticeError(err)
		if circuitbreaker.IsOpen(err) {
			return nil, apperror.External(apperror.CodeCircuitOpen, "gateio", err)
		}
		return nil, apperror.External(apperror.CodeFetchFailed, "gateio", err)
	}

	span.SetAttributes(attribute.Int("tickers", len(quotes)))
	c.log.Debug(ctx, "fetched tickers", "exchange", "gateio", "count", len(quotes))

	return quotes, nil
}
