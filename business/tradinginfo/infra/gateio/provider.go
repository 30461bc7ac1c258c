// Package gateio implements the Gate.io trading-info provider.
package gateio

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/httpclient"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"github.com/shopspring/decimal"
)

const (
	BaseAPIURL             = "https://api.gateio.ws"
	withdrawStatusEndpoint = "/api/v4/wallet/withdraw_status"
	currencyChainsEndpoint = "/api/v4/wallet/currency_chains"
)

type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Provider fetches per-coin network metadata from Gate.io. Withdraw
// fees come from the signed withdraw_status endpoint; enablement flags
// from the public currency_chains endpoint.
type Provider struct {
	http httpclient.Client
	cfg  Config
	log  logger.LoggerInterface
	now  func() time.Time
}

func New(cfg Config, log logger.LoggerInterface) (*Provider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	cfg.BaseURL = baseURL

	http, err := httpclient.New(httpclient.Options{
		ProviderName:   "gateio-tradinginfo",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("gateio trading-info client: %w", err)
	}

	return &Provider{http: http, cfg: cfg, log: log, now: time.Now}, nil
}

func (p *Provider) ExchangeID() market.ExchangeID { return market.ExchangeGateIO }

// sign builds the Gate.io v4 signature: HMAC-SHA512 over
// method\npath\nquery\nsha512(body)\ntimestamp, hex encoded.
func (p *Provider) sign(method, path, query, timestamp string) string {
	bodyHash := sha512.Sum512([]byte(""))
	payload := strings.Join([]string{
		method, path, query, hex.EncodeToString(bodyHash[:]), timestamp,
	}, "\n")

	mac := hmac.New(sha512.New, []byte(p.cfg.APISecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

type withdrawStatus struct {
	Currency            string            `json:"currency"`
	WithdrawFixOnChains map[string]string `json:"withdraw_fix_on_chains"`
}

type currencyChain struct {
	Chain             string `json:"chain"`
	IsDepositDisabled int    `json:"is_deposit_disabled"`
	IsWithdrawDisabled int   `json:"is_withdraw_disabled"`
}

func (p *Provider) FetchInfo(ctx context.Context, coin string) (domain.CoinTradingInfo, error) {
	coin = strings.ToUpper(coin)

	fees, err := p.fetchFees(ctx, coin)
	if err != nil {
		return domain.CoinTradingInfo{}, err
	}

	chains, err := p.fetchChains(ctx, coin)
	if err != nil {
		return domain.CoinTradingInfo{}, err
	}
	if len(chains) == 0 {
		return domain.CoinTradingInfo{}, fmt.Errorf("gateio: no networks for %s", coin)
	}

	networks := make([]domain.NetworkInfo, 0, len(chains))
	for _, ch := range chains {
		fee := decimal.NewFromInt(-1)
		if raw, ok := fees[ch.Chain]; ok {
			if parsed, perr := decimal.NewFromString(raw); perr == nil {
				fee = parsed
			}
		}
		networks = append(networks, domain.NetworkInfo{
			Network:         domain.NormalizeNetwork(ch.Chain),
			WithdrawFee:     fee,
			DepositEnabled:  ch.IsDepositDisabled == 0,
			WithdrawEnabled: ch.IsWithdrawDisabled == 0,
		})
	}

	return domain.CoinTradingInfo{
		Exchange: market.ExchangeGateIO,
		Coin:     coin,
		Networks: networks,
	}, nil
}

func (p *Provider) fetchFees(ctx context.Context, coin string) (map[string]string, error) {
	query := "currency=" + coin
	timestamp := strconv.FormatInt(p.now().Unix(), 10)

	var statuses []withdrawStatus
	resp, err := p.http.NewRequest().
		SetHeader("KEY", p.cfg.APIKey).
		SetHeader("Timestamp", timestamp).
		SetHeader("SIGN", p.sign("GET", withdrawStatusEndpoint, query, timestamp)).
		SetResult(&statuses).
		Get(ctx, withdrawStatusEndpoint+"?"+query)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
	}

	for _, s := range statuses {
		if strings.EqualFold(s.Currency, coin) {
			return s.WithdrawFixOnChains, nil
		}
	}
	return nil, nil
}

func (p *Provider) fetchChains(ctx context.Context, coin string) ([]currencyChain, error) {
	var chains []currencyChain
	resp, err := p.http.NewRequest().
		SetQueryParam("currency", coin).
		SetResult(&chains).
		Get(ctx, currencyChainsEndpoint)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
	}
	return chains, nil
}
