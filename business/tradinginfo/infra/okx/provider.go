// Package okx implements the OKX trading-info provider.
package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/httpclient"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"github.com/shopspring/decimal"
)

const (
	BaseAPIURL         = "https://www.okx.com"
	currenciesEndpoint = "/api/v5/asset/currencies"
)

// Config holds OKX API credentials. The currencies endpoint is signed,
// so all three fields are required.
type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Passphrase string
	Timeout    time.Duration
}

// Provider fetches per-coin network metadata from OKX.
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
		ProviderName:   "okx-tradinginfo",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("okx trading-info client: %w", err)
	}

	return &Provider{http: http, cfg: cfg, log: log, now: time.Now}, nil
}

func (p *Provider) ExchangeID() market.ExchangeID { return market.ExchangeOKX }

// sign produces the OK-ACCESS-SIGN header: base64 HMAC-SHA256 over
// timestamp + method + requestPath.
func (p *Provider) sign(timestamp, method, requestPath string) string {
	mac := hmac.New(sha256.New, []byte(p.cfg.APISecret))
	mac.Write([]byte(timestamp + method + requestPath))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type currenciesEnvelope struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Ccy    string `json:"ccy"`
		Chain  string `json:"chain"` // e.g. "BTC-Bitcoin"
		MinFee string `json:"minFee"`
		CanDep bool   `json:"canDep"`
		CanWd  bool   `json:"canWd"`
	} `json:"data"`
}

func (p *Provider) FetchInfo(ctx context.Context, coin string) (domain.CoinTradingInfo, error) {
	coin = strings.ToUpper(coin)
	requestPath := fmt.Sprintf("%s?ccy=%s", currenciesEndpoint, coin)
	timestamp := p.now().UTC().Format("2006-01-02T15:04:05.000Z")

	var env currenciesEnvelope
	resp, err := p.http.NewRequest().
		SetHeader("OK-ACCESS-KEY", p.cfg.APIKey).
		SetHeader("OK-ACCESS-SIGN", p.sign(timestamp, "GET", requestPath)).
		SetHeader("OK-ACCESS-TIMESTAMP", timestamp).
		SetHeader("OK-ACCESS-PASSPHRASE", p.cfg.Passphrase).
		SetResult(&env).
		Get(ctx, requestPath)
	if err != nil {
		return domain.CoinTradingInfo{}, err
	}
	if resp.IsError() {
		return domain.CoinTradingInfo{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
	}
	if env.Code != "0" {
		return domain.CoinTradingInfo{}, fmt.Errorf("okx API error %s: %s", env.Code, env.Msg)
	}
	if len(env.Data) == 0 {
		return domain.CoinTradingInfo{}, fmt.Errorf("okx: no networks for %s", coin)
	}

	networks := make([]domain.NetworkInfo, 0, len(env.Data))
	for _, d := range env.Data {
		fee, ferr := decimal.NewFromString(d.MinFee)
		if ferr != nil {
			fee = decimal.NewFromInt(-1)
		}
		// Chain labels look like "BTC-Bitcoin"; the part after the
		// coin prefix names the network.
		label := strings.TrimPrefix(d.Chain, d.Ccy+"-")
		networks = append(networks, domain.NetworkInfo{
			Network:         domain.NormalizeNetwork(label),
			WithdrawFee:     fee,
			DepositEnabled:  d.CanDep,
			WithdrawEnabled: d.CanWd,
		})
	}

	return domain.CoinTradingInfo{
		Exchange: market.ExchangeOKX,
		Coin:     coin,
		Networks: networks,
	}, nil
}
