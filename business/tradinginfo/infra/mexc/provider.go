// Package mexc implements the MEXC trading-info provider.
//
// MEXC has no economical single-coin endpoint; the signed
// /capital/config/getall call returns every coin at once. The provider
// therefore implements the bulk contract and lets the service cache
// the whole snapshot.
package mexc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
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
	BaseAPIURL        = "https://api.mexc.com"
	configAllEndpoint = "/api/v3/capital/config/getall"
)

type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Provider fetches the whole-exchange coin snapshot from MEXC.
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
		ProviderName:   "mexc-tradinginfo",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("mexc trading-info client: %w", err)
	}

	return &Provider{http: http, cfg: cfg, log: log, now: time.Now}, nil
}

func (p *Provider) ExchangeID() market.ExchangeID { return market.ExchangeMEXC }

// sign produces the hex HMAC-SHA256 signature over the query string.
// The signature parameter itself must be appended last, so the query
// is built by hand instead of through the sorted builder params.
func (p *Provider) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(p.cfg.APISecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

type coinConfig struct {
	Coin        string `json:"coin"`
	NetworkList []struct {
		NetWork        string `json:"netWork"`
		WithdrawFee    string `json:"withdrawFee"`
		DepositEnable  bool   `json:"depositEnable"`
		WithdrawEnable bool   `json:"withdrawEnable"`
	} `json:"networkList"`
}

// FetchInfo satisfies the per-coin contract by filtering a full fetch;
// in practice the service always takes the bulk path for this venue.
func (p *Provider) FetchInfo(ctx context.Context, coin string) (domain.CoinTradingInfo, error) {
	all, err := p.FetchAll(ctx)
	if err != nil {
		return domain.CoinTradingInfo{}, err
	}
	for _, info := range all {
		if strings.EqualFold(info.Coin, coin) {
			return info, nil
		}
	}
	return domain.CoinTradingInfo{}, fmt.Errorf("mexc: no networks for %s", coin)
}

// FetchAll returns metadata for every coin MEXC lists.
func (p *Provider) FetchAll(ctx context.Context) ([]domain.CoinTradingInfo, error) {
	query := "timestamp=" + strconv.FormatInt(p.now().UnixMilli(), 10)
	signed := fmt.Sprintf("%s?%s&signature=%s", configAllEndpoint, query, p.sign(query))

	var coins []coinConfig
	resp, err := p.http.NewRequest().
		SetHeader("X-MEXC-APIKEY", p.cfg.APIKey).
		SetResult(&coins).
		Get(ctx, signed)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
	}

	out := make([]domain.CoinTradingInfo, 0, len(coins))
	for _, c := range coins {
		networks := make([]domain.NetworkInfo, 0, len(c.NetworkList))
		for _, n := range c.NetworkList {
			fee, ferr := decimal.NewFromString(n.WithdrawFee)
			if ferr != nil {
				fee = decimal.NewFromInt(-1)
			}
			networks = append(networks, domain.NetworkInfo{
				Network:         domain.NormalizeNetwork(n.NetWork),
				WithdrawFee:     fee,
				DepositEnabled:  n.DepositEnable,
				WithdrawEnabled: n.WithdrawEnable,
			})
		}
		out = append(out, domain.CoinTradingInfo{
			Exchange: market.ExchangeMEXC,
			Coin:     strings.ToUpper(c.Coin),
			Networks: networks,
		})
	}

	return out, nil
}
