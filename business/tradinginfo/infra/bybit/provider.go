// Package bybit implements the Bybit trading-info provider.
package bybit

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
	BaseAPIURL       = "https://api.bybit.com"
	coinInfoEndpoint = "/v5/asset/coin/query-info"

	recvWindow = "5000"
)

type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Provider fetches per-coin network metadata from Bybit.
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
		ProviderName:   "bybit-tradinginfo",
		BaseURL:        baseURL,
		RequestTimeout: cfg.Timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("bybit trading-info client: %w", err)
	}

	return &Provider{http: http, cfg: cfg, log: log, now: time.Now}, nil
}

func (p *Provider) ExchangeID() market.ExchangeID { return market.ExchangeBybit }

// sign builds the X-BAPI-SIGN header: hex HMAC-SHA256 over
// timestamp + apiKey + recvWindow + queryString.
func (p *Provider) sign(timestamp, query string) string {
	mac := hmac.New(sha256.New, []byte(p.cfg.APISecret))
	mac.Write([]byte(timestamp + p.cfg.APIKey + recvWindow + query))
	return hex.EncodeToString(mac.Sum(nil))
}

type coinInfoEnvelope struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Rows []struct {
			Coin   string `json:"coin"`
			Chains []struct {
				Chain         string `json:"chain"`
				WithdrawFee   string `json:"withdrawFee"`
				ChainDeposit  string `json:"chainDeposit"`  // "1" = enabled
				ChainWithdraw string `json:"chainWithdraw"` // "1" = enabled
			} `json:"chains"`
		} `json:"rows"`
	} `json:"result"`
}

func (p *Provider) FetchInfo(ctx context.Context, coin string) (domain.CoinTradingInfo, error) {
	coin = strings.ToUpper(coin)
	query := "coin=" + coin
	timestamp := strconv.FormatInt(p.now().UnixMilli(), 10)

	var env coinInfoEnvelope
	resp, err := p.http.NewRequest().
		SetHeader("X-BAPI-API-KEY", p.cfg.APIKey).
		SetHeader("X-BAPI-TIMESTAMP", timestamp).
		SetHeader("X-BAPI-RECV-WINDOW", recvWindow).
		SetHeader("X-BAPI-SIGN", p.sign(timestamp, query)).
		SetResult(&env).
		Get(ctx, coinInfoEndpoint+"?"+query)
	if err != nil {
		return domain.CoinTradingInfo{}, err
	}
	if resp.IsError() {
		return domain.CoinTradingInfo{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
	}
	if env.RetCode != 0 {
		return domain.CoinTradingInfo{}, fmt.Errorf("bybit API error %d: %s", env.RetCode, env.RetMsg)
	}

	for _, row := range env.Result.Rows {
		if !strings.EqualFold(row.Coin, coin) {
			continue
		}

		networks := make([]domain.NetworkInfo, 0, len(row.Chains))
		for _, ch := range row.Chains {
			fee, ferr := decimal.NewFromString(ch.WithdrawFee)
			if ferr != nil {
				fee = decimal.NewFromInt(-1)
			}
			networks = append(networks, domain.NetworkInfo{
				Network:         domain.NormalizeNetwork(ch.Chain),
				WithdrawFee:     fee,
				DepositEnabled:  ch.ChainDeposit == "1",
				WithdrawEnabled: ch.ChainWithdraw == "1",
			})
		}

		return domain.CoinTradingInfo{
			Exchange: market.ExchangeBybit,
			Coin:     coin,
			Networks: networks,
		}, nil
	}

	return domain.CoinTradingInfo{}, fmt.Errorf("bybit: no networks for %s", coin)
}
