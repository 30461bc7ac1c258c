// Package domain contains the core domain types for the trading-info context.
package domain

import (
	"github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/shopspring/decimal"
)

// NetworkInfo describes one blockchain network of a coin on one
// exchange: withdraw fee plus deposit/withdraw enablement.
type NetworkInfo struct {
	Network         string          `json:"network"`
	WithdrawFee     decimal.Decimal `json:"withdrawFee"`
	DepositEnabled  bool            `json:"depositEnabled"`
	WithdrawEnabled bool            `json:"withdrawEnabled"`
}

// CoinTradingInfo is the per-network metadata for a coin on an
// exchange. A stub value stands in for "unknown" so that missing data
// is distinguishable from a confirmed-disabled network.
type CoinTradingInfo struct {
	Exchange domain.ExchangeID `json:"exchange"`
	Coin     string            `json:"coin"`
	Networks []NetworkInfo     `json:"networks"`
}

const stubNetwork = "N/A"

// Stub returns the "unknown" placeholder: fee -1, everything disabled.
func Stub(ex domain.ExchangeID, coin string) CoinTradingInfo {
	return CoinTradingInfo{
		Exchange: ex,
		Coin:     coin,
		Networks: []NetworkInfo{{
			Network:         stubNetwork,
			WithdrawFee:     decimal.NewFromInt(-1),
			DepositEnabled:  false,
			WithdrawEnabled: false,
		}},
	}
}

// IsStub reports whether the info is the unknown placeholder.
func (c CoinTradingInfo) IsStub() bool {
	return len(c.Networks) == 1 && c.Networks[0].Network == stubNetwork
}

// TransferableNetworks returns the networks usable for moving the coin
// between venues, i.e. withdraw enabled on this record.
func (c CoinTradingInfo) TransferableNetworks() []NetworkInfo {
	var out []NetworkInfo
	for _, n := range c.Networks {
		if n.WithdrawEnabled {
			out = append(out, n)
		}
	}
	return out
}
