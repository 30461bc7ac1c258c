// Package domain contains the core domain types for the spread context.
package domain

import (
	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	tradinginfo "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/domain"
	"github.com/shopspring/decimal"
)

// SpreadCandidate is a buy/sell leg combination under evaluation.
type SpreadCandidate struct {
	BuyExchange  market.ExchangeID `json:"buyExchange"`
	BuyPrice     decimal.Decimal   `json:"buyPrice"`
	BuyVolume    decimal.Decimal   `json:"buyVolume"`
	SellExchange market.ExchangeID `json:"sellExchange"`
	SellPrice    decimal.Decimal   `json:"sellPrice"`
	SellVolume   decimal.Decimal   `json:"sellVolume"`
}

// Spread is the absolute gap: sell price minus buy price.
func (c SpreadCandidate) Spread() decimal.Decimal {
	return c.SellPrice.Sub(c.BuyPrice)
}

// ProfitPercent is the spread relative to the buy price, in percent.
func (c SpreadCandidate) ProfitPercent() decimal.Decimal {
	if c.BuyPrice.IsZero() {
		return decimal.Zero
	}
	return c.Spread().Div(c.BuyPrice).Mul(decimal.NewFromInt(100))
}

// SpreadResult is an accepted candidate enriched with both legs'
// network metadata. This is the unit published outward.
type SpreadResult struct {
	Pair      market.TradingPair          `json:"pair"`
	Candidate SpreadCandidate             `json:"candidate"`
	BuyInfo   tradinginfo.CoinTradingInfo `json:"buyInfo"`
	SellInfo  tradinginfo.CoinTradingInfo `json:"sellInfo"`
}
