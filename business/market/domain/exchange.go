// Package domain contains the core domain types for the market context.
package domain

// ExchangeID identifies a supported centralized exchange.
type ExchangeID string

const (
	ExchangeMEXC   ExchangeID = "MEXC"
	ExchangeGateIO ExchangeID = "GATEIO"
	ExchangeOKX    ExchangeID = "OKX"
	ExchangeKuCoin ExchangeID = "KUCOIN"
	ExchangeBybit  ExchangeID = "BYBIT"
	ExchangeBitget ExchangeID = "BITGET"
)

// AllExchanges lists every exchange the scanner knows how to talk to.
func AllExchanges() []ExchangeID {
	return []ExchangeID{
		ExchangeMEXC,
		ExchangeGateIO,
		ExchangeOKX,
		ExchangeKuCoin,
		ExchangeBybit,
		ExchangeBitget,
	}
}

func (e ExchangeID) String() string {
	return string(e)
}

// Valid reports whether the ID names a supported exchange.
func (e ExchangeID) Valid() bool {
	switch e {
	case ExchangeMEXC, ExchangeGateIO, ExchangeOKX, ExchangeKuCoin, ExchangeBybit, ExchangeBitget:
		return true
	}
	return false
}
