package domain

import "strings"

// Canonical network tokens. Venues report the same physical network
// under wildly different labels; fee comparison only makes sense after
// mapping them onto one token.
const (
	NetworkERC20     = "ERC20"
	NetworkBEP20     = "BEP20"
	NetworkTRC20     = "TRC20"
	NetworkSolana    = "SOL"
	NetworkPolygon   = "POLYGON"
	NetworkArbitrum  = "ARBITRUM"
	NetworkOptimism  = "OPTIMISM"
	NetworkAvalanche = "AVAXC"
	NetworkBitcoin   = "BTC"
	NetworkTon       = "TON"
	NetworkBase      = "BASE"
)

var networkAliases = map[string]string{
	"ETH":                NetworkERC20,
	"ERC20":              NetworkERC20,
	"ERC-20":             NetworkERC20,
	"ETHEREUM":           NetworkERC20,
	"ETHEREUM(ERC20)":    NetworkERC20,
	"ETH(ERC20)":         NetworkERC20,
	"BSC":                NetworkBEP20,
	"BNB":                NetworkBEP20,
	"BEP20":              NetworkBEP20,
	"BEP20(BSC)":         NetworkBEP20,
	"BNB SMART CHAIN":    NetworkBEP20,
	"BNB SMART CHAIN(BEP20)": NetworkBEP20,
	"TRX":                NetworkTRC20,
	"TRC20":              NetworkTRC20,
	"TRON":               NetworkTRC20,
	"TRON(TRC20)":        NetworkTRC20,
	"SOL":                NetworkSolana,
	"SOLANA":             NetworkSolana,
	"MATIC":              NetworkPolygon,
	"POL":                NetworkPolygon,
	"POLYGON":            NetworkPolygon,
	"POLYGON POS":        NetworkPolygon,
	"ARB":                NetworkArbitrum,
	"ARBITRUM":           NetworkArbitrum,
	"ARBITRUM ONE":       NetworkArbitrum,
	"ARBITRUMONE":        NetworkArbitrum,
	"OP":                 NetworkOptimism,
	"OPTIMISM":           NetworkOptimism,
	"AVAX":               NetworkAvalanche,
	"AVAXC":              NetworkAvalanche,
	"AVAX C-CHAIN":       NetworkAvalanche,
	"AVALANCHE C CHAIN":  NetworkAvalanche,
	"BTC":                NetworkBitcoin,
	"BITCOIN":            NetworkBitcoin,
	"TON":                NetworkTon,
	"TONCOIN":            NetworkTon,
	"THE OPEN NETWORK":   NetworkTon,
	"BASE":               NetworkBase,
}

// NormalizeNetwork maps a venue's free-form network label onto a
// canonical token. Unknown labels come back upper-cased but otherwise
// untouched so they still group within a single venue.
func NormalizeNetwork(raw string) string {
	label := strings.ToUpper(strings.TrimSpace(raw))
	if canonical, ok := networkAliases[label]; ok {
		return canonical
	}

	// Venues love decorating labels with the chain name in parens,
	// e.g. "USDT-TRON(TRC20)". Retry on the parenthesized token.
	if open := strings.IndexByte(label, '('); open >= 0 {
		if close := strings.IndexByte(label, ')'); close > open {
			if canonical, ok := networkAliases[label[open+1:close]]; ok {
				return canonical
			}
		}
		label = strings.TrimSpace(label[:open])
		if canonical, ok := networkAliases[label]; ok {
			return canonical
		}
	}

	return label
}
