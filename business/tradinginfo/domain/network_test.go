package domain

import "testing"

func TestNormalizeNetwork(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ETH", NetworkERC20},
		{"erc-20", NetworkERC20},
		{"Ethereum(ERC20)", NetworkERC20},
		{"BSC", NetworkBEP20},
		{"BNB Smart Chain(BEP20)", NetworkBEP20},
		{"Tron(TRC20)", NetworkTRC20},
		{"TRX", NetworkTRC20},
		{"Solana", NetworkSolana},
		{"Polygon PoS", NetworkPolygon},
		{"Arbitrum One", NetworkArbitrum},
		{"AVAX C-Chain", NetworkAvalanche},
		{"USDT-TRON(TRC20)", NetworkTRC20},
		{" ton ", NetworkTon},
		// Unknown labels pass through upper-cased.
		{"KASPA", "KASPA"},
		{"some new chain", "SOME NEW CHAIN"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeNetwork(tt.raw); got != tt.want {
				t.Errorf("NormalizeNetwork(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeNetwork_CrossVenueAgreement(t *testing.T) {
	// The same physical network under different venue labels must land
	// on one canonical token.
	groups := map[string][]string{
		NetworkERC20: {"ETH", "ERC20", "Ethereum(ERC20)"},
		NetworkBEP20: {"BSC", "BEP20(BSC)", "BNB"},
		NetworkTRC20: {"TRON", "TRC20", "Tron(TRC20)"},
	}

	for want, labels := range groups {
		for _, label := range labels {
			if got := NormalizeNetwork(label); got != want {
				t.Errorf("NormalizeNetwork(%q) = %q, want %q", label, got, want)
			}
		}
	}
}
