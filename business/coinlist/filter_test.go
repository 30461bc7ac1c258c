package coinlist

import (
	"context"
	"testing"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

func pairs(raws ...string) []market.TradingPair {
	out := make([]market.TradingPair, 0, len(raws))
	for _, raw := range raws {
		p, err := market.ParsePair(raw)
		if err != nil {
			panic(err)
		}
		out = append(out, p)
	}
	return out
}

func symbols(ss ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		out[s] = struct{}{}
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name      string
		whitelist map[string]struct{}
		blacklist map[string]struct{}
		in        []market.TradingPair
		want      []string
	}{
		{
			name:      "whitelist_restricts_counters",
			whitelist: symbols("USDT"),
			in:        pairs("BTC/USDT", "BTC/EUR", "ETH/USDT"),
			want:      []string{"BTC/USDT", "ETH/USDT"},
		},
		{
			name:      "blacklist_blocks_counters",
			blacklist: symbols("BUSD"),
			in:        pairs("BTC/USDT", "BTC/BUSD"),
			want:      []string{"BTC/USDT"},
		},
		{
			name:      "empty_whitelist_allows_all",
			in:        pairs("BTC/USDT", "BTC/EUR"),
			want:      []string{"BTC/USDT", "BTC/EUR"},
		},
		{
			name:      "blacklist_wins_over_whitelist",
			whitelist: symbols("USDT", "BUSD"),
			blacklist: symbols("BUSD"),
			in:        pairs("BTC/USDT", "BTC/BUSD"),
			want:      []string{"BTC/USDT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewFilter(&StaticStore{
				Whitelist: tt.whitelist,
				Blacklist: tt.blacklist,
			}, logger.Nop())

			got := filter.Apply(context.Background(), tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("filtered = %d pairs, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p.String() != tt.want[i] {
					t.Errorf("pair[%d] = %s, want %s", i, p, tt.want[i])
				}
			}
		})
	}
}
