package domain

import (
	"testing"

	"github.com/protsenkopavel/CryptoBridge/internal/apperror"
)

func TestParsePair(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantBase    string
		wantCounter string
		wantErr     bool
	}{
		{
			name:        "slash_separator",
			raw:         "BTC/USDT",
			wantBase:    "BTC",
			wantCounter: "USDT",
		},
		{
			name:        "underscore_separator",
			raw:         "ETH_USDT",
			wantBase:    "ETH",
			wantCounter: "USDT",
		},
		{
			name:        "lowercase_normalized",
			raw:         "btc/usdt",
			wantBase:    "BTC",
			wantCounter: "USDT",
		},
		{
			name:        "surrounding_whitespace_trimmed",
			raw:         " sol / usdc ",
			wantBase:    "SOL",
			wantCounter: "USDC",
		},
		{
			name:    "no_separator",
			raw:     "BTCUSDT",
			wantErr: true,
		},
		{
			name:    "too_many_tokens",
			raw:     "BTC/USDT/EUR",
			wantErr: true,
		},
		{
			name:    "blank_counter",
			raw:     "BTC/",
			wantErr: true,
		},
		{
			name:    "blank_base",
			raw:     "_USDT",
			wantErr: true,
		},
		{
			name:    "empty_string",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "only_separator",
			raw:     "/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := ParsePair(tt.raw)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePair(%q) = %v, want error", tt.raw, pair)
				}
				if !apperror.HasCode(err, apperror.CodeInvalidPairFormat) {
					t.Errorf("ParsePair(%q) error code = %v, want %v",
						tt.raw, apperror.GetCode(err), apperror.CodeInvalidPairFormat)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParsePair(%q) unexpected error: %v", tt.raw, err)
			}
			if pair.Base != tt.wantBase || pair.Counter != tt.wantCounter {
				t.Errorf("ParsePair(%q) = %s/%s, want %s/%s",
					tt.raw, pair.Base, pair.Counter, tt.wantBase, tt.wantCounter)
			}
		})
	}
}

func TestParseConcatSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
		ok     bool
	}{
		{"BTCUSDT", "BTC/USDT", true},
		{"ETHBTC", "ETH/BTC", true},
		{"SOLUSDC", "SOL/USDC", true},
		{"btcusdt", "BTC/USDT", true},
		// USDT must win over the shorter USD suffix.
		{"XRPUSD", "XRP/USD", true},
		{"USDT", "", false},
		{"FOOBAR", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			pair, ok := ParseConcatSymbol(tt.symbol)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && pair.String() != tt.want {
				t.Errorf("pair = %s, want %s", pair, tt.want)
			}
		})
	}
}

func TestTradingPair_Symbol(t *testing.T) {
	pair := NewPair("BTC", "USDT")

	tests := []struct {
		sep  string
		want string
	}{
		{"/", "BTC/USDT"},
		{"_", "BTC_USDT"},
		{"-", "BTC-USDT"},
		{"", "BTCUSDT"},
	}

	for _, tt := range tests {
		if got := pair.Symbol(tt.sep); got != tt.want {
			t.Errorf("Symbol(%q) = %q, want %q", tt.sep, got, tt.want)
		}
	}

	if pair.String() != "BTC/USDT" {
		t.Errorf("String() = %q, want %q", pair.String(), "BTC/USDT")
	}
}
