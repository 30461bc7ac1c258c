package domain

import (
	"testing"

	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/shopspring/decimal"
)

func quote(ex market.ExchangeID, bid, ask, volume string) market.Quote {
	return market.NewQuote(ex,
		market.NewPair("XYZ", "USDT"),
		decimal.RequireFromString(bid),
		decimal.RequireFromString(ask),
		decimal.RequireFromString(volume),
	)
}

func TestSelectCandidate_DistinctExtremes(t *testing.T) {
	// A bid 100 / ask 101, B bid 103 / ask 104: buy A at its ask,
	// sell B at its bid.
	quotes := []market.Quote{
		quote(market.ExchangeMEXC, "100", "101", "1000"),
		quote(market.ExchangeOKX, "103", "104", "1000"),
	}

	c, ok := SelectCandidate(quotes, decimal.Zero)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.BuyExchange != market.ExchangeMEXC || c.SellExchange != market.ExchangeOKX {
		t.Errorf("legs = buy %s / sell %s, want buy MEXC / sell OKX", c.BuyExchange, c.SellExchange)
	}
	if !c.Spread().Equal(decimal.NewFromInt(2)) {
		t.Errorf("spread = %s, want 2", c.Spread())
	}
	// 2 / 101 * 100 ≈ 1.98%
	if got := c.ProfitPercent().Round(2); !got.Equal(decimal.RequireFromString("1.98")) {
		t.Errorf("profit%% = %s, want 1.98", got)
	}
}

func TestSelectCandidate_SameExchangeExtremesRejected(t *testing.T) {
	// A bid 100 / ask 101 holds both extremes; both fallback
	// combinations are negative, so there is no candidate.
	quotes := []market.Quote{
		quote(market.ExchangeMEXC, "100", "101", "1000"),
		quote(market.ExchangeOKX, "99", "102", "1000"),
	}

	if c, ok := SelectCandidate(quotes, decimal.Zero); ok {
		t.Fatalf("expected no candidate, got %+v", c)
	}
}

func TestSelectCandidate_SameExchangeExtremesFallback(t *testing.T) {
	// A holds both extremes (bid 105, ask 100). Fallbacks:
	// sell A@105 buy B@103 -> spread 2, or sell C@102 buy A@100 ->
	// spread 2. Equal spreads keep the second-min-ask combination.
	quotes := []market.Quote{
		quote(market.ExchangeMEXC, "105", "100", "1000"),
		quote(market.ExchangeOKX, "95", "103", "1000"),
		quote(market.ExchangeBybit, "102", "110", "1000"),
	}

	c, ok := SelectCandidate(quotes, decimal.Zero)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.BuyExchange == c.SellExchange {
		t.Fatalf("same exchange on both legs: %s", c.BuyExchange)
	}
	if !c.Spread().Equal(decimal.NewFromInt(2)) {
		t.Errorf("spread = %s, want 2", c.Spread())
	}
	if c.BuyExchange != market.ExchangeOKX || c.SellExchange != market.ExchangeMEXC {
		t.Errorf("legs = buy %s / sell %s, want buy OKX / sell MEXC", c.BuyExchange, c.SellExchange)
	}
}

func TestSelectCandidate_NeverSameExchangeBothLegs(t *testing.T) {
	// Whatever the books look like, one venue never takes both legs.
	books := [][]market.Quote{
		{
			quote(market.ExchangeMEXC, "110", "90", "1000"),
			quote(market.ExchangeOKX, "100", "105", "1000"),
		},
		{
			quote(market.ExchangeMEXC, "110", "90", "1000"),
			quote(market.ExchangeOKX, "100", "105", "1000"),
			quote(market.ExchangeBybit, "108", "95", "1000"),
		},
	}

	for i, quotes := range books {
		if c, ok := SelectCandidate(quotes, decimal.Zero); ok && c.BuyExchange == c.SellExchange {
			t.Errorf("book %d: same exchange on both legs: %s", i, c.BuyExchange)
		}
	}
}

func TestSelectCandidate_VolumeFilter(t *testing.T) {
	quotes := []market.Quote{
		quote(market.ExchangeMEXC, "100", "101", "50"),
		quote(market.ExchangeOKX, "103", "104", "1000"),
	}

	// MEXC is below min volume, so only one exchange survives.
	if _, ok := SelectCandidate(quotes, decimal.NewFromInt(100)); ok {
		t.Error("expected no candidate with one surviving exchange")
	}

	if _, ok := SelectCandidate(quotes, decimal.NewFromInt(10)); !ok {
		t.Error("expected a candidate when both exchanges survive")
	}
}

func TestSelectCandidate_InvalidQuotesDropped(t *testing.T) {
	quotes := []market.Quote{
		quote(market.ExchangeMEXC, "0", "101", "1000"),
		quote(market.ExchangeOKX, "103", "0", "1000"),
		quote(market.ExchangeBybit, "100", "101", "1000"),
	}

	if _, ok := SelectCandidate(quotes, decimal.Zero); ok {
		t.Error("expected no candidate when only one valid quote survives")
	}
}

func TestSelectCandidate_Idempotent(t *testing.T) {
	quotes := []market.Quote{
		quote(market.ExchangeMEXC, "100", "101", "1000"),
		quote(market.ExchangeOKX, "103", "104", "1000"),
		quote(market.ExchangeBybit, "102", "103", "1000"),
	}

	first, ok1 := SelectCandidate(quotes, decimal.Zero)
	second, ok2 := SelectCandidate(quotes, decimal.Zero)

	if ok1 != ok2 {
		t.Fatalf("ok mismatch: %v vs %v", ok1, ok2)
	}
	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}
