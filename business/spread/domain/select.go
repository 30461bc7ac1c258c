package domain

import (
	market "github.com/protsenkopavel/CryptoBridge/business/market/domain"
	"github.com/shopspring/decimal"
)

type legCandidate struct {
	exchange market.ExchangeID
	price    decimal.Decimal
	volume   decimal.Decimal
	set      bool
}

// SelectCandidate picks the best buy/sell combination from one pair's
// quotes in a single pass: track the two lowest asks and the two
// highest bids, then resolve the case where one exchange holds both
// extremes by falling back to the better of the two second-place
// combinations. Quotes with an unusable book side or volume below
// minVolume are dropped first. Returns false when fewer than two
// exchanges survive or no combination has a positive spread.
func SelectCandidate(quotes []market.Quote, minVolume decimal.Decimal) (SpreadCandidate, bool) {
	var minAsk, secondMinAsk, maxBid, secondMaxBid legCandidate

	survivors := 0
	for _, q := range quotes {
		if !q.Valid() || q.Volume.LessThan(minVolume) {
			continue
		}
		survivors++

		ask := legCandidate{exchange: q.Exchange, price: q.Ask, volume: q.Volume, set: true}
		switch {
		case !minAsk.set || ask.price.LessThan(minAsk.price):
			secondMinAsk = minAsk
			minAsk = ask
		case !secondMinAsk.set || ask.price.LessThan(secondMinAsk.price):
			secondMinAsk = ask
		}

		bid := legCandidate{exchange: q.Exchange, price: q.Bid, volume: q.Volume, set: true}
		switch {
		case !maxBid.set || bid.price.GreaterThan(maxBid.price):
			secondMaxBid = maxBid
			maxBid = bid
		case !secondMaxBid.set || bid.price.GreaterThan(secondMaxBid.price):
			secondMaxBid = bid
		}
	}

	if survivors < 2 {
		return SpreadCandidate{}, false
	}

	buy, sell := minAsk, maxBid
	if buy.exchange == sell.exchange {
		// One venue holds both extremes; it cannot be both legs.
		// Compare the two fallback combinations and keep the wider one.
		alt1Ok := secondMinAsk.set
		alt2Ok := secondMaxBid.set

		switch {
		case alt1Ok && alt2Ok:
			spread1 := maxBid.price.Sub(secondMinAsk.price)
			spread2 := secondMaxBid.price.Sub(minAsk.price)
			if spread1.GreaterThanOrEqual(spread2) {
				buy = secondMinAsk
			} else {
				sell = secondMaxBid
			}
		case alt1Ok:
			buy = secondMinAsk
		case alt2Ok:
			sell = secondMaxBid
		default:
			return SpreadCandidate{}, false
		}
	}

	candidate := SpreadCandidate{
		BuyExchange:  buy.exchange,
		BuyPrice:     buy.price,
		BuyVolume:    buy.volume,
		SellExchange: sell.exchange,
		SellPrice:    sell.price,
		SellVolume:   sell.volume,
	}

	if !candidate.Spread().IsPositive() {
		return SpreadCandidate{}, false
	}

	return candidate, true
}
