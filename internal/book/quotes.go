package book

import "github.com/shopspring/decimal"

const bestLevelsDepth = 5

func (b *lob) bidPrice() decimal.Decimal {
	lvl, ok := b.bids.Min()
	if !ok {
		return decimal.Zero
	}
	return lvl.Price.Decimal(b.tickSize)
}

func (b *lob) askPrice() decimal.Decimal {
	lvl, ok := b.asks.Min()
	if !ok {
		return decimal.Zero
	}
	return lvl.Price.Decimal(b.tickSize)
}

func (b *lob) bidSize() int64 {
	lvl, ok := b.bids.Min()
	if !ok {
		return 0
	}
	return lvl.size()
}

func (b *lob) askSize() int64 {
	lvl, ok := b.asks.Min()
	if !ok {
		return 0
	}
	return lvl.size()
}

// bestN returns up to n levels from the given side, ordered from furthest
// (worst) to nearest (best). levels.Items() is already best-first (index
// 0 is the best price under that side's comparator), so we take the first
// n and reverse them.
func bestN(levels []*PriceLevel, n int) []*PriceLevel {
	if len(levels) < n {
		n = len(levels)
	}
	out := make([]*PriceLevel, n)
	for i := 0; i < n; i++ {
		out[i] = levels[n-1-i]
	}
	return out
}

func (b *lob) highestBidPrices() []decimal.Decimal {
	levels := bestN(b.bids.Items(), bestLevelsDepth)
	out := make([]decimal.Decimal, len(levels))
	for i, lvl := range levels {
		out[i] = lvl.Price.Decimal(b.tickSize)
	}
	return out
}

func (b *lob) highestBidSizes() []int64 {
	levels := bestN(b.bids.Items(), bestLevelsDepth)
	out := make([]int64, len(levels))
	for i, lvl := range levels {
		out[i] = lvl.size()
	}
	return out
}

func (b *lob) lowestAskPrices() []decimal.Decimal {
	levels := bestN(b.asks.Items(), bestLevelsDepth)
	out := make([]decimal.Decimal, len(levels))
	for i, lvl := range levels {
		out[i] = lvl.Price.Decimal(b.tickSize)
	}
	return out
}

func (b *lob) lowestAskSizes() []int64 {
	levels := bestN(b.asks.Items(), bestLevelsDepth)
	out := make([]int64, len(levels))
	for i, lvl := range levels {
		out[i] = lvl.size()
	}
	return out
}
