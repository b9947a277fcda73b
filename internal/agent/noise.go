package agent

import (
	"math"

	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
)

// NoiseTrader is the reference liquidity/noise strategy: an actuation acts
// with probability Delta and is otherwise a no-op; when it acts it places a
// market order, a limit order at one of four price regimes, or cancels the
// oldest outstanding order.
type NoiseTrader struct {
	Base
	Params config.NoiseParams
}

func NewNoiseTrader(index int, seed int64, params config.NoiseParams) *NoiseTrader {
	return &NoiseTrader{
		Base:   NewBase(types.TraderRef{Strategy: types.StrategyNoise, Index: index}, seed),
		Params: params,
	}
}

func (n *NoiseTrader) Actuate(eng *book.Engine) {
	n.DrainMailbox()

	if eng.BidSize() == 0 || eng.AskSize() == 0 {
		n.bootstrapQuotes(eng)
		return
	}

	if n.RNG.Float64() >= n.Params.Delta {
		return
	}

	side := types.Buy
	if n.RNG.Float64() < 0.5 {
		side = types.Sell
	}

	action := n.RNG.Float64()
	switch {
	case action < n.Params.MarketWeight:
		n.placeMarket(eng, side)
	case action < n.Params.MarketWeight+n.Params.LimitWeight:
		n.placeLimit(eng, side)
	default:
		n.cancelOldest(eng)
	}
}

// bootstrapQuotes re-establishes a two-sided market when one or both
// sides are empty, per the scheduler's book-non-empty invariant.
func (n *NoiseTrader) bootstrapQuotes(eng *book.Engine) {
	bidEmpty := eng.BidSize() == 0
	askEmpty := eng.AskSize() == 0

	if bidEmpty {
		price := n.Params.DefaultPrice
		if !askEmpty {
			price = eng.AskPrice().Sub(n.Params.DefaultSpread)
		}
		order, _ := eng.BuyLimitOrder(n.Ref(), price, 1)
		if order.Volume > 0 {
			n.Outstanding.Add(order)
		}
	}
	if askEmpty {
		price := n.Params.DefaultPrice.Add(n.Params.DefaultSpread)
		if !bidEmpty {
			price = eng.BidPrice().Add(n.Params.DefaultSpread)
		}
		order, _ := eng.SellLimitOrder(n.Ref(), price, 1)
		if order.Volume > 0 {
			n.Outstanding.Add(order)
		}
	}
}

func (n *NoiseTrader) placeMarket(eng *book.Engine, side types.Side) {
	var oppositeBestSize int64
	if side == types.Buy {
		oppositeBestSize = eng.AskSize()
	} else {
		oppositeBestSize = eng.BidSize()
	}

	uPrime := n.RNG.Float64()
	sampled := math.Exp(n.Params.MuMarketVol + n.Params.SigmaMarketVol*uPrime)
	vol := math.Min(float64(oppositeBestSize)/2, sampled)
	volume := clampPositiveInt(vol)

	if side == types.Buy {
		_, _ = eng.BuyMarketOrder(n.Ref(), volume)
	} else {
		_, _ = eng.SellMarketOrder(n.Ref(), volume)
	}
}

func (n *NoiseTrader) placeLimit(eng *book.Engine, side types.Side) {
	uDoublePrime := n.RNG.Float64()
	volume := clampPositiveInt(math.Round(math.Exp(n.Params.MuLimitVol + n.Params.SigmaLimitVol*uDoublePrime)))

	price := n.limitPrice(eng, side)
	if side == types.Buy {
		order, _ := eng.BuyLimitOrder(n.Ref(), price, volume)
		if order.Volume > 0 {
			n.Outstanding.Add(order)
		}
	} else {
		order, _ := eng.SellLimitOrder(n.Ref(), price, volume)
		if order.Volume > 0 {
			n.Outstanding.Add(order)
		}
	}
}

func (n *NoiseTrader) limitPrice(eng *book.Engine, side types.Side) decimal.Decimal {
	bid, ask := eng.BidPrice(), eng.AskPrice()
	tick := eng.TickSize()

	draw := n.RNG.Float64()
	switch {
	case draw < n.Params.PCross:
		// Crossing: buy pays the ask, sell hits the bid.
		if side == types.Buy {
			return ask
		}
		return bid
	case draw < n.Params.PCross+n.Params.PInside:
		return n.insideSpreadPrice(bid, ask, tick)
	case draw < n.Params.PCross+n.Params.PInside+n.Params.PSpread:
		if side == types.Buy {
			return bid
		}
		return ask
	default:
		delta := n.offSpreadDelta(ask.Sub(bid))
		if side == types.Buy {
			return bid.Sub(delta)
		}
		return ask.Add(delta)
	}
}

// insideSpreadPrice draws uniformly on the tick grid from bid (inclusive)
// up to ask (exclusive); with no tick of room it returns bid.
func (n *NoiseTrader) insideSpreadPrice(bid, ask, tick decimal.Decimal) decimal.Decimal {
	span := ask.Sub(bid)
	ticks := span.Div(tick).IntPart()
	if ticks <= 0 {
		return bid
	}
	offset := n.RNG.Int63n(ticks)
	return bid.Add(tick.Mul(decimal.NewFromInt(offset)))
}

// offSpreadDelta implements Δ = spread + x_min·(1−U')^(−1/(β−1)), a
// power-law-distributed offset from the best quote. spread is the
// current bid/ask spread observed at draw time.
func (n *NoiseTrader) offSpreadDelta(spread decimal.Decimal) decimal.Decimal {
	uPrime := n.RNG.Float64()
	tail := n.Params.XMin * math.Pow(1-uPrime, -1/(n.Params.Beta-1))
	return spread.Add(decimal.NewFromFloat(tail))
}

func (n *NoiseTrader) cancelOldest(eng *book.Engine) {
	order, ok := n.Outstanding.Oldest()
	if !ok {
		return
	}
	_ = eng.CancelOrder(order)
}

func clampPositiveInt(v float64) int64 {
	if v < 1 {
		return 1
	}
	return int64(math.Round(v))
}
