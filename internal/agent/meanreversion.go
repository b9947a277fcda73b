package agent

import (
	"math"

	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/types"
)

// welford accumulates a running mean and variance over a stream of
// values, one pass, without storing history. Per the design-note
// decision, this runs unwindowed over the whole simulation rather than
// the paper's 50-sample window — see the Open Question it resolves.
type welford struct {
	n    int64
	mean float64
	m2   float64
}

func (w *welford) push(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	delta2 := x - w.mean
	w.m2 += delta * delta2
}

func (w *welford) stddev() float64 {
	if w.n < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n-1))
}

// MeanReversionTrader fades the last trade price away from its running
// mean, tracked via an exponential moving average, by k standard
// deviations of the full-run Welford estimate.
type MeanReversionTrader struct {
	Base
	Params config.MeanReversionParams
	stats  welford
	ema    float64
	hasEMA bool
}

func NewMeanReversionTrader(index int, seed int64, params config.MeanReversionParams) *MeanReversionTrader {
	return &MeanReversionTrader{
		Base:   NewBase(types.TraderRef{Strategy: types.StrategyMeanReversion, Index: index}, seed),
		Params: params,
	}
}

func (r *MeanReversionTrader) observe(price float64) {
	r.stats.push(price)
	if !r.hasEMA {
		r.ema = price
		r.hasEMA = true
		return
	}
	r.ema += r.Params.Alpha * (price - r.ema)
}

func (r *MeanReversionTrader) Actuate(eng *book.Engine) {
	r.DrainMailbox()
	r.DrainEvents(func(ev types.OrderbookEvent) {
		if !ev.Type.IsTransaction() {
			return
		}
		r.observe(ev.Price.Decimal(eng.TickSize()).InexactFloat64())
	})

	if !r.hasEMA || r.stats.n < 2 {
		return
	}
	if r.RNG.Float64() >= r.Params.Delta {
		return
	}

	price := eng.LastPrice().InexactFloat64()
	sigma := r.stats.stddev()
	tick := eng.TickSize()

	switch {
	case price-r.ema >= r.Params.K*sigma:
		order, _ := eng.SellLimitOrder(r.Ref(), eng.AskPrice().Sub(tick), r.Params.Volume)
		if order.Volume > 0 {
			r.Outstanding.Add(order)
		}
	case r.ema-price >= r.Params.K*sigma:
		order, _ := eng.BuyLimitOrder(r.Ref(), eng.BidPrice().Add(tick), r.Params.Volume)
		if order.Volume > 0 {
			r.Outstanding.Add(order)
		}
	}
}
