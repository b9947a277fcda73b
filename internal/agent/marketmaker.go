package agent

import (
	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/types"
)

// MarketMaker tracks a sliding window of recent order sides and quotes
// both sides of the book, skewed by the window's buy/sell mix.
type MarketMaker struct {
	Base
	Params config.MarketMakerParams
	window []float64
}

func NewMarketMaker(index int, seed int64, params config.MarketMakerParams) *MarketMaker {
	return &MarketMaker{
		Base:   NewBase(types.TraderRef{Strategy: types.StrategyMarketMaker, Index: index}, seed),
		Params: params,
		window: make([]float64, 0, params.Window),
	}
}

// onPublicEvent records a new order's side into the sliding window.
func (m *MarketMaker) onPublicEvent(ev types.OrderbookEvent) {
	if ev.Type != types.NewMarketOrder && ev.Type != types.NewLimitOrder {
		return
	}
	side := 0.0
	if ev.Direction == types.Sell {
		side = 1.0
	}
	m.window = append(m.window, side)
	if len(m.window) > m.Params.Window {
		m.window = m.window[len(m.window)-m.Params.Window:]
	}
}

func (m *MarketMaker) prediction() float64 {
	if len(m.window) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(len(m.window))
}

func (m *MarketMaker) Actuate(eng *book.Engine) {
	m.DrainMailbox()
	m.DrainEvents(m.onPublicEvent)

	if m.RNG.Float64() >= m.Params.Delta {
		return
	}

	for _, order := range m.Outstanding {
		_ = eng.CancelOrder(order)
	}

	bid, ask := eng.BidPrice(), eng.AskPrice()
	randomVol := m.Params.MinVolume + m.RNG.Int63n(m.Params.MaxVolume-m.Params.MinVolume+1)

	var askVol, bidVol int64
	if m.prediction() < 0.5 {
		askVol, bidVol = randomVol, m.Params.MinVolume
	} else {
		bidVol, askVol = randomVol, m.Params.MinVolume
	}

	sellOrder, _ := eng.SellLimitOrder(m.Ref(), ask, askVol)
	if sellOrder.Volume > 0 {
		m.Outstanding.Add(sellOrder)
	}
	buyOrder, _ := eng.BuyLimitOrder(m.Ref(), bid, bidVol)
	if buyOrder.Volume > 0 {
		m.Outstanding.Add(buyOrder)
	}

	notional := ask.Mul(decimalFromInt(askVol)).Add(bid.Mul(decimalFromInt(bidVol)))
	m.DebitCash(notional)
}
