package agent

import (
	"math"

	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
)

// MomentumTrader follows a rolling rate-of-change of trade prices: buys
// into a rising market, sells into a falling one. ROC is kept signed —
// see the design-note decision on the source's absolute-value revision,
// which would make the sell branch unreachable.
type MomentumTrader struct {
	Base
	Params config.MomentumParams
	window []decimal.Decimal
}

func NewMomentumTrader(index int, seed int64, params config.MomentumParams) *MomentumTrader {
	return &MomentumTrader{
		Base:   NewBase(types.TraderRef{Strategy: types.StrategyMomentum, Index: index}, seed),
		Params: params,
		window: make([]decimal.Decimal, 0, params.Window),
	}
}

func (m *MomentumTrader) pushTradePrice(price decimal.Decimal) {
	m.window = append(m.window, price)
	if len(m.window) > m.Params.Window {
		m.window = m.window[len(m.window)-m.Params.Window:]
	}
}

func (m *MomentumTrader) Actuate(eng *book.Engine) {
	m.DrainMailbox()
	m.DrainEvents(func(ev types.OrderbookEvent) {
		if !ev.Type.IsTransaction() {
			return
		}
		m.pushTradePrice(ev.Price.Decimal(eng.TickSize()))
	})

	if len(m.window) < m.Params.Window {
		return
	}
	if m.RNG.Float64() >= m.Params.Delta {
		return
	}

	now := m.window[len(m.window)-1]
	tail := m.window[0]
	if tail.IsZero() {
		return
	}
	roc, _ := now.Sub(tail).Div(tail).Float64()

	switch {
	case roc >= m.Params.K:
		vol := clampPositiveInt(math.Round(roc * m.Cash.InexactFloat64()))
		_, _ = eng.BuyMarketOrder(m.Ref(), vol)
	case roc <= -m.Params.K:
		vol := clampPositiveInt(math.Round(-roc * m.Cash.InexactFloat64()))
		_, _ = eng.SellMarketOrder(m.Ref(), vol)
	}
}
