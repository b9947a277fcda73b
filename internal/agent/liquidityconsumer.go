package agent

import (
	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/types"
)

// LiquidityConsumer works down a fixed target volume on a fixed side,
// opportunistically crossing the spread and decrementing its remaining
// target whether or not it actually traded (an abandonment model: see
// the decrement-regardless design note).
type LiquidityConsumer struct {
	Base
	Params    config.LiquidityConsumerParams
	Side      types.Side
	Remaining int64
}

func NewLiquidityConsumer(index int, seed int64, params config.LiquidityConsumerParams) *LiquidityConsumer {
	base := NewBase(types.TraderRef{Strategy: types.StrategyLiquidityConsumer, Index: index}, seed)
	side := types.Buy
	if base.RNG.Float64() < 0.5 {
		side = types.Sell
	}
	target := int64(1)
	if params.MaxInitialVol > 1 {
		target = 1 + base.RNG.Int63n(params.MaxInitialVol)
	}
	return &LiquidityConsumer{
		Base:      base,
		Params:    params,
		Side:      side,
		Remaining: target,
	}
}

func (l *LiquidityConsumer) Actuate(eng *book.Engine) {
	l.DrainMailbox()

	if l.Remaining <= 0 {
		return
	}

	var oppositeBestSize int64
	if l.Side == types.Buy {
		oppositeBestSize = eng.AskSize()
	} else {
		oppositeBestSize = eng.BidSize()
	}

	qty := l.Remaining
	if oppositeBestSize < qty {
		qty = oppositeBestSize
	}

	if l.RNG.Float64() < l.Params.Delta && qty > 0 {
		if l.Side == types.Buy {
			_, _ = eng.BuyMarketOrder(l.Ref(), qty)
		} else {
			_, _ = eng.SellMarketOrder(l.Ref(), qty)
		}
	}

	l.Remaining -= qty
}
