package book

import "github.com/Rober-t/apxr/internal/types"

func validateVolume(vol int64) error {
	if vol <= 0 {
		return ErrRejected
	}
	return nil
}

// buyMarketOrder sweeps the ask side unconditionally. An empty book is not
// an error: the order is discarded without resting, per spec.
func (b *lob) buyMarketOrder(trader types.TraderRef, vol int64) (types.Order, error) {
	if err := validateVolume(vol); err != nil {
		return types.Order{}, err
	}
	order := b.newOrder(trader, types.Buy, vol, types.Market())
	b.emitNew(order, types.NewMarketOrder)

	before := b.midPrice()
	b.sweep(order, false, 0)
	after := b.midPrice()
	if err := b.sink.RecordPriceImpact(vol, before, after); err != nil {
		logSinkError("price_impact", err)
	}
	return *order, nil
}

func (b *lob) sellMarketOrder(trader types.TraderRef, vol int64) (types.Order, error) {
	if err := validateVolume(vol); err != nil {
		return types.Order{}, err
	}
	order := b.newOrder(trader, types.Sell, vol, types.Market())
	b.emitNew(order, types.NewMarketOrder)

	before := b.midPrice()
	b.sweep(order, false, 0)
	after := b.midPrice()
	if err := b.sink.RecordPriceImpact(vol, before, after); err != nil {
		logSinkError("price_impact", err)
	}
	return *order, nil
}

func (b *lob) buyLimitOrder(trader types.TraderRef, tick types.Price, vol int64) (types.Order, error) {
	if err := validateVolume(vol); err != nil {
		return types.Order{}, err
	}
	if tick <= 0 {
		return types.Order{}, ErrRejected
	}
	order := b.newOrder(trader, types.Buy, vol, tick)
	b.emitNew(order, types.NewLimitOrder)

	b.sweep(order, true, tick)
	if order.Volume > 0 {
		b.rest(order)
	}
	return *order, nil
}

func (b *lob) sellLimitOrder(trader types.TraderRef, tick types.Price, vol int64) (types.Order, error) {
	if err := validateVolume(vol); err != nil {
		return types.Order{}, err
	}
	if tick <= 0 {
		return types.Order{}, ErrRejected
	}
	order := b.newOrder(trader, types.Sell, vol, tick)
	b.emitNew(order, types.NewLimitOrder)

	b.sweep(order, true, tick)
	if order.Volume > 0 {
		b.rest(order)
	}
	return *order, nil
}

// cancelOrder is idempotent: cancelling an order that is not resting
// (already filled, or previously cancelled) is a no-op success.
func (b *lob) cancelOrder(id types.OrderID) error {
	loc, ok := b.idx[id]
	if !ok {
		return nil
	}
	levels := b.sideTree(loc.side)
	lvl, ok := levels.GetMut(&PriceLevel{Price: loc.price})
	if !ok {
		delete(b.idx, id)
		return nil
	}
	removed, ok := removeFromLevel(lvl, id)
	if !ok {
		delete(b.idx, id)
		return nil
	}
	delete(b.idx, id)
	if lvl.empty() {
		levels.Delete(lvl)
	}
	b.emitCancel(removed)
	b.notify(*removed, types.CancelledOrder)
	return nil
}

func removeFromLevel(l *PriceLevel, id types.OrderID) (*types.Order, bool) {
	for i, o := range l.Orders {
		if o.ID == id {
			l.Orders = append(l.Orders[:i:i], l.Orders[i+1:]...)
			return o, true
		}
	}
	return nil, false
}
