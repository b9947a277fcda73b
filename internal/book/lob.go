package book

import (
	"time"

	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// Sink is the reporting sink's contract: mid-price, trade, order-side and
// price-impact records. Implemented externally by internal/report.
type Sink interface {
	RecordMidPrice(timestep int64, mid decimal.Decimal) error
	RecordTrade(price decimal.Decimal) error
	RecordOrderSide(side types.Side) error
	RecordPriceImpact(volume int64, before, after decimal.Decimal) error
}

// Publisher fans an orderbook event out to the public feed's subscribers.
type Publisher interface {
	Publish(ev types.OrderbookEvent)
}

// Notifier delivers an execution report directly to the owning trader's
// mailbox. A failing or slow counterparty must never abort matching; that
// resilience is the notifier implementation's responsibility.
type Notifier interface {
	Notify(trader types.TraderRef, report types.ExecutionReport)
}

// location records where a resting order sits, for O(log N) cancellation.
type location struct {
	side  types.Side
	price types.Price
}

// lob is the matching engine's internal, single-writer state. It is only
// ever touched from inside Engine's mailbox goroutine.
type lob struct {
	venue  string
	ticker string

	tickSize decimal.Decimal

	bids *btree.BTreeG[*PriceLevel]
	asks *btree.BTreeG[*PriceLevel]
	idx  map[types.OrderID]location

	lastPrice types.Price
	lastSize  int64

	timestep int64

	ids  *idGen
	sink Sink
	feed Publisher
	exec Notifier
}

func newLOB(venue, ticker string, tickSize, initialPrice decimal.Decimal, initialLastSize int64, sink Sink, feed Publisher, exec Notifier) *lob {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price > b.Price // descending: best (highest) bid sorts first
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price // ascending: best (lowest) ask sorts first
	})
	return &lob{
		venue:     venue,
		ticker:    ticker,
		tickSize:  tickSize,
		bids:      bids,
		asks:      asks,
		idx:       make(map[types.OrderID]location),
		lastPrice: types.RoundToTick(initialPrice, tickSize),
		lastSize:  initialLastSize,
		ids:       newIDGen(),
		sink:      sink,
		feed:      feed,
		exec:      exec,
	}
}

func (b *lob) sideTree(side types.Side) *btree.BTreeG[*PriceLevel] {
	if side == types.Buy {
		return b.bids
	}
	return b.asks
}

func (b *lob) oppositeTree(side types.Side) *btree.BTreeG[*PriceLevel] {
	if side == types.Buy {
		return b.asks
	}
	return b.bids
}

func (b *lob) newOrder(trader types.TraderRef, side types.Side, vol int64, price types.Price) *types.Order {
	return &types.Order{
		ID:      b.ids.order(),
		Venue:   b.venue,
		Ticker:  b.ticker,
		Trader:  trader,
		Side:    side,
		Volume:  vol,
		Price:   price,
		AckedAt: time.Now(),
	}
}

func (b *lob) publish(ev types.OrderbookEvent) {
	ev.UID = b.ids.event()
	ev.Timestep = b.timestep
	b.feed.Publish(ev)
	if ev.Transaction {
		if err := b.sink.RecordTrade(ev.Price.Decimal(b.tickSize)); err != nil {
			logSinkError("trade", err)
		}
	}
	if ev.Type == types.NewMarketOrder || ev.Type == types.NewLimitOrder {
		if err := b.sink.RecordOrderSide(ev.Direction); err != nil {
			logSinkError("order_side", err)
		}
	}
}

func (b *lob) emitNew(order *types.Order, kind types.EventKind) {
	b.publish(types.OrderbookEvent{
		OrderID:   order.ID,
		Trader:    order.Trader,
		Type:      kind,
		Volume:    order.Volume,
		Price:     order.Price,
		Direction: order.Side,
	})
}

func (b *lob) emitCancel(order *types.Order) {
	b.publish(types.OrderbookEvent{
		OrderID:   order.ID,
		Trader:    order.Trader,
		Type:      types.CancelLimitOrder,
		Volume:    order.Volume,
		Price:     order.Price,
		Direction: order.Side,
	})
}

func (b *lob) emitFill(restingID types.OrderID, restingTrader types.TraderRef, kind types.EventKind, qty int64, price types.Price, direction types.Side) {
	b.publish(types.OrderbookEvent{
		OrderID:     restingID,
		Trader:      restingTrader,
		Type:        kind,
		Volume:      qty,
		Price:       price,
		Direction:   direction,
		Transaction: true,
	})
}

func (b *lob) notify(order types.Order, kind types.EventKind) {
	b.exec.Notify(order.Trader, types.ExecutionReport{Order: order, Kind: kind})
}

func (b *lob) recordLastTrade(price types.Price, size int64) {
	b.lastPrice = price
	b.lastSize = size
}

// rest inserts the remaining, unmatched portion of order into its own
// side of the book as a new FIFO tail entry.
func (b *lob) rest(order *types.Order) {
	levels := b.sideTree(order.Side)
	lvl, ok := levels.GetMut(&PriceLevel{Price: order.Price})
	if ok {
		lvl.push(order)
	} else {
		levels.Set(newLevel(order.Price, order))
	}
	b.idx[order.ID] = location{side: order.Side, price: order.Price}
}

// sweep consumes resting orders on the opposite side on behalf of the
// aggressor, in strict price-time priority. If limited is true, matching
// stops once the best opposing level no longer satisfies the aggressor's
// limit price. It mutates aggressor.Volume in place.
func (b *lob) sweep(aggressor *types.Order, limited bool, limit types.Price) {
	levels := b.oppositeTree(aggressor.Side)
	for aggressor.Volume > 0 {
		lvl, ok := levels.MinMut()
		if !ok {
			break
		}
		if limited {
			if aggressor.Side == types.Buy && lvl.Price > limit {
				break
			}
			if aggressor.Side == types.Sell && lvl.Price < limit {
				break
			}
		}
		for aggressor.Volume > 0 {
			resting := lvl.head()
			if resting == nil {
				break
			}
			aggBefore := aggressor.Volume
			restBefore := resting.Volume
			matchQty := min(aggBefore, restBefore)
			tradePrice := lvl.Price

			aggressor.Volume -= matchQty
			resting.Volume -= matchQty
			b.recordLastTrade(tradePrice, matchQty)

			switch {
			case aggBefore < restBefore:
				// aggressor exhausted, resting stays with a smaller residual.
				b.notify(*aggressor, types.FullFillKind(aggressor.Side))
				b.notify(*resting, types.PartialFillKind(aggressor.Side))
				b.emitFill(resting.ID, resting.Trader, types.PartialFillKind(aggressor.Side), matchQty, tradePrice, aggressor.Side)
			case aggBefore == restBefore:
				b.notify(*aggressor, types.FullFillKind(aggressor.Side))
				b.notify(*resting, types.FullFillKind(aggressor.Side))
				b.emitFill(resting.ID, resting.Trader, types.FullFillKind(aggressor.Side), matchQty, tradePrice, aggressor.Side)
				delete(b.idx, resting.ID)
				lvl.popHead()
			default:
				b.notify(*aggressor, types.PartialFillKind(aggressor.Side))
				b.notify(*resting, types.FullFillKind(aggressor.Side))
				b.emitFill(resting.ID, resting.Trader, types.FullFillKind(aggressor.Side), matchQty, tradePrice, aggressor.Side)
				delete(b.idx, resting.ID)
				lvl.popHead()
			}
		}
		if lvl.empty() {
			levels.Delete(lvl)
		}
	}
}

func (b *lob) midPrice() decimal.Decimal {
	bidLvl, bidOK := b.bids.Min()
	askLvl, askOK := b.asks.Min()
	var bid, ask decimal.Decimal
	if bidOK {
		bid = bidLvl.Price.Decimal(b.tickSize)
	}
	if askOK {
		ask = askLvl.Price.Decimal(b.tickSize)
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)).Round(2)
}

func (b *lob) bothSidesNonEmpty() bool {
	_, bidOK := b.bids.Min()
	_, askOK := b.asks.Min()
	return bidOK && askOK
}
