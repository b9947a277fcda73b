package book

import "github.com/Rober-t/apxr/internal/types"

// PriceLevel is a FIFO queue of resting orders at a single price on one
// side of the book. Orders is kept in insertion (price-time priority)
// order: index 0 is always the earliest-resting order.
type PriceLevel struct {
	Price  types.Price
	Orders []*types.Order
}

func newLevel(price types.Price, first *types.Order) *PriceLevel {
	return &PriceLevel{Price: price, Orders: []*types.Order{first}}
}

func (l *PriceLevel) push(o *types.Order) {
	l.Orders = append(l.Orders, o)
}

// head returns the earliest-resting order, or nil if the level is empty.
func (l *PriceLevel) head() *types.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// popHead removes the earliest-resting order (it has been fully filled).
func (l *PriceLevel) popHead() {
	if len(l.Orders) == 0 {
		return
	}
	l.Orders = l.Orders[1:]
}

func (l *PriceLevel) empty() bool { return len(l.Orders) == 0 }

// size returns the aggregate resting volume at this level.
func (l *PriceLevel) size() int64 {
	var total int64
	for _, o := range l.Orders {
		total += o.Volume
	}
	return total
}
