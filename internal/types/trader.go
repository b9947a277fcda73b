package types

import "github.com/shopspring/decimal"

// OutstandingOrders is the set of an agent's resting orders, keyed by
// order id, mutated only by the owning agent in response to its own
// submissions and the execution reports it receives.
type OutstandingOrders map[OrderID]Order

// Add inserts or overwrites an order by id.
func (o OutstandingOrders) Add(ord Order) {
	o[ord.ID] = ord
}

// Remove deletes an order by id; a no-op if absent.
func (o OutstandingOrders) Remove(id OrderID) {
	delete(o, id)
}

// Oldest returns the order with the smallest id, and whether one exists.
func (o OutstandingOrders) Oldest() (Order, bool) {
	var best Order
	found := false
	for _, ord := range o {
		if !found || ord.ID < best.ID {
			best = ord
			found = true
		}
	}
	return best, found
}

// Len reports the number of outstanding orders.
func (o OutstandingOrders) Len() int { return len(o) }

// Apply updates the outstanding-order set per an execution report's kind,
// per the agent framework's contract in spec section 4.3.
func (o OutstandingOrders) Apply(report ExecutionReport) {
	switch report.Kind {
	case FullFillBuyOrder, FullFillSellOrder, CancelledOrder:
		o.Remove(report.Order.ID)
	case PartialFillBuyOrder, PartialFillSellOrder:
		o.Add(report.Order)
	}
}

// DebitCash floors the resulting balance at zero, per the non-negative
// cash invariant.
func DebitCash(cash decimal.Decimal, amount decimal.Decimal) decimal.Decimal {
	result := cash.Sub(amount)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}
