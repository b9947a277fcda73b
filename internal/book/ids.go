package book

import "github.com/Rober-t/apxr/internal/types"

// idGen hands out monotonically increasing order ids and event uids.
// It is only ever touched from inside the engine's mailbox goroutine, so
// it needs no synchronization of its own.
type idGen struct {
	nextOrderID int64
	nextEventID int64
}

func newIDGen() *idGen {
	return &idGen{nextOrderID: 1, nextEventID: 1}
}

func (g *idGen) order() types.OrderID {
	id := g.nextOrderID
	g.nextOrderID++
	return types.OrderID(id)
}

func (g *idGen) event() int64 {
	id := g.nextEventID
	g.nextEventID++
	return id
}
