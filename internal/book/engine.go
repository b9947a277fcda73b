// Package book implements the limit order book and matching engine: two
// price-ordered sides with FIFO-per-level queues, market/limit/cancel
// operations, and Level-1/Level-2 quote queries.
package book

import (
	"context"
	"time"

	"github.com/Rober-t/apxr/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"
)

// engineCallTimeout bounds a synchronous call into the engine's mailbox.
// A breach indicates a programming fault (a stuck or deadlocked engine
// goroutine), not a retryable condition — see spec section 5.
const engineCallTimeout = 25 * time.Second

// Config wires an Engine to its venue parameters and its collaborators.
type Config struct {
	Venue           string
	Ticker          string
	TickSize        decimal.Decimal
	InitialPrice    decimal.Decimal
	InitialLastSize int64
	Sink            Sink
	Feed            Publisher
	Exec            Notifier
}

// Engine is the LOB realised as a single-writer actor: every public
// method submits a closure to an unbuffered mailbox drained by one
// goroutine, so order-id allocation, book mutation and event emission are
// always serialised, matching the "independent sequential actor with a
// FIFO mailbox" design note.
type Engine struct {
	book  *lob
	inbox chan func()
	t     *tomb.Tomb
}

// NewEngine constructs an Engine. Call Start before issuing any calls.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		book:  newLOB(cfg.Venue, cfg.Ticker, cfg.TickSize, cfg.InitialPrice, cfg.InitialLastSize, cfg.Sink, cfg.Feed, cfg.Exec),
		inbox: make(chan func()),
	}
}

// Start spawns the engine's mailbox goroutine, supervised by a tomb bound
// to ctx; cancelling ctx (or calling Stop) shuts the goroutine down.
func (e *Engine) Start(ctx context.Context) {
	e.t, ctx = tomb.WithContext(ctx)
	e.t.Go(func() error {
		return e.run(e.t)
	})
}

func (e *Engine) run(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case fn := <-e.inbox:
			fn()
		}
	}
}

// Stop shuts down the mailbox goroutine and waits for it to exit.
func (e *Engine) Stop() error {
	if e.t == nil {
		return nil
	}
	e.t.Kill(nil)
	return e.t.Wait()
}

// call submits fn to the mailbox and blocks until it has run, subject to
// engineCallTimeout on both the submit and the completion side.
func (e *Engine) call(fn func()) error {
	done := make(chan struct{})
	deadline := time.NewTimer(engineCallTimeout)
	defer deadline.Stop()

	select {
	case e.inbox <- func() { fn(); close(done) }:
	case <-deadline.C:
		log.Error().Msg("engine mailbox did not accept call within deadline")
		return ErrCallTimeout
	}

	select {
	case <-done:
		return nil
	case <-deadline.C:
		log.Error().Msg("engine call did not complete within deadline")
		return ErrCallTimeout
	}
}

// SetTimestep advances the engine's notion of the current timestep, used
// to stamp outgoing orderbook events. Called by the scheduler between
// actuation passes.
func (e *Engine) SetTimestep(ts int64) {
	_ = e.call(func() { e.book.timestep = ts })
}

func (e *Engine) TickSize() decimal.Decimal { return e.book.tickSize }

func (e *Engine) BuyMarketOrder(trader types.TraderRef, vol int64) (types.Order, error) {
	var order types.Order
	var err error
	if callErr := e.call(func() { order, err = e.book.buyMarketOrder(trader, vol) }); callErr != nil {
		return types.Order{}, callErr
	}
	return order, err
}

func (e *Engine) SellMarketOrder(trader types.TraderRef, vol int64) (types.Order, error) {
	var order types.Order
	var err error
	if callErr := e.call(func() { order, err = e.book.sellMarketOrder(trader, vol) }); callErr != nil {
		return types.Order{}, callErr
	}
	return order, err
}

func (e *Engine) BuyLimitOrder(trader types.TraderRef, price decimal.Decimal, vol int64) (types.Order, error) {
	var order types.Order
	var err error
	if callErr := e.call(func() {
		tick := types.RoundToTick(price, e.book.tickSize)
		order, err = e.book.buyLimitOrder(trader, tick, vol)
	}); callErr != nil {
		return types.Order{}, callErr
	}
	return order, err
}

func (e *Engine) SellLimitOrder(trader types.TraderRef, price decimal.Decimal, vol int64) (types.Order, error) {
	var order types.Order
	var err error
	if callErr := e.call(func() {
		tick := types.RoundToTick(price, e.book.tickSize)
		order, err = e.book.sellLimitOrder(trader, tick, vol)
	}); callErr != nil {
		return types.Order{}, callErr
	}
	return order, err
}

func (e *Engine) CancelOrder(order types.Order) error {
	var err error
	if callErr := e.call(func() { err = e.book.cancelOrder(order.ID) }); callErr != nil {
		return callErr
	}
	return err
}

func (e *Engine) BidPrice() decimal.Decimal {
	var p decimal.Decimal
	_ = e.call(func() { p = e.book.bidPrice() })
	return p
}

func (e *Engine) AskPrice() decimal.Decimal {
	var p decimal.Decimal
	_ = e.call(func() { p = e.book.askPrice() })
	return p
}

func (e *Engine) MidPrice() decimal.Decimal {
	var p decimal.Decimal
	_ = e.call(func() { p = e.book.midPrice() })
	return p
}

func (e *Engine) BidSize() int64 {
	var s int64
	_ = e.call(func() { s = e.book.bidSize() })
	return s
}

func (e *Engine) AskSize() int64 {
	var s int64
	_ = e.call(func() { s = e.book.askSize() })
	return s
}

func (e *Engine) HighestBidPrices() []decimal.Decimal {
	var out []decimal.Decimal
	_ = e.call(func() { out = e.book.highestBidPrices() })
	return out
}

func (e *Engine) LowestAskPrices() []decimal.Decimal {
	var out []decimal.Decimal
	_ = e.call(func() { out = e.book.lowestAskPrices() })
	return out
}

func (e *Engine) HighestBidSizes() []int64 {
	var out []int64
	_ = e.call(func() { out = e.book.highestBidSizes() })
	return out
}

func (e *Engine) LowestAskSizes() []int64 {
	var out []int64
	_ = e.call(func() { out = e.book.lowestAskSizes() })
	return out
}

func (e *Engine) LastPrice() decimal.Decimal {
	var p decimal.Decimal
	_ = e.call(func() { p = e.book.lastPrice.Decimal(e.book.tickSize) })
	return p
}

func (e *Engine) LastSize() int64 {
	var s int64
	_ = e.call(func() { s = e.book.lastSize })
	return s
}

// BothSidesNonEmpty reports whether the book currently has at least one
// resting bid and one resting ask, the scheduler's bootstrap invariant.
func (e *Engine) BothSidesNonEmpty() bool {
	var ok bool
	_ = e.call(func() { ok = e.book.bothSidesNonEmpty() })
	return ok
}
