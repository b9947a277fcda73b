// Package agent implements the trading-agent framework: a shared base
// (cash, outstanding orders, a per-agent deterministic RNG, an execution
// report mailbox) and the five reference strategies dispatched through a
// small capability set, per the polymorphism-over-agent-strategies design
// note: tagged unions and a small interface, not deep inheritance.
package agent

import (
	"math/rand"

	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
)

// mailboxBuffer bounds how many execution reports may queue for an agent
// between actuations; once it is full, each further report is dropped and
// logged (see Mailboxes.Notify).
const mailboxBuffer = 256

// EventBuffer bounds how many public feed events may queue for a
// subscribing agent between actuations before the feed starts dropping
// them; passed to feed.Feed.Subscribe by every caller that wires a
// strategy's public-feed subscription.
const EventBuffer = 4096

// Strategy is the capability set every agent exposes to the scheduler.
type Strategy interface {
	Ref() types.TraderRef
	Actuate(eng *book.Engine)
}

// Base holds the state and plumbing common to every strategy: cash,
// outstanding orders, a deterministic RNG, and the inbound channels fed
// by the engine (execution reports) and the feed (public events).
type Base struct {
	ref         types.TraderRef
	Cash        decimal.Decimal
	Outstanding types.OutstandingOrders
	RNG         *rand.Rand
	Mailbox     chan types.ExecutionReport
	Events      <-chan types.OrderbookEvent
}

// NewBase constructs a Base identified by ref and seeded deterministically
// from seed (derived per-agent by the caller, per the determinism design
// note).
func NewBase(ref types.TraderRef, seed int64) Base {
	return Base{
		ref:         ref,
		Cash:        decimal.Zero,
		Outstanding: make(types.OutstandingOrders),
		RNG:         rand.New(rand.NewSource(seed)),
		Mailbox:     make(chan types.ExecutionReport, mailboxBuffer),
	}
}

func (b *Base) Ref() types.TraderRef { return b.ref }

// Subscribe attaches the feed channel an agent drains on each actuation.
// Strategies that do not observe the public feed never call this.
func (b *Base) Subscribe(ch <-chan types.OrderbookEvent) { b.Events = ch }

// DrainMailbox applies every queued execution report to Outstanding.
// Called at the start of every Actuate, per the "processed between
// actuations" design note.
func (b *Base) DrainMailbox() {
	for {
		select {
		case report := <-b.Mailbox:
			b.Outstanding.Apply(report)
		default:
			return
		}
	}
}

// DrainEvents feeds every queued public event to handle, in arrival
// order. A no-op for strategies that never subscribed.
func (b *Base) DrainEvents(handle func(types.OrderbookEvent)) {
	if b.Events == nil {
		return
	}
	for {
		select {
		case ev := <-b.Events:
			handle(ev)
		default:
			return
		}
	}
}

// DebitCash floors the resulting balance at zero.
func (b *Base) DebitCash(amount decimal.Decimal) {
	b.Cash = types.DebitCash(b.Cash, amount)
}
