// Package feed fans orderbook events out to subscribed agents. Delivery
// to any single subscriber preserves production order; an event that does
// not fit a slow or dead subscriber's buffer is dropped for that subscriber
// and logged rather than allowed to stall the engine.
package feed

import (
	"context"

	"github.com/Rober-t/apxr/internal/types"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// inboundBuffer bounds how many published events may queue ahead of the
// dispatch goroutine without blocking the publishing engine call.
const inboundBuffer = 4096

type subscription struct {
	name string
	ch   chan types.OrderbookEvent
}

// Feed is the public orderbook-event fan-out. It satisfies book.Publisher.
type Feed struct {
	in      chan types.OrderbookEvent
	addSub  chan subscription
	t       *tomb.Tomb
	dropped map[string]int64
}

func New() *Feed {
	return &Feed{
		in:      make(chan types.OrderbookEvent, inboundBuffer),
		addSub:  make(chan subscription),
		dropped: make(map[string]int64),
	}
}

// Start spawns the dispatch goroutine, supervised by a tomb bound to ctx.
func (f *Feed) Start(ctx context.Context) {
	f.t, ctx = tomb.WithContext(ctx)
	f.t.Go(func() error {
		return f.run(f.t)
	})
}

func (f *Feed) Stop() error {
	if f.t == nil {
		return nil
	}
	f.t.Kill(nil)
	return f.t.Wait()
}

// Publish enqueues an event for dispatch. Called from the engine's
// mailbox goroutine; must never block on a slow subscriber.
func (f *Feed) Publish(ev types.OrderbookEvent) {
	select {
	case f.in <- ev:
	default:
		log.Warn().Msg("feed inbound queue full, event dropped")
	}
}

// Subscribe registers a named subscriber and returns its delivery channel,
// buffered to buffer entries. name is used only for drop-logging; buffer is
// the caller's own queueing budget (agents size it via agent.EventBuffer).
func (f *Feed) Subscribe(name string, buffer int) <-chan types.OrderbookEvent {
	ch := make(chan types.OrderbookEvent, buffer)
	select {
	case f.addSub <- subscription{name: name, ch: ch}:
	case <-f.t.Dying():
	}
	return ch
}

func (f *Feed) run(t *tomb.Tomb) error {
	subs := make([]subscription, 0, 64)
	for {
		select {
		case <-t.Dying():
			return nil
		case sub := <-f.addSub:
			subs = append(subs, sub)
		case ev := <-f.in:
			for _, sub := range subs {
				select {
				case sub.ch <- ev:
				default:
					f.dropped[sub.name]++
					log.Warn().Str("subscriber", sub.name).Int64("dropped_total", f.dropped[sub.name]).Msg("subscriber buffer full, event dropped")
				}
			}
		}
	}
}
