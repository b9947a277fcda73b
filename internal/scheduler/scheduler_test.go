package scheduler_test

import (
	"context"
	"testing"

	"github.com/Rober-t/apxr/internal/agent"
	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/scheduler"
	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSink struct{ midPrices []decimal.Decimal }

func (s *nopSink) RecordMidPrice(_ int64, mid decimal.Decimal) error {
	s.midPrices = append(s.midPrices, mid)
	return nil
}
func (*nopSink) RecordTrade(decimal.Decimal) error                           { return nil }
func (*nopSink) RecordOrderSide(types.Side) error                            { return nil }
func (*nopSink) RecordPriceImpact(int64, decimal.Decimal, decimal.Decimal) error { return nil }

type nopFeed struct{}

func (nopFeed) Publish(types.OrderbookEvent) {}

// countingAgent records how many times it was actuated; it always
// no-ops against the book, so it never disturbs the book-non-empty
// invariant on its own.
type countingAgent struct {
	ref   types.TraderRef
	count int
}

func (c *countingAgent) Ref() types.TraderRef     { return c.ref }
func (c *countingAgent) Actuate(*book.Engine)     { c.count++ }

func TestScheduler_FairnessOverMultiplePasses(t *testing.T) {
	mailboxes := agent.NewMailboxes()
	eng := book.NewEngine(book.Config{
		Venue:           config.Venue,
		Ticker:          config.Ticker,
		TickSize:        config.TickSize(),
		InitialPrice:    config.InitialPrice(),
		InitialLastSize: config.InitialLastSize,
		Sink:            &nopSink{},
		Feed:            nopFeed{},
		Exec:            mailboxes,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	bootstrap := agent.NewNoiseTrader(0, 1, config.DefaultNoiseParams())
	mailboxes.Register(bootstrap.Ref(), bootstrap.Mailbox)

	counters := make([]*countingAgent, 5)
	agents := make([]agent.Strategy, 0, 6)
	agents = append(agents, bootstrap)
	for i := range counters {
		counters[i] = &countingAgent{ref: types.TraderRef{Strategy: types.StrategyPluggable, Index: i}}
		agents = append(agents, counters[i])
	}

	sink := &nopSink{}
	sched := scheduler.New(eng, sink, agents, bootstrap, 99)
	const K = 10
	sched.Run(K)

	for _, c := range counters {
		assert.Equal(t, K, c.count, "every agent must be actuated exactly once per timestep")
	}
	require.Len(t, sink.midPrices, K)
}

func TestScheduler_IsolatesPanickingAgent(t *testing.T) {
	mailboxes := agent.NewMailboxes()
	eng := book.NewEngine(book.Config{
		Venue:           config.Venue,
		Ticker:          config.Ticker,
		TickSize:        config.TickSize(),
		InitialPrice:    config.InitialPrice(),
		InitialLastSize: config.InitialLastSize,
		Sink:            &nopSink{},
		Feed:            nopFeed{},
		Exec:            mailboxes,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	bootstrap := agent.NewNoiseTrader(0, 1, config.DefaultNoiseParams())
	mailboxes.Register(bootstrap.Ref(), bootstrap.Mailbox)

	faulty := &panickingAgent{ref: types.TraderRef{Strategy: types.StrategyPluggable, Index: 0}}
	survivor := &countingAgent{ref: types.TraderRef{Strategy: types.StrategyPluggable, Index: 1}}

	agents := []agent.Strategy{bootstrap, faulty, survivor}
	sched := scheduler.New(eng, &nopSink{}, agents, bootstrap, 7)

	assert.NotPanics(t, func() { sched.Run(3) })
	assert.Equal(t, 3, survivor.count)
	assert.LessOrEqual(t, faulty.count, 1, "a faulting agent must not be actuated again after it panics")
}

type panickingAgent struct {
	ref   types.TraderRef
	count int
}

func (p *panickingAgent) Ref() types.TraderRef { return p.ref }
func (p *panickingAgent) Actuate(*book.Engine) {
	p.count++
	panic("boom")
}
