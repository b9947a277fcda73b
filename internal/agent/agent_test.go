package agent_test

import (
	"context"
	"testing"

	"github.com/Rober-t/apxr/internal/agent"
	"github.com/Rober-t/apxr/internal/book"
	"github.com/Rober-t/apxr/internal/config"
	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSink struct{}

func (nopSink) RecordMidPrice(int64, decimal.Decimal) error                 { return nil }
func (nopSink) RecordTrade(decimal.Decimal) error                           { return nil }
func (nopSink) RecordOrderSide(types.Side) error                            { return nil }
func (nopSink) RecordPriceImpact(int64, decimal.Decimal, decimal.Decimal) error { return nil }

type nopFeed struct{}

func (nopFeed) Publish(types.OrderbookEvent) {}

func newTestEngine(t *testing.T) *book.Engine {
	t.Helper()
	eng := book.NewEngine(book.Config{
		Venue:           config.Venue,
		Ticker:          config.Ticker,
		TickSize:        config.TickSize(),
		InitialPrice:    config.InitialPrice(),
		InitialLastSize: config.InitialLastSize,
		Sink:            nopSink{},
		Feed:            nopFeed{},
		Exec:            agent.NewMailboxes(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	eng.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = eng.Stop()
	})
	return eng
}

func TestNoiseTrader_BootstrapsEmptyBook(t *testing.T) {
	eng := newTestEngine(t)
	mailboxes := agent.NewMailboxes()
	trader := agent.NewNoiseTrader(0, 1, config.DefaultNoiseParams())
	mailboxes.Register(trader.Ref(), trader.Mailbox)

	require.Equal(t, int64(0), eng.BidSize())
	trader.Actuate(eng)

	assert.True(t, eng.BothSidesNonEmpty())
}

func TestLiquidityConsumer_DecrementsRemainingEvenWithoutTrade(t *testing.T) {
	eng := newTestEngine(t)
	// Seed a two-sided book so the consumer observes a non-zero opposite size.
	trader0 := agent.NewNoiseTrader(0, 1, config.DefaultNoiseParams())
	trader0.Actuate(eng)
	require.True(t, eng.BothSidesNonEmpty())

	params := config.LiquidityConsumerParams{Delta: 0, MaxInitialVol: 10}
	consumer := agent.NewLiquidityConsumer(0, 42, params)
	before := consumer.Remaining
	require.Greater(t, before, int64(0))

	consumer.Actuate(eng)

	assert.Less(t, consumer.Remaining, before, "remaining target must decrement even when delta suppresses the trade")
}

func TestLiquidityConsumer_StopsActingOnceExhausted(t *testing.T) {
	eng := newTestEngine(t)
	params := config.LiquidityConsumerParams{Delta: 1, MaxInitialVol: 1}
	consumer := agent.NewLiquidityConsumer(0, 7, params)
	consumer.Remaining = 0

	consumer.Actuate(eng)

	assert.Equal(t, int64(0), consumer.Remaining)
}

func TestMeanReversionTrader_NoTradeBeforeTwoObservations(t *testing.T) {
	eng := newTestEngine(t)
	trader := agent.NewMeanReversionTrader(0, 3, config.DefaultMeanReversionParams())

	// With no transactional events observed yet, actuation must not panic
	// and must leave the book untouched.
	assert.NotPanics(t, func() { trader.Actuate(eng) })
	assert.Equal(t, int64(0), eng.BidSize()+eng.AskSize(), "book must be untouched")
}
