package book

import (
	"testing"

	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink records every call made to it; zero values are valid no-ops.
type fakeSink struct {
	trades       []decimal.Decimal
	orderSides   []types.Side
	priceImpacts int
}

func (f *fakeSink) RecordMidPrice(int64, decimal.Decimal) error { return nil }
func (f *fakeSink) RecordTrade(price decimal.Decimal) error {
	f.trades = append(f.trades, price)
	return nil
}
func (f *fakeSink) RecordOrderSide(side types.Side) error {
	f.orderSides = append(f.orderSides, side)
	return nil
}
func (f *fakeSink) RecordPriceImpact(int64, decimal.Decimal, decimal.Decimal) error {
	f.priceImpacts++
	return nil
}

type fakeFeed struct {
	events []types.OrderbookEvent
}

func (f *fakeFeed) Publish(ev types.OrderbookEvent) { f.events = append(f.events, ev) }

type fakeExec struct {
	reports map[types.TraderRef][]types.ExecutionReport
}

func newFakeExec() *fakeExec {
	return &fakeExec{reports: make(map[types.TraderRef][]types.ExecutionReport)}
}

func (f *fakeExec) Notify(trader types.TraderRef, report types.ExecutionReport) {
	f.reports[trader] = append(f.reports[trader], report)
}

func newTestLOB() (*lob, *fakeSink, *fakeFeed, *fakeExec) {
	sink := &fakeSink{}
	feed := &fakeFeed{}
	exec := newFakeExec()
	b := newLOB("TEST", "XYZ", decimal.NewFromFloat(0.01), decimal.NewFromInt(100), 0, sink, feed, exec)
	return b, sink, feed, exec
}

func trader(idx int) types.TraderRef {
	return types.TraderRef{Strategy: types.StrategyNoise, Index: idx}
}

// Scenario 1: empty-book limit insertion.
func TestBuyLimitOrder_EmptyBook_Rests(t *testing.T) {
	b, _, feed, _ := newTestLOB()

	order, err := b.buyLimitOrder(trader(1), types.RoundToTick(decimal.NewFromFloat(99.99), b.tickSize), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.Volume)

	assert.Equal(t, "99.99", b.bidPrice().String())
	assert.Equal(t, int64(100), b.bidSize())
	_, askOK := b.asks.Min()
	assert.False(t, askOK)

	require.Len(t, feed.events, 1)
	assert.Equal(t, types.NewLimitOrder, feed.events[0].Type)
}

// Scenario 2: crossing market buy fully fills the resting ask.
func TestBuyMarketOrder_CrossesRestingAsk_FullFill(t *testing.T) {
	b, sink, _, exec := newTestLOB()
	t2 := trader(2)
	_, err := b.sellLimitOrder(t2, types.RoundToTick(decimal.NewFromFloat(100.01), b.tickSize), 100)
	require.NoError(t, err)

	t1 := trader(1)
	order, err := b.buyMarketOrder(t1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.Volume)

	_, askOK := b.asks.Min()
	assert.False(t, askOK)
	assert.Equal(t, "100.01", b.lastPrice.Decimal(b.tickSize).String())
	assert.Equal(t, int64(100), b.lastSize)
	assert.Equal(t, 1, sink.priceImpacts)

	require.Len(t, exec.reports[t1], 1)
	assert.Equal(t, types.FullFillBuyOrder, exec.reports[t1][0].Kind)
	require.Len(t, exec.reports[t2], 1)
	assert.Equal(t, types.FullFillBuyOrder, exec.reports[t2][0].Kind)
}

// Scenario 3: partial fill then rest, FIFO across two price levels.
func TestBuyLimitOrder_PartialFillThenRests(t *testing.T) {
	b, _, _, exec := newTestLOB()
	t2 := trader(2)
	tick1 := types.RoundToTick(decimal.NewFromFloat(100.01), b.tickSize)
	tick2 := types.RoundToTick(decimal.NewFromFloat(100.02), b.tickSize)
	_, err := b.sellLimitOrder(t2, tick1, 40)
	require.NoError(t, err)
	_, err = b.sellLimitOrder(t2, tick2, 30)
	require.NoError(t, err)

	t1 := trader(1)
	order, err := b.buyLimitOrder(t1, tick1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(60), order.Volume)

	assert.Equal(t, "100.01", b.bidPrice().String())
	assert.Equal(t, int64(60), b.bidSize())

	lvl, ok := b.asks.Min()
	require.True(t, ok)
	assert.Equal(t, tick2, lvl.Price)
	assert.Equal(t, int64(30), lvl.size())

	reports := exec.reports[t1]
	require.NotEmpty(t, reports)
	assert.Equal(t, types.PartialFillBuyOrder, reports[len(reports)-1].Kind)

	t2Reports := exec.reports[t2]
	require.Len(t, t2Reports, 1)
	assert.Equal(t, types.FullFillBuyOrder, t2Reports[0].Kind)
}

// Scenario 4: FIFO at a price level.
func TestSellMarketOrder_FIFOAcrossRestingBids(t *testing.T) {
	b, _, _, exec := newTestLOB()
	ta, tb := trader(1), trader(2)
	tick := types.RoundToTick(decimal.NewFromInt(100), b.tickSize)
	_, err := b.buyLimitOrder(ta, tick, 10)
	require.NoError(t, err)
	_, err = b.buyLimitOrder(tb, tick, 10)
	require.NoError(t, err)

	tc := trader(3)
	_, err = b.sellMarketOrder(tc, 15)
	require.NoError(t, err)

	lvl, ok := b.bids.Min()
	require.True(t, ok)
	assert.Equal(t, int64(5), lvl.size())
	assert.Equal(t, tb, lvl.head().Trader)

	require.Len(t, exec.reports[ta], 1)
	assert.Equal(t, types.FullFillSellOrder, exec.reports[ta][0].Kind)
	require.Len(t, exec.reports[tb], 1)
	assert.Equal(t, types.PartialFillSellOrder, exec.reports[tb][0].Kind)
}

// Scenario 5: cancellation is idempotent and emits exactly one event.
func TestCancelOrder_IdempotentSecondCall(t *testing.T) {
	b, _, feed, exec := newTestLOB()
	t1 := trader(1)
	tick := types.RoundToTick(decimal.NewFromFloat(100.50), b.tickSize)
	order, err := b.sellLimitOrder(t1, tick, 25)
	require.NoError(t, err)

	require.NoError(t, b.cancelOrder(order.ID))
	_, askOK := b.asks.Min()
	assert.False(t, askOK)

	cancelEvents := 0
	for _, ev := range feed.events {
		if ev.Type == types.CancelLimitOrder {
			cancelEvents++
			assert.Equal(t, int64(25), ev.Volume)
		}
	}
	assert.Equal(t, 1, cancelEvents)

	eventsAfterFirstCancel := len(feed.events)
	require.NoError(t, b.cancelOrder(order.ID))
	assert.Len(t, feed.events, eventsAfterFirstCancel, "second cancel must not emit another event")

	reports := exec.reports[t1]
	require.Len(t, reports, 1)
	assert.Equal(t, types.CancelledOrder, reports[0].Kind)
}

func TestBuyLimitOrder_RejectsNonPositiveVolume(t *testing.T) {
	b, _, _, _ := newTestLOB()
	_, err := b.buyLimitOrder(trader(1), types.RoundToTick(decimal.NewFromInt(100), b.tickSize), 0)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestMidPrice_RoundsToTwoDecimalPlaces(t *testing.T) {
	b, _, _, _ := newTestLOB()
	_, err := b.buyLimitOrder(trader(1), types.RoundToTick(decimal.NewFromFloat(99.99), b.tickSize), 10)
	require.NoError(t, err)
	_, err = b.sellLimitOrder(trader(2), types.RoundToTick(decimal.NewFromFloat(100.02), b.tickSize), 10)
	require.NoError(t, err)
	assert.Equal(t, "100.01", b.midPrice().String())
}
