package types

import "github.com/shopspring/decimal"

// Price is a fixed-point price expressed as an integer multiple of the
// venue's tick size. All internal book arithmetic uses Price; conversion
// to and from human-readable decimals happens only at reporting and
// logging boundaries.
type Price int64

// marketPrice is the sentinel carried by an order before it has matched
// against a resting price (a "market" order has no limit price yet).
const marketPrice Price = -1

// Market returns the sentinel unpriced value used by market orders.
func Market() Price { return marketPrice }

// IsMarket reports whether p is the unpriced sentinel.
func (p Price) IsMarket() bool { return p == marketPrice }

// Decimal converts a tick-denominated price back to a human-readable
// decimal given the venue's tick size.
func (p Price) Decimal(tickSize decimal.Decimal) decimal.Decimal {
	if p.IsMarket() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(p)).Mul(tickSize)
}

// RoundToTick converts a decimal price into its nearest tick, rounding
// exact half-ticks down (towards zero, since all prices are positive).
func RoundToTick(price decimal.Decimal, tickSize decimal.Decimal) Price {
	ratio := price.Div(tickSize)
	floor := ratio.Floor()
	frac := ratio.Sub(floor)
	half := decimal.NewFromFloat(0.5)
	if frac.GreaterThan(half) {
		return Price(floor.IntPart() + 1)
	}
	return Price(floor.IntPart())
}
