// Package config holds the simulation's compile-time configuration:
// population sizes, per-strategy numeric parameters, and venue constants.
// Configuration is deliberately not a runtime flag/env/file loader — the
// external-interface contract treats it as compile-time, so this package
// is plain typed Go constants and constructor functions.
package config

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Venue  = "APXR"
	Ticker = "SIM"

	// Timesteps is the number of scheduler passes per run.
	Timesteps = 300000

	// Runs is the default number of independent simulations per invocation.
	Runs = 10

	InitialLastSize = 1

	// PopulationNoise ... PopulationPluggable are the default agent
	// counts per strategy.
	PopulationLiquidityConsumer = 5
	PopulationMarketMaker       = 5
	PopulationMeanReversion     = 20
	PopulationMomentum          = 20
	PopulationNoise             = 40
	PopulationPluggable         = 1
)

// TickSize is the venue's fixed tick grid.
func TickSize() decimal.Decimal { return decimal.NewFromFloat(0.01) }

// InitialPrice is the book's seeded last-trade price before any order has
// executed.
func InitialPrice() decimal.Decimal { return decimal.NewFromInt(100) }

// EngineCallTimeout is the synchronous-call upper bound on engine calls;
// a breach indicates a programming fault, not a retryable condition.
const EngineCallTimeout = 25 * time.Second

// NoiseParams holds the noise trader's model parameters (spec section
// 4.3.1).
type NoiseParams struct {
	Delta         float64 // probability of acting at all
	MarketWeight  float64 // m: cumulative weight threshold for a market order
	LimitWeight   float64 // l: additional weight threshold for a limit order
	MuMarketVol   float64
	SigmaMarketVol float64
	MuLimitVol    float64
	SigmaLimitVol float64
	PCross        float64
	PInside       float64
	PSpread       float64
	XMin          float64
	Beta          float64
	DefaultPrice  decimal.Decimal
	DefaultSpread decimal.Decimal
}

func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		Delta:          0.75,
		MarketWeight:   0.03,
		LimitWeight:    0.54,
		MuMarketVol:    7,
		SigmaMarketVol: 0.1,
		MuLimitVol:     8,
		SigmaLimitVol:  0.7,
		PCross:         0.003,
		PInside:        0.098,
		PSpread:        0.173,
		XMin:           0.005,
		Beta:           2.72,
		DefaultPrice:   decimal.NewFromInt(100),
		DefaultSpread:  decimal.NewFromFloat(0.05),
	}
}

// MarketMakerParams holds the market maker's model parameters (spec
// section 4.3.2).
type MarketMakerParams struct {
	Delta        float64
	Window       int
	MaxVolume    int64
	MinVolume    int64
}

func DefaultMarketMakerParams() MarketMakerParams {
	return MarketMakerParams{
		Delta:     0.1,
		Window:    50,
		MaxVolume: 200000,
		MinVolume: 1,
	}
}

// LiquidityConsumerParams holds the liquidity consumer's model parameters
// (spec section 4.3.3).
type LiquidityConsumerParams struct {
	Delta           float64
	MaxInitialVol   int64
}

func DefaultLiquidityConsumerParams() LiquidityConsumerParams {
	return LiquidityConsumerParams{
		Delta:         0.1,
		MaxInitialVol: 100000,
	}
}

// MomentumParams holds the momentum trader's model parameters (spec
// section 4.3.4).
type MomentumParams struct {
	Delta  float64
	Window int
	K      float64
}

func DefaultMomentumParams() MomentumParams {
	return MomentumParams{
		Delta:  0.4,
		Window: 5,
		K:      0.001,
	}
}

// MeanReversionParams holds the mean-reversion trader's model parameters
// (spec section 4.3.5).
type MeanReversionParams struct {
	Delta  float64
	Volume int64
	K      float64
	Alpha  float64
}

func DefaultMeanReversionParams() MeanReversionParams {
	return MeanReversionParams{
		Delta:  0.4,
		Volume: 1,
		K:      1,
		Alpha:  0.94,
	}
}
