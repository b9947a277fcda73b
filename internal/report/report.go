// Package report implements the reporting sink contract (internal/book.Sink)
// as buffered, append-only CSV files rotated per run number.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Rober-t/apxr/internal/types"
	"github.com/shopspring/decimal"
)

// epsilon floors price-impact logarithms away from -Inf at a zero mid.
const epsilon = 1e-4

// CSVSink is a single run's set of output files: mid-prices, trades,
// order sides, and price impacts. All writes are buffered and flushed on
// Close.
type CSVSink struct {
	midPrices   *csv.Writer
	trades      *csv.Writer
	orderSides  *csv.Writer
	priceImpact *csv.Writer
	files       []*os.File
}

// NewCSVSink creates (or opens for appending) the four CSV files for run in dir,
// named per the apxr_<kind><run>.csv convention.
func NewCSVSink(dir string, run int) (*CSVSink, error) {
	open := func(kind string) (*os.File, error) {
		path := filepath.Join(dir, fmt.Sprintf("apxr_%s%d.csv", kind, run))
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	}

	mid, err := open("mid_prices")
	if err != nil {
		return nil, fmt.Errorf("open mid_prices sink: %w", err)
	}
	trades, err := open("trades")
	if err != nil {
		return nil, fmt.Errorf("open trades sink: %w", err)
	}
	sides, err := open("order_sides")
	if err != nil {
		return nil, fmt.Errorf("open order_sides sink: %w", err)
	}
	impacts, err := open("price_impacts")
	if err != nil {
		return nil, fmt.Errorf("open price_impacts sink: %w", err)
	}

	return &CSVSink{
		midPrices:   csv.NewWriter(mid),
		trades:      csv.NewWriter(trades),
		orderSides:  csv.NewWriter(sides),
		priceImpact: csv.NewWriter(impacts),
		files:       []*os.File{mid, trades, sides, impacts},
	}, nil
}

func (s *CSVSink) RecordMidPrice(_ int64, mid decimal.Decimal) error {
	return s.midPrices.Write([]string{mid.Round(2).String()})
}

func (s *CSVSink) RecordTrade(price decimal.Decimal) error {
	return s.trades.Write([]string{price.String()})
}

func (s *CSVSink) RecordOrderSide(side types.Side) error {
	v := "0"
	if side == types.Sell {
		v = "1"
	}
	return s.orderSides.Write([]string{v})
}

func (s *CSVSink) RecordPriceImpact(volume int64, before, after decimal.Decimal) error {
	b := math.Max(before.InexactFloat64(), epsilon)
	a := math.Max(after.InexactFloat64(), epsilon)
	logImpact := math.Log(a) - math.Log(b)
	return s.priceImpact.Write([]string{
		strconv.FormatInt(volume, 10),
		strconv.FormatFloat(logImpact, 'f', -1, 64),
	})
}

// Close flushes every writer and closes the underlying files, returning
// the first error encountered.
func (s *CSVSink) Close() error {
	var firstErr error
	for _, w := range []*csv.Writer{s.midPrices, s.trades, s.orderSides, s.priceImpact} {
		w.Flush()
		if err := w.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WipeOutputDir removes and recreates dir, per the "output directory is
// wiped at simulation start" contract.
func WipeOutputDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("wipe output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
