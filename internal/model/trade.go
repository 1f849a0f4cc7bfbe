package model

import (
	"fmt"
	"math"
	"time"
)

// TradeRecord is one completed buy/sell round trip. Prices are rounded
// to 2 decimals when the record is assembled; a record is only ever
// created once both sides resolved.
type TradeRecord struct {
	Symbol      string
	Name        string
	BuyPrice    float64
	SellPrice   float64
	BuyDate     time.Time
	SellDate    time.Time
	Return      float64 // (sell-buy)/buy
	HoldingDays int     // calendar days between buy and sell
	Benchmark   float64 // benchmark index close on the buy date
	MarketCap   float64 // hundred-million units
	PERatio     float64
}

// SignalRow is a prospective entry flagged by the forward scan. It is
// recomputed on every scan and never persisted.
type SignalRow struct {
	Symbol       string
	Name         string
	MarketCap    float64 // hundred-million units
	PERatio      float64
	AsOfDate     time.Time
	TriggerPrice float64 // last period's lower band, rounded
}

// RefRow is one symbol's line from the daily reference snapshot.
// MarketCap is in raw currency units as delivered by the snapshot.
type RefRow struct {
	Symbol    string
	Name      string
	Price     float64
	MarketCap float64
	PERatio   float64
}

// Constraint bundles the admission ranges applied before and during a
// simulation. Zero min/max pairs would admit nothing, so defaults are
// filled by config, not here.
type Constraint struct {
	MarketCapMin float64 // hundred-million units
	MarketCapMax float64
	PEMin        float64
	PEMax        float64
	BenchmarkMin float64
	BenchmarkMax float64
}

// Validate rejects non-finite or inverted ranges. These are caller
// errors, unlike missing market data which is never an error.
func (c Constraint) Validate() error {
	pairs := []struct {
		name     string
		min, max float64
	}{
		{"market_cap", c.MarketCapMin, c.MarketCapMax},
		{"pe", c.PEMin, c.PEMax},
		{"benchmark", c.BenchmarkMin, c.BenchmarkMax},
	}
	for _, p := range pairs {
		if math.IsNaN(p.min) || math.IsInf(p.min, 0) || math.IsNaN(p.max) || math.IsInf(p.max, 0) {
			return fmt.Errorf("%s range must be finite", p.name)
		}
		if p.min > p.max {
			return fmt.Errorf("%s range inverted: %v > %v", p.name, p.min, p.max)
		}
	}
	return nil
}
