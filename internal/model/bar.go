package model

import "time"

// DailyBar is one trading day of raw OHLC data for a single symbol.
// A series is sorted by ascending date with unique dates; the store
// guarantees this on load.
type DailyBar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// PeriodBar is a bucket of consecutive daily bars collapsed into one bar.
// Date is the last daily date contained in the bucket.
type PeriodBar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// BandFrame is a PeriodBar extended with the Bollinger envelope.
// MA, Std, Upper and Lower are meaningful only when HasBand is true;
// the first window-1 periods of a series never have a band.
type BandFrame struct {
	PeriodBar
	MA    float64
	Std   float64
	Upper float64
	Lower float64

	HasBand    bool
	BreakUpper bool // High >= Upper; always false without a band
	BreakLower bool // Low <= Lower; always false without a band
}

// Day strips the time-of-day component so dates can be compared and
// used as map keys regardless of how the source encoded them.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
