package model

import "fmt"

// BucketMode selects how daily bars are grouped into period bars.
type BucketMode int

const (
	BucketRun3 BucketMode = iota // fixed runs of 3 bars by position
	BucketWeek                   // ISO calendar week, keyed by its Monday
	BucketMonth                  // calendar month
)

// SpanDays returns the calendar span of one bucket, used as the daily
// lookback when resolving a period-level sell signal.
func (m BucketMode) SpanDays() int {
	switch m {
	case BucketWeek:
		return 7
	case BucketMonth:
		return 31
	default:
		return 5
	}
}

func (m BucketMode) String() string {
	switch m {
	case BucketRun3:
		return "run3"
	case BucketWeek:
		return "week"
	case BucketMonth:
		return "month"
	}
	return fmt.Sprintf("bucket(%d)", int(m))
}

// ParseBucketMode maps a config string onto a BucketMode.
func ParseBucketMode(s string) (BucketMode, error) {
	switch s {
	case "run3", "3d", "":
		return BucketRun3, nil
	case "week", "w":
		return BucketWeek, nil
	case "month", "m":
		return BucketMonth, nil
	}
	return 0, fmt.Errorf("unknown bucket mode %q", s)
}

// SellReference selects which band level a candidate exit must reach.
type SellReference int

const (
	SellMidBand   SellReference = iota // exit at the rolling mean
	SellUpperBand                      // exit at the upper band
)

func (r SellReference) String() string {
	if r == SellUpperBand {
		return "upper"
	}
	return "mid"
}

// ParseSellReference maps a config string onto a SellReference.
func ParseSellReference(s string) (SellReference, error) {
	switch s {
	case "mid", "ma", "":
		return SellMidBand, nil
	case "upper":
		return SellUpperBand, nil
	}
	return 0, fmt.Errorf("unknown sell reference %q", s)
}

// EntryPolicy selects how a buy signal is anchored.
type EntryPolicy int

const (
	// EntryBreakoutRequired pairs each upper-band breakout with the
	// first clean lower-band breakdown after it.
	EntryBreakoutRequired EntryPolicy = iota
	// EntryFirstBreakdown takes the first lower-band breakdown that
	// resolves, at most one trade per symbol.
	EntryFirstBreakdown
)

func (p EntryPolicy) String() string {
	if p == EntryFirstBreakdown {
		return "first-breakdown"
	}
	return "breakout-required"
}

// ParseEntryPolicy maps a config string onto an EntryPolicy.
func ParseEntryPolicy(s string) (EntryPolicy, error) {
	switch s {
	case "breakout", "breakout-required", "":
		return EntryBreakoutRequired, nil
	case "first-breakdown", "breakdown":
		return EntryFirstBreakdown, nil
	}
	return 0, fmt.Errorf("unknown entry policy %q", s)
}
