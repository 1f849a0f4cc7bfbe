package collector

import (
	"time"

	"BollScan/internal/model"
)

// Fetcher defines the interface for retrieving market data from a
// remote source. Retrieval itself lives outside the engine; the
// updater only cares about this surface.
type Fetcher interface {
	// FetchDailyBars returns a symbol's daily bars from `since` onward.
	FetchDailyBars(symbol string, since time.Time) ([]model.DailyBar, error)
	// FetchIndexCloses returns an index's daily closes from `since`
	// onward. Index feeds carry no open/high/low; only Date and Close
	// are meaningful in the result.
	FetchIndexCloses(symbol string, since time.Time) ([]model.DailyBar, error)
	// FetchSnapshot returns the current whole-market reference
	// snapshot (name, live price, market cap, PE per symbol).
	FetchSnapshot() ([]model.RefRow, error)
	Name() string
}

// LastTradingDay returns the most recent weekday on or before now.
// Exchange holidays are not modelled; a holiday only delays an update
// by making the cache look one day staler than it is.
func LastTradingDay(now time.Time) time.Time {
	d := model.Day(now)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
