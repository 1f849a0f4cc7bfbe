package strategy

import (
	"time"

	"BollScan/internal/model"
)

// Period-level signals carry a band price, not a traded price. The
// resolver re-scans the raw daily series to find the bar on which the
// target level actually printed; when no bar qualifies the candidate is
// discarded upstream, which just means the coarse trigger never traded
// at daily resolution.

// ResolveBuy returns the first daily bar within [from, through] whose
// low reached the target. A zero `from` leaves the window open at the
// start (first-breakdown policy scans everything up to the breakdown).
func ResolveBuy(bars []model.DailyBar, from, through time.Time, target float64) (model.DailyBar, bool) {
	for _, b := range bars {
		d := model.Day(b.Date)
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if d.After(through) {
			break
		}
		if b.Low <= target {
			return b, true
		}
	}
	return model.DailyBar{}, false
}

// ResolveSell returns the first daily bar strictly after buyDate, no
// more than spanDays calendar days before the exit period's end date
// and not after it, whose high reached the target. spanDays is the
// bucketing period's calendar span, so the search stays inside the
// period that produced the exit signal.
func ResolveSell(bars []model.DailyBar, buyDate, anchor time.Time, spanDays int, target float64) (model.DailyBar, bool) {
	earliest := anchor.AddDate(0, 0, -spanDays)
	for _, b := range bars {
		d := model.Day(b.Date)
		if !d.After(buyDate) || d.Before(earliest) {
			continue
		}
		if d.After(anchor) {
			break
		}
		if b.High >= target {
			return b, true
		}
	}
	return model.DailyBar{}, false
}
