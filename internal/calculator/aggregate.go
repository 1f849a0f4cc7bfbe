package calculator

import (
	"time"

	"BollScan/internal/model"
)

// Aggregate resamples a daily series into period bars under the given
// bucketing mode. Input must be in ascending date order; output is one
// bar per bucket, open from the first day, close from the last, high/low
// from the extremes, dated by the bucket's last trading day. An empty
// input yields an empty output.
func Aggregate(bars []model.DailyBar, mode model.BucketMode) []model.PeriodBar {
	if len(bars) == 0 {
		return nil
	}

	periods := make([]model.PeriodBar, 0, len(bars)/3+1)
	var cur model.PeriodBar
	var curKey time.Time
	open := false

	flush := func() {
		if open {
			periods = append(periods, cur)
			open = false
		}
	}

	for i, b := range bars {
		key := bucketKey(b.Date, mode, i)
		if !open || !key.Equal(curKey) {
			flush()
			cur = model.PeriodBar{
				Date:  model.Day(b.Date),
				Open:  b.Open,
				High:  b.High,
				Low:   b.Low,
				Close: b.Close,
			}
			curKey = key
			open = true
			continue
		}
		cur.Date = model.Day(b.Date)
		cur.Close = b.Close
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
	}
	flush()
	return periods
}

// bucketKey returns the grouping key for one daily bar. RUN3 groups by
// position, so the key encodes index/3; calendar modes use the period
// start date. Keys only need to be equal within a bucket and distinct
// across neighbouring buckets.
func bucketKey(t time.Time, mode model.BucketMode, index int) time.Time {
	d := model.Day(t)
	switch mode {
	case model.BucketWeek:
		// Monday of the ISO week containing d.
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case model.BucketMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Unix(int64(index/3), 0).UTC()
	}
}
