package collector

import (
	"time"

	"BollScan/internal/model"
)

// MockFetcher returns controllable fixed data for development and
// testing. When the explicit fields are nil it generates a
// deterministic drifting series.
type MockFetcher struct {
	Bars      map[string][]model.DailyBar
	Snapshot  []model.RefRow
	BasePrice float64
	Days      int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(symbol string, since time.Time) ([]model.DailyBar, error) {
	if m.Bars != nil {
		return clipSince(m.Bars[symbol], since), nil
	}
	return clipSince(generateMockBars(m.basePrice(), m.days()), since), nil
}

func (m *MockFetcher) FetchIndexCloses(symbol string, since time.Time) ([]model.DailyBar, error) {
	bars, err := m.FetchDailyBars(symbol, since)
	if err != nil {
		return nil, err
	}
	closes := make([]model.DailyBar, len(bars))
	for i, b := range bars {
		closes[i] = model.DailyBar{Date: b.Date, Close: b.Close}
	}
	return closes, nil
}

func (m *MockFetcher) FetchSnapshot() ([]model.RefRow, error) {
	return m.Snapshot, nil
}

func (m *MockFetcher) basePrice() float64 {
	if m.BasePrice > 0 {
		return m.BasePrice
	}
	return 10.0
}

func (m *MockFetcher) days() int {
	if m.Days > 0 {
		return m.Days
	}
	return 250
}

func clipSince(bars []model.DailyBar, since time.Time) []model.DailyBar {
	if since.IsZero() {
		return bars
	}
	var out []model.DailyBar
	for _, b := range bars {
		if !model.Day(b.Date).Before(since) {
			out = append(out, b)
		}
	}
	return out
}

func generateMockBars(basePrice float64, count int) []model.DailyBar {
	bars := make([]model.DailyBar, 0, count)
	d := model.Day(time.Now()).AddDate(0, 0, -count*7/5)
	for len(bars) < count {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			i := len(bars)
			p := basePrice * (1 + float64(i-count/2)*0.001)
			bars = append(bars, model.DailyBar{
				Date:  d,
				Open:  p * 0.999,
				High:  p * 1.005,
				Low:   p * 0.995,
				Close: p,
			})
		}
		d = d.AddDate(0, 0, 1)
	}
	return bars
}
