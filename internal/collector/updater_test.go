package collector

import (
	"path/filepath"
	"testing"
	"time"

	"BollScan/internal/model"
	"BollScan/internal/store"
)

// recordingFetcher wraps a canned response and records what was asked.
type recordingFetcher struct {
	bars     []model.DailyBar
	snapshot []model.RefRow

	barCalls   int
	lastSince  time.Time
	lastSymbol string
}

func (f *recordingFetcher) FetchDailyBars(symbol string, since time.Time) ([]model.DailyBar, error) {
	f.barCalls++
	f.lastSymbol = symbol
	f.lastSince = since
	return f.bars, nil
}

func (f *recordingFetcher) FetchIndexCloses(symbol string, since time.Time) ([]model.DailyBar, error) {
	f.barCalls++
	f.lastSymbol = symbol
	f.lastSince = since
	return f.bars, nil
}

func (f *recordingFetcher) FetchSnapshot() ([]model.RefRow, error) { return f.snapshot, nil }
func (f *recordingFetcher) Name() string                           { return "recording" }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLastTradingDay(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{day(2024, 3, 1), day(2024, 3, 1)},  // Friday
		{day(2024, 3, 2), day(2024, 3, 1)},  // Saturday
		{day(2024, 3, 3), day(2024, 3, 1)},  // Sunday
		{day(2024, 3, 4), day(2024, 3, 4)},  // Monday
		{time.Date(2024, 3, 2, 15, 30, 0, 0, time.UTC), day(2024, 3, 1)},
	}
	for _, c := range cases {
		if got := LastTradingDay(c.now); !got.Equal(c.want) {
			t.Errorf("LastTradingDay(%s) = %s, expected %s",
				c.now.Format("2006-01-02"), got.Format("2006-01-02"), c.want.Format("2006-01-02"))
		}
	}
}

func TestUpdateSymbol_EmptyCacheStartsAtStartDate(t *testing.T) {
	s := openTestStore(t)
	f := &recordingFetcher{bars: []model.DailyBar{
		{Date: day(2023, 1, 3), Open: 10, High: 10.5, Low: 9.8, Close: 10.2},
		{Date: day(2023, 1, 4), Open: 10.2, High: 10.8, Low: 10.1, Close: 10.6},
	}}
	u := &Updater{Store: s, Fetcher: f, StartDate: day(2023, 1, 3)}

	if err := u.UpdateSymbol("600001", day(2024, 3, 1)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.barCalls != 1 || !f.lastSince.Equal(day(2023, 1, 3)) {
		t.Errorf("empty cache fetches from the start date, got %d calls since %s",
			f.barCalls, f.lastSince.Format("2006-01-02"))
	}

	bars, err := s.LoadBars("600001")
	if err != nil || len(bars) != 2 {
		t.Fatalf("fetched bars must be cached, got %d err %v", len(bars), err)
	}
}

func TestUpdateSymbol_FreshCacheSkipsFetch(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertBars("600001", []model.DailyBar{{Date: day(2024, 2, 28), Close: 10}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f := &recordingFetcher{}
	u := &Updater{Store: s, Fetcher: f, StartDate: day(2023, 1, 3)}

	// Two calendar days behind is inside the staleness allowance.
	if err := u.UpdateSymbol("600001", day(2024, 3, 1)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.barCalls != 0 {
		t.Errorf("a fresh symbol must not be refetched, got %d calls", f.barCalls)
	}
}

func TestUpdateSymbol_StaleCacheFetchesTail(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertBars("600001", []model.DailyBar{{Date: day(2024, 2, 1), Close: 10}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f := &recordingFetcher{bars: []model.DailyBar{{Date: day(2024, 2, 2), Close: 10.3}}}
	u := &Updater{Store: s, Fetcher: f, StartDate: day(2023, 1, 3)}

	if err := u.UpdateSymbol("600001", day(2024, 3, 1)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.barCalls != 1 || !f.lastSince.Equal(day(2024, 2, 2)) {
		t.Errorf("stale symbol fetches from the day after its last bar, got since %s",
			f.lastSince.Format("2006-01-02"))
	}

	bars, err := s.LoadBars("600001")
	if err != nil || len(bars) != 2 {
		t.Fatalf("tail must merge into the cache, got %d err %v", len(bars), err)
	}
}

func TestUpdateBenchmark_FillsOHLC(t *testing.T) {
	s := openTestStore(t)
	f := &recordingFetcher{bars: []model.DailyBar{{Date: day(2024, 3, 1), Close: 3300}}}
	u := &Updater{Store: s, Fetcher: f, StartDate: day(2023, 1, 3)}

	if err := u.UpdateBenchmark("000001", day(2024, 3, 1)); err != nil {
		t.Fatalf("update benchmark: %v", err)
	}
	bars, err := s.LoadBars("000001")
	if err != nil || len(bars) != 1 {
		t.Fatalf("benchmark bars must be cached, got %d err %v", len(bars), err)
	}
	b := bars[0]
	if b.Open != 3300 || b.High != 3300 || b.Low != 3300 {
		t.Errorf("index closes fill open/high/low, got %+v", b)
	}
}

func TestUpdateAll_RefreshesSnapshot(t *testing.T) {
	s := openTestStore(t)
	f := &recordingFetcher{
		bars:     []model.DailyBar{{Date: day(2024, 3, 1), Close: 10}},
		snapshot: []model.RefRow{{Symbol: "600001", Name: "测试股份", MarketCap: 60e8, PERatio: 30}},
	}
	u := &Updater{Store: s, Fetcher: f, StartDate: day(2023, 1, 3)}

	if err := u.UpdateAll("000001", day(2024, 3, 1)); err != nil {
		t.Fatalf("update all: %v", err)
	}
	rows, err := s.LoadSnapshot()
	if err != nil || len(rows) != 1 || rows[0].Symbol != "600001" {
		t.Errorf("snapshot must refresh, got %+v err %v", rows, err)
	}
}

func TestMockFetcher_GeneratesWeekdays(t *testing.T) {
	f := &MockFetcher{Days: 60}
	bars, err := f.FetchDailyBars("600001", time.Time{})
	if err != nil {
		t.Fatalf("mock fetch: %v", err)
	}
	if len(bars) != 60 {
		t.Fatalf("mock must generate the requested bar count, got %d", len(bars))
	}
	for _, b := range bars {
		wd := b.Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("mock generated a weekend bar on %s", b.Date.Format("2006-01-02"))
		}
		if b.High < b.Low || b.High < b.Close || b.Low > b.Open {
			t.Fatalf("mock bar violates OHLC ordering: %+v", b)
		}
	}
}
