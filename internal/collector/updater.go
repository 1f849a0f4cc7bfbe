package collector

import (
	"fmt"
	"log"
	"time"

	"BollScan/internal/model"
	"BollScan/internal/store"
)

// A cached symbol is only refetched once it has fallen this many
// calendar days behind the last trading day. Keeps batch updates from
// hammering the source for symbols that are already current.
const staleAfterDays = 5

// Updater drives the incremental maintenance of the bar cache: fetch
// only what is missing, merge idempotently, never rewrite history.
type Updater struct {
	Store     *store.Store
	Fetcher   Fetcher
	StartDate time.Time // first-download start for empty caches
}

// UpdateSymbol brings one symbol's cached series up to date. Fresh
// enough symbols are skipped.
func (u *Updater) UpdateSymbol(symbol string, lastTrading time.Time) error {
	since, stale, err := u.fetchWindow(symbol, lastTrading)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}

	bars, err := u.Fetcher.FetchDailyBars(symbol, since)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil
	}
	if err := u.Store.UpsertBars(symbol, bars); err != nil {
		return fmt.Errorf("cache %s: %w", symbol, err)
	}
	log.Printf("[INFO] %s updated: %d bars from %s", symbol, len(bars), since.Format("2006-01-02"))
	return nil
}

// UpdateBenchmark maintains the designated index series. Index feeds
// only deliver closes, so open/high/low are filled with the close
// before caching.
func (u *Updater) UpdateBenchmark(symbol string, lastTrading time.Time) error {
	since, stale, err := u.fetchWindow(symbol, lastTrading)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}

	closes, err := u.Fetcher.FetchIndexCloses(symbol, since)
	if err != nil {
		return fmt.Errorf("fetch index %s: %w", symbol, err)
	}
	bars := make([]model.DailyBar, len(closes))
	for i, c := range closes {
		bars[i] = model.DailyBar{Date: c.Date, Open: c.Close, High: c.Close, Low: c.Close, Close: c.Close}
	}
	if len(bars) == 0 {
		return nil
	}
	return u.Store.UpsertBars(symbol, bars)
}

// UpdateSnapshot replaces the cached reference snapshot with a fresh
// one from the source.
func (u *Updater) UpdateSnapshot() error {
	rows, err := u.Fetcher.FetchSnapshot()
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := u.Store.SaveSnapshot(rows); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	log.Printf("[INFO] reference snapshot updated: %d rows", len(rows))
	return nil
}

// UpdateAll refreshes every cached symbol, then the snapshot. One
// symbol failing does not abort the batch.
func (u *Updater) UpdateAll(benchmarkSymbol string, now time.Time) error {
	lastTrading := LastTradingDay(now)

	if err := u.UpdateBenchmark(benchmarkSymbol, lastTrading); err != nil {
		log.Printf("[WARN] benchmark update: %v", err)
	}

	symbols, err := u.Store.Symbols()
	if err != nil {
		return err
	}
	for _, sym := range symbols {
		if sym == benchmarkSymbol {
			continue
		}
		if err := u.UpdateSymbol(sym, lastTrading); err != nil {
			log.Printf("[WARN] update %s: %v", sym, err)
		}
	}
	return u.UpdateSnapshot()
}

// fetchWindow decides whether a symbol is stale and from which date to
// fetch. An empty cache starts at StartDate.
func (u *Updater) fetchWindow(symbol string, lastTrading time.Time) (time.Time, bool, error) {
	last, ok, err := u.Store.LastDate(symbol)
	if err != nil {
		return time.Time{}, false, err
	}
	if !ok {
		return u.StartDate, true, nil
	}
	behind := int(lastTrading.Sub(last).Hours() / 24)
	if behind < staleAfterDays {
		return time.Time{}, false, nil
	}
	return last.AddDate(0, 0, 1), true, nil
}
