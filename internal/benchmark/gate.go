package benchmark

import (
	"fmt"
	"log"
	"sync"
	"time"

	"BollScan/internal/model"
)

// Loader supplies the raw benchmark index series. The store implements
// it; tests inject fakes.
type Loader interface {
	LoadBenchmark() ([]model.DailyBar, error)
}

// Gate answers whether the benchmark index was inside a configured
// range on a given date. The date→close series is built lazily on
// first access and cached for the process lifetime; Refresh rebuilds
// it wholesale. It is the only shared mutable state in the engine, so
// callers fanning out across workers should Warm it once up front.
type Gate struct {
	loader Loader

	mu     sync.RWMutex
	series map[time.Time]float64
	loaded bool
}

func New(loader Loader) *Gate {
	return &Gate{loader: loader}
}

// Admit reports whether the benchmark value on date is known and lies
// within [min, max]. A date with no value (non-trading day, or beyond
// the cached range) is out of range, not an error.
func (g *Gate) Admit(date time.Time, min, max float64) bool {
	val, ok := g.Value(date)
	return ok && min <= val && val <= max
}

// Value returns the benchmark close on date, loading the series on
// first use. A load failure logs and behaves as an empty series.
func (g *Gate) Value(date time.Time) (float64, bool) {
	g.mu.RLock()
	if g.loaded {
		v, ok := g.series[model.Day(date)]
		g.mu.RUnlock()
		return v, ok
	}
	g.mu.RUnlock()

	if err := g.Warm(); err != nil {
		log.Printf("[WARN] benchmark series load failed: %v", err)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.series[model.Day(date)]
	return v, ok
}

// Warm loads the series if it is not cached yet. Call before parallel
// dispatch so workers never race on the populate path.
func (g *Gate) Warm() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loaded {
		return nil
	}
	return g.rebuildLocked()
}

// Refresh discards the cached series and rebuilds it in full. There is
// no partial invalidation at this layer; incremental merging is the
// loader's problem.
func (g *Gate) Refresh() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rebuildLocked()
}

func (g *Gate) rebuildLocked() error {
	bars, err := g.loader.LoadBenchmark()
	if err != nil {
		g.series = map[time.Time]float64{}
		g.loaded = true
		return fmt.Errorf("load benchmark: %w", err)
	}
	series := make(map[time.Time]float64, len(bars))
	for _, b := range bars {
		series[model.Day(b.Date)] = b.Close
	}
	g.series = series
	g.loaded = true
	return nil
}
