package refdata

import (
	"fmt"
	"log"
	"sync"

	"BollScan/internal/model"
)

// Source supplies a fresh reference snapshot (one row per symbol with
// name, live price, market cap and PE). The store implements it; an
// external spot feed can too.
type Source interface {
	LoadSnapshot() ([]model.RefRow, error)
}

// Table is the cached symbol→reference-row lookup. Like the benchmark
// gate it is lazily built once and rebuilt wholesale on Refresh.
type Table struct {
	source Source

	mu     sync.RWMutex
	rows   map[string]model.RefRow
	loaded bool
}

func NewTable(source Source) *Table {
	return &Table{source: source}
}

// Get returns the reference row for a symbol. A symbol absent from the
// snapshot simply reports ok=false; callers treat that as a constraint
// failure, not a fault.
func (t *Table) Get(symbol string) (model.RefRow, bool) {
	t.mu.RLock()
	if t.loaded {
		row, ok := t.rows[symbol]
		t.mu.RUnlock()
		return row, ok
	}
	t.mu.RUnlock()

	if err := t.Warm(); err != nil {
		log.Printf("[WARN] reference snapshot load failed: %v", err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[symbol]
	return row, ok
}

// Warm loads the snapshot if it is not cached yet.
func (t *Table) Warm() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return nil
	}
	return t.rebuildLocked()
}

// Refresh rebuilds the snapshot in full.
func (t *Table) Refresh() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rebuildLocked()
}

func (t *Table) rebuildLocked() error {
	rows, err := t.source.LoadSnapshot()
	if err != nil {
		t.rows = map[string]model.RefRow{}
		t.loaded = true
		return fmt.Errorf("load snapshot: %w", err)
	}
	m := make(map[string]model.RefRow, len(rows))
	for _, r := range rows {
		m[r.Symbol] = r
	}
	t.rows = m
	t.loaded = true
	return nil
}
