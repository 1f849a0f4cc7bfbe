package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"BollScan/internal/model"
)

// Store is the local incremental cache of daily bars and the daily
// reference snapshot, keyed by 6-digit symbol codes. It is the
// "external cache collaborator" the engine consumes: the engine never
// touches it directly, it only receives pre-loaded series.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the SQLite cache and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so long scans can read while the updater writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] cache store opened: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_symbol ON daily_bars(symbol)`,

		`CREATE TABLE IF NOT EXISTS ref_snapshot (
			symbol     TEXT PRIMARY KEY,
			name       TEXT,
			price      REAL,
			market_cap REAL,
			pe_ratio   REAL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

// LoadBars returns one symbol's full daily series in ascending date
// order. A symbol with no cached bars yields an empty series, not an
// error.
func (s *Store) LoadBars(symbol string) ([]model.DailyBar, error) {
	rows, err := s.db.Query(
		`SELECT date, open, high, low, close FROM daily_bars WHERE symbol = ? ORDER BY date`,
		symbol,
	)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []model.DailyBar
	for rows.Next() {
		var (
			ds  string
			bar model.DailyBar
		)
		if err := rows.Scan(&ds, &bar.Open, &bar.High, &bar.Low, &bar.Close); err != nil {
			return nil, fmt.Errorf("scan bar for %s: %w", symbol, err)
		}
		d, err := time.ParseInLocation(dateLayout, ds, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad cached date %q for %s: %w", ds, symbol, err)
		}
		bar.Date = d
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// UpsertBars merges newly fetched bars into the cache. The merge is
// keyed by (symbol, date) and idempotent: re-running the same batch
// changes nothing, and a revised bar for an existing date wins.
func (s *Store) UpsertBars(symbol string, bars []model.DailyBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO daily_bars (symbol, date, open, high, low, close)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high,
			low = excluded.low, close = excluded.close`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol, model.Day(b.Date).Format(dateLayout), b.Open, b.High, b.Low, b.Close); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert bar %s %s: %w", symbol, b.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

// LastDate returns the most recent cached bar date for a symbol.
func (s *Store) LastDate(symbol string) (time.Time, bool, error) {
	var ds sql.NullString
	err := s.db.QueryRow(`SELECT MAX(date) FROM daily_bars WHERE symbol = ?`, symbol).Scan(&ds)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last date for %s: %w", symbol, err)
	}
	if !ds.Valid {
		return time.Time{}, false, nil
	}
	d, err := time.ParseInLocation(dateLayout, ds.String, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad cached date %q: %w", ds.String, err)
	}
	return d, true, nil
}

// Symbols lists every symbol with at least one cached bar.
func (s *Store) Symbols() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT symbol FROM daily_bars ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// SaveSnapshot replaces the reference snapshot wholesale. The snapshot
// is a daily full refresh, so there is nothing to merge.
func (s *Store) SaveSnapshot(rows []model.RefRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ref_snapshot`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear snapshot: %w", err)
	}
	now := time.Now().Unix()
	for _, r := range rows {
		if _, err := tx.Exec(
			`INSERT INTO ref_snapshot (symbol, name, price, market_cap, pe_ratio, updated_at) VALUES (?,?,?,?,?,?)`,
			r.Symbol, r.Name, r.Price, r.MarketCap, r.PERatio, now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot row %s: %w", r.Symbol, err)
		}
	}
	return tx.Commit()
}

// LoadSnapshot returns the cached reference snapshot.
func (s *Store) LoadSnapshot() ([]model.RefRow, error) {
	rows, err := s.db.Query(`SELECT symbol, name, price, market_cap, pe_ratio FROM ref_snapshot`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var refs []model.RefRow
	for rows.Next() {
		var r model.RefRow
		if err := rows.Scan(&r.Symbol, &r.Name, &r.Price, &r.MarketCap, &r.PERatio); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (s *Store) Close() error {
	log.Println("[INFO] closing cache store")
	return s.db.Close()
}

// BenchmarkSource adapts the store to the benchmark gate's loader
// interface for one designated index symbol.
type BenchmarkSource struct {
	Store  *Store
	Symbol string
}

func (b BenchmarkSource) LoadBenchmark() ([]model.DailyBar, error) {
	return b.Store.LoadBars(b.Symbol)
}
