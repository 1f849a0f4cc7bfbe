package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"BollScan/internal/benchmark"
	"BollScan/internal/collector"
	"BollScan/internal/config"
	"BollScan/internal/model"
	"BollScan/internal/refdata"
	"BollScan/internal/report"
	"BollScan/internal/scheduler"
	"BollScan/internal/store"
	"BollScan/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	var (
		cfgPath = flag.String("config", "configs/config.yaml", "config file path")
		mode    = flag.String("mode", "backtest", "backtest | find | refresh")
		symbol  = flag.String("symbol", "", "limit the run to one symbol")
		watch   = flag.Bool("watch", false, "stay running and refresh the cache on schedule")
	)
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	settings, err := cfg.Settings()
	if err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open cache store: %v", err)
	}
	defer st.Close()

	gate := benchmark.New(store.BenchmarkSource{Store: st, Symbol: cfg.Benchmark.Symbol})
	table := refdata.NewTable(st)

	app := &app{
		cfg:      cfg,
		settings: settings,
		store:    st,
		gate:     gate,
		table:    table,
	}

	switch *mode {
	case "backtest":
		if err := app.runBacktest(*symbol); err != nil {
			log.Fatalf("[FATAL] backtest: %v", err)
		}
	case "find":
		if err := app.runFind(*symbol); err != nil {
			log.Fatalf("[FATAL] find: %v", err)
		}
	case "refresh":
		if err := app.refresh(); err != nil {
			log.Fatalf("[FATAL] refresh: %v", err)
		}
	default:
		log.Fatalf("[FATAL] unknown mode %q", *mode)
	}

	if *watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sched := scheduler.New(ctx, app.refresh)
		if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
			log.Fatalf("[FATAL] register refresh: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		log.Println("[INFO] watch mode, press Ctrl+C to stop")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[INFO] shutdown signal received")
	}
}

type app struct {
	cfg      *config.Config
	settings config.Settings
	store    *store.Store
	gate     *benchmark.Gate
	table    *refdata.Table
}

// universe returns the symbols to process: either the one requested,
// or every cached tradable symbol.
func (a *app) universe(only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	cached, err := a.store.Symbols()
	if err != nil {
		return nil, err
	}
	var symbols []string
	for _, sym := range cached {
		if sym == a.cfg.Benchmark.Symbol {
			continue
		}
		row, ok := a.table.Get(sym)
		name := ""
		if ok {
			name = row.Name
		}
		if refdata.IsTradable(sym, name) {
			symbols = append(symbols, sym)
		}
	}
	return symbols, nil
}

// request assembles the per-symbol engine input.
func (a *app) request(sym string) (strategy.Request, error) {
	bars, err := a.store.LoadBars(sym)
	if err != nil {
		return strategy.Request{}, err
	}
	row, ok := a.table.Get(sym)
	s := a.settings
	return strategy.Request{
		Symbol:      sym,
		Name:        row.Name,
		Bars:        bars,
		Mode:        s.Mode,
		SellRef:     s.SellRef,
		Policy:      s.Policy,
		Window:      s.Window,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		Constraint:  s.Constraint,
		Ref:         row,
		HasRef:      ok,
	}, nil
}

func (a *app) runBacktest(only string) error {
	symbols, err := a.universe(only)
	if err != nil {
		return err
	}
	log.Printf("[INFO] backtest over %d symbols (%s, window %d, policy %s)",
		len(symbols), a.settings.Mode, a.settings.Window, a.settings.Policy)

	var records []model.TradeRecord
	err = a.forEachSymbol(symbols, func(sym string) error {
		req, err := a.request(sym)
		if err != nil {
			return err
		}
		recs, err := strategy.Simulate(req, a.gate)
		if err != nil {
			return err
		}
		if len(recs) > 0 {
			a.collect(func() { records = append(records, recs...) })
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Return > records[j].Return })
	fmt.Print(report.FormatTrades(records))
	if summary, ok := report.Summarize(records); ok {
		fmt.Print(report.FormatSummary(summary))
	} else {
		log.Println("[INFO] no trades produced")
	}
	return nil
}

func (a *app) runFind(only string) error {
	symbols, err := a.universe(only)
	if err != nil {
		return err
	}
	log.Printf("[INFO] forward scan over %d symbols (%s, policy %s)",
		len(symbols), a.settings.Mode, a.settings.Policy)

	var rows []model.SignalRow
	err = a.forEachSymbol(symbols, func(sym string) error {
		req, err := a.request(sym)
		if err != nil {
			return err
		}
		row, err := strategy.Scan(req)
		if err != nil {
			return err
		}
		if row != nil {
			a.collect(func() { rows = append(rows, *row) })
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })
	fmt.Print(report.FormatSignals(rows))
	log.Printf("[INFO] %d candidates", len(rows))
	return nil
}

var collectMu sync.Mutex

func (a *app) collect(fn func()) {
	collectMu.Lock()
	defer collectMu.Unlock()
	fn()
}

// forEachSymbol fans per-symbol work across a fixed pool. The gate and
// table are warmed first so workers never race on the lazy populate
// path; per-symbol work shares nothing else.
func (a *app) forEachSymbol(symbols []string, fn func(string) error) error {
	if err := a.gate.Warm(); err != nil {
		log.Printf("[WARN] benchmark warm: %v", err)
	}
	if err := a.table.Warm(); err != nil {
		log.Printf("[WARN] snapshot warm: %v", err)
	}

	workers := a.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	var done int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				if err := fn(sym); err != nil {
					log.Printf("[WARN] %s: %v", sym, err)
				}
				a.collect(func() {
					done++
					if done%100 == 0 {
						log.Printf("[INFO] progress: %d/%d", done, len(symbols))
					}
				})
			}
		}()
	}
	for _, sym := range symbols {
		jobs <- sym
	}
	close(jobs)
	wg.Wait()
	return nil
}

// refresh brings the cache up to date and rebuilds the in-memory
// collaborators. Wired to the scheduler in watch mode.
func (a *app) refresh() error {
	if fetcher, ok := a.fetcher(); ok {
		startDate, err := a.cfg.ParsedStartDate()
		if err != nil {
			return err
		}
		updater := &collector.Updater{
			Store:     a.store,
			Fetcher:   fetcher,
			StartDate: startDate,
		}
		if err := updater.UpdateAll(a.cfg.Benchmark.Symbol, time.Now()); err != nil {
			return err
		}
	} else {
		log.Println("[INFO] no data source configured, reloading from cache only")
	}
	if err := a.gate.Refresh(); err != nil {
		return err
	}
	return a.table.Refresh()
}

// fetcher picks the data source. Only the mock source ships in-tree;
// production deployments plug a real feed in behind collector.Fetcher.
func (a *app) fetcher() (collector.Fetcher, bool) {
	if os.Getenv("BOLLSCAN_DATA_SOURCE") == "mock" {
		return &collector.MockFetcher{}, true
	}
	return nil, false
}
