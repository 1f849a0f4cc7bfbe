package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily cache refresh in watch mode. The refresh
// callback updates the bar cache, then the benchmark gate and the
// reference table; the scan itself stays on demand.
type Scheduler struct {
	Cron    *cron.Cron
	Ctx     context.Context
	Refresh func() error
}

// New creates a scheduler around a refresh callback.
func New(ctx context.Context, refresh func() error) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Ctx:     ctx,
		Refresh: refresh,
	}
}

// Register wires the refresh task to a cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runRefresh); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

func (s *Scheduler) runRefresh() {
	select {
	case <-s.Ctx.Done():
		return
	default:
	}
	log.Println("[INFO] scheduled cache refresh starting")
	if err := s.Refresh(); err != nil {
		log.Printf("[WARN] scheduled refresh failed: %v", err)
		return
	}
	log.Println("[INFO] scheduled cache refresh done")
}

// Start begins cron scheduling.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop halts cron scheduling.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
