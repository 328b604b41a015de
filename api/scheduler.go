/*
scheduler.go - Automated reconciliation scheduler

PURPOSE:
  Periodically reconciles the generated rosters of the current and upcoming
  weeks so absence flags follow the ledger even when nobody opens the
  planning, then pushes a backup snapshot.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Weeks that were never generated are skipped
  - A failing roster is logged; the sweep goes on with the others
  - Reconciliation writes only absence flags, never substitutes

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - WeeksAhead:    Weeks after the current one to include (default: 1)
  - Enabled:       Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReconciliationScheduler(planner, pusher, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - planning/planner.go: ReconcileAll
  - backup/backup.go: Pusher
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/roster-engine/backup"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/planning"
	"go.uber.org/zap"
)

// ReconciliationScheduler sweeps recent rosters in the background.
type ReconciliationScheduler struct {
	Planner       *planning.Planner
	Backup        *backup.Pusher
	Logger        *zap.Logger
	CheckInterval time.Duration
	WeeksAhead    int
	Enabled       bool

	// Now returns the current week; replaced in tests.
	Now func() generic.Week

	ticker *time.Ticker
	stop   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReconciliationScheduler creates a new scheduler. pusher may be nil.
func NewReconciliationScheduler(planner *planning.Planner, pusher *backup.Pusher, logger *zap.Logger) *ReconciliationScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationScheduler{
		Planner:       planner,
		Backup:        pusher,
		Logger:        logger.Named("scheduler"),
		CheckInterval: 1 * time.Hour,
		WeeksAhead:    1,
		Enabled:       true,
		Now:           generic.CurrentWeek,
	}
}

// Start begins the scheduler.
func (rs *ReconciliationScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rs.cancel = cancel
	rs.stop = make(chan struct{})
	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run(ctx)

	rs.Logger.Info("started", zap.Duration("interval", rs.CheckInterval), zap.Int("weeks_ahead", rs.WeeksAhead))
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (rs *ReconciliationScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.cancel()
		rs.wg.Wait()
		rs.ticker = nil
		rs.Logger.Info("stopped")
	}
}

func (rs *ReconciliationScheduler) run(ctx context.Context) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunOnce(ctx)

	for {
		select {
		case <-rs.ticker.C:
			rs.RunOnce(ctx)
		case <-rs.stop:
			return
		}
	}
}

// Weeks returns the weeks a sweep covers.
func (rs *ReconciliationScheduler) Weeks() []generic.Week {
	w := rs.Now()
	weeks := []generic.Week{w}
	for i := 0; i < rs.WeeksAhead; i++ {
		w = w.Next()
		weeks = append(weeks, w)
	}
	return weeks
}

// RunOnce performs one sweep followed by a backup push.
func (rs *ReconciliationScheduler) RunOnce(ctx context.Context) planning.SweepReport {
	weeks := rs.Weeks()
	report, err := rs.Planner.ReconcileAll(ctx, weeks)
	if err != nil {
		rs.Logger.Warn("sweep interrupted", zap.Error(err))
		return report
	}

	rs.Logger.Info("sweep completed",
		zap.Stringer("from", weeks[0]),
		zap.Stringer("to", weeks[len(weeks)-1]),
		zap.Int("rosters", report.Rosters),
		zap.Int("changed", report.Changed),
		zap.Int("failed", report.Failed))

	if rs.Backup != nil {
		rs.Backup.Push(ctx)
	}
	return report
}
