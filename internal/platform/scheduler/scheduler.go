// Package scheduler runs background jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work. It returns the number of items processed.
type Job interface {
	Run(ctx context.Context) (int, error)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) (int, error)

func (f JobFunc) Run(ctx context.Context) (int, error) { return f(ctx) }

// parser accepts five-field specs, an optional leading seconds field and descriptors like @daily.
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler manages all cron tasks. A job still running when its next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler evaluating specs in loc. Jobs receive a context derived from parent
// that is canceled by Stop.
func New(parent context.Context, loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	logger := cron.VerbosePrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules job under name. A positive timeout bounds each run.
func (s *Scheduler) Register(name, spec string, job Job, timeout time.Duration) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job, timeout) }); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	slog.Info("scheduled task registered", "task", name, "spec", spec)
	return nil
}

// RunNow executes job once on the calling goroutine.
func (s *Scheduler) RunNow(name string, job Job, timeout time.Duration) {
	s.run(name, job, timeout)
}

func (s *Scheduler) run(name string, job Job, timeout time.Duration) {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	slog.Info("running scheduled task", "task", name)
	n, err := job.Run(ctx)
	if err != nil {
		slog.Error("scheduled task failed", "task", name, "processed", n, "elapsed", time.Since(start), "error", err)
		return
	}
	slog.Info("scheduled task finished", "task", name, "processed", n, "elapsed", time.Since(start))
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "tasks", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
		slog.Info("scheduler stopped")
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out", "error", ctx.Err())
	}
}
