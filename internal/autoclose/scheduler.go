package autoclose

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the job every day at 01:00 local time.
const DefaultSchedule = "0 1 * * *"

// Scheduler runs a Job on a cron schedule. A tick that fires while the previous run is
// still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	job    *Job
	logger *slog.Logger
}

func NewScheduler(job *Job, schedule string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{cron: c, job: job, logger: logger}
	if _, err := c.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid auto-close schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	if _, err := s.job.Run(context.Background()); err != nil {
		s.logger.Error("scheduled auto-close failed", "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("auto-close scheduler started", "next_run", s.Next())
}

// Next formats the time of the next scheduled run. It is empty before Start.
func (s *Scheduler) Next() string {
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return ""
	}
	return entries[0].Next.Format("2006-01-02 15:04")
}

// Stop prevents new runs and waits for a running one or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("auto-close scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
