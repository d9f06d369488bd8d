package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron"
	"go.uber.org/zap"

	"crm/internal/config"
)

// Entry binds a job to its cron spec and log file. Specs carry a leading
// seconds field.
type Entry struct {
	Job      Job
	Schedule string
	LogPath  string
}

type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger *zap.Logger
}

func NewScheduler(runner *Runner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger,
	}
}

// Register adds every entry. Jobs run under ctx.
func (s *Scheduler) Register(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		entry := e
		if err := s.cron.AddFunc(entry.Schedule, func() {
			s.runner.RunJob(ctx, entry.Job, entry.LogPath)
		}); err != nil {
			return fmt.Errorf("scheduling %s with %q: %w", entry.Job.Name(), entry.Schedule, err)
		}
		s.logger.Info("job scheduled",
			zap.String("job", entry.Job.Name()),
			zap.String("schedule", entry.Schedule),
			zap.String("logPath", entry.LogPath),
		)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info("scheduler started")
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

// Entries returns the configured schedule of every job.
func Entries(cfg config.JobsConfig, api API) []Entry {
	return []Entry{
		{Job: NewLowStockJob(api), Schedule: cfg.LowStockSchedule, LogPath: cfg.LowStockLog},
		{Job: NewRemindersJob(api, cfg.ReminderWindow), Schedule: cfg.RemindersSchedule, LogPath: cfg.RemindersLog},
		{Job: NewReportJob(api), Schedule: cfg.ReportSchedule, LogPath: cfg.ReportLog},
	}
}

// Find returns the entry whose job is called name.
func Find(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Job.Name() == name {
			return e, true
		}
	}
	return Entry{}, false
}
