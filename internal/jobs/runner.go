package jobs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const timestampLayout = "02/01/2006-15:04:05"

// Runner executes jobs and appends their outcome to a log file.
type Runner struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		logger: logger,
		now:    time.Now,
	}
}

// RunJob runs job once and appends a single entry to logPath: the summary
// on success, a failure line otherwise. It never fails and never panics.
func (r *Runner) RunJob(ctx context.Context, job Job, logPath string) {
	timestamp := r.now().Format(timestampLayout)
	logger := r.logger.With(zap.String("job", job.Name()))

	summary, err := r.execute(ctx, job)
	var entry string
	if err != nil {
		logger.Warn("job failed", zap.Error(err))
		entry = fmt.Sprintf("%s %s failed: %v", timestamp, job.Name(), err)
	} else {
		logger.Info("job completed")
		entry = timestamp + " " + summary
	}

	if err := appendEntry(logPath, entry); err != nil {
		logger.Error("failed to write job log", zap.String("path", logPath), zap.Error(err))
	}
}

func (r *Runner) execute(ctx context.Context, job Job) (summary string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return job.Run(ctx)
}

// appendEntry writes entry, newline-terminated, in one Write call.
func appendEntry(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	if !strings.HasSuffix(entry, "\n") {
		entry += "\n"
	}

	if _, err := f.Write([]byte(entry)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
