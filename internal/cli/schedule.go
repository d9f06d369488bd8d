package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crm/internal/jobs"
)

func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run jobs on their cron schedules until interrupted",
		Long: `Register every job on its configured cron schedule and block until
SIGINT or SIGTERM. Schedules use six fields, seconds first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return schedule(cmd, rootOpts)
		},
	}
}

func schedule(cmd *cobra.Command, opts *RootOptions) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := jobs.NewScheduler(jobs.NewRunner(opts.Logger), opts.Logger)
	if err := scheduler.Register(ctx, jobs.Entries(opts.Config.Jobs, opts.client())...); err != nil {
		return err
	}

	scheduler.Start()
	<-ctx.Done()
	opts.Logger.Info("received shutdown signal", zap.Error(context.Cause(ctx)))
	scheduler.Stop()

	return nil
}
