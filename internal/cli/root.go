// Package cli implements the crmjobs command: one-off and scheduled runs of
// the integration jobs, plus demo data seeding.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crm/internal/config"
	"crm/internal/infrastructure/logger"
	"crm/internal/jobs"
)

// RootOptions holds global flags and the state built from them before any
// subcommand runs.
type RootOptions struct {
	ConfigPath string
	APIURL     string

	Config *config.Config
	Logger *zap.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "crmjobs",
		Short: "CRM scheduled jobs",
		Long:  "Runs the CRM integration jobs (low-stock, order-reminders, crm-report) against the CRM HTTP API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "optional config file")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "CRM API base URL (overrides JOBS_API_URL)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewScheduleCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.APIURL != "" {
		cfg.Jobs.APIURL = o.APIURL
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	o.Config = cfg
	o.Logger = log
	return nil
}

func (o *RootOptions) client() *jobs.Client {
	return jobs.NewClient(jobs.ClientConfig{
		BaseURL:    o.Config.Jobs.APIURL,
		Timeout:    o.Config.Jobs.Timeout,
		MaxRetries: o.Config.Jobs.MaxRetries,
	}, o.Logger)
}
