package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"crm/internal/jobs"
)

const allJobs = "all"

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <job|all>",
		Short: "Run a job once",
		Long: `Run one job, or every job concurrently, and append the outcome to its log.

Jobs: low-stock, order-reminders, crm-report.

Example:
  crmjobs run low-stock
  crmjobs run all --api-url http://localhost:8080`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd, rootOpts, args[0])
		},
	}
}

func runJobs(cmd *cobra.Command, opts *RootOptions, name string) error {
	entries := jobs.Entries(opts.Config.Jobs, opts.client())

	if name != allJobs {
		entry, ok := jobs.Find(entries, name)
		if !ok {
			return fmt.Errorf("unknown job %q: must be one of %s", name, jobNames(entries))
		}
		entries = []jobs.Entry{entry}
	}

	runner := jobs.NewRunner(opts.Logger)
	g, ctx := errgroup.WithContext(cmd.Context())
	for _, e := range entries {
		entry := e
		g.Go(func() error {
			runner.RunJob(ctx, entry.Job, entry.LogPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", e.Job.Name(), e.LogPath)
	}
	return nil
}

func jobNames(entries []jobs.Entry) string {
	names := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		names = append(names, e.Job.Name())
	}
	names = append(names, allJobs)
	return strings.Join(names, ", ")
}
