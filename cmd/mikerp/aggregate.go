package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/padraicbc/mikerp/config"
)

func newAggregateCommand(stdout io.Writer) *cobra.Command {
	var jobs []string

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute derived statistics",
		Long: `
Runs every enabled aggregation job over the completed races. Each job
replaces its whole table; a job below its threshold writes no row. Use
--job to run a subset.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, j := range jobs {
				if !knownJob(j) {
					return fmt.Errorf("unknown job %q", j)
				}
			}
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			cfg := a.cfg.Aggregation
			if len(jobs) > 0 {
				cfg = cfg.Only(jobs...)
			}
			rep, err := a.pipeline(a.client()).Aggregate(ctx, a.engine(), cfg)
			if perr := printJSON(stdout, rep); perr != nil {
				return perr
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&jobs, "job", nil, "Job to run; repeatable. Defaults to all enabled jobs.")
	return cmd
}

func knownJob(name string) bool {
	for _, jf := range config.JobFamilies {
		if jf.Job == name {
			return true
		}
	}
	return false
}
