package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
)

func newEnrichCommand(stdout io.Writer) *cobra.Command {
	var pending bool
	var horses []string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Re-run horse detail lookups",
		Long: `
With --pending, retries every horse whose last lookup failed. With
--horse, looks up the given horses again. A horse that fails again keeps
its stored fields.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pending == (len(horses) > 0) {
				return errors.New("exactly one of --pending or --horse is required")
			}
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			sum, err := a.pipeline(a.client()).Enrich(ctx, horses)
			if perr := printJSON(stdout, sum); perr != nil {
				return perr
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&pending, "pending", false, "Retry every failed lookup.")
	flags.StringSliceVar(&horses, "horse", nil, "Horse id to look up again; repeatable.")
	return cmd
}
