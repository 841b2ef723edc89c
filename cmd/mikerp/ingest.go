package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/padraicbc/mikerp/provider"
)

func newIngestCommand(stdout io.Writer) *cobra.Command {
	var from, to string
	var cards bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest results (or racecards) for a date range",
		Long: `
Fetches every race from --from to --to inclusive, one batch per day,
resolves and enriches new entities and writes them before the races that
reference them. Re-running a range is safe.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			client := a.client()
			var src provider.Source = client
			if cards {
				src = provider.CardSource{Client: client}
			}
			if to == "" {
				to = from
			}

			sum, err := a.pipeline(client).Ingest(ctx, src, from, to)
			if perr := printJSON(stdout, sum.Totals()); perr != nil {
				return perr
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&from, "from", time.Now().UTC().Format(time.DateOnly), "First date (YYYY-MM-DD).")
	flags.StringVar(&to, "to", "", "Last date (YYYY-MM-DD). Defaults to --from.")
	flags.BoolVar(&cards, "cards", false, "Ingest racecards instead of results.")
	return cmd
}
