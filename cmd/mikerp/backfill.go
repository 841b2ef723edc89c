package main

import (
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/padraicbc/mikerp/provider"
)

func newBackfillCommand(stdout io.Writer) *cobra.Command {
	var since, until string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay races from the legacy rpData MySQL database",
		Long: `
Reads races and results from the MySQL database named by MYSQL_DSN, e.g.

	MYSQL_DSN="user:pass@tcp(host:3306)/rpData?parseTime=true"

and writes them through the same extraction and ordering as live
ingestion. Horses are still enriched from the racing API.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.MySQLDSN == "" {
				return errors.New("MYSQL_DSN required")
			}
			legacy, err := provider.OpenLegacy(ctx, a.cfg.MySQLDSN)
			if err != nil {
				return err
			}
			defer legacy.Close()

			if until == "" {
				until = time.Now().UTC().Format(time.DateOnly)
			}
			sum, err := a.pipeline(a.client()).Ingest(ctx, legacy, since, until)
			if perr := printJSON(stdout, sum.Totals()); perr != nil {
				return perr
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&since, "since", "", "First date to replay (YYYY-MM-DD).")
	flags.StringVar(&until, "until", "", "Last date to replay (YYYY-MM-DD). Defaults to today.")
	_ = cmd.MarkFlagRequired("since")
	return cmd
}
