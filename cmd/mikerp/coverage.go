package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/padraicbc/mikerp/coverage"
)

func newCoverageCommand(stdout io.Writer) *cobra.Command {
	var asJSON, strict bool

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Audit how completely each field is populated",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			rep, err := coverage.New(a.store, a.logger).Audit(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				err = printJSON(stdout, rep)
			} else {
				err = printCoverage(stdout, rep)
			}
			if err != nil {
				return err
			}
			if strict && rep.Unexpected > 0 {
				return fmt.Errorf("%d unexpected nulls", rep.Unexpected)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON.")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero on any unexpected null.")
	return cmd
}

func printCoverage(w io.Writer, rep coverage.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tCOLUMN\tSOURCE\tPOPULATED\tTOTAL\tPCT\tEXPECTED NULLS\tUNEXPECTED NULLS")
	for _, l := range rep.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.1f\t%d\t%d\n",
			l.Table, l.Column, l.Source, l.Populated, l.Total, l.Percent, l.ExpectedNulls, l.UnexpectedNulls)
	}
	fmt.Fprintf(tw, "\nunexpected nulls: %d\n", rep.Unexpected)
	return tw.Flush()
}
