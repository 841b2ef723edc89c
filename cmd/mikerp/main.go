// Command mikerp runs the racing data pipeline: ingestion, enrichment,
// aggregation, coverage audits and legacy backfill.
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
