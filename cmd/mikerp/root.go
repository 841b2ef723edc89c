package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/mikerp/aggregate"
	"github.com/padraicbc/mikerp/config"
	"github.com/padraicbc/mikerp/db"
	"github.com/padraicbc/mikerp/enrich"
	"github.com/padraicbc/mikerp/identity"
	applog "github.com/padraicbc/mikerp/logger"
	"github.com/padraicbc/mikerp/pipeline"
	"github.com/padraicbc/mikerp/provider"
)

// NewRootCommand builds the mikerp command tree.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "mikerp",
		Short: "Racing data pipeline",
		Long: `mikerp ingests race results from the racing API, enriches horses with
their pedigree, writes everything in dependency order and derives
partnership, distance, venue and pedigree statistics.

Configuration is read from .env and the environment; aggregation
thresholds may also come from the YAML file named by AGG_CONFIG.
`,
		SilenceUsage: true,
	}

	rc.AddCommand(newIngestCommand(stdout))
	rc.AddCommand(newEnrichCommand(stdout))
	rc.AddCommand(newAggregateCommand(stdout))
	rc.AddCommand(newCoverageCommand(stdout))
	rc.AddCommand(newBackfillCommand(stdout))
	rc.AddCommand(newTokenCommand(stdout))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// app holds the wiring shared by the pipeline commands.
type app struct {
	cfg    *config.RPConfig
	logger *zap.Logger
	bdb    *bun.DB
	store  *db.Store
}

func setup(ctx context.Context) (*app, error) {
	cfg := config.LoadRP()
	logger, err := applog.New("mikerp", cfg.Debug)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	bdb, err := db.Setup(ctx, cfg.PostgresDSN(), cfg.Debug)
	if err != nil {
		return nil, err
	}
	if err := db.CreateTables(ctx, bdb); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &app{cfg: cfg, logger: logger, bdb: bdb, store: db.NewStore(bdb, logger)}, nil
}

func (a *app) close() {
	_ = a.bdb.Close()
	_ = a.logger.Sync()
}

func (a *app) client() *provider.Client {
	return provider.NewClient(provider.ClientConfig{
		BaseURL: a.cfg.ProviderURL,
		User:    a.cfg.ProviderUser,
		Pass:    a.cfg.ProviderPass,
		Rate:    a.cfg.ProviderRate,
		Timeout: a.cfg.ProviderTimeout,
		Retries: a.cfg.ProviderRetries,
	}, a.logger)
}

// pipeline wires the horse detail lookup behind a throttle at the
// provider's rate.
func (a *app) pipeline(client *provider.Client) *pipeline.Pipeline {
	gate := enrich.NewGate(enrich.NewThrottle(a.cfg.ProviderRate), a.logger).
		Register(identity.KindHorse, enrich.HorseLookup{Client: client})
	return pipeline.New(a.store, gate, a.logger)
}

func (a *app) engine() *aggregate.Engine {
	return aggregate.New(a.store, a.logger)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
