package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"energymix/internal/config"
	"energymix/internal/engine"
	"energymix/internal/ingest"
	"energymix/internal/observability"
	"energymix/internal/report"
	"energymix/internal/sqlstore"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string

	// Data flags override the config file when set.
	Source         string
	Records        string
	Classification string
	Database       string

	cfg *config.Config
	log *slog.Logger
}

// NewRootCommand creates the root command for the energymix CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "energymix",
		Short: "Country energy-mix analytics",
		Long:  "Load per-country energy indicators and answer the canned trend, ranking and growth questions.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(report.ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, report.ValidFormats))
			}
			return opts.init(cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.ConfigPath, "config", "", "config file (default ./energymix.yaml)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	f.StringVar(&opts.Format, "format", report.FormatText, "output format (text|csv|json)")
	f.StringVar(&opts.Source, "source", "", "data source (csv|sqlite)")
	f.StringVar(&opts.Records, "records", "", "energy records CSV (.csv, .csv.gz, .csv.zst)")
	f.StringVar(&opts.Classification, "classification", "", "country classification CSV")
	f.StringVar(&opts.Database, "db", "", "SQLite database path")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewChartCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))

	return cmd
}

// init loads config and applies flag overrides.
func (o *RootOptions) init(stderr io.Writer) error {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if o.Records != "" {
		cfg.Data.RecordsPath = o.Records
		if o.Source == "" {
			cfg.Data.Source = config.SourceCSV
		}
	}
	if o.Classification != "" {
		cfg.Data.ClassificationPath = o.Classification
	}
	if o.Database != "" {
		cfg.Data.DatabasePath = o.Database
		if o.Source == "" && o.Records == "" {
			cfg.Data.Source = config.SourceSQLite
		}
	}
	if o.Source != "" {
		cfg.Data.Source = o.Source
	}
	if o.Verbose {
		cfg.Logging.Level = "debug"
	}
	o.cfg = cfg
	o.log = observability.NewLogger(stderr, cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// loadStore builds a snapshot from the configured source.
func (o *RootOptions) loadStore(ctx context.Context) (*engine.Store, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	switch o.cfg.Data.Source {
	case config.SourceSQLite:
		db, err := sqlstore.Open(o.cfg.Data.DatabasePath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "open database", err)
		}
		defer db.Close()
		return db.Snapshot(ctx)
	default:
		return ingest.LoadStore(ctx, ingest.Sources{
			RecordsPath:        o.cfg.Data.RecordsPath,
			ClassificationPath: o.cfg.Data.ClassificationPath,
		}, o.log)
	}
}
