package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"energymix/internal/config"
	"energymix/internal/engine"
	"energymix/internal/ingest"
	"energymix/internal/sqlstore"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import CSV files into the SQLite store",
		Long: `Read the energy records and classification CSVs and replace the contents
of the SQLite store with them.

Example:
  energymix import --records owid-energy.csv.gz --classification classes.csv --db energymix.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			if cfg.Data.RecordsPath == "" {
				return NewExitError(ExitCommandError, "import requires --records")
			}
			if cfg.Data.DatabasePath == "" {
				return NewExitError(ExitCommandError, "import requires --db")
			}

			recs, classes, err := ingest.Load(cmd.Context(), ingest.Sources{
				RecordsPath:        cfg.Data.RecordsPath,
				ClassificationPath: cfg.Data.ClassificationPath,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "read input", err)
			}

			// Reject what the engine would reject before touching the database.
			cls, err := engine.NewClassification(classes)
			if err != nil {
				return WrapExitError(ExitCommandError, "classification", err)
			}
			if _, err := engine.NewStore(recs, cls); err != nil {
				return WrapExitError(ExitCommandError, "records", err)
			}

			db, err := sqlstore.Open(cfg.Data.DatabasePath)
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}
			defer db.Close()

			info, err := db.Import(cmd.Context(), recs, classes)
			if err != nil {
				return err
			}
			rootOpts.log.Debug("import committed", "id", info.ID)

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
				"Imported %s records for %s countries into %s\n",
				humanize.Comma(int64(info.Records)), humanize.Comma(int64(info.Countries)), cfg.Data.DatabasePath)
			return nil
		},
	}
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Summarise the loaded dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rootOpts.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			lo, err := store.EarliestYear()
			if err != nil {
				color.New(color.FgYellow).Fprintln(w, "Dataset is empty")
				return nil
			}
			hi, _ := store.LatestYear()

			fmt.Fprintf(w, "Rows:        %s\n", humanize.Comma(int64(store.Len())))
			fmt.Fprintf(w, "Countries:   %s (%d classified)\n",
				humanize.Comma(int64(len(store.CountryDict))), store.Classes.Len())
			fmt.Fprintf(w, "Years:       %d-%d\n", lo, hi)

			if rootOpts.cfg.Data.Source != config.SourceSQLite {
				return nil
			}
			if st, err := os.Stat(rootOpts.cfg.Data.DatabasePath); err == nil {
				fmt.Fprintf(w, "Database:    %s (%s)\n", rootOpts.cfg.Data.DatabasePath, humanize.Bytes(uint64(st.Size())))
			}
			db, err := sqlstore.Open(rootOpts.cfg.Data.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()
			last, err := db.LastImport(cmd.Context())
			switch {
			case errors.Is(err, sql.ErrNoRows):
				fmt.Fprintln(w, "Imported:    never")
			case err != nil:
				return err
			default:
				fmt.Fprintf(w, "Imported:    %s (%s)\n", humanize.Time(last.ImportedAt), last.ID)
			}
			return nil
		},
	}
}
