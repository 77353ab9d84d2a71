package cli

import (
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"energymix/internal/catalogue"
	"energymix/internal/engine"
	"energymix/internal/models"
	"energymix/internal/report"
)

// QueryOptions holds flags for the query and chart commands.
type QueryOptions struct {
	*RootOptions
	catalogue.Overrides
}

func (o *QueryOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.N, "limit", "n", 0, "override the number of ranked rows")
	cmd.Flags().IntVar(&o.Year, "year", 0, "ranking year (default: latest year in the data)")
	cmd.Flags().IntVar(&o.FirstYear, "first", 0, "growth start year (default: earliest year in the data)")
	cmd.Flags().IntVar(&o.LastYear, "last", 0, "growth end year (default: latest year in the data)")
	cmd.Flags().BoolVar(&o.Strict, "strict", false, "fail on countries without a classification")
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <name>",
		Short: "Run a catalogue query",
		Long: `Run one of the canned questions and print the result table.

Example:
  energymix query renewables-growth --records owid-energy.csv --classification classes.csv
  energymix query top-coal-elec --db energymix.db -n 5 --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.run(cmd, args[0])
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), t, opts.Format)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (o *QueryOptions) run(cmd *cobra.Command, name string) (models.Table, error) {
	cat, err := catalogue.Default()
	if err != nil {
		return models.Table{}, err
	}
	if _, err := cat.Get(name); err != nil {
		return models.Table{}, WrapExitError(ExitCommandError, "query", err)
	}
	store, err := o.loadStore(cmd.Context())
	if err != nil {
		return models.Table{}, err
	}
	overrides := o.Overrides
	overrides.Strict = overrides.Strict || o.cfg.Engine.StrictClassification
	t, err := cat.Run(store, name, overrides)
	if errors.Is(err, engine.ErrUnknownCountry) {
		return models.Table{}, WrapExitError(ExitFailure, "strict classification", err)
	}
	return t, err
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogue queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalogue.Default()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if rootOpts.Format == report.FormatJSON {
				return json.NewEncoder(w).Encode(cat.List())
			}
			tw := table.NewWriter()
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Name", "Kind", "Title"})
			for _, q := range cat.List() {
				tw.AppendRow(table.Row{q.Name, q.Kind, q.Title})
			}
			if rootOpts.Format == report.FormatCSV {
				_, err = fmt.Fprintln(w, tw.RenderCSV())
			} else {
				_, err = fmt.Fprintln(w, tw.Render())
			}
			return err
		},
	}
}

// NewChartCommand creates the chart command.
func NewChartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}
	var out string

	cmd := &cobra.Command{
		Use:   "chart <name>",
		Short: "Render a catalogue query as an HTML chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.run(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return WrapExitError(ExitCommandError, "create output", err)
			}
			if err := report.Chart(f, t); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			opts.log.Info("chart written", "query", t.Name, "path", out)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "chart.html", "output HTML file")
	return cmd
}
