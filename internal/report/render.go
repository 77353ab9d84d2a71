// Package report renders engine tables as text, CSV, JSON or HTML charts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"energymix/internal/models"
)

// Formats accepted by Render.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var ValidFormats = []string{FormatText, FormatCSV, FormatJSON}

// Render writes t to w in the given format.
func Render(w io.Writer, t models.Table, format string) error {
	switch format {
	case FormatText:
		return Text(w, t)
	case FormatCSV:
		return CSV(w, t)
	case FormatJSON:
		return JSON(w, t)
	}
	return fmt.Errorf("unknown format %q: must be one of %v", format, ValidFormats)
}

// Cell formats one cell. Floats use the column precision; absent values
// render as an empty string.
func Cell(v any, col models.Column) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', col.Precision, 64)
	case models.NullFloat:
		if !x.Valid {
			return ""
		}
		return strconv.FormatFloat(x.Float64, 'f', col.Precision, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Label turns a column name into a heading: "avg_fossil_share_energy" -> "Avg Fossil Share Energy".
func Label(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// Text renders a boxed table with a title line.
func Text(w io.Writer, t models.Table) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	if t.Title != "" {
		tw.SetTitle(t.Title)
	}

	header := make(table.Row, len(t.Columns))
	configs := make([]table.ColumnConfig, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = Label(c.Name)
		configs[i] = table.ColumnConfig{Number: i + 1}
		if c.Precision >= 0 {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, r := range t.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = Cell(v, t.Columns[i])
		}
		tw.AppendRow(row)
	}
	tw.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(t.Rows))})

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}

// CSV renders a header line with the raw column names followed by one line per row.
func CSV(w io.Writer, t models.Table) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	line := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, v := range r {
			line[i] = Cell(v, t.Columns[i])
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON renders the table as one indented JSON document.
func JSON(w io.Writer, t models.Table) error {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
