package models

import (
	json "github.com/goccy/go-json"
)

// Column describes one labelled output column. Precision applies to
// float cells only; a negative precision means "as is".
type Column struct {
	Name      string `json:"name"`
	Precision int    `json:"precision"`
}

// Table is an ordered sequence of labelled tuples. Cells hold string, int,
// float64 (already rounded) or NullFloat (already rounded).
type Table struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the cell at row i under the named column.
func (t *Table) Get(i int, name string) (any, bool) {
	j := t.Index(name)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[i][j], true
}

// Records returns the rows as column-name keyed maps, preserving row order.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			m[c.Name] = row[j]
		}
		out[i] = m
	}
	return out
}

// MarshalJSON emits rows as objects so column labels travel with the data.
func (t Table) MarshalJSON() ([]byte, error) {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	rows := make([]orderedRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = orderedRow{names: names, cells: r}
	}
	return json.Marshal(struct {
		Name    string       `json:"name"`
		Title   string       `json:"title"`
		Columns []string     `json:"columns"`
		Rows    []orderedRow `json:"rows"`
	}{t.Name, t.Title, names, rows})
}

// orderedRow marshals as a JSON object with keys in column order.
type orderedRow struct {
	names []string
	cells []any
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, name := range r.names {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.cells[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}
