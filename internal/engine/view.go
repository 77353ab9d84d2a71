package engine

import "energymix/internal/models"

// View is an index list into a Store. Filtering produces sub-views without
// copying row data.
type View struct {
	s    *Store
	rows []int
}

// Row is a single row seen through a view.
type Row struct {
	s *Store
	i int
}

func (r Row) Country() string { return r.s.CountryDict[r.s.CountryIDs[r.i]] }
func (r Row) Year() int       { return int(r.s.Years[r.i]) }
func (r Row) ISOCode() string { return r.s.ISOCodes[r.i] }

// Value returns the metric value and whether it is present.
func (r Row) Value(m models.Metric) (float64, bool) { return r.s.value(r.i, m) }

// All returns a view over every row in the store.
func (s *Store) All() View {
	rows := make([]int, s.Len())
	for i := range rows {
		rows[i] = i
	}
	return View{s: s, rows: rows}
}

func (v View) Store() *Store { return v.s }
func (v View) Len() int      { return len(v.rows) }
func (v View) Row(k int) Row { return Row{s: v.s, i: v.rows[k]} }

// Where keeps the rows matching pred.
func (v View) Where(pred func(Row) bool) View {
	out := make([]int, 0, len(v.rows))
	for _, i := range v.rows {
		if pred(Row{s: v.s, i: i}) {
			out = append(out, i)
		}
	}
	return View{s: v.s, rows: out}
}

// InYear keeps rows observed in year y.
func (v View) InYear(y int) View {
	return v.Where(func(r Row) bool { return r.Year() == y })
}

// ForCountry keeps the rows of one country.
func (v View) ForCountry(country string) View {
	id, ok := v.s.countryIndex[country]
	if !ok {
		return View{s: v.s}
	}
	return v.Where(func(r Row) bool { return r.s.CountryIDs[r.i] == id })
}

// byCountry splits the view into per-country row lists, keyed by country ID.
func (v View) byCountry() map[int32][]int {
	out := make(map[int32][]int)
	for _, i := range v.rows {
		id := v.s.CountryIDs[i]
		out[id] = append(out[id], i)
	}
	return out
}
