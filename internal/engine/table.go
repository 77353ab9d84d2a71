package engine

import (
	"fmt"

	"energymix/internal/models"
)

// Column labels shared by every report table.
const (
	ColYear     = "year"
	ColCountry  = "country"
	ColCategory = "category"
	ColRank     = "rank"
	ColChange   = "change"
	ColFirst    = "first_year"
	ColLast     = "last_year"
)

func plain(name string) models.Column { return models.Column{Name: name, Precision: -1} }
func number(name string, p int) models.Column { return models.Column{Name: name, Precision: p} }

// YearTable renders a single-metric trend.
func YearTable(rows []models.YearValue, column string, precision int) models.Table {
	t := models.Table{Columns: []models.Column{plain(ColYear), number(column, precision)}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Year, RoundNull(r.Value, precision)})
	}
	return t
}

// MixTable renders several metrics per year, one column each.
func MixTable(rows []models.YearValues, columns []string, precision int) models.Table {
	t := models.Table{Columns: []models.Column{plain(ColYear)}}
	for _, c := range columns {
		t.Columns = append(t.Columns, number(c, precision))
	}
	for _, r := range rows {
		cells := make([]any, 0, len(r.Values)+1)
		cells = append(cells, r.Year)
		for _, v := range r.Values {
			cells = append(cells, RoundNull(v, precision))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// CategoryTable renders a year x category trend.
func CategoryTable(rows []models.CategoryYearValue, column string, precision int) models.Table {
	t := models.Table{Columns: []models.Column{plain(ColYear), plain(ColCategory), number(column, precision)}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Year, r.Category.String(), RoundNull(r.Value, precision)})
	}
	return t
}

// RankTable renders a TopN result with 1-based ranks.
func RankTable(rows []models.Ranked, column string, precision int, withCategory bool) models.Table {
	cols := []models.Column{plain(ColRank), plain(ColCountry)}
	if withCategory {
		cols = append(cols, plain(ColCategory))
	}
	cols = append(cols, plain(ColYear), number(column, precision))

	t := models.Table{Columns: cols}
	for i, r := range rows {
		cells := []any{i + 1, r.Country}
		if withCategory {
			cells = append(cells, r.Category.String())
		}
		cells = append(cells, r.Year, Round(r.Value, precision))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// GrowthTable renders a TopNByGrowth result. Endpoint columns are named
// after the metric column and the resolved year.
func GrowthTable(rows []models.Growth, column string, firstYear, lastYear, precision int, withCategory bool) models.Table {
	cols := []models.Column{plain(ColRank), plain(ColCountry)}
	if withCategory {
		cols = append(cols, plain(ColCategory))
	}
	cols = append(cols,
		number(fmt.Sprintf("%s_%d", column, firstYear), precision),
		number(fmt.Sprintf("%s_%d", column, lastYear), precision),
		number(ColChange, precision),
	)

	t := models.Table{Columns: cols}
	for i, g := range rows {
		cells := []any{i + 1, g.Country}
		if withCategory {
			cells = append(cells, g.Category.String())
		}
		cells = append(cells,
			RoundNull(g.First, precision),
			RoundNull(g.Last, precision),
			RoundNull(g.Delta, precision),
		)
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// ObservedGrowthTable renders a per-entity TopNByGrowth result, where each
// row carries its own endpoint years.
func ObservedGrowthTable(rows []models.Growth, column string, precision int, withCategory bool) models.Table {
	cols := []models.Column{plain(ColRank), plain(ColCountry)}
	if withCategory {
		cols = append(cols, plain(ColCategory))
	}
	cols = append(cols,
		plain(ColFirst),
		number(column+"_first", precision),
		plain(ColLast),
		number(column+"_last", precision),
		number(ColChange, precision),
	)

	t := models.Table{Columns: cols}
	for i, g := range rows {
		cells := []any{i + 1, g.Country}
		if withCategory {
			cells = append(cells, g.Category.String())
		}
		cells = append(cells,
			g.FirstYear,
			RoundNull(g.First, precision),
			g.LastYear,
			RoundNull(g.Last, precision),
			RoundNull(g.Delta, precision),
		)
		t.Rows = append(t.Rows, cells)
	}
	return t
}
