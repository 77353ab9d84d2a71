package engine

import (
	"fmt"
	"sort"
	"strings"

	"energymix/internal/models"
)

// Direction selects which end of a ranking is returned.
type Direction int

const (
	Desc Direction = iota
	Asc
)

func (d Direction) String() string {
	if d == Asc {
		return "asc"
	}
	return "desc"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "desc", "top", "highest":
		return Desc, nil
	case "asc", "bottom", "lowest":
		return Asc, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// RankQuery selects the N entities with the highest or lowest value of a
// metric in one year.
type RankQuery struct {
	Metric    models.Metric
	Year      int // 0 resolves to the store's latest year
	N         int // <= 0 returns every eligible entity
	Direction Direction

	// ExcludeNonPositive drops values <= 0 before ranking, for rankings
	// where a literal 0 is a missing measurement rather than a real zero.
	ExcludeNonPositive bool
	WithCategory       bool
}

// TopN ranks entities by q.Metric in q.Year. Absent values never rank.
// Equal values are ordered by ascending country name.
func TopN(v View, q RankQuery) ([]models.Ranked, error) {
	year, err := resolveYear(v.s, q.Year)
	if err != nil {
		return nil, err
	}

	var out []models.Ranked
	snapshot := v.InYear(year)
	for k := 0; k < snapshot.Len(); k++ {
		r := snapshot.Row(k)
		val, ok := r.Value(q.Metric)
		if !ok || (q.ExcludeNonPositive && val <= 0) {
			continue
		}
		item := models.Ranked{Country: r.Country(), Year: year, Value: val}
		if q.WithCategory {
			item.Category = v.s.Classes.Lookup(item.Country)
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		return ranksBefore(out[i].Value, out[j].Value, out[i].Country, out[j].Country, q.Direction)
	})
	return limit(out, q.N), nil
}

// ranksBefore orders by value per direction, then by name ascending.
func ranksBefore(a, b float64, nameA, nameB string, d Direction) bool {
	if a != b {
		if d == Asc {
			return a < b
		}
		return a > b
	}
	return nameA < nameB
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
