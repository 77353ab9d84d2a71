package engine

import (
	"sort"

	"energymix/internal/models"
)

// GrowthBetween returns country's value of m at firstYear and lastYear and
// the unrounded change between them. Delta is absent when either endpoint is.
func GrowthBetween(v View, country string, firstYear, lastYear int, m models.Metric) models.Growth {
	g := models.Growth{Country: country, FirstYear: firstYear, LastYear: lastYear}
	if val, ok := v.ValueAt(country, firstYear, m); ok {
		g.First = models.Float(val)
	}
	if val, ok := v.ValueAt(country, lastYear, m); ok {
		g.Last = models.Float(val)
	}
	if g.First.Valid && g.Last.Valid {
		g.Delta = models.Float(g.Last.Float64 - g.First.Float64)
	}
	return g
}

// GrowthQuery ranks entities by change in a metric between two years.
type GrowthQuery struct {
	Metric    models.Metric
	FirstYear int // 0 resolves to the store's earliest year
	LastYear  int // 0 resolves to the store's latest year
	N         int
	Direction Direction

	// PerEntity measures each entity between its own first and last year
	// with a present value. FirstYear and LastYear, when set, bound that
	// window instead of fixing the endpoints.
	PerEntity    bool
	WithCategory bool
}

// TopNByGrowth computes growth per entity and ranks by delta. An entity
// takes part only if both endpoints are present and strictly positive;
// the rest are dropped, not ranked as zero growth.
func TopNByGrowth(v View, q GrowthQuery) ([]models.Growth, error) {
	if q.PerEntity {
		return topNByObservedGrowth(v, q)
	}
	first, last := q.FirstYear, q.LastYear
	var err error
	if first == 0 {
		if first, err = v.s.EarliestYear(); err != nil {
			return nil, err
		}
	}
	if last, err = resolveYear(v.s, last); err != nil {
		return nil, err
	}

	var out []models.Growth
	for id, rows := range v.byCountry() {
		country := v.s.CountryDict[id]
		g := GrowthBetween(View{s: v.s, rows: rows}, country, first, last, q.Metric)
		if !eligibleForGrowth(g) {
			continue
		}
		if q.WithCategory {
			g.Category = v.s.Classes.Lookup(country)
		}
		out = append(out, g)
	}
	return rankGrowth(out, q), nil
}

// topNByObservedGrowth uses each entity's own first and last present year.
// Entities observed in a single year have no span and are dropped.
func topNByObservedGrowth(v View, q GrowthQuery) ([]models.Growth, error) {
	if v.s.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if q.FirstYear != 0 || q.LastYear != 0 {
		v = v.Where(func(r Row) bool {
			y := r.Year()
			return (q.FirstYear == 0 || y >= q.FirstYear) && (q.LastYear == 0 || y <= q.LastYear)
		})
	}

	var out []models.Growth
	for id, rows := range v.byCountry() {
		country := v.s.CountryDict[id]
		first, last, ok := View{s: v.s, rows: rows}.FirstLast(country, q.Metric)
		if !ok || first.Year == last.Year {
			continue
		}
		g := models.Growth{
			Country:   country,
			FirstYear: first.Year,
			LastYear:  last.Year,
			First:     models.Float(first.Value),
			Last:      models.Float(last.Value),
			Delta:     models.Float(last.Value - first.Value),
		}
		if !eligibleForGrowth(g) {
			continue
		}
		if q.WithCategory {
			g.Category = v.s.Classes.Lookup(country)
		}
		out = append(out, g)
	}
	return rankGrowth(out, q), nil
}

func rankGrowth(out []models.Growth, q GrowthQuery) []models.Growth {
	sort.Slice(out, func(i, j int) bool {
		return ranksBefore(out[i].Delta.Float64, out[j].Delta.Float64, out[i].Country, out[j].Country, q.Direction)
	})
	return limit(out, q.N)
}

func eligibleForGrowth(g models.Growth) bool {
	return g.First.Valid && g.Last.Valid && g.First.Float64 > 0 && g.Last.Float64 > 0
}
