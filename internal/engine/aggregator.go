package engine

import (
	"fmt"
	"sort"
	"strings"

	"energymix/internal/models"
)

// Reducer folds the present values of a group into one number.
type Reducer int

const (
	Mean Reducer = iota
	Sum
)

func (r Reducer) String() string {
	if r == Sum {
		return "sum"
	}
	return "mean"
}

// ParseReducer accepts "mean"/"avg" and "sum".
func ParseReducer(s string) (Reducer, error) {
	switch strings.ToLower(s) {
	case "", "mean", "avg":
		return Mean, nil
	case "sum", "total":
		return Sum, nil
	}
	return 0, fmt.Errorf("unknown reducer %q", s)
}

// aggStats accumulates present values only; n counts them.
type aggStats struct {
	sum float64
	n   int
}

func (a *aggStats) add(v float64, ok bool) {
	if ok {
		a.sum += v
		a.n++
	}
}

// result is absent when no present value contributed, so an all-null
// group never divides by zero and never reads as 0.
func (a aggStats) result(r Reducer) models.NullFloat {
	if a.n == 0 {
		return models.NullFloat{}
	}
	if r == Sum {
		return models.Float(a.sum)
	}
	return models.Float(a.sum / float64(a.n))
}

// AggregateByYear reduces m per distinct year, ascending. Years whose
// values are all null are kept with an absent value.
func AggregateByYear(v View, m models.Metric, r Reducer) []models.YearValue {
	multi := AggregateByYearMulti(v, []models.Metric{m}, r)
	out := make([]models.YearValue, len(multi))
	for i, yv := range multi {
		out[i] = models.YearValue{Year: yv.Year, Value: yv.Values[0]}
	}
	return out
}

// AggregateByYearMulti reduces several metrics per year. Each metric keeps
// its own count of present values.
func AggregateByYearMulti(v View, metrics []models.Metric, r Reducer) []models.YearValues {
	buckets := make(map[int32][]aggStats)
	for _, i := range v.rows {
		y := v.s.Years[i]
		b, ok := buckets[y]
		if !ok {
			b = make([]aggStats, len(metrics))
			buckets[y] = b
		}
		for k, m := range metrics {
			b[k].add(v.s.value(i, m))
		}
	}

	years := make([]int32, 0, len(buckets))
	for y := range buckets {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	out := make([]models.YearValues, len(years))
	for i, y := range years {
		vals := make([]models.NullFloat, len(metrics))
		for k, st := range buckets[y] {
			vals[k] = st.result(r)
		}
		out[i] = models.YearValues{Year: int(y), Values: vals}
	}
	return out
}

// JoinOption configures category-partitioned operations.
type JoinOption func(*joinConfig)

type joinConfig struct {
	strict bool
}

// Strict turns a classification miss into an UnknownCountryError instead
// of silently excluding the row.
func Strict() JoinOption {
	return func(c *joinConfig) { c.strict = true }
}

func applyJoinOptions(opts []JoinOption) joinConfig {
	var cfg joinConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// AggregateByYearAndCategory partitions rows by joined category and reduces m
// per year within each partition. Unclassified rows belong to neither
// partition. Output is ordered by year, then Developed before Developing.
func AggregateByYearAndCategory(v View, c *Classification, m models.Metric, r Reducer, opts ...JoinOption) ([]models.CategoryYearValue, error) {
	cfg := applyJoinOptions(opts)

	type key struct {
		year int32
		cat  models.Category
	}
	buckets := make(map[key]*aggStats)
	for _, row := range WithCategory(v, c) {
		if row.Category == models.Unclassified {
			if cfg.strict {
				return nil, &UnknownCountryError{Country: row.Country()}
			}
			continue
		}
		k := key{year: int32(row.Year()), cat: row.Category}
		st, ok := buckets[k]
		if !ok {
			st = &aggStats{}
			buckets[k] = st
		}
		st.add(row.Value(m))
	}

	keys := make([]key, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].cat < keys[j].cat
	})

	out := make([]models.CategoryYearValue, len(keys))
	for i, k := range keys {
		st := buckets[k]
		out[i] = models.CategoryYearValue{
			Year:     int(k.year),
			Category: k.cat,
			Value:    st.result(r),
			Count:    st.n,
		}
	}
	return out, nil
}
