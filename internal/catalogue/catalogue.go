// Package catalogue holds the fixed set of reporting questions and maps each
// one onto engine operations. Definitions live in queries.yaml, embedded at
// build time.
package catalogue

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"energymix/internal/engine"
	"energymix/internal/models"
)

//go:embed queries.yaml
var defaultYAML []byte

var (
	ErrUnknownQuery = errors.New("unknown query")
	ErrInvalidQuery = errors.New("invalid query definition")
)

// Kind selects the engine operation a query reduces to.
type Kind string

const (
	KindTrend         Kind = "trend"
	KindMix           Kind = "mix"
	KindCategoryTrend Kind = "category_trend"
	KindTop           Kind = "top"
	KindGrowth        Kind = "growth"
)

// Query is one catalogue entry.
type Query struct {
	Name               string   `yaml:"name" json:"name"`
	Title              string   `yaml:"title" json:"title"`
	Kind               Kind     `yaml:"kind" json:"kind"`
	Metrics            []string `yaml:"metrics" json:"metrics"`
	Reducer            string   `yaml:"reducer,omitempty" json:"reducer,omitempty"`
	N                  int      `yaml:"n,omitempty" json:"n,omitempty"`
	Direction          string   `yaml:"direction,omitempty" json:"direction,omitempty"`
	ExcludeNonPositive bool     `yaml:"exclude_non_positive,omitempty" json:"exclude_non_positive,omitempty"`
	WithCategory       bool     `yaml:"with_category,omitempty" json:"with_category,omitempty"`
	Precision          *int     `yaml:"precision,omitempty" json:"precision,omitempty"`
	Column             string   `yaml:"column,omitempty" json:"column,omitempty"`

	// Endpoints is "dataset" (default) or "per_entity" for growth queries.
	Endpoints string `yaml:"endpoints,omitempty" json:"endpoints,omitempty"`

	metrics   []models.Metric
	reducer   engine.Reducer
	direction engine.Direction
}

// Growth endpoint modes.
const (
	EndpointsDataset   = "dataset"
	EndpointsPerEntity = "per_entity"
)

// Catalogue is an ordered, validated set of queries.
type Catalogue struct {
	queries []Query
	byName  map[string]int
}

// Parse decodes and validates a YAML catalogue.
func Parse(data []byte) (*Catalogue, error) {
	var qs []Query
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	c := &Catalogue{byName: make(map[string]int, len(qs))}
	for _, q := range qs {
		if err := q.resolve(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[q.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidQuery, q.Name)
		}
		c.byName[q.Name] = len(c.queries)
		c.queries = append(c.queries, q)
	}
	return c, nil
}

var defaultCatalogue = sync.OnceValues(func() (*Catalogue, error) {
	return Parse(defaultYAML)
})

// Default returns the embedded catalogue.
func Default() (*Catalogue, error) { return defaultCatalogue() }

func (q *Query) resolve() error {
	if q.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidQuery)
	}
	if len(q.Metrics) == 0 {
		return fmt.Errorf("%w: %s: no metrics", ErrInvalidQuery, q.Name)
	}
	if q.Kind != KindMix && len(q.Metrics) != 1 {
		return fmt.Errorf("%w: %s: %s takes exactly one metric", ErrInvalidQuery, q.Name, q.Kind)
	}
	switch q.Kind {
	case KindTrend, KindMix, KindCategoryTrend, KindTop, KindGrowth:
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidQuery, q.Name, q.Kind)
	}
	if q.N < 0 {
		return fmt.Errorf("%w: %s: negative n", ErrInvalidQuery, q.Name)
	}
	switch q.Endpoints {
	case "", EndpointsDataset:
	case EndpointsPerEntity:
		if q.Kind != KindGrowth {
			return fmt.Errorf("%w: %s: endpoints only apply to growth queries", ErrInvalidQuery, q.Name)
		}
	default:
		return fmt.Errorf("%w: %s: unknown endpoints %q", ErrInvalidQuery, q.Name, q.Endpoints)
	}

	q.metrics = make([]models.Metric, len(q.Metrics))
	for i, name := range q.Metrics {
		m, err := models.ParseMetric(name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidQuery, q.Name, err)
		}
		q.metrics[i] = m
	}
	var err error
	if q.reducer, err = engine.ParseReducer(q.Reducer); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidQuery, q.Name, err)
	}
	if q.direction, err = engine.ParseDirection(q.Direction); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidQuery, q.Name, err)
	}
	if q.Column == "" {
		q.Column = q.Metrics[0]
	}
	return nil
}

// PrecisionOrDefault is the rounding applied to the query's value columns.
func (q Query) PrecisionOrDefault() int {
	if q.Precision != nil {
		return *q.Precision
	}
	return engine.PrecisionDefault
}

// List returns the queries in definition order.
func (c *Catalogue) List() []Query {
	return append([]Query(nil), c.queries...)
}

// Get looks a query up by name.
func (c *Catalogue) Get(name string) (Query, error) {
	i, ok := c.byName[name]
	if !ok {
		return Query{}, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	return c.queries[i], nil
}

// Overrides adjust a query at run time. Zero fields keep the catalogue value.
type Overrides struct {
	N         int
	Year      int // ranking snapshot year
	FirstYear int // growth start year
	LastYear  int // growth end year
	Strict    bool
}

// Run executes the named query against store.
func (c *Catalogue) Run(store *engine.Store, name string, o Overrides) (models.Table, error) {
	q, err := c.Get(name)
	if err != nil {
		return models.Table{}, err
	}
	t, err := q.Run(store, o)
	if err != nil {
		return models.Table{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// Run executes q against store.
func (q Query) Run(store *engine.Store, o Overrides) (models.Table, error) {
	if store.Len() == 0 {
		return models.Table{}, engine.ErrEmptyDataset
	}
	n := q.N
	if o.N > 0 {
		n = o.N
	}
	prec := q.PrecisionOrDefault()
	all := store.All()

	var t models.Table
	switch q.Kind {
	case KindTrend:
		t = engine.YearTable(engine.AggregateByYear(all, q.metrics[0], q.reducer), q.Column, prec)

	case KindMix:
		t = engine.MixTable(engine.AggregateByYearMulti(all, q.metrics, q.reducer), q.Metrics, prec)

	case KindCategoryTrend:
		var opts []engine.JoinOption
		if o.Strict {
			opts = append(opts, engine.Strict())
		}
		rows, err := engine.AggregateByYearAndCategory(all, store.Classes, q.metrics[0], q.reducer, opts...)
		if err != nil {
			return models.Table{}, err
		}
		t = engine.CategoryTable(rows, q.Column, prec)

	case KindTop:
		rows, err := engine.TopN(all, engine.RankQuery{
			Metric:             q.metrics[0],
			Year:               o.Year,
			N:                  n,
			Direction:          q.direction,
			ExcludeNonPositive: q.ExcludeNonPositive,
			WithCategory:       q.WithCategory,
		})
		if err != nil {
			return models.Table{}, err
		}
		t = engine.RankTable(rows, q.Column, prec, q.WithCategory)

	case KindGrowth:
		if q.Endpoints == EndpointsPerEntity {
			rows, err := engine.TopNByGrowth(all, engine.GrowthQuery{
				Metric:       q.metrics[0],
				FirstYear:    o.FirstYear,
				LastYear:     o.LastYear,
				N:            n,
				Direction:    q.direction,
				PerEntity:    true,
				WithCategory: q.WithCategory,
			})
			if err != nil {
				return models.Table{}, err
			}
			t = engine.ObservedGrowthTable(rows, q.Column, prec, q.WithCategory)
			break
		}
		first, last, err := growthYears(store, o)
		if err != nil {
			return models.Table{}, err
		}
		rows, err := engine.TopNByGrowth(all, engine.GrowthQuery{
			Metric:       q.metrics[0],
			FirstYear:    first,
			LastYear:     last,
			N:            n,
			Direction:    q.direction,
			WithCategory: q.WithCategory,
		})
		if err != nil {
			return models.Table{}, err
		}
		t = engine.GrowthTable(rows, q.Column, first, last, prec, q.WithCategory)
	}

	t.Name, t.Title = q.Name, q.Title
	return t, nil
}

// growthYears resolves unset growth endpoints against the store.
func growthYears(store *engine.Store, o Overrides) (int, int, error) {
	first, last := o.FirstYear, o.LastYear
	var err error
	if first == 0 {
		if first, err = store.EarliestYear(); err != nil {
			return 0, 0, err
		}
	}
	if last == 0 {
		if last, err = store.LatestYear(); err != nil {
			return 0, 0, err
		}
	}
	return first, last, nil
}
