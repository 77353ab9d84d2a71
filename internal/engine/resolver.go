package engine

import (
	"errors"

	"energymix/internal/models"
)

var ErrEmptyDataset = errors.New("empty dataset")

// LatestYear is the maximum year present in the store. It is recomputed on
// every call; callers holding one snapshot may cache it.
func (s *Store) LatestYear() (int, error) {
	_, hi, err := s.All().YearBounds()
	return hi, err
}

// EarliestYear is the minimum year present in the store.
func (s *Store) EarliestYear() (int, error) {
	lo, _, err := s.All().YearBounds()
	return lo, err
}

// YearBounds returns the minimum and maximum year in the view.
func (v View) YearBounds() (int, int, error) {
	if v.Len() == 0 {
		return 0, 0, ErrEmptyDataset
	}
	lo, hi := v.s.Years[v.rows[0]], v.s.Years[v.rows[0]]
	for _, i := range v.rows[1:] {
		y := v.s.Years[i]
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	return int(lo), int(hi), nil
}

// ValueAt returns the metric for country at exactly year. The second result
// is false when no row exists for that year or the value is null.
func (v View) ValueAt(country string, year int, m models.Metric) (float64, bool) {
	id, ok := v.s.countryIndex[country]
	if !ok {
		return 0, false
	}
	for _, i := range v.rows {
		if v.s.CountryIDs[i] == id && int(v.s.Years[i]) == year {
			return v.s.value(i, m)
		}
	}
	return 0, false
}

// Endpoint is a year with a present value.
type Endpoint struct {
	Year  int
	Value float64
}

// FirstLast returns the earliest and latest years at which country has a
// present value for m. ok is false if no such year exists.
func (v View) FirstLast(country string, m models.Metric) (first, last Endpoint, ok bool) {
	id, found := v.s.countryIndex[country]
	if !found {
		return first, last, false
	}
	for _, i := range v.rows {
		if v.s.CountryIDs[i] != id {
			continue
		}
		val, present := v.s.value(i, m)
		if !present {
			continue
		}
		y := int(v.s.Years[i])
		if !ok || y < first.Year {
			first = Endpoint{Year: y, Value: val}
		}
		if !ok || y > last.Year {
			last = Endpoint{Year: y, Value: val}
		}
		ok = true
	}
	return first, last, ok
}

// resolveYear maps 0 to the store's latest year.
func resolveYear(s *Store, y int) (int, error) {
	if y != 0 {
		return y, nil
	}
	return s.LatestYear()
}
