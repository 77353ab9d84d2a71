package engine

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"energymix/internal/models"
)

// Store holds an immutable snapshot in Struct-of-Arrays format.
// Absent metric values are stored as NaN and never surface as numbers.
type Store struct {
	// Row Columns (Flat Arrays)
	Years      []int32
	CountryIDs []int32
	ISOCodes   []string
	Metrics    [models.MetricCount][]float64

	// Dictionary (ID -> Country) and its reverse index
	CountryDict  []string
	countryIndex map[string]int32

	Classes *Classification
}

// DuplicateRecordError reports a repeated (country, year) pair.
type DuplicateRecordError struct {
	Country string
	Year    int
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate record for %s in %d", e.Country, e.Year)
}

// NewStore builds a snapshot from loaded records. The classification may be nil,
// in which case every country is unclassified.
func NewStore(records []models.EnergyRecord, classes *Classification) (*Store, error) {
	n := len(records)
	s := &Store{
		Years:        make([]int32, n),
		CountryIDs:   make([]int32, n),
		ISOCodes:     make([]string, n),
		countryIndex: make(map[string]int32),
		Classes:      classes,
	}
	if s.Classes == nil {
		s.Classes = emptyClassification()
	}
	for m := range s.Metrics {
		s.Metrics[m] = make([]float64, n)
	}

	seen := make(map[int64]struct{}, n)
	for i := range records {
		r := &records[i]
		id, ok := s.countryIndex[r.Country]
		if !ok {
			id = int32(len(s.CountryDict))
			s.CountryDict = append(s.CountryDict, r.Country)
			s.countryIndex[r.Country] = id
		}
		key := int64(id)<<32 | int64(uint32(r.Year))
		if _, dup := seen[key]; dup {
			return nil, &DuplicateRecordError{Country: r.Country, Year: r.Year}
		}
		seen[key] = struct{}{}

		s.Years[i] = int32(r.Year)
		s.CountryIDs[i] = id
		s.ISOCodes[i] = r.ISOCode
		for m := range s.Metrics {
			if v := r.Values[m]; v.Valid {
				s.Metrics[m][i] = v.Float64
			} else {
				s.Metrics[m][i] = math.NaN()
			}
		}
	}
	return s, nil
}

// Len is the number of rows in the store.
func (s *Store) Len() int { return len(s.Years) }

// Countries returns the distinct country names in ascending order.
func (s *Store) Countries() []string {
	out := append([]string(nil), s.CountryDict...)
	sort.Strings(out)
	return out
}

// Record reconstructs row i as an EnergyRecord.
func (s *Store) Record(i int) models.EnergyRecord {
	r := models.EnergyRecord{
		Country: s.CountryDict[s.CountryIDs[i]],
		Year:    int(s.Years[i]),
		ISOCode: s.ISOCodes[i],
	}
	for m := range s.Metrics {
		if v := s.Metrics[m][i]; !math.IsNaN(v) {
			r.Values[m] = models.Float(v)
		}
	}
	return r
}

func (s *Store) value(i int, m models.Metric) (float64, bool) {
	v := s.Metrics[m][i]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Snapshot publishes the current Store to concurrent readers. Reloads build
// a new Store and swap it in; a published Store is never mutated.
type Snapshot struct {
	p atomic.Pointer[Store]
}

// Load returns the current store, or nil while nothing is loaded.
func (sn *Snapshot) Load() *Store { return sn.p.Load() }

// Swap publishes s and returns the previous store.
func (sn *Snapshot) Swap(s *Store) *Store { return sn.p.Swap(s) }
