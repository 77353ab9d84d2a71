package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"energymix/internal/models"
)

// rec builds a record with the given present metric values.
func rec(country string, year int, vals map[models.Metric]float64) models.EnergyRecord {
	r := models.EnergyRecord{Country: country, Year: year}
	for m, v := range vals {
		r.Set(m, v)
	}
	return r
}

func one(m models.Metric, v float64) map[models.Metric]float64 {
	return map[models.Metric]float64{m: v}
}

func newStore(t *testing.T, recs []models.EnergyRecord, classes ...models.CountryClassification) *Store {
	t.Helper()
	cls, err := NewClassification(classes)
	require.NoError(t, err)
	s, err := NewStore(recs, cls)
	require.NoError(t, err)
	return s
}

func developed(country string) models.CountryClassification {
	return models.CountryClassification{Country: country, Category: models.Developed}
}

func developing(country string) models.CountryClassification {
	return models.CountryClassification{Country: country, Category: models.Developing}
}
