package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energymix/internal/models"
)

func TestNewStoreRejectsDuplicateCountryYear(t *testing.T) {
	_, err := NewStore([]models.EnergyRecord{
		rec("France", 2020, nil),
		rec("Germany", 2020, nil),
		rec("France", 2020, nil),
	}, nil)

	var dup *DuplicateRecordError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "France", dup.Country)
	assert.Equal(t, 2020, dup.Year)
}

func TestStoreRecordKeepsAbsentDistinctFromZero(t *testing.T) {
	r := rec("Iceland", 2021, one(models.CoalShareElec, 0))
	r.ISOCode = "ISL"
	s := newStore(t, []models.EnergyRecord{r})

	got := s.Record(0)
	assert.Equal(t, "Iceland", got.Country)
	assert.Equal(t, "ISL", got.ISOCode)

	coal, ok := got.Get(models.CoalShareElec)
	assert.True(t, ok)
	assert.Equal(t, 0.0, coal)

	_, ok = got.Get(models.GasShareElec)
	assert.False(t, ok)
}

func TestStoreCountriesSorted(t *testing.T) {
	s := newStore(t, []models.EnergyRecord{
		rec("Peru", 2000, nil),
		rec("Chile", 2000, nil),
		rec("Peru", 2001, nil),
	})
	assert.Equal(t, []string{"Chile", "Peru"}, s.Countries())
	assert.Equal(t, 3, s.Len())
}

func TestSnapshotSwapIsVisibleToConcurrentReaders(t *testing.T) {
	var snap Snapshot
	assert.Nil(t, snap.Load())

	first := newStore(t, []models.EnergyRecord{rec("A", 2000, nil)})
	second := newStore(t, []models.EnergyRecord{rec("A", 2000, nil), rec("A", 2001, nil)})
	snap.Swap(first)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := snap.Load()
			n := s.Len()
			assert.True(t, n == 1 || n == 2)
			_, err := s.LatestYear()
			assert.NoError(t, err)
		}()
	}
	prev := snap.Swap(second)
	wg.Wait()

	assert.Same(t, first, prev)
	assert.Same(t, second, snap.Load())
}
