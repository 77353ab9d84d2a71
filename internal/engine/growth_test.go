package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energymix/internal/models"
)

func TestGrowthBetween(t *testing.T) {
	s := newStore(t, []models.EnergyRecord{
		rec("Germany", 2000, one(models.RenewablesShareEnergy, 5.0)),
		rec("Germany", 2010, nil),
		rec("Germany", 2023, one(models.RenewablesShareEnergy, 22.5)),
	})
	v := s.All()

	got := GrowthBetween(v, "Germany", 2000, 2023, models.RenewablesShareEnergy)
	assert.Equal(t, models.Growth{
		Country:   "Germany",
		FirstYear: 2000,
		LastYear:  2023,
		First:     models.Float(5.0),
		Last:      models.Float(22.5),
		Delta:     models.Float(17.5),
	}, got)

	partial := GrowthBetween(v, "Germany", 2010, 2023, models.RenewablesShareEnergy)
	assert.False(t, partial.First.Valid)
	assert.True(t, partial.Last.Valid)
	assert.False(t, partial.Delta.Valid)

	missing := GrowthBetween(v, "Germany", 1990, 2023, models.RenewablesShareEnergy)
	assert.False(t, missing.Delta.Valid)
}

func TestTopNByGrowth(t *testing.T) {
	s := newStore(t, []models.EnergyRecord{
		rec("A", 2000, one(models.SolarShareElec, 1)),
		rec("A", 2020, one(models.SolarShareElec, 11)),
		rec("B", 2000, one(models.SolarShareElec, 2)),
		rec("B", 2020, one(models.SolarShareElec, 12)),
		rec("C", 2000, one(models.SolarShareElec, 5)),
		rec("C", 2020, one(models.SolarShareElec, 3)),
		// Zero start: dropped rather than ranked.
		rec("D", 2000, one(models.SolarShareElec, 0)),
		rec("D", 2020, one(models.SolarShareElec, 40)),
		// Missing end point.
		rec("E", 2000, one(models.SolarShareElec, 1)),
		rec("E", 2020, nil),
		// No row in the first year.
		rec("F", 2020, one(models.SolarShareElec, 50)),
	}, developed("A"), developing("C"))

	t.Run("desc with tie", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec, FirstYear: 2000, LastYear: 2020})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "A", got[0].Country)
		assert.Equal(t, "B", got[1].Country)
		assert.Equal(t, "C", got[2].Country)
		assert.Equal(t, models.Float(-2), got[2].Delta)
	})

	t.Run("asc limited", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec, FirstYear: 2000, LastYear: 2020, Direction: Asc, N: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "C", got[0].Country)
	})

	t.Run("zero years resolve to dataset bounds", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec, WithCategory: true})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 2000, got[0].FirstYear)
		assert.Equal(t, 2020, got[0].LastYear)
		assert.Equal(t, models.Developed, got[0].Category)
		assert.Equal(t, models.Unclassified, got[1].Category)
		assert.Equal(t, models.Developing, got[2].Category)
	})

	t.Run("every result has positive endpoints", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec})
		require.NoError(t, err)
		for _, g := range got {
			assert.Greater(t, g.First.Float64, 0.0)
			assert.Greater(t, g.Last.Float64, 0.0)
			assert.InDelta(t, g.Last.Float64-g.First.Float64, g.Delta.Float64, 1e-9)
		}
	})
}

func TestTopNByGrowthEmptyDataset(t *testing.T) {
	s := newStore(t, nil)
	_, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestGrowthIgnoresRowOrder(t *testing.T) {
	recs := []models.EnergyRecord{
		rec("Chile", 2000, one(models.WindShareElec, 1)),
		rec("Chile", 2010, one(models.WindShareElec, 4)),
		rec("Chile", 2020, one(models.WindShareElec, 9)),
		rec("Brazil", 2000, one(models.WindShareElec, 2)),
		rec("Brazil", 2020, one(models.WindShareElec, 10)),
		rec("Albania", 2000, one(models.WindShareElec, 3)),
		rec("Albania", 2020, one(models.WindShareElec, 11)),
		rec("Denmark", 2000, one(models.WindShareElec, 12)),
		rec("Denmark", 2020, one(models.WindShareElec, 50)),
		rec("Estonia", 2020, one(models.WindShareElec, 20)),
	}
	reversed := make([]models.EnergyRecord, len(recs))
	for i, r := range recs {
		reversed[len(recs)-1-i] = r
	}
	interleaved := []models.EnergyRecord{recs[9], recs[2], recs[5], recs[0], recs[8], recs[3], recs[6], recs[1], recs[4], recs[7]}

	q := GrowthQuery{Metric: models.WindShareElec, FirstYear: 2000, LastYear: 2020}
	want, err := TopNByGrowth(newStore(t, recs).All(), q)
	require.NoError(t, err)
	// Albania, Brazil and Chile all grow by 8; names break the tie.
	require.Len(t, want, 4)
	assert.Equal(t, []string{"Denmark", "Albania", "Brazil", "Chile"},
		[]string{want[0].Country, want[1].Country, want[2].Country, want[3].Country})

	for name, order := range map[string][]models.EnergyRecord{"reversed": reversed, "interleaved": interleaved} {
		t.Run(name, func(t *testing.T) {
			v := newStore(t, order).All()

			got, err := TopNByGrowth(v, q)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			for _, c := range []string{"Chile", "Denmark", "Estonia"} {
				assert.Equal(t,
					GrowthBetween(newStore(t, recs).All(), c, 2000, 2020, models.WindShareElec),
					GrowthBetween(v, c, 2000, 2020, models.WindShareElec), c)
			}
		})
	}
}

func TestTopNByGrowthPerEntity(t *testing.T) {
	s := newStore(t, []models.EnergyRecord{
		rec("Norway", 1900, nil),
		rec("Germany", 2000, one(models.SolarShareElec, 1)),
		rec("Germany", 2010, nil),
		rec("Germany", 2023, one(models.SolarShareElec, 12)),
		rec("India", 2005, one(models.SolarShareElec, 2)),
		rec("India", 2022, one(models.SolarShareElec, 7)),
		rec("India", 2023, nil),
		// A single observation has no span.
		rec("Chile", 2023, one(models.SolarShareElec, 20)),
		// Zero start is still ineligible.
		rec("Peru", 2001, one(models.SolarShareElec, 0)),
		rec("Peru", 2023, one(models.SolarShareElec, 30)),
	}, developing("India"))

	t.Run("dataset endpoints find nothing", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("own endpoints", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec, PerEntity: true, WithCategory: true})
		require.NoError(t, err)
		assert.Equal(t, []models.Growth{
			{Country: "Germany", FirstYear: 2000, LastYear: 2023, First: models.Float(1), Last: models.Float(12), Delta: models.Float(11)},
			{Country: "India", Category: models.Developing, FirstYear: 2005, LastYear: 2022, First: models.Float(2), Last: models.Float(7), Delta: models.Float(5)},
		}, got)
	})

	t.Run("years bound the window", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec, PerEntity: true, FirstYear: 2001, LastYear: 2022})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "India", got[0].Country)
	})

	t.Run("asc", func(t *testing.T) {
		got, err := TopNByGrowth(s.All(), GrowthQuery{Metric: models.SolarShareElec, PerEntity: true, Direction: Asc, N: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "India", got[0].Country)
	})
}
