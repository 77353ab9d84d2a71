package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energymix/internal/models"
)

func countries(rows []models.Ranked) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Country
	}
	return out
}

func TestTopNTieBreaksByName(t *testing.T) {
	s := newStore(t, []models.EnergyRecord{
		rec("C", 2020, one(models.CoalShareElec, 60)),
		rec("B", 2020, one(models.CoalShareElec, 80)),
		rec("A", 2020, one(models.CoalShareElec, 80)),
	})

	got, err := TopN(s.All(), RankQuery{Metric: models.CoalShareElec, Year: 2020, N: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, countries(got))
}

func TestTopN(t *testing.T) {
	s := newStore(t, []models.EnergyRecord{
		rec("A", 2020, one(models.NetElecImports, 5)),
		rec("B", 2020, one(models.NetElecImports, 0)),
		rec("C", 2020, one(models.NetElecImports, -3)),
		rec("D", 2020, nil),
		rec("E", 2020, one(models.NetElecImports, 12)),
		rec("A", 2021, one(models.NetElecImports, 100)),
	}, developed("A"), developing("E"))

	tests := []struct {
		name string
		q    RankQuery
		want []string
	}{
		{
			name: "desc all",
			q:    RankQuery{Metric: models.NetElecImports, Year: 2020},
			want: []string{"E", "A", "B", "C"},
		},
		{
			name: "asc keeps zero and negative",
			q:    RankQuery{Metric: models.NetElecImports, Year: 2020, Direction: Asc, N: 3},
			want: []string{"C", "B", "A"},
		},
		{
			name: "exclude non-positive",
			q:    RankQuery{Metric: models.NetElecImports, Year: 2020, Direction: Asc, ExcludeNonPositive: true},
			want: []string{"A", "E"},
		},
		{
			name: "n larger than eligible",
			q:    RankQuery{Metric: models.NetElecImports, Year: 2020, N: 50},
			want: []string{"E", "A", "B", "C"},
		},
		{
			name: "year zero is latest",
			q:    RankQuery{Metric: models.NetElecImports},
			want: []string{"A"},
		},
		{
			name: "year without rows",
			q:    RankQuery{Metric: models.NetElecImports, Year: 1900},
			want: []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TopN(s.All(), tc.q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, countries(got))
			if tc.q.N > 0 {
				assert.LessOrEqual(t, len(got), tc.q.N)
			}
		})
	}
}

func TestTopNWithCategory(t *testing.T) {
	s := newStore(t, []models.EnergyRecord{
		rec("A", 2020, one(models.CoalShareElec, 1)),
		rec("B", 2020, one(models.CoalShareElec, 2)),
	}, developing("B"))

	got, err := TopN(s.All(), RankQuery{Metric: models.CoalShareElec, Year: 2020, WithCategory: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Ranked{Country: "B", Category: models.Developing, Year: 2020, Value: 2}, got[0])
	assert.Equal(t, models.Unclassified, got[1].Category)
}

func TestTopNEmptyDataset(t *testing.T) {
	s := newStore(t, nil)
	_, err := TopN(s.All(), RankQuery{Metric: models.CoalShareElec})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"": Desc, "top": Desc, "DESC": Desc, "asc": Asc, "lowest": Asc, "bottom": Asc} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}
