package models

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("low_carbon_share_elec")
	require.NoError(t, err)
	assert.Equal(t, LowCarbonShareElec, m)
	assert.Equal(t, "low_carbon_share_elec", m.String())

	_, err = ParseMetric("coal_share")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestEveryMetricHasAUniqueColumn(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range AllMetrics() {
		col := m.Column()
		require.NotEmpty(t, col, "metric %d", int(m))
		assert.False(t, seen[col], "duplicate column %s", col)
		seen[col] = true

		back, err := ParseMetric(col)
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
	assert.Len(t, seen, int(MetricCount))
}

func TestMetricIsShare(t *testing.T) {
	assert.True(t, CoalShareElec.IsShare())
	assert.True(t, RenewablesShareEnergy.IsShare())
	assert.True(t, NetElecImportsShareDemand.IsShare())
	assert.False(t, GreenhouseGasEmissions.IsShare())
	assert.False(t, CarbonIntensityElec.IsShare())
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{"Developed": Developed, " developing ": Developing, "DEVELOPED": Developed} {
		got, err := ParseCategory(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCategory("emerging")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestRecordAbsentIsNotZero(t *testing.T) {
	var r EnergyRecord
	_, ok := r.Get(SolarShareElec)
	assert.False(t, ok)

	r.Set(SolarShareElec, 0)
	v, ok := r.Get(SolarShareElec)
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestNullFloatJSON(t *testing.T) {
	out, err := json.Marshal([]NullFloat{Float(17.5), {}, Float(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `[17.5, null, 0]`, string(out))

	var back []NullFloat
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, []NullFloat{Float(17.5), {}, Float(0)}, back)
}

func TestNullFloatJSONRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := json.Marshal(Float(v))
		assert.Error(t, err, "%v", v)
	}

	tbl := Table{Columns: []Column{{Name: "value", Precision: 2}}, Rows: [][]any{{Float(math.Inf(1))}}}
	_, err := json.Marshal(tbl)
	assert.Error(t, err)
}

func TestTableJSONKeepsColumnOrder(t *testing.T) {
	tbl := Table{
		Name:    "top",
		Title:   "Top",
		Columns: []Column{{Name: "rank", Precision: -1}, {Name: "country", Precision: -1}, {Name: "value", Precision: 2}},
		Rows:    [][]any{{1, "Norway", Float(98.5)}, {2, "Iceland", NullFloat{}}},
	}

	out, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"top","title":"Top","columns":["rank","country","value"],"rows":[{"rank":1,"country":"Norway","value":98.5},{"rank":2,"country":"Iceland","value":null}]}`,
		string(out))
}

func TestTableLookups(t *testing.T) {
	tbl := Table{
		Columns: []Column{{Name: "year"}, {Name: "category"}},
		Rows:    [][]any{{2000, Developed.String()}},
	}

	assert.Equal(t, 1, tbl.Index("category"))
	assert.Equal(t, -1, tbl.Index("missing"))

	v, ok := tbl.Get(0, "year")
	require.True(t, ok)
	assert.Equal(t, 2000, v)
	_, ok = tbl.Get(3, "year")
	assert.False(t, ok)

	assert.Equal(t, []map[string]any{{"year": 2000, "category": "Developed"}}, tbl.Records())
}
