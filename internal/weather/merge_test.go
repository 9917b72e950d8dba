package weather

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zone = time.FixedZone("CET", 3600)

func hour(h int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, zone).Add(time.Duration(h) * time.Hour)
}

func buildTable(t *testing.T, cols []string, rows map[int][]float64) *Table {
	t.Helper()
	tbl := NewTable(cols...)
	for h := 0; h < 1000; h++ {
		if v, ok := rows[h]; ok {
			require.NoError(t, tbl.AppendRow(hour(h), v...))
		}
	}
	return tbl
}

func TestMerge_Empty(t *testing.T) {
	_, _, err := Merge(nil)
	assert.ErrorIs(t, err, ErrNoDataRetrieved)
}

func TestMerge_SelfMerge(t *testing.T) {
	a := buildTable(t, []string{"x", "y"}, map[int][]float64{0: {1, 2}, 1: {3, 4}, 2: {5, 6}})

	merged, dropped, err := Merge([]*Table{a, a})
	require.NoError(t, err)

	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, []string{"x", "y"}, merged.Columns)
	assert.Equal(t, []string{"x", "y"}, dropped)
}

func TestMerge_OuterJoin(t *testing.T) {
	a := buildTable(t, []string{"x"}, map[int][]float64{0: {1}, 1: {2}})
	b := buildTable(t, []string{"y"}, map[int][]float64{1: {20}, 2: {30}})

	merged, dropped, err := Merge([]*Table{a, b})
	require.NoError(t, err)
	assert.Empty(t, dropped)

	require.Equal(t, 3, merged.Len())
	assert.Equal(t, []string{"x", "y"}, merged.Columns)

	v, ok := merged.Value(0, "y")
	assert.False(t, ok)
	assert.True(t, math.IsNaN(v))

	v, ok = merged.Value(1, "y")
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	_, ok = merged.Value(2, "x")
	assert.False(t, ok)
}

func TestMerge_FirstWriterWins(t *testing.T) {
	a := buildTable(t, []string{"temperature_2m"}, map[int][]float64{0: {1}})
	b := buildTable(t, []string{"temperature_2m", "rain"}, map[int][]float64{0: {99, 0.5}})

	merged, dropped, err := Merge([]*Table{a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{"temperature_2m"}, dropped)
	assert.Equal(t, []string{"temperature_2m", "rain"}, merged.Columns)

	v, _ := merged.Value(0, "temperature_2m")
	assert.Equal(t, 1.0, v)
	v, _ = merged.Value(0, "rain")
	assert.Equal(t, 0.5, v)
}

func TestMerge_SortedByTime(t *testing.T) {
	a := buildTable(t, []string{"x"}, map[int][]float64{5: {5}, 7: {7}})
	b := buildTable(t, []string{"y"}, map[int][]float64{1: {1}, 6: {6}})

	merged, _, err := Merge([]*Table{a, b})
	require.NoError(t, err)

	require.Equal(t, 4, merged.Len())
	for i := 1; i < merged.Len(); i++ {
		assert.True(t, merged.Rows[i-1].Time.Before(merged.Rows[i].Time))
	}
}

func TestMerge_SameInstantDifferentZones(t *testing.T) {
	a := NewTable("x")
	require.NoError(t, a.AppendRow(time.Date(2024, 1, 1, 1, 0, 0, 0, zone), 1))
	b := NewTable("y")
	require.NoError(t, b.AppendRow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2))

	merged, _, err := Merge([]*Table{a, b})
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Len())
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a := buildTable(t, []string{"x"}, map[int][]float64{0: {1}})
	b := buildTable(t, []string{"y"}, map[int][]float64{1: {2}})

	_, _, err := Merge([]*Table{a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, a.Columns)
	assert.Len(t, a.Rows[0].Values, 1)
	assert.Equal(t, 1, a.Len())
}

func TestMerge_DuplicateColumnInOneTable(t *testing.T) {
	bad := &Table{Columns: []string{"x", "x"}, Rows: []Row{{Time: hour(0), Values: []float64{1, 2}}}}

	_, _, err := Merge([]*Table{bad})
	assert.ErrorIs(t, err, ErrMergeColumnConflict)
}

func TestMerge_SingleTable(t *testing.T) {
	a := buildTable(t, []string{"x"}, map[int][]float64{2: {2}, 0: {0}})
	a.Rows[0], a.Rows[1] = a.Rows[1], a.Rows[0]

	merged, dropped, err := Merge([]*Table{a})
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.Equal(t, hour(0), merged.Rows[0].Time)
}
