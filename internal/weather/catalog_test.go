package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Groups(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"basic_weather", "solar_radiation", "soil"}, c.Groups())

	counts := map[string]int{"basic_weather": 15, "solar_radiation": 3, "soil": 3}
	for id, want := range counts {
		vars, err := c.Variables(id)
		require.NoError(t, err, id)
		assert.Len(t, vars, want, id)
	}
}

func TestDefaultCatalog_VariableOrder(t *testing.T) {
	vars, err := DefaultCatalog().Variables("basic_weather")
	require.NoError(t, err)

	assert.Equal(t, "temperature_2m", vars[0])
	assert.Equal(t, "cloud_cover_high", vars[len(vars)-1])

	soil, err := DefaultCatalog().Variables("soil")
	require.NoError(t, err)
	assert.Equal(t, []string{"soil_temperature_0cm", "soil_temperature_6cm", "soil_moisture_0_1cm"}, soil)
}

func TestCatalog_UnknownGroup(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.Variables("marine")
	require.ErrorIs(t, err, ErrUnknownGroup)
	assert.False(t, c.Has("marine"))
	assert.True(t, c.Has("soil"))
}

func TestCatalog_VariablesReturnsCopy(t *testing.T) {
	c := DefaultCatalog()

	vars, err := c.Variables("soil")
	require.NoError(t, err)
	vars[0] = "tampered"

	again, err := c.Variables("soil")
	require.NoError(t, err)
	assert.Equal(t, "soil_temperature_0cm", again[0])
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		groups []VariableGroup
	}{
		{"empty id", []VariableGroup{{ID: "", Variables: []string{"a"}}}},
		{"duplicate group", []VariableGroup{{ID: "g", Variables: []string{"a"}}, {ID: "g", Variables: []string{"b"}}}},
		{"duplicate variable", []VariableGroup{{ID: "g", Variables: []string{"a", "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.groups...)
			assert.Error(t, err)
		})
	}
}

func TestNewCatalog_SharedVariableAcrossGroups(t *testing.T) {
	c, err := NewCatalog(
		VariableGroup{ID: "a", Variables: []string{"x", "y"}},
		VariableGroup{ID: "b", Variables: []string{"y", "z"}},
	)
	require.NoError(t, err)
	assert.Len(t, c.All(), 2)
}
