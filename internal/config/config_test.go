package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-extractor/internal/weather"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "ARCHIVE_URL", "HTTP_TIMEOUT", "MAX_CONCURRENT_REQUESTS", "LOG_LEVEL", "FETCH_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.ArchiveURL)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.MaxConcurrentRequests)
	assert.Equal(t, 24*time.Hour, cfg.FetchInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "1")
	t.Setenv("REQUESTS_PER_SECOND", "0.5")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 1, cfg.MaxConcurrentRequests)
	assert.Equal(t, 0.5, cfg.RequestsPerSecond)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func writeJob(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJob_JSON(t *testing.T) {
	path := writeJob(t, "job.json", `{
  "latitude": 52.52,
  "longitude": 13.41,
  "start_date": "2024-01-01",
  "end_date": "2024-01-31",
  "variable_groups": {"basic_weather": true, "soil": false},
  "temporal_resolution": "daily",
  "output_file": "berlin.csv"
}`)

	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.Equal(t, 52.52, job.Latitude)
	assert.Equal(t, "berlin.csv", job.OutputFile)
	assert.Equal(t, 7, job.Schedule.WindowDays)

	q, err := job.Query(weather.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, weather.ResolutionDaily, q.Resolution)
	assert.True(t, q.Groups["basic_weather"])
	assert.False(t, q.Groups["solar_radiation"])
	assert.Equal(t, 31, int(q.Range.End.Sub(q.Range.Start).Hours()/24)+1)
}

func TestLoadJob_YAMLDefaults(t *testing.T) {
	path := writeJob(t, "job.yaml", `
latitude: -33.87
longitude: 151.21
start_date: "2023-06-01"
end_date: "2023-06-02"
variable_groups:
  solar_radiation: true
`)

	job, err := LoadJob(path)
	require.NoError(t, err)

	q, err := job.Query(weather.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, weather.ResolutionHourly, q.Resolution)
	assert.True(t, q.Groups["solar_radiation"])
	assert.False(t, q.Groups["basic_weather"])
}

func TestLoadJob_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"latitude out of range", `{"latitude": 95, "longitude": 0, "start_date": "2024-01-01", "end_date": "2024-01-02"}`},
		{"bad date", `{"latitude": 0, "longitude": 0, "start_date": "01/01/2024", "end_date": "2024-01-02"}`},
		{"missing end", `{"latitude": 0, "longitude": 0, "start_date": "2024-01-01"}`},
		{"bad resolution", `{"latitude": 0, "longitude": 0, "start_date": "2024-01-01", "end_date": "2024-01-02", "temporal_resolution": "weekly"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadJob(writeJob(t, "job.json", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadJob_MissingFile(t *testing.T) {
	_, err := LoadJob(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
