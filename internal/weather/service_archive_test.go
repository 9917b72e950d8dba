package weather_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-extractor/internal/weather"
	"github.com/i474232898/weather-extractor/internal/weather/providers"
)

// TestServiceRun_FailingGroupKeepsHealthyGroup drives the service through the
// archive client: a group that keeps failing must not cost the next group.
func TestServiceRun_FailingGroupKeepsHealthyGroup(t *testing.T) {
	catalog := weather.DefaultCatalog()
	basic, err := catalog.Variables("basic_weather")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := strings.Split(r.URL.Query().Get("hourly"), ",")
		if vars[0] == basic[0] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		hourly := map[string]interface{}{"time": []string{"2024-01-01T00:00", "2024-01-01T01:00"}}
		for _, v := range vars {
			hourly[v] = []float64{1, 2}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"utc_offset_seconds":    0,
			"timezone_abbreviation": "GMT",
			"hourly":                hourly,
		})
	}))
	defer srv.Close()

	archive := providers.NewOpenMeteoArchive(&http.Client{Timeout: 5 * time.Second}, providers.ArchiveOptions{
		BaseURL: srv.URL,
		Backoff: providers.BackoffConfig{MaxRetries: 5, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond},
	})
	svc := weather.NewService(catalog, archive)

	rng, err := weather.ParseDateRange("2024-01-01", "2024-01-01")
	require.NoError(t, err)
	res, err := svc.Run(context.Background(), weather.Query{
		Location:   weather.Location{Latitude: 52.52, Longitude: 13.41},
		Range:      rng,
		Groups:     map[string]bool{"basic_weather": true, "solar_radiation": true},
		Resolution: weather.ResolutionHourly,
	})
	require.NoError(t, err)

	solar, err := catalog.Variables("solar_radiation")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Table.Len())
	assert.Len(t, res.Table.Columns, len(solar))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "basic_weather", res.Warnings[0].Group)
}
