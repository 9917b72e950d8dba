package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-extractor/internal/weather"
)

// DefaultArchiveURL is the Open-Meteo historical archive endpoint.
const DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

const archiveTimeLayout = "2006-01-02T15:04"

// OpenMeteoArchive implements weather.Fetcher against the Open-Meteo archive.
// It always requests hourly data. Each variable group has its own circuit
// breaker so a failing group never short-circuits the others.
type OpenMeteoArchive struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	logger  *zap.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// ArchiveOptions configures an OpenMeteoArchive.
type ArchiveOptions struct {
	BaseURL string
	Backoff BackoffConfig
	// RequestsPerSecond limits outbound requests; zero disables the limiter.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

func NewOpenMeteoArchive(client *http.Client, opts ArchiveOptions) *OpenMeteoArchive {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	backoff := opts.Backoff
	if backoff.InitialInterval <= 0 {
		backoff.InitialInterval = 500 * time.Millisecond
	}
	if backoff.MaxInterval <= 0 {
		backoff.MaxInterval = 5 * time.Second
	}
	if backoff.MaxRetries < 0 {
		backoff.MaxRetries = 0
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &OpenMeteoArchive{
		name:    "openmeteo-archive",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
			Limiter: limiter,
			Logger:  logger,
		},
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// breaker returns the circuit breaker of group, creating it on first use.
func (p *OpenMeteoArchive) breaker(group string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cb, ok := p.breakers[group]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         p.name + "/" + group,
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			p.logger.Info("circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	p.breakers[group] = cb
	return cb
}

// archivePayload is the subset of the archive response the fetcher reads.
// Hourly holds "time" plus one array per requested variable.
type archivePayload struct {
	Latitude             float64                    `json:"latitude"`
	Longitude            float64                    `json:"longitude"`
	UTCOffsetSeconds     int                        `json:"utc_offset_seconds"`
	Timezone             string                     `json:"timezone"`
	TimezoneAbbreviation string                     `json:"timezone_abbreviation"`
	Hourly               map[string]json.RawMessage `json:"hourly"`
}

// Fetch retrieves one variable group. Transport failures wrap
// weather.ErrTransport; payloads without an hourly time series wrap
// weather.ErrMalformedResponse.
func (p *OpenMeteoArchive) Fetch(ctx context.Context, req weather.FetchRequest) (*weather.Table, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(req.Location.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(req.Location.Longitude, 'f', -1, 64))
		values.Set("start_date", req.Range.Start.Format(weather.DateLayout))
		values.Set("end_date", req.Range.End.Format(weather.DateLayout))
		values.Set("hourly", strings.Join(req.Variables, ","))
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.breaker(req.Group), buildRequest, archiveErrorReason)
	if err != nil {
		return nil, fmt.Errorf("%w: group %s: %w", weather.ErrTransport, req.Group, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: group %s: read body: %v", weather.ErrTransport, req.Group, err)
	}

	table, err := parseArchive(body, req.Variables)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", req.Group, err)
	}
	p.logger.Debug("archive response parsed",
		zap.String("group", req.Group),
		zap.Int("records", table.Len()))
	return table, nil
}

func parseArchive(body []byte, variables []string) (*weather.Table, error) {
	var payload archivePayload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}
	if payload.Hourly == nil {
		return nil, fmt.Errorf("%w: no hourly data in response", weather.ErrMalformedResponse)
	}
	rawTimes, ok := payload.Hourly["time"]
	if !ok {
		return nil, fmt.Errorf("%w: hourly data has no time axis", weather.ErrMalformedResponse)
	}
	var times []string
	if err := json.Unmarshal(rawTimes, &times); err != nil {
		return nil, fmt.Errorf("%w: hourly time: %v", weather.ErrMalformedResponse, err)
	}

	zone := time.FixedZone(payload.TimezoneAbbreviation, payload.UTCOffsetSeconds)
	table := weather.NewTable(variables...)
	table.Rows = make([]weather.Row, len(times))
	for i, s := range times {
		ts, err := time.ParseInLocation(archiveTimeLayout, s, zone)
		if err != nil {
			return nil, fmt.Errorf("%w: hourly time %q: %v", weather.ErrMalformedResponse, s, err)
		}
		values := make([]float64, len(variables))
		for j := range values {
			values[j] = math.NaN()
		}
		table.Rows[i] = weather.Row{Time: ts, Values: values}
	}

	for j, v := range variables {
		raw, ok := payload.Hourly[v]
		if !ok {
			continue
		}
		var series []*float64
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, fmt.Errorf("%w: hourly %s: %v", weather.ErrMalformedResponse, v, err)
		}
		if len(series) != len(times) {
			return nil, fmt.Errorf("%w: hourly %s has %d values for %d timestamps",
				weather.ErrMalformedResponse, v, len(series), len(times))
		}
		for i, x := range series {
			if x != nil {
				table.Rows[i].Values[j] = *x
			}
		}
	}
	return table, nil
}

// archiveErrorReason extracts the "reason" field of an archive error body.
func archiveErrorReason(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Error  bool   `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Reason != "" {
		return payload.Reason
	}
	return strings.TrimSpace(string(data))
}
