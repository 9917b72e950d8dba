package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-extractor/internal/weather"
)

var validate = validator.New()

// Job is an extraction job file. Groups missing from VariableGroups are
// disabled.
type Job struct {
	Latitude           float64         `mapstructure:"latitude" validate:"gte=-90,lte=90"`
	Longitude          float64         `mapstructure:"longitude" validate:"gte=-180,lte=180"`
	StartDate          string          `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate            string          `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	VariableGroups     map[string]bool `mapstructure:"variable_groups"`
	TemporalResolution string          `mapstructure:"temporal_resolution" validate:"omitempty,oneof=hourly daily monthly"`
	OutputFile         string          `mapstructure:"output_file"`
	OutputFormat       string          `mapstructure:"output_format" validate:"omitempty,oneof=csv json excel"`

	// Schedule drives the rolling window used by the scheduled extraction.
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// ScheduleConfig describes a rolling window ending LagDays before today and
// spanning WindowDays days.
type ScheduleConfig struct {
	WindowDays int `mapstructure:"window_days" validate:"gte=0"`
	LagDays    int `mapstructure:"lag_days" validate:"gte=0"`
}

// LoadJob reads a JSON or YAML job file.
func LoadJob(path string) (*Job, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("temporal_resolution", string(weather.ResolutionHourly))
	v.SetDefault("schedule.window_days", 7)
	v.SetDefault("schedule.lag_days", 5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}

	var job Job
	if err := v.Unmarshal(&job); err != nil {
		return nil, fmt.Errorf("decoding job file: %w", err)
	}
	if err := validate.Struct(job); err != nil {
		return nil, fmt.Errorf("invalid job file: %w", err)
	}
	return &job, nil
}

// Query converts the job into a pipeline query for the given catalog.
// Every catalog group gets an explicit entry; unknown groups in the file
// are kept and left for the planner to ignore.
func (j *Job) Query(catalog *weather.Catalog) (weather.Query, error) {
	rng, err := weather.ParseDateRange(j.StartDate, j.EndDate)
	if err != nil {
		return weather.Query{}, err
	}
	res, err := weather.ParseResolution(strings.ToLower(j.TemporalResolution))
	if err != nil {
		return weather.Query{}, err
	}

	groups := make(map[string]bool, len(j.VariableGroups))
	for _, id := range catalog.Groups() {
		groups[id] = false
	}
	for id, on := range j.VariableGroups {
		groups[id] = on
	}

	return weather.Query{
		Location:   weather.Location{Latitude: j.Latitude, Longitude: j.Longitude},
		Range:      rng,
		Groups:     groups,
		Resolution: res,
	}, nil
}
