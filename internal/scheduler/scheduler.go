package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-extractor/internal/config"
	"github.com/i474232898/weather-extractor/internal/export"
	"github.com/i474232898/weather-extractor/internal/weather"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, q weather.Query) (*weather.Result, error)
	Catalog() *weather.Catalog
}

// Scheduler periodically extracts a rolling window of archive data for the
// configured job and records every run in the history store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	store     weather.Store
	job       *config.Job
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a new Scheduler. A nil job disables scheduling.
func New(job *config.Job, interval time.Duration, runner Runner, store weather.Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		store:     store,
		job:       job,
		interval:  interval,
		timeout:   10 * time.Minute,
		logger:    logger.Named("scheduler"),
		now:       time.Now,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.job == nil {
		s.logger.Info("no extraction job configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 24 * 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Window returns the date range covered by a run started at now: it ends
// LagDays before now and spans WindowDays days.
func (s *Scheduler) Window(now time.Time) weather.DateRange {
	window := s.job.Schedule.WindowDays
	if window <= 0 {
		window = 1
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, -s.job.Schedule.LagDays)
	start := end.AddDate(0, 0, -(window - 1))
	return weather.DateRange{Start: start, End: end}
}

// RunOnce performs a single extraction of the rolling window, writes the
// output file if the job names one, and records the run.
func (s *Scheduler) RunOnce(ctx context.Context) weather.RunSummary {
	started := s.now()
	q, err := s.job.Query(s.runner.Catalog())
	summary := weather.RunSummary{
		Location:  weather.Location{Latitude: s.job.Latitude, Longitude: s.job.Longitude},
		StartedAt: started,
	}
	if err != nil {
		summary.Error = err.Error()
		s.finish(summary)
		return summary
	}
	q.Range = s.Window(started)

	summary.Location = q.Location
	summary.Range = q.Range
	summary.Resolution = q.Resolution

	s.logger.Info("running scheduled extraction",
		zap.String("location", q.Location.Key()),
		zap.String("start_date", q.Range.Start.Format(weather.DateLayout)),
		zap.String("end_date", q.Range.End.Format(weather.DateLayout)))

	res, err := s.runner.Run(ctx, q)
	if err != nil {
		summary.Error = err.Error()
		summary.Duration = s.now().Sub(started)
		s.finish(summary)
		return summary
	}

	summary.RunID = res.RunID
	summary.Rows = res.Table.Len()
	summary.Variables = len(res.Table.Columns)
	summary.Warnings = res.Warnings

	if s.job.OutputFile != "" {
		format := export.FormatFromPath(s.job.OutputFile)
		if s.job.OutputFormat != "" {
			if f, perr := export.ParseFormat(s.job.OutputFormat); perr == nil {
				format = f
			}
		}
		if err := export.WriteFile(s.job.OutputFile, format, res.Table); err != nil {
			summary.Error = err.Error()
		} else {
			summary.OutputFile = s.job.OutputFile
		}
	}

	summary.Duration = s.now().Sub(started)
	s.finish(summary)
	return summary
}

func (s *Scheduler) finish(summary weather.RunSummary) {
	if s.store != nil {
		s.store.SaveRun(summary.Location, summary)
	}
	if summary.Error != "" {
		s.logger.Error("scheduled extraction failed",
			zap.String("location", summary.Location.Key()),
			zap.String("error", summary.Error))
		return
	}
	s.logger.Info("completed scheduled extraction",
		zap.String("run_id", summary.RunID),
		zap.Int("records", summary.Rows),
		zap.Duration("duration", summary.Duration))
}
