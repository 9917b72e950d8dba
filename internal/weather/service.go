package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-extractor/internal/metrics"
)

// Query is the input of one pipeline run.
type Query struct {
	Location   Location
	Range      DateRange
	Groups     map[string]bool
	Resolution Resolution
}

// Service runs the plan → fetch → merge → resample pipeline.
type Service struct {
	catalog     *Catalog
	fetcher     Fetcher
	logger      *zap.Logger
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency bounds the number of group fetches in flight.
// One reproduces strictly sequential fetching.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a new Service.
func NewService(catalog *Catalog, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		catalog:     catalog,
		fetcher:     fetcher,
		logger:      zap.NewNop(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog exposes the group registry. It performs no network access.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Run executes one pipeline run. It either returns a complete table or an
// error; failures of individual groups only produce warnings.
func (s *Service) Run(ctx context.Context, q Query) (*Result, error) {
	res, err := ParseResolution(string(q.Resolution))
	if err != nil {
		return nil, err
	}
	reqs, err := PlanRequests(s.catalog, q.Location, q.Range, q.Groups)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))
	log.Info("starting extraction",
		zap.String("location", q.Location.Key()),
		zap.String("start_date", q.Range.Start.Format(DateLayout)),
		zap.String("end_date", q.Range.End.Format(DateLayout)),
		zap.String("resolution", string(res)),
		zap.Int("groups", len(reqs)))

	outcomes := s.fetchAll(ctx, reqs, log)

	result := &Result{RunID: runID, Resolution: res}
	var tables []*Table
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			log.Warn("group fetch failed",
				zap.String("group", o.Request.Group),
				zap.Error(o.Err))
			result.Warnings = append(result.Warnings, GroupWarning{Group: o.Request.Group, Reason: o.Err.Error()})
		case o.Table.Empty():
			log.Warn("no data returned for group", zap.String("group", o.Request.Group))
			result.Warnings = append(result.Warnings, GroupWarning{Group: o.Request.Group, Reason: "no data returned"})
		default:
			log.Info("group retrieved",
				zap.String("group", o.Request.Group),
				zap.Int("records", o.Table.Len()),
				zap.Duration("duration", o.Duration))
			tables = append(tables, o.Table)
		}
	}

	if len(tables) == 0 {
		metrics.RecordRun(string(res), "no_data")
		return nil, ErrNoDataRetrieved
	}

	merged, dropped, err := Merge(tables)
	if err != nil {
		metrics.RecordRun(string(res), "error")
		return nil, fmt.Errorf("merge: %w", err)
	}
	metrics.RecordMerge(merged.Len(), len(dropped))
	if len(dropped) > 0 {
		log.Warn("discarded duplicate columns", zap.Strings("columns", dropped))
	}
	result.Dropped = dropped

	out, err := Resample(merged, res)
	if err != nil {
		metrics.RecordRun(string(res), "error")
		return nil, err
	}
	result.Table = out

	metrics.RecordRun(string(res), "success")
	log.Info("extraction complete",
		zap.Int("records", out.Len()),
		zap.Int("variables", len(out.Columns)),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// fetchAll runs every request with bounded concurrency. Each task writes only
// its own slot, and no task error cancels the others.
func (s *Service) fetchAll(ctx context.Context, reqs []FetchRequest, log *zap.Logger) []FetchOutcome {
	outcomes := make([]FetchOutcome, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			log.Debug("fetching group",
				zap.String("group", req.Group),
				zap.Strings("variables", req.Variables))

			start := time.Now()
			table, err := s.fetcher.Fetch(ctx, req)
			elapsed := time.Since(start)

			outcomes[i] = FetchOutcome{Request: req, Table: table, Err: err, Duration: elapsed}
			metrics.RecordGroupFetch(req.Group, outcomeLabel(table, err), elapsed.Seconds())
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func outcomeLabel(t *Table, err error) string {
	switch {
	case err == nil && t.Empty():
		return metrics.OutcomeEmpty
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrTransport):
		return metrics.OutcomeTransport
	case errors.Is(err, ErrMalformedResponse):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeError
	}
}
