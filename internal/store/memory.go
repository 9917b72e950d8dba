package store

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-extractor/internal/weather"
)

var (
	// ErrNotFound is returned when no run is recorded for a given location.
	ErrNotFound = errors.New("no runs recorded for location")
)

// RunHistory holds a time-ordered list of run summaries for a location.
type RunHistory struct {
	Runs []weather.RunSummary
}

// MemoryStore is a concurrency-safe in-memory run history.
// It records run metadata only; extracted tables are never kept.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*RunHistory

	// retention configuration
	maxHistory int           // max number of runs per location
	maxAge     time.Duration // optional max age for runs
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*RunHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRun records a run summary for a location and enforces retention.
// Runs are kept ordered by StartedAt even when saves arrive out of order.
func (s *MemoryStore) SaveRun(loc weather.Location, run weather.RunSummary) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &RunHistory{}
		s.data[key] = history
	}

	i := sort.Search(len(history.Runs), func(i int) bool {
		return history.Runs[i].StartedAt.After(run.StartedAt)
	})
	history.Runs = slices.Insert(history.Runs, i, run)

	if s.maxHistory > 0 && len(history.Runs) > s.maxHistory {
		history.Runs = history.Runs[len(history.Runs)-s.maxHistory:]
	}
	history.Runs = s.pruneAged(history.Runs)
}

// pruneAged drops runs older than maxAge. The newest run is always kept.
func (s *MemoryStore) pruneAged(runs []weather.RunSummary) []weather.RunSummary {
	if s.maxAge <= 0 || len(runs) == 0 {
		return runs
	}
	cutoff := s.now().Add(-s.maxAge)
	i := sort.Search(len(runs)-1, func(i int) bool {
		return !runs[i].StartedAt.Before(cutoff)
	})
	return runs[i:]
}

// GetLatest returns the most recent run for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.RunSummary, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Runs) == 0 {
		return weather.RunSummary{}, ErrNotFound
	}
	return history.Runs[len(history.Runs)-1], nil
}

// GetRange returns all runs for a location started between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.RunSummary, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Runs) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.RunSummary
	for _, run := range history.Runs {
		if !run.StartedAt.Before(from) && !run.StartedAt.After(to) {
			result = append(result, run)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
