package weather

import (
	"context"
	"time"
)

// Fetcher retrieves one variable group from the archive and returns it as a
// table with one column per requested variable. Implementations return
// errors wrapping ErrTransport or ErrMalformedResponse.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*Table, error)
}

// FetchOutcome is the tagged result of one group fetch: either a table or
// the reason the group contributed nothing.
type FetchOutcome struct {
	Request  FetchRequest
	Table    *Table
	Err      error
	Duration time.Duration
}

// OK reports whether the outcome carries data.
func (o FetchOutcome) OK() bool {
	return o.Err == nil && !o.Table.Empty()
}

// Store is the contract for the run history kept by the scheduler.
type Store interface {
	SaveRun(loc Location, run RunSummary)
	GetLatest(loc Location) (RunSummary, error)
	GetRange(loc Location, from, to time.Time) ([]RunSummary, error)
}
