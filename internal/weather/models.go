package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format used by the archive and job files.
const DateLayout = "2006-01-02"

// Resolution is the temporal granularity of a pipeline result.
type Resolution string

const (
	ResolutionHourly  Resolution = "hourly"
	ResolutionDaily   Resolution = "daily"
	ResolutionMonthly Resolution = "monthly"
)

// ParseResolution maps a user-supplied string to a Resolution.
// An empty string means hourly.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case "", ResolutionHourly:
		return ResolutionHourly, nil
	case ResolutionDaily, ResolutionMonthly:
		return Resolution(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
}

// Location is a point on the globe in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return strconv.FormatFloat(l.Latitude, 'f', 4, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', 4, 64)
}

// DateRange is an inclusive range of calendar dates. Both ends are UTC midnight.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// ParseDateRange parses two YYYY-MM-DD dates. It does not check ordering;
// that is the planner's job.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// Validate reports ErrInvalidDateRange if Start is strictly after End.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange,
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return nil
}

// FetchRequest is one archive call for a single variable group.
type FetchRequest struct {
	Location  Location
	Range     DateRange
	Group     string
	Variables []string
}

// TimeColumn names used when a table is serialised.
const (
	TimeColumnTime = "time"
	TimeColumnDate = "date"
)

// Row is one timestamp and its values, aligned with Table.Columns.
// A missing value is NaN.
type Row struct {
	Time   time.Time
	Values []float64
}

// Table is a timestamped numeric table. Column names are unique.
type Table struct {
	TimeColumn string
	Columns    []string
	Rows       []Row
}

// NewTable returns an empty table with the given variable columns.
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{TimeColumn: TimeColumnTime, Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the value of column name at row i and whether it is present.
func (t *Table) Value(i int, name string) (float64, bool) {
	j := t.ColumnIndex(name)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return math.NaN(), false
	}
	v := t.Rows[i].Values[j]
	return v, !math.IsNaN(v)
}

// AppendRow adds a row. values must match Columns in length.
func (t *Table) AppendRow(ts time.Time, values ...float64) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	v := make([]float64, len(values))
	copy(v, values)
	t.Rows = append(t.Rows, Row{Time: ts, Values: v})
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.TimeColumn = t.TimeColumn
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		v := make([]float64, len(r.Values))
		copy(v, r.Values)
		out.Rows[i] = Row{Time: r.Time, Values: v}
	}
	return out
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	out := t.Clone()
	if n < len(out.Rows) {
		out.Rows = out.Rows[:n]
	}
	return out
}

// MarshalJSON encodes the table as a list of records keyed by column name.
// Missing values are encoded as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	timeCol := t.TimeColumn
	if timeCol == "" {
		timeCol = TimeColumnTime
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		key, _ := json.Marshal(timeCol)
		buf.Write(key)
		buf.WriteByte(':')
		ts, err := json.Marshal(FormatTimestamp(r.Time, timeCol))
		if err != nil {
			return nil, err
		}
		buf.Write(ts)
		for j, c := range t.Columns {
			buf.WriteByte(',')
			key, _ := json.Marshal(c)
			buf.Write(key)
			buf.WriteByte(':')
			v := r.Values[j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				buf.WriteString("null")
				continue
			}
			buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// FormatTimestamp renders a row time for output. Date columns carry only
// the calendar date; time columns keep wall-clock time without an offset,
// matching what the archive returned.
func FormatTimestamp(ts time.Time, timeColumn string) string {
	if timeColumn == TimeColumnDate {
		return ts.Format(DateLayout)
	}
	return ts.Format("2006-01-02T15:04:05")
}

// GroupWarning records a group that contributed nothing to a run.
type GroupWarning struct {
	Group  string `json:"group"`
	Reason string `json:"reason"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string         `json:"run_id"`
	Resolution Resolution     `json:"resolution"`
	Table      *Table         `json:"data"`
	Warnings   []GroupWarning `json:"warnings,omitempty"`
	// Dropped lists incoming columns discarded by the merge collision rule.
	Dropped []string `json:"dropped_columns,omitempty"`
}

// RunSummary is the metadata of a completed or failed run, kept by the
// scheduler's run history. It never carries the table itself.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	Location   Location       `json:"location"`
	Range      DateRange      `json:"range"`
	Resolution Resolution     `json:"resolution"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
	Rows       int            `json:"rows"`
	Variables  int            `json:"variables"`
	Warnings   []GroupWarning `json:"warnings,omitempty"`
	OutputFile string         `json:"output_file,omitempty"`
	Error      string         `json:"error,omitempty"`
}
