package weather

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Statistic is an aggregate computed per variable per bucket.
type Statistic string

const (
	StatMean Statistic = "mean"
	StatMin  Statistic = "min"
	StatMax  Statistic = "max"
	StatSum  Statistic = "sum"
)

var (
	// DailyStatistics are used by the pipeline's daily resolution.
	DailyStatistics = []Statistic{StatMean, StatMin, StatMax}

	// MonthlyStatistics are used by the pipeline's monthly resolution.
	MonthlyStatistics = []Statistic{StatMean, StatMin, StatMax, StatSum}

	// DailySummaryStatistics are used by DailySummary. Unlike the pipeline's
	// daily resolution they include a sum.
	DailySummaryStatistics = []Statistic{StatMean, StatMin, StatMax, StatSum}
)

// bucketFunc maps a timestamp to the start of its bucket.
type bucketFunc func(time.Time) time.Time

func dayStart(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

func monthStart(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
}

// Resample converts a merged hourly table to the requested resolution.
// Hourly is a pass-through.
func Resample(t *Table, res Resolution) (*Table, error) {
	switch res {
	case ResolutionHourly, "":
		return t, nil
	case ResolutionDaily:
		return ResampleDaily(t), nil
	case ResolutionMonthly:
		return ResampleMonthly(t), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidResolution, res)
	}
}

// ResampleDaily groups rows by calendar date in the timestamps' own zone and
// emits mean, min and max for every variable.
func ResampleDaily(t *Table) *Table {
	return aggregate(t, dayStart, DailyStatistics, TimeColumnTime)
}

// ResampleMonthly groups rows by calendar month and emits mean, min, max and
// sum for every variable. Each row is stamped with the first instant of its
// month.
func ResampleMonthly(t *Table) *Table {
	return aggregate(t, monthStart, MonthlyStatistics, TimeColumnTime)
}

// DailySummary is the on-demand per-day summary written next to an
// extraction's output. It buckets like ResampleDaily but also emits a sum,
// and labels its key column "date".
func DailySummary(t *Table) *Table {
	return aggregate(t, dayStart, DailySummaryStatistics, TimeColumnDate)
}

// StatColumn is the output column name of stat over variable.
func StatColumn(variable string, stat Statistic) string {
	return variable + "_" + string(stat)
}

func aggregate(t *Table, bucket bucketFunc, stats []Statistic, timeColumn string) *Table {
	cols := make([]string, 0, len(t.Columns)*len(stats))
	for _, c := range t.Columns {
		for _, s := range stats {
			cols = append(cols, StatColumn(c, s))
		}
	}
	out := NewTable(cols...)
	out.TimeColumn = timeColumn

	type accum struct {
		start time.Time
		sum   []float64
		min   []float64
		max   []float64
		count []int
	}

	buckets := make(map[int64]*accum)
	for _, r := range t.Rows {
		start := bucket(r.Time)
		key := start.UnixNano()
		a, ok := buckets[key]
		if !ok {
			a = &accum{
				start: start,
				sum:   make([]float64, len(t.Columns)),
				min:   make([]float64, len(t.Columns)),
				max:   make([]float64, len(t.Columns)),
				count: make([]int, len(t.Columns)),
			}
			buckets[key] = a
		}
		for j, v := range r.Values {
			if math.IsNaN(v) {
				continue
			}
			if a.count[j] == 0 || v < a.min[j] {
				a.min[j] = v
			}
			if a.count[j] == 0 || v > a.max[j] {
				a.max[j] = v
			}
			a.sum[j] += v
			a.count[j]++
		}
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		a := buckets[k]
		values := make([]float64, 0, len(cols))
		for j := range t.Columns {
			for _, s := range stats {
				if a.count[j] == 0 {
					values = append(values, math.NaN())
					continue
				}
				var v float64
				switch s {
				case StatMean:
					v = a.sum[j] / float64(a.count[j])
				case StatMin:
					v = a.min[j]
				case StatMax:
					v = a.max[j]
				case StatSum:
					v = a.sum[j]
				}
				values = append(values, round2(v))
			}
		}
		out.Rows = append(out.Rows, Row{Time: a.start, Values: values})
	}
	return out
}

// round2 rounds to two decimals, half away from zero (0.125 -> 0.13),
// unlike banker's rounding.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
