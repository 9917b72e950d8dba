package weather

import (
	"fmt"
	"math"
	"sort"
)

// Merge outer-joins tables on their timestamps, in the order given.
//
// Every timestamp seen in any table survives; variables a table does not
// cover for that timestamp are NaN. When an incoming table carries a column
// that is already present, the incoming column is discarded and the earlier
// one kept (first writer wins). Discarded column names are returned in the
// order they were dropped. Columns appear in first-seen order and rows are
// sorted by time.
func Merge(tables []*Table) (*Table, []string, error) {
	if len(tables) == 0 {
		return nil, nil, ErrNoDataRetrieved
	}
	for i, t := range tables {
		if err := checkColumns(t); err != nil {
			return nil, nil, fmt.Errorf("table %d: %w", i, err)
		}
	}

	acc := tables[0].Clone()
	acc.TimeColumn = TimeColumnTime

	colIndex := make(map[string]int, len(acc.Columns))
	for i, c := range acc.Columns {
		colIndex[c] = i
	}
	rowIndex := make(map[int64]int, len(acc.Rows))
	for i, r := range acc.Rows {
		if _, ok := rowIndex[r.Time.UnixNano()]; !ok {
			rowIndex[r.Time.UnixNano()] = i
		}
	}

	var dropped []string
	for _, t := range tables[1:] {
		// admitted[k] is the position in t.Columns of the k-th new column.
		var admitted []int
		for j, c := range t.Columns {
			if _, exists := colIndex[c]; exists {
				dropped = append(dropped, c)
				continue
			}
			colIndex[c] = len(acc.Columns)
			acc.Columns = append(acc.Columns, c)
			admitted = append(admitted, j)
		}

		width := len(acc.Columns)
		for i := range acc.Rows {
			acc.Rows[i].Values = padNaN(acc.Rows[i].Values, width)
		}

		seen := make(map[int64]struct{}, len(t.Rows))
		for _, r := range t.Rows {
			key := r.Time.UnixNano()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			idx, ok := rowIndex[key]
			if !ok {
				idx = len(acc.Rows)
				rowIndex[key] = idx
				acc.Rows = append(acc.Rows, Row{Time: r.Time, Values: padNaN(nil, width)})
			}
			for _, j := range admitted {
				acc.Rows[idx].Values[colIndex[t.Columns[j]]] = r.Values[j]
			}
		}
	}

	acc.Rows = dedupeRows(acc.Rows)
	sort.SliceStable(acc.Rows, func(a, b int) bool {
		return acc.Rows[a].Time.Before(acc.Rows[b].Time)
	})
	return acc, dropped, nil
}

func checkColumns(t *Table) error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: column %q appears twice", ErrMergeColumnConflict, c)
		}
		seen[c] = struct{}{}
	}
	for i, r := range t.Rows {
		if len(r.Values) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d values for %d columns",
				ErrMergeColumnConflict, i, len(r.Values), len(t.Columns))
		}
	}
	return nil
}

// dedupeRows keeps the first row of each timestamp in the seed table.
func dedupeRows(rows []Row) []Row {
	seen := make(map[int64]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
		key := r.Time.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func padNaN(values []float64, width int) []float64 {
	for len(values) < width {
		values = append(values, math.NaN())
	}
	return values
}
