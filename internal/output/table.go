package output

import (
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/i474232898/weather-extractor/internal/weather"
)

// newTable returns a borderless, left-aligned table writer.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

// RenderRows renders a header and string rows.
func RenderRows(w io.Writer, header []string, rows [][]string) error {
	table := newTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// PreviewColumns bounds the number of variable columns shown in a preview.
const PreviewColumns = 6

// RenderPreview renders the first n rows of t. Only the first
// PreviewColumns variables are shown.
func RenderPreview(w io.Writer, t *weather.Table, n int) error {
	head := t.Head(n)
	cols := head.Columns
	if len(cols) > PreviewColumns {
		cols = cols[:PreviewColumns]
	}

	timeCol := head.TimeColumn
	if timeCol == "" {
		timeCol = weather.TimeColumnTime
	}
	header := append([]string{timeCol}, cols...)

	rows := make([][]string, 0, head.Len())
	for _, r := range head.Rows {
		row := make([]string, 0, len(header))
		row = append(row, weather.FormatTimestamp(r.Time, timeCol))
		for j := range cols {
			row = append(row, formatCell(r.Values[j]))
		}
		rows = append(rows, row)
	}
	return RenderRows(w, header, rows)
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
