// Package export writes extracted tables to CSV, JSON or Excel.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/weather-extractor/internal/weather"
)

// Format is an output file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

const sheetName = "data"

var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat maps a user-supplied format name. An empty string means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".xlsx", ".xls":
		return FormatExcel
	default:
		return FormatCSV
	}
}

// DailyFileName derives the daily summary path from an output path by
// inserting "_daily" before the extension.
func DailyFileName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_daily" + ext
}

// WriteFile writes t to path, creating parent directories.
func WriteFile(path string, format Format, t *weather.Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := Write(f, format, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes t to w in the given format.
func Write(w io.Writer, format Format, t *weather.Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	case FormatExcel:
		return WriteExcel(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes a header row followed by one record per row.
// Missing values are empty cells.
func WriteCSV(w io.Writer, t *weather.Table) error {
	cw := csv.NewWriter(w)
	timeCol := timeColumn(t)

	header := append([]string{timeCol}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	layoutCol := timeCol
	if allMidnight(t) {
		layoutCol = weather.TimeColumnDate
	}

	record := make([]string, len(header))
	for _, r := range t.Rows {
		record[0] = weather.FormatTimestamp(r.Time, layoutCol)
		for j, v := range r.Values {
			record[j+1] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the table as an indented list of records.
func WriteJSON(w io.Writer, t *weather.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// WriteExcel writes the table to a single "data" sheet.
func WriteExcel(w io.Writer, t *weather.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	timeCol := timeColumn(t)
	header := make([]interface{}, 0, len(t.Columns)+1)
	header = append(header, timeCol)
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	layoutCol := timeCol
	if allMidnight(t) {
		layoutCol = weather.TimeColumnDate
	}
	for i, r := range t.Rows {
		row := make([]interface{}, 0, len(r.Values)+1)
		row = append(row, weather.FormatTimestamp(r.Time, layoutCol))
		for _, v := range r.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func timeColumn(t *weather.Table) string {
	if t.TimeColumn == "" {
		return weather.TimeColumnTime
	}
	return t.TimeColumn
}

func allMidnight(t *weather.Table) bool {
	if t.Len() == 0 {
		return false
	}
	for _, r := range t.Rows {
		if r.Time.Hour() != 0 || r.Time.Minute() != 0 || r.Time.Second() != 0 {
			return false
		}
	}
	return true
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
