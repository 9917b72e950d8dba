package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/i474232898/weather-extractor/internal/weather"
)

var cet = time.FixedZone("CET", 3600)

func sampleTable(t *testing.T) *weather.Table {
	t.Helper()
	tbl := weather.NewTable("temperature_2m", "rain")
	require.NoError(t, tbl.AppendRow(time.Date(2024, 1, 1, 0, 0, 0, 0, cet), 1.5, 0))
	require.NoError(t, tbl.AppendRow(time.Date(2024, 1, 1, 1, 0, 0, 0, cet), math.NaN(), 0.2))
	return tbl
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"time", "temperature_2m", "rain"}, records[0])
	assert.Equal(t, []string{"2024-01-01T00:00:00", "1.5", "0"}, records[1])
	assert.Equal(t, []string{"2024-01-01T01:00:00", "", "0.2"}, records[2])
}

func TestWriteCSV_DailyRowsAsDates(t *testing.T) {
	out := weather.ResampleDaily(sampleTable(t))

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, out))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "time", records[0][0])
	assert.Equal(t, "2024-01-01", records[1][0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable(t)))

	assert.JSONEq(t, `[
		{"time": "2024-01-01T00:00:00", "temperature_2m": 1.5, "rain": 0},
		{"time": "2024-01-01T01:00:00", "temperature_2m": null, "rain": 0.2}
	]`, buf.String())
}

func TestWriteFile_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "berlin.xlsx")
	require.NoError(t, WriteFile(path, FormatFromPath(path), sampleTable(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"time", "temperature_2m", "rain"}, rows[0])
	assert.Equal(t, "2024-01-01T00:00:00", rows[1][0])
	assert.Equal(t, "1.5", rows[1][1])
}

func TestWriteFile_CreatesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "berlin.csv")
	require.NoError(t, WriteFile(path, FormatCSV, sampleTable(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "time,temperature_2m,rain")
}

func TestDailyFileName(t *testing.T) {
	assert.Equal(t, "out/berlin_daily.csv", DailyFileName("out/berlin.csv"))
	assert.Equal(t, "data_daily.xlsx", DailyFileName("data.xlsx"))
	assert.Equal(t, "noext_daily", DailyFileName("noext"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, f)

	_, err = ParseFormat("parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("a/b.JSON"))
	assert.Equal(t, FormatExcel, FormatFromPath("b.xlsx"))
	assert.Equal(t, FormatCSV, FormatFromPath("b.txt"))
}
