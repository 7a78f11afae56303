package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aqdash/internal/dataset"
)

func f(v float64) *float64 { return &v }

func sample() dataset.Dataset {
	return dataset.Dataset{Records: []dataset.Record{
		{
			Timestamp: time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC),
			City:      "Hà Nội",
			AQI:       f(151), PM25: f(55.5), PM10: f(80), NO2: f(20), O3: f(10), SO2: f(5), CO: f(1.2),
			Temperature: f(21.5), Humidity: nil, WindSpeed: f(7),
			Icon: "04d",
		},
	}}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": CSV, " XLSX ": XLSX, "json": JSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("parquet")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	got, err := FormatForPath("/tmp/out.xlsx")
	require.NoError(t, err)
	assert.Equal(t, XLSX, got)
	_, err = FormatForPath("/tmp/out")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, dataset.Header(), rows[0])
	assert.NotContains(t, rows[0], "icon")
	assert.Equal(t, []string{
		"2025-03-01 08:00:00", "Hà Nội", "151", "55.5", "80", "20", "10", "5", "1.2", "21.5", "", "7",
	}, rows[1])
}

func TestWriteCSV_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, dataset.Dataset{}))
	assert.Equal(t, strings.Join(dataset.Header(), ",")+"\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample()))

	x, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer x.Close()

	rows, err := x.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, dataset.Header(), rows[0])
	assert.Equal(t, "Hà Nội", rows[1][1])
	assert.Equal(t, "55.5", rows[1][3])
	assert.Equal(t, "", rows[1][10])

	v, err := x.GetCellValue(SheetName, "L2")
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Nil(t, got[0]["humidity"])
	assert.Equal(t, 1.2, got[0]["co"])
	assert.NotContains(t, got[0], "icon")

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, dataset.Dataset{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.csv")
	require.NoError(t, WriteFile(path, sample()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "timestamp,city,aqi"))

	assert.Error(t, WriteFile(filepath.Join(dir, "clean.txt"), sample()))
}
