package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"aqdash/internal/modules/airquality/export"
)

const csvData = `timestamp,city,aqi,pm25,pm10,no2,o3,so2,co,temperature,humidity,wind_speed
2025-03-06 08:00:00,Hà Nội,150,55,80,20,10,5,1145,20°C,70%,5 km/h
2025-03-08 08:00:00,Hà Nội,140,50,,18,9,7,1.5,22°C,68%,4 km/h
2025-03-06 09:00:00,Huế,40,10,20,5,30,,0.4,25°C,n/a,3 km/h
2025-03-09 09:00:00,Huế,45,12,24,6,31,,0.5,26°C,81%,3 km/h
`

func setup(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "DATA_PATH", "WATCH_DATA"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "aq.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestClean(t *testing.T) {
	path := setup(t)

	out, _, err := run(t, "clean", "--data", path)
	require.NoError(t, err)
	assert.Contains(t, out, "rows:      4")
	assert.Contains(t, out, "cities:    Hà Nội (2), Huế (2)")
	assert.Contains(t, out, "dates:     2025-03-06 .. 2025-03-09")
	assert.Contains(t, out, "corrected: hanoi-co-scale 1")
	assert.Contains(t, out, "imputed:   1")
	assert.Contains(t, out, "no values: Huế so2 (left missing)")
}

func TestClean_out(t *testing.T) {
	path := setup(t)
	dir := t.TempDir()

	for _, name := range []string{"clean.csv", "clean.xlsx", "clean.json"} {
		t.Run(name, func(t *testing.T) {
			dst := filepath.Join(dir, name)
			out, _, err := run(t, "clean", "--data", path, "--out", dst)
			require.NoError(t, err)
			assert.Contains(t, out, "wrote 4 rows to "+dst)
			info, err := os.Stat(dst)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	x, err := excelize.OpenFile(filepath.Join(dir, "clean.xlsx"))
	require.NoError(t, err)
	defer x.Close()
	v, err := x.GetCellValue(export.SheetName, "I2")
	require.NoError(t, err)
	assert.Equal(t, "1", v, "co corrected for Hà Nội before the cutoff")

	_, _, err = run(t, "clean", "--data", path, "--out", filepath.Join(dir, "clean.parquet"))
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestClean_missingFile(t *testing.T) {
	setup(t)
	_, _, err := run(t, "clean", "--data", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestFilter(t *testing.T) {
	path := setup(t)

	t.Run("csv for one city and range", func(t *testing.T) {
		out, _, err := run(t, "filter", "--data", path, "--city", "Huế", "--start", "2025-03-06", "--end", "2025-03-06")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "timestamp,city,aqi"))
		assert.True(t, strings.HasPrefix(lines[1], "2025-03-06 09:00:00,Huế,40,"))
	})

	t.Run("json defaults to first city", func(t *testing.T) {
		out, _, err := run(t, "filter", "--data", path, "--format", "json")
		require.NoError(t, err)
		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "Hà Nội", rows[0]["city"])
		assert.Equal(t, 80.0, rows[1]["pm10"], "pm10 imputed with the city mean")
	})

	t.Run("start after end prints only the header", func(t *testing.T) {
		out, _, err := run(t, "filter", "--data", path, "--start", "2025-03-09", "--end", "2025-03-01")
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(out, "\n"))
	})

	t.Run("bad date", func(t *testing.T) {
		_, _, err := run(t, "filter", "--data", path, "--start", "07/03/2025")
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := run(t, "filter", "--data", path, "--format", "yaml")
		assert.ErrorIs(t, err, export.ErrUnknownFormat)
	})
}

func TestRoot_badLogLevel(t *testing.T) {
	path := setup(t)
	_, _, err := run(t, "clean", "--data", path, "--log-level", "chatty")
	assert.Error(t, err)
}
