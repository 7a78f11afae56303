package dataset

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_Columns(t *testing.T) {
	ds := Dataset{Records: []Record{
		{Timestamp: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), City: "Huế", AQI: ptr(40), PM25: nil, Icon: "☀"},
		{Timestamp: time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC), City: "Huế", AQI: ptr(42), PM25: ptr(11)},
	}}

	cols := ds.Columns()
	require.Len(t, cols.Timestamp, 2)
	assert.Equal(t, []string{"Huế", "Huế"}, cols.City)
	assert.Len(t, cols.Values, len(NumericColumns))
	assert.Equal(t, 40.0, *cols.Values[ColAQI][0])
	assert.Nil(t, cols.Values[ColPM25][0])
	assert.Equal(t, 11.0, *cols.Values[ColPM25][1])
}

func TestDataset_Frame(t *testing.T) {
	ds := Dataset{Records: []Record{
		{Timestamp: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), City: "Huế", AQI: ptr(40), CO: ptr(0.4), Icon: "☀"},
	}}

	df := ds.Frame()
	require.NoError(t, df.Err)
	assert.Equal(t, Header(), df.Names())
	assert.NotContains(t, df.Names(), "icon")

	var buf bytes.Buffer
	require.NoError(t, df.WriteCSV(&buf))
	out := buf.String()
	assert.Contains(t, out, "2025-03-01 08:00:00,Huế,40,,")
	assert.Contains(t, out, ",0.4,")
	assert.NotContains(t, out, "☀")
}

func TestDataset_FrameEmpty(t *testing.T) {
	df := Dataset{}.Frame()
	require.NoError(t, df.Err)
	assert.Equal(t, 0, df.Nrow())
	assert.Equal(t, len(Header()), df.Ncol())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "1", FormatValue(ptr(1)))
	assert.Equal(t, "15.5", FormatValue(ptr(15.5)))
}
