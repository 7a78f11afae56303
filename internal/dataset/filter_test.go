package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	at := func(d, h int) time.Time { return time.Date(2025, 3, d, h, 0, 0, 0, time.UTC) }
	return Dataset{Records: []Record{
		{Timestamp: at(1, 8), City: "Hà Nội", AQI: ptr(150)},
		{Timestamp: at(1, 9), City: "Huế", AQI: ptr(40)},
		{Timestamp: at(2, 23), City: "Hà Nội", AQI: ptr(130)},
		{Timestamp: at(3, 0), City: "Hà Nội", AQI: ptr(110)},
		{Timestamp: at(5, 12), City: "Hà Nội", AQI: nil},
	}}
}

func TestFilter(t *testing.T) {
	ds := sampleDataset()

	t.Run("city and inclusive date range", func(t *testing.T) {
		got := Filter(ds, "Hà Nội", MustDate(2025, 3, 1), MustDate(2025, 3, 3))
		require.Len(t, got.Records, 3)
		assert.Equal(t, 150.0, *got.Records[0].AQI)
		assert.Equal(t, 130.0, *got.Records[1].AQI)
		assert.Equal(t, 110.0, *got.Records[2].AQI)
	})

	t.Run("time of day is ignored at the end date", func(t *testing.T) {
		got := Filter(ds, "Hà Nội", MustDate(2025, 3, 2), MustDate(2025, 3, 2))
		require.Len(t, got.Records, 1)
		assert.Equal(t, 23, got.Records[0].Timestamp.Hour())
	})

	t.Run("start after end is empty", func(t *testing.T) {
		got := Filter(ds, "Hà Nội", MustDate(2025, 3, 5), MustDate(2025, 3, 1))
		assert.NotNil(t, got.Records)
		assert.Empty(t, got.Records)
	})

	t.Run("unknown city is empty", func(t *testing.T) {
		got := Filter(ds, "Sài Gòn", MustDate(2025, 1, 1), MustDate(2025, 12, 31))
		assert.Equal(t, 0, got.Len())
	})

	t.Run("idempotent", func(t *testing.T) {
		start, end := MustDate(2025, 3, 1), MustDate(2025, 3, 4)
		once := Filter(ds, "Hà Nội", start, end)
		twice := Filter(once, "Hà Nội", start, end)
		assert.Equal(t, once, twice)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		before := len(ds.Records)
		_ = Filter(ds, "Huế", MustDate(2025, 3, 1), MustDate(2025, 3, 1))
		assert.Len(t, ds.Records, before)
		assert.Equal(t, "Hà Nội", ds.Records[0].City)
	})
}

func TestDataset_DateBounds(t *testing.T) {
	lo, hi, ok := sampleDataset().DateBounds()
	require.True(t, ok)
	assert.Equal(t, MustDate(2025, 3, 1), lo)
	assert.Equal(t, MustDate(2025, 3, 5), hi)

	_, _, ok = Dataset{}.DateBounds()
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2025-03-07")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-07", d.String())
	assert.True(t, d.Before(MustDate(2025, 3, 8)))
	assert.True(t, d.After(MustDate(2024, 12, 31)))
	assert.Equal(t, 0, d.Compare(DateOf(time.Date(2025, 3, 7, 23, 59, 0, 0, time.UTC))))

	_, err = ParseDate("07/03/2025")
	assert.Error(t, err)

	assert.Panics(t, func() { MustDate(2025, 2, 30) })
}
