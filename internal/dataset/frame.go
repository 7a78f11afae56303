package dataset

import (
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// TimestampLayout is used when timestamps are written back out as text.
const TimestampLayout = "2006-01-02 15:04:05"

// Columns is a column-oriented copy of a dataset, ready for charting libraries.
type Columns struct {
	Timestamp []time.Time           `json:"timestamp"`
	City      []string              `json:"city"`
	Values    map[Column][]*float64 `json:"values"`
}

// Columns returns the dataset in columnar form. The icon column is not included.
func (d Dataset) Columns() Columns {
	n := len(d.Records)
	out := Columns{
		Timestamp: make([]time.Time, n),
		City:      make([]string, n),
		Values:    make(map[Column][]*float64, len(NumericColumns)),
	}
	for _, c := range NumericColumns {
		out.Values[c] = make([]*float64, n)
	}
	for i, r := range d.Records {
		out.Timestamp[i] = r.Timestamp
		out.City[i] = r.City
		for _, c := range NumericColumns {
			out.Values[c][i] = r.Value(c)
		}
	}
	return out
}

// Header returns the table column names in display order.
func Header() []string {
	h := []string{colTimestamp, colCity}
	for _, c := range NumericColumns {
		h = append(h, string(c))
	}
	return h
}

// Row formats r as table cells matching Header. Missing values are blank.
func (r *Record) Row() []string {
	row := []string{r.Timestamp.Format(TimestampLayout), r.City}
	for _, c := range NumericColumns {
		row = append(row, FormatValue(r.Value(c)))
	}
	return row
}

// FormatValue renders v in its shortest form, or "" when missing.
func FormatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Frame returns the dataset as a gota DataFrame of text columns without icon.
func (d Dataset) Frame() dataframe.DataFrame {
	header := Header()
	cols := make([][]string, len(header))
	for i := range cols {
		cols[i] = make([]string, 0, len(d.Records))
	}
	for i := range d.Records {
		for j, cell := range d.Records[i].Row() {
			cols[j] = append(cols[j], cell)
		}
	}
	ss := make([]series.Series, len(header))
	for i, name := range header {
		ss[i] = series.New(cols[i], series.String, name)
	}
	return dataframe.New(ss...)
}
