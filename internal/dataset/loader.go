package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/unicode/norm"
)

// RequiredColumns must all be present in the CSV header.
var RequiredColumns = []string{
	colTimestamp, colCity,
	string(ColAQI), string(ColPM25), string(ColPM10), string(ColNO2), string(ColO3), string(ColSO2), string(ColCO),
	string(ColTemperature), string(ColHumidity), string(ColWindSpeed),
}

// RawRecord is one input row with a parsed timestamp and uncoerced numeric cells.
type RawRecord struct {
	Timestamp time.Time
	City      string
	Icon      string
	Cells     map[Column]string
}

// RawDataset is the Loader's output and the Cleaner's input.
type RawDataset struct {
	Records []RawRecord
}

// timestampLayouts are tried in order; zone information is dropped.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	DateLayout,
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Load reads the CSV file at path.
func Load(path string) (RawDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawDataset{}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	raw, err := Read(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return RawDataset{}, le
		}
		return RawDataset{}, &LoadError{Path: path, Err: err}
	}
	return raw, nil
}

// Read parses CSV from r. Every cell is kept as text; coercion is the Cleaner's job.
func Read(r io.Reader) (RawDataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		if strings.Contains(df.Err.Error(), "empty DataFrame") {
			return RawDataset{}, &LoadError{Err: ErrEmpty}
		}
		return RawDataset{}, &LoadError{Err: fmt.Errorf("read csv: %w", df.Err)}
	}

	names := make(map[string]string, df.Ncol())
	for _, n := range df.Names() {
		names[strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))] = n
	}
	for _, req := range RequiredColumns {
		if _, ok := names[req]; !ok {
			return RawDataset{}, &LoadError{Err: fmt.Errorf("%w %q", ErrMissingColumn, req)}
		}
	}

	column := func(name string) []string {
		return df.Col(names[name]).Records()
	}

	nrow := df.Nrow()
	if nrow == 0 {
		return RawDataset{}, &LoadError{Err: ErrEmpty}
	}

	timestamps := column(colTimestamp)
	cities := column(colCity)
	var icons []string
	if _, ok := names[colIcon]; ok {
		icons = column(colIcon)
	}
	cells := make(map[Column][]string, len(NumericColumns))
	for _, c := range NumericColumns {
		cells[c] = column(string(c))
	}

	out := RawDataset{Records: make([]RawRecord, nrow)}
	for i := 0; i < nrow; i++ {
		ts, err := ParseTimestamp(timestamps[i])
		if err != nil {
			return RawDataset{}, &LoadError{Err: &ParseError{Row: i + 1, Value: timestamps[i]}}
		}
		rec := RawRecord{
			Timestamp: ts,
			City:      NormalizeCity(cities[i]),
			Cells:     make(map[Column]string, len(NumericColumns)),
		}
		if icons != nil {
			rec.Icon = icons[i]
		}
		for _, c := range NumericColumns {
			rec.Cells[c] = cells[c][i]
		}
		out.Records[i] = rec
	}
	return out, nil
}

// ParseTimestamp parses s into a timezone-naive timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// NormalizeCity trims s and converts it to Unicode NFC so that composed and
// decomposed spellings compare equal.
func NormalizeCity(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
