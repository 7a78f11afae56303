package dataset

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// unitSuffixes are stripped from weather cells before coercion.
var unitSuffixes = map[Column]string{
	ColTemperature: "°C",
	ColHumidity:    "%",
	ColWindSpeed:   "km/h",
}

// missingTokens mark a cell as missing without counting as a coercion failure.
var missingTokens = map[string]bool{
	"": true, "nan": true, "na": true, "n/a": true, "null": true, "none": true, "<nil>": true,
}

// Report summarises the non-fatal conditions absorbed by Clean.
type Report struct {
	Rows        int
	Coercions   []CellCoercionWarning
	Corrected   map[string]int
	Imputed     int
	EmptyGroups []EmptyGroupMean
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	corrected := 0
	for _, n := range r.Corrected {
		corrected += n
	}
	return slog.GroupValue(
		slog.Int("rows", r.Rows),
		slog.Int("coercion_failures", len(r.Coercions)),
		slog.Int("corrected", corrected),
		slog.Int("imputed", r.Imputed),
		slog.Int("empty_groups", len(r.EmptyGroups)),
	)
}

type cleanOptions struct {
	corrections []CorrectionRule
	logger      *slog.Logger
}

// CleanOption customises Clean.
type CleanOption func(*cleanOptions)

// WithCorrections replaces the default correction table.
func WithCorrections(rules []CorrectionRule) CleanOption {
	return func(o *cleanOptions) { o.corrections = rules }
}

// WithLogger sets the logger used for per-cell diagnostics.
func WithLogger(l *slog.Logger) CleanOption {
	return func(o *cleanOptions) { o.logger = l }
}

// Clean coerces, corrects and imputes raw. It never fails and never mutates raw.
func Clean(raw RawDataset, opts ...CleanOption) (Dataset, Report) {
	o := cleanOptions{corrections: DefaultCorrections(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	rep := Report{Rows: len(raw.Records), Corrected: make(map[string]int)}
	ds := Dataset{Records: make([]Record, len(raw.Records))}

	for i, rr := range raw.Records {
		rec := Record{Timestamp: rr.Timestamp, City: rr.City, Icon: rr.Icon}
		for _, c := range NumericColumns {
			cell := rr.Cells[c]
			v, ok := coerce(c, cell)
			if !ok {
				rep.Coercions = append(rep.Coercions, CellCoercionWarning{Row: i + 1, Column: c, Value: cell})
				o.logger.Debug("cell coercion failed", "row", i+1, "column", c, "value", cell)
			}
			rec.SetValue(c, v)
		}
		ds.Records[i] = rec
	}

	for _, rule := range o.corrections {
		for i := range ds.Records {
			r := &ds.Records[i]
			if !rule.Applies(r) {
				continue
			}
			r.SetValue(rule.Column, ptr(rule.Transform(*r.Value(rule.Column))))
			rep.Corrected[rule.Name]++
		}
	}

	impute(&ds, &rep)
	for _, g := range rep.EmptyGroups {
		o.logger.Debug("no values to impute from", "city", g.City, "column", g.Column)
	}
	return ds, rep
}

// coerce converts one cell. ok is false only when a non-empty cell fails to parse.
func coerce(c Column, cell string) (*float64, bool) {
	s := strings.TrimSpace(cell)
	if suffix, has := unitSuffixes[c]; has {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	if missingTokens[strings.ToLower(s)] {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

// impute fills missing ImputedColumns with the rounded mean of their city group.
func impute(ds *Dataset, rep *Report) {
	groups := make(map[string][]int)
	var order []string
	for i, r := range ds.Records {
		if _, ok := groups[r.City]; !ok {
			order = append(order, r.City)
		}
		groups[r.City] = append(groups[r.City], i)
	}

	for _, city := range order {
		idx := groups[city]
		for _, c := range ImputedColumns {
			var vals []float64
			var missing []int
			for _, i := range idx {
				if v := ds.Records[i].Value(c); v != nil {
					vals = append(vals, *v)
				} else {
					missing = append(missing, i)
				}
			}
			if len(missing) == 0 {
				continue
			}
			if len(vals) == 0 {
				rep.EmptyGroups = append(rep.EmptyGroups, EmptyGroupMean{City: city, Column: c})
				continue
			}
			mean := Round1(stat.Mean(vals, nil))
			for _, i := range missing {
				ds.Records[i].SetValue(c, ptr(mean))
				rep.Imputed++
			}
		}
	}
}
