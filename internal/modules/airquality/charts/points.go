// Package charts renders the dashboard's SVG charts from a filtered dataset.
package charts

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"aqdash/internal/dataset"
)

// ErrNotEnoughData is returned when fewer than two points survive the
// missing-value filter. Callers render a placeholder instead.
var ErrNotEnoughData = errors.New("not enough data points to draw a chart")

// NotEnoughDataError carries the number of usable points. It matches
// ErrNotEnoughData under errors.Is.
type NotEnoughDataError struct {
	Points int
}

func (e *NotEnoughDataError) Error() string {
	return fmt.Sprintf("%s: %d usable, need 2", ErrNotEnoughData, e.Points)
}

func (e *NotEnoughDataError) Is(target error) bool { return target == ErrNotEnoughData }

// TimePoints returns (timestamp, value) pairs of col in time order.
// Rows where col is missing are skipped.
func TimePoints(ds dataset.Dataset, col dataset.Column) ([]time.Time, []float64) {
	type point struct {
		t time.Time
		v float64
	}
	pts := make([]point, 0, ds.Len())
	for i := range ds.Records {
		r := &ds.Records[i]
		if v := r.Value(col); v != nil {
			pts = append(pts, point{t: r.Timestamp, v: *v})
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].t.Before(pts[j].t) })

	xs := make([]time.Time, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.t, p.v
	}
	return xs, ys
}

// ScatterPoints returns (factor, aqi) pairs sorted by factor. Rows missing
// either value are skipped.
func ScatterPoints(ds dataset.Dataset, factor dataset.Column) ([]float64, []float64) {
	type point struct{ x, y float64 }
	pts := make([]point, 0, ds.Len())
	for i := range ds.Records {
		r := &ds.Records[i]
		x, y := r.Value(factor), r.AQI
		if x == nil || y == nil {
			continue
		}
		pts = append(pts, point{x: *x, y: *y})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.x, p.y
	}
	return xs, ys
}

// Fit is an ordinary least squares line y = Intercept + Slope*x.
type Fit struct {
	Intercept float64
	Slope     float64
	// R is Pearson's correlation coefficient. NaN when either variable is constant.
	R float64
	N int
}

// At evaluates the fitted line at x.
func (f Fit) At(x float64) float64 { return f.Intercept + f.Slope*x }

// Defined reports whether the line has a finite slope.
func (f Fit) Defined() bool {
	return !math.IsNaN(f.Slope) && !math.IsInf(f.Slope, 0) && !math.IsNaN(f.Intercept)
}

// LinearFit fits y against x.
func LinearFit(xs, ys []float64) (Fit, error) {
	if len(xs) != len(ys) {
		return Fit{}, errors.New("x and y lengths differ")
	}
	if len(xs) < 2 {
		return Fit{}, &NotEnoughDataError{Points: len(xs)}
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Fit{
		Intercept: alpha,
		Slope:     beta,
		R:         stat.Correlation(xs, ys, nil),
		N:         len(xs),
	}, nil
}
