package charts

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"aqdash/internal/dataset"
)

const (
	Width  = 960
	Height = 360
)

var (
	aqiColor         = drawing.ColorFromHex("00A8E8")
	pollutantColor   = drawing.ColorFromHex("72B01D")
	correlationColor = drawing.ColorFromHex("FFA500")
	gridColor        = drawing.ColorFromHex("DDDDDD")
)

// AQITitle and the other title helpers are shared with the HTML views.
const AQITitle = "AQI over time"

func PollutantTitle(col dataset.Column) string {
	return strings.ToUpper(string(col)) + " over time"
}

func CorrelationTitle(factor dataset.Column) string {
	return "AQI vs " + string(factor)
}

// AQIArea writes an area chart of AQI over time.
func AQIArea(w io.Writer, ds dataset.Dataset) error {
	xs, ys := TimePoints(ds, dataset.ColAQI)
	return renderArea(w, AQITitle, string(dataset.ColAQI), xs, ys, aqiColor)
}

// PollutantArea writes an area chart of a single pollutant over time.
func PollutantArea(w io.Writer, ds dataset.Dataset, col dataset.Column) error {
	if !dataset.IsPollutant(col) {
		return fmt.Errorf("%q is not a pollutant", col)
	}
	xs, ys := TimePoints(ds, col)
	return renderArea(w, PollutantTitle(col), string(col), xs, ys, pollutantColor)
}

func renderArea(w io.Writer, title, yName string, xs []time.Time, ys []float64, col drawing.Color) error {
	if len(xs) < 2 {
		return &NotEnoughDataError{Points: len(xs)}
	}
	graph := chart.Chart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "timestamp",
			ValueFormatter: chart.TimeValueFormatterWithFormat(dataset.DateLayout),
			Range:          timeRange(xs),
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: valueRange(ys),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    yName,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: col,
					StrokeWidth: 2,
					FillColor:   col.WithAlpha(96),
				},
			},
		},
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %q: %w", title, err)
	}
	return nil
}

// Correlation writes a scatter plot of factor against AQI with an OLS trend
// line, and returns the fit.
func Correlation(w io.Writer, ds dataset.Dataset, factor dataset.Column) (Fit, error) {
	if !dataset.IsWeatherFactor(factor) {
		return Fit{}, fmt.Errorf("%q is not a weather factor", factor)
	}
	xs, ys := ScatterPoints(ds, factor)
	fit, err := LinearFit(xs, ys)
	if err != nil {
		return Fit{}, err
	}

	grid := chart.Style{StrokeColor: gridColor, StrokeWidth: 1}
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    string(factor),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColor:    correlationColor.WithAlpha(153),
			},
		},
	}
	if fit.Defined() {
		lo, hi := xs[0], xs[len(xs)-1]
		series = append(series, chart.ContinuousSeries{
			Name:    "trend",
			XValues: []float64{lo, hi},
			YValues: []float64{fit.At(lo), fit.At(hi)},
			Style: chart.Style{
				StrokeColor: correlationColor,
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:      CorrelationTitle(factor),
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           string(factor),
			Range:          valueRange(xs),
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name:           string(dataset.ColAQI),
			Range:          valueRange(ys),
			GridMajorStyle: grid,
		},
		Series: series,
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return Fit{}, fmt.Errorf("render %q: %w", graph.Title, err)
	}
	return fit, nil
}

// Placeholder writes a blank SVG of the chart size carrying msg.
func Placeholder(w io.Writer, title, msg string) error {
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#FAFAFA" stroke="#DDDDDD"/>`+
		`<text x="50%%" y="40" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888888">%s</text>`+
		`</svg>`,
		Width, Height, Width, Height, html.EscapeString(title), html.EscapeString(msg))
	return err
}

// valueRange widens degenerate ranges, which go-chart refuses to draw.
func valueRange(vs []float64) chart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo < hi {
		return nil
	}
	pad := math.Max(math.Abs(lo)*0.1, 1)
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func timeRange(ts []time.Time) chart.Range {
	lo, hi := ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	if lo.Before(hi) {
		return nil
	}
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(lo.Add(-12 * time.Hour)),
		Max: chart.TimeToFloat64(hi.Add(12 * time.Hour)),
	}
}
