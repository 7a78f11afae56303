package controller

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"aqdash/internal/dataset"
	"aqdash/internal/modules/airquality/charts"
	"aqdash/internal/modules/airquality/export"
	"aqdash/internal/modules/airquality/views"
	"aqdash/internal/utils"
)

const (
	svgContentType  = "image/svg+xml"
	htmlContentType = "text/html; charset=utf-8"
	noDataMessage   = "No data for the current selection"
	onePointMessage = "Only one data point for the current selection; a chart needs two"
)

// load fetches the dataset and parses the selection. It writes the error
// response itself and returns ok=false on failure.
func (c *airQualityControllerImpl) load(w http.ResponseWriter, r *http.Request) (dataset.Dataset, selection, bool) {
	ds, err := c.source.Dataset(r.Context())
	if err != nil {
		slog.Error("load dataset failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dataset")
		return dataset.Dataset{}, selection{}, false
	}
	sel, err := parseSelection(r, ds)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return dataset.Dataset{}, selection{}, false
	}
	return ds, sel, true
}

func (c *airQualityControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}
	minDate, maxDate, _ := ds.DateBounds()

	data := resultsData(ds, sel)
	data.Cities = cityOptions(ds.Cities())
	data.City = sel.City
	data.Start = dateValue(sel.Start)
	data.End = dateValue(sel.End)
	data.MinDate = dateValue(minDate)
	data.MaxDate = dateValue(maxDate)
	data.Pollutants = columnOptions(dataset.Pollutants, true)
	data.Pollutant = string(sel.Pollutant)
	data.Factors = columnOptions(dataset.WeatherFactors, false)
	data.Factor = string(sel.Factor)

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteBody(w, htmlContentType, buf.Bytes())
}

func (c *airQualityControllerImpl) handleResultsPartial(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := views.RenderResultsPartial(&buf, resultsData(ds, sel)); err != nil {
		slog.Error("results partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteBody(w, htmlContentType, buf.Bytes())
}

// resultsData fills the chart and table part of the dashboard for sel.
func resultsData(ds dataset.Dataset, sel selection) *views.DashboardData {
	filtered := sel.filter(ds)
	query := sel.Values().Encode()
	return &views.DashboardData{
		AQITitle:         charts.AQITitle,
		PollutantTitle:   charts.PollutantTitle(sel.Pollutant),
		CorrelationTitle: charts.CorrelationTitle(sel.Factor),
		Charts: views.ChartURLs{
			AQI:         template.URL("/charts/aqi.svg?" + query),
			Pollutant:   template.URL("/charts/pollutant.svg?" + query),
			Correlation: template.URL("/charts/correlation.svg?" + query),
		},
		Correlation: correlationLabel(filtered, sel.Factor),
		Table:       tableData(filtered, query),
	}
}

func (c *airQualityControllerImpl) handleTablePartial(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}
	data := tableData(sel.filter(ds), sel.Values().Encode())

	var buf bytes.Buffer
	if err := views.RenderTablePartial(&buf, &data); err != nil {
		slog.Error("table partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteBody(w, htmlContentType, buf.Bytes())
}

func (c *airQualityControllerImpl) handleAQIChart(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := charts.AQIArea(&buf, sel.filter(ds))
	writeChart(w, &buf, charts.AQITitle, err)
}

func (c *airQualityControllerImpl) handlePollutantChart(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := charts.PollutantArea(&buf, sel.filter(ds), sel.Pollutant)
	writeChart(w, &buf, charts.PollutantTitle(sel.Pollutant), err)
}

func (c *airQualityControllerImpl) handleCorrelationChart(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	_, err := charts.Correlation(&buf, sel.filter(ds), sel.Factor)
	writeChart(w, &buf, charts.CorrelationTitle(sel.Factor), err)
}

// writeChart sends the rendered chart, or a placeholder when the selection
// has too few points.
func writeChart(w http.ResponseWriter, buf *bytes.Buffer, title string, err error) {
	if errors.Is(err, charts.ErrNotEnoughData) {
		buf.Reset()
		err = charts.Placeholder(buf, title, placeholderMessage(err))
	}
	if err != nil {
		slog.Error("chart render failed", "chart", title, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	utils.WriteBody(w, svgContentType, buf.Bytes())
}

func placeholderMessage(err error) string {
	var ne *charts.NotEnoughDataError
	if errors.As(err, &ne) && ne.Points == 1 {
		return onePointMessage
	}
	return noDataMessage
}

func (c *airQualityControllerImpl) handleCities(w http.ResponseWriter, r *http.Request) {
	ds, err := c.source.Dataset(r.Context())
	if err != nil {
		slog.Error("cities: load dataset failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	cities := ds.Cities()
	if cities == nil {
		cities = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, cities)
}

type selectionResponse struct {
	City      string         `json:"city"`
	Start     dataset.Date   `json:"start"`
	End       dataset.Date   `json:"end"`
	Pollutant dataset.Column `json:"pollutant"`
	Factor    dataset.Column `json:"factor"`
}

type recordsResponse struct {
	Selection selectionResponse `json:"selection"`
	Rows      int               `json:"rows"`
	Data      dataset.Columns   `json:"data"`
}

func (c *airQualityControllerImpl) handleRecords(w http.ResponseWriter, r *http.Request) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}
	filtered := sel.filter(ds)
	utils.WriteJSON(w, http.StatusOK, recordsResponse{
		Selection: selectionResponse{
			City:      sel.City,
			Start:     sel.Start,
			End:       sel.End,
			Pollutant: sel.Pollutant,
			Factor:    sel.Factor,
		},
		Rows: filtered.Len(),
		Data: filtered.Columns(),
	})
}

func (c *airQualityControllerImpl) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	c.handleExport(w, r, export.CSV)
}

func (c *airQualityControllerImpl) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	c.handleExport(w, r, export.XLSX)
}

func (c *airQualityControllerImpl) handleExport(w http.ResponseWriter, r *http.Request, format export.Format) {
	ds, sel, ok := c.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, sel.filter(ds), format); err != nil {
		slog.Error("export failed", "format", format, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to export data")
		return
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": exportFilename(sel, format),
	}))
	utils.WriteBody(w, format.ContentType(), buf.Bytes())
}

func exportFilename(sel selection, format export.Format) string {
	parts := []string{"air_quality"}
	if sel.City != "" {
		parts = append(parts, strings.ReplaceAll(sel.City, " ", "_"))
	}
	if !sel.Start.IsZero() && !sel.End.IsZero() {
		parts = append(parts, sel.Start.String(), sel.End.String())
	}
	return strings.Join(parts, "_") + "." + string(format)
}

func tableData(ds dataset.Dataset, query string) views.TableData {
	rows := make([][]string, 0, ds.Len())
	for i := range ds.Records {
		rows = append(rows, ds.Records[i].Row())
	}
	return views.TableData{
		Header: dataset.Header(),
		Rows:   rows,
		Query:  template.URL(query),
	}
}

func correlationLabel(ds dataset.Dataset, factor dataset.Column) string {
	fit, err := charts.LinearFit(charts.ScatterPoints(ds, factor))
	if err != nil || math.IsNaN(fit.R) {
		return ""
	}
	return strconv.FormatFloat(fit.R, 'f', 3, 64)
}

func cityOptions(cities []string) []views.Option {
	opts := make([]views.Option, 0, len(cities))
	for _, c := range cities {
		opts = append(opts, views.Option{Value: c, Label: c})
	}
	return opts
}

func columnOptions(cols []dataset.Column, upper bool) []views.Option {
	opts := make([]views.Option, 0, len(cols))
	for _, c := range cols {
		label := string(c)
		if upper {
			label = strings.ToUpper(label)
		}
		opts = append(opts, views.Option{Value: string(c), Label: label})
	}
	return opts
}

func dateValue(d dataset.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
