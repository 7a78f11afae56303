package controller

import (
	"context"

	"github.com/go-chi/chi/v5"

	"aqdash/internal/dataset"
)

// DatasetSource yields the cleaned dataset the dashboard presents.
type DatasetSource interface {
	Dataset(ctx context.Context) (dataset.Dataset, error)
}

type AirQualityController interface {
	RegisterRoutes(r chi.Router)
}

type airQualityControllerImpl struct {
	source DatasetSource
}

func NewAirQualityController(source DatasetSource) AirQualityController {
	return &airQualityControllerImpl{source: source}
}

func (c *airQualityControllerImpl) RegisterRoutes(r chi.Router) {
	r.Get("/", c.handleDashboard)
	r.Get("/partials/results", c.handleResultsPartial)
	r.Get("/partials/table", c.handleTablePartial)

	r.Route("/charts", func(r chi.Router) {
		r.Get("/aqi.svg", c.handleAQIChart)
		r.Get("/pollutant.svg", c.handlePollutantChart)
		r.Get("/correlation.svg", c.handleCorrelationChart)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/cities", c.handleCities)
		r.Get("/records", c.handleRecords)
	})

	r.Get("/export.csv", c.handleExportCSV)
	r.Get("/export.xlsx", c.handleExportXLSX)
}
