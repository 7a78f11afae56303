package airquality

import (
	"github.com/go-chi/chi/v5"

	"aqdash/internal/modules/airquality/controller"
)

func RegisterFeature(r chi.Router, source controller.DatasetSource) {
	airQualityController := controller.NewAirQualityController(source)
	airQualityController.RegisterRoutes(r)
}
