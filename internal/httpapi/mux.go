package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Metrics is what the mux needs from the metrics package.
type Metrics interface {
	RequestObserver
	Handler() http.Handler
}

func NewMux(source DatasetSource, metrics Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	var observer RequestObserver
	if metrics != nil {
		observer = metrics
	}
	r.Use(requestLogger(observer))

	registerHealthcheck(r, source)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	return r
}
