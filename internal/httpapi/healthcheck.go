package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aqdash/internal/dataset"
	"aqdash/internal/utils"
)

// DatasetSource is the dataset the health check probes.
type DatasetSource interface {
	Dataset(ctx context.Context) (dataset.Dataset, error)
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	source DatasetSource
}

func NewHealthchecker(source DatasetSource) healthchecker {
	return &healthcheckerImpl{source: source}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ds, err := h.source.Dataset(r.Context())
	if err != nil {
		slog.Error("failed to load dataset", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": ds.Len()})
}

func registerHealthcheck(r chi.Router, source DatasetSource) {
	healthchecker := NewHealthchecker(source)
	r.Get("/healthz", healthchecker.handleHealthz)
}
