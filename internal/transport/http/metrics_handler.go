package http

import (
	"log/slog"
	"net/http"

	apperrors "github.com/neobeach/core/internal/errors"
)

// MetricsHandler exposes the Prometheus registry of the running engine.
type MetricsHandler struct {
	exporter http.Handler
	errors   *apperrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter handler. A nil exporter means metrics
// are disabled and the handler answers 404.
func NewMetricsHandler(exporter http.Handler, logger *slog.Logger) *MetricsHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MetricsHandler{
		exporter: exporter,
		errors:   apperrors.NewErrorHandler(logger, false),
	}
}

// Enabled reports whether an exporter is attached.
func (h *MetricsHandler) Enabled() bool { return h.exporter != nil }

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errors.Problem(w, r, http.StatusNotFound, apperrors.TypeNotFound, "metrics are disabled")
		return
	}
	h.exporter.ServeHTTP(w, r)
}
