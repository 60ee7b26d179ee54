package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/neobeach/core/internal/services"
)

// HealthHandler serves the health and readiness reports.
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// Health handles GET /_health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.service.Health(r.Context()))
}

// Ready handles GET /_health/ready. A failing check answers 503.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.service.Readiness(r.Context())
	if !report.Ready() {
		h.logger.WarnContext(r.Context(), "not ready", slog.Int("checks", len(report.Checks)))
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, report)
}
