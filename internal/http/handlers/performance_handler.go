package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"gridpulse/internal/models"
)

// PerformanceReader is the read-path surface the HTTP layer depends on.
type PerformanceReader interface {
	GetVehiclePerformance(ctx context.Context, deviceID string) (*models.PerformanceSummary, error)
}

// PerformanceHandler serves trailing-window efficiency summaries.
type PerformanceHandler struct {
	service PerformanceReader
	logger  *zap.Logger
}

// NewPerformanceHandler returns handler.
func NewPerformanceHandler(service PerformanceReader, logger *zap.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		service: service,
		logger:  logger,
	}
}

// ServeHTTP handles GET /api/v1/vehicles/{id}/performance.
func (h *PerformanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := parseVehiclePath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	summary, err := h.service.GetVehiclePerformance(r.Context(), deviceID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func parseVehiclePath(path string) (string, bool) {
	rest := strings.TrimPrefix(path, "/api/v1/vehicles/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "performance" {
		return "", false
	}
	return parts[0], true
}
