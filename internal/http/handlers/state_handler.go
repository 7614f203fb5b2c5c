package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"gridpulse/internal/models"
	"gridpulse/internal/repository"
)

// StateReader reads the latest current-state row for a device.
type StateReader interface {
	GetMeterState(ctx context.Context, deviceID string) (*models.MeterState, error)
	GetVehicleState(ctx context.Context, deviceID string) (*models.VehicleState, error)
}

// StateHandler serves the hot current-state rows.
type StateHandler struct {
	states StateReader
	logger *zap.Logger
}

// NewStateHandler returns handler.
func NewStateHandler(states StateReader, logger *zap.Logger) *StateHandler {
	return &StateHandler{
		states: states,
		logger: logger,
	}
}

// ServeHTTP handles GET /api/v1/devices/{id}/state?class=meter|vehicle.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := parseDevicePath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var (
		payload interface{}
		err     error
	)
	switch r.URL.Query().Get("class") {
	case "meter":
		payload, err = h.states.GetMeterState(r.Context(), deviceID)
	case "vehicle":
		payload, err = h.states.GetVehicleState(r.Context(), deviceID)
	default:
		writeError(w, http.StatusBadRequest, "class must be meter or vehicle")
		return
	}

	if errors.Is(err, repository.ErrStateNotFound) {
		writeError(w, http.StatusNotFound, "no state for device "+deviceID)
		return
	}
	if err != nil {
		h.logger.Error("failed to read device state", zap.String("device_id", deviceID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read device state")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func parseDevicePath(path string) (string, bool) {
	rest := strings.TrimPrefix(path, "/api/v1/devices/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "state" {
		return "", false
	}
	return parts[0], true
}
