package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"gridpulse/internal/service"
)

// Ingestor is the write-path surface the HTTP layer depends on.
type Ingestor interface {
	IngestMeter(ctx context.Context, input service.MeterReadingInput) error
	IngestMeterBatch(ctx context.Context, inputs []service.MeterReadingInput) error
	IngestVehicle(ctx context.Context, input service.VehicleReadingInput) error
	IngestVehicleBatch(ctx context.Context, inputs []service.VehicleReadingInput) error
}

// IngestHandler handles telemetry submission endpoints.
type IngestHandler struct {
	service Ingestor
	logger  *zap.Logger
}

// NewIngestHandler returns handler.
func NewIngestHandler(service Ingestor, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		service: service,
		logger:  logger,
	}
}

// HandleMeter handles POST /api/v1/telemetry/meter.
func (h *IngestHandler) HandleMeter(w http.ResponseWriter, r *http.Request) {
	var input service.MeterReadingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.service.IngestMeter(r.Context(), input); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

// HandleMeterBatch handles POST /api/v1/telemetry/meter/batch.
func (h *IngestHandler) HandleMeterBatch(w http.ResponseWriter, r *http.Request) {
	var inputs []service.MeterReadingInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.service.IngestMeterBatch(r.Context(), inputs); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "ok",
		"accepted": len(inputs),
	})
}

// HandleVehicle handles POST /api/v1/telemetry/vehicle.
func (h *IngestHandler) HandleVehicle(w http.ResponseWriter, r *http.Request) {
	var input service.VehicleReadingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.service.IngestVehicle(r.Context(), input); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

// HandleVehicleBatch handles POST /api/v1/telemetry/vehicle/batch.
func (h *IngestHandler) HandleVehicleBatch(w http.ResponseWriter, r *http.Request) {
	var inputs []service.VehicleReadingInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.service.IngestVehicleBatch(r.Context(), inputs); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "ok",
		"accepted": len(inputs),
	})
}
