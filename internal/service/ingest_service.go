package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gridpulse/internal/models"
	"gridpulse/internal/repository"
)

// MeterReadingInput is the wire payload for a grid meter observation.
type MeterReadingInput struct {
	DeviceID      string    `json:"device_id"`
	KWhConsumedAC float64   `json:"kwh_consumed_ac"`
	Voltage       float64   `json:"voltage"`
	Timestamp     time.Time `json:"timestamp"`
}

// VehicleReadingInput is the wire payload for a vehicle observation.
type VehicleReadingInput struct {
	DeviceID       string    `json:"device_id"`
	SoC            float64   `json:"soc"`
	KWhDeliveredDC float64   `json:"kwh_delivered_dc"`
	BatteryTemp    float64   `json:"battery_temp"`
	Timestamp      time.Time `json:"timestamp"`
}

// IngestService is the write path. Each call replaces the device's
// current-state row and appends to its history stream in one transaction:
// both land or neither does.
type IngestService struct {
	tx      *repository.TxRunner
	states  *repository.CurrentStateRepository
	history *repository.HistoryRepository
	logger  *zap.Logger
}

// NewIngestService returns service instance.
func NewIngestService(
	tx *repository.TxRunner,
	states *repository.CurrentStateRepository,
	history *repository.HistoryRepository,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		tx:      tx,
		states:  states,
		history: history,
		logger:  logger,
	}
}

func (in MeterReadingInput) validate() *ValidationError {
	if strings.TrimSpace(in.DeviceID) == "" {
		return &ValidationError{Field: "device_id", Reason: "must not be empty"}
	}
	if in.KWhConsumedAC < 0 {
		return &ValidationError{Field: "kwh_consumed_ac", Reason: "must be non-negative"}
	}
	if in.Voltage < 0 {
		return &ValidationError{Field: "voltage", Reason: "must be non-negative"}
	}
	if in.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Reason: "must be a valid UTC instant"}
	}
	return nil
}

func (in MeterReadingInput) toReading() models.MeterReading {
	return models.MeterReading{
		DeviceID:      in.DeviceID,
		KWhConsumedAC: in.KWhConsumedAC,
		Voltage:       in.Voltage,
		RecordedAt:    in.Timestamp.UTC(),
	}
}

func (in VehicleReadingInput) validate() *ValidationError {
	if strings.TrimSpace(in.DeviceID) == "" {
		return &ValidationError{Field: "device_id", Reason: "must not be empty"}
	}
	if in.SoC < 0 || in.SoC > 100 {
		return &ValidationError{Field: "soc", Reason: "must be between 0 and 100"}
	}
	if in.KWhDeliveredDC < 0 {
		return &ValidationError{Field: "kwh_delivered_dc", Reason: "must be non-negative"}
	}
	if in.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Reason: "must be a valid UTC instant"}
	}
	return nil
}

func (in VehicleReadingInput) toReading() models.VehicleReading {
	return models.VehicleReading{
		DeviceID:       in.DeviceID,
		SoC:            in.SoC,
		KWhDeliveredDC: in.KWhDeliveredDC,
		BatteryTemp:    in.BatteryTemp,
		RecordedAt:     in.Timestamp.UTC(),
	}
}

// IngestMeter persists a single meter reading.
func (s *IngestService) IngestMeter(ctx context.Context, input MeterReadingInput) error {
	if verr := input.validate(); verr != nil {
		return verr
	}
	return s.applyMeterBatch(ctx, []models.MeterReading{input.toReading()})
}

// IngestMeterBatch persists a non-empty batch of meter readings as one atomic
// unit. Any validation failure rejects the whole batch before touching storage.
func (s *IngestService) IngestMeterBatch(ctx context.Context, inputs []MeterReadingInput) error {
	if len(inputs) == 0 {
		return &ValidationError{Field: "records", Reason: "batch must not be empty"}
	}
	readings := make([]models.MeterReading, len(inputs))
	for i, input := range inputs {
		if verr := input.validate(); verr != nil {
			verr.Field = fmt.Sprintf("records[%d].%s", i, verr.Field)
			return verr
		}
		readings[i] = input.toReading()
	}
	return s.applyMeterBatch(ctx, readings)
}

// IngestVehicle persists a single vehicle reading.
func (s *IngestService) IngestVehicle(ctx context.Context, input VehicleReadingInput) error {
	if verr := input.validate(); verr != nil {
		return verr
	}
	return s.applyVehicleBatch(ctx, []models.VehicleReading{input.toReading()})
}

// IngestVehicleBatch persists a non-empty batch of vehicle readings as one
// atomic unit.
func (s *IngestService) IngestVehicleBatch(ctx context.Context, inputs []VehicleReadingInput) error {
	if len(inputs) == 0 {
		return &ValidationError{Field: "records", Reason: "batch must not be empty"}
	}
	readings := make([]models.VehicleReading, len(inputs))
	for i, input := range inputs {
		if verr := input.validate(); verr != nil {
			verr.Field = fmt.Sprintf("records[%d].%s", i, verr.Field)
			return verr
		}
		readings[i] = input.toReading()
	}
	return s.applyVehicleBatch(ctx, readings)
}

func (s *IngestService) applyMeterBatch(ctx context.Context, readings []models.MeterReading) error {
	latest := latestMeterPerDevice(readings)
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.states.WithTx(tx).UpsertMeterStates(ctx, latest); err != nil {
			return fmt.Errorf("upsert meter state: %w", err)
		}
		if err := s.history.WithTx(tx).AppendMeterEntries(ctx, readings); err != nil {
			return fmt.Errorf("append meter history: %w", err)
		}
		return nil
	})
	if err != nil {
		return &PersistenceError{Op: "ingest meter batch", Err: err}
	}
	s.logger.Debug("ingested meter readings", zap.Int("count", len(readings)))
	return nil
}

func (s *IngestService) applyVehicleBatch(ctx context.Context, readings []models.VehicleReading) error {
	latest := latestVehiclePerDevice(readings)
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.states.WithTx(tx).UpsertVehicleStates(ctx, latest); err != nil {
			return fmt.Errorf("upsert vehicle state: %w", err)
		}
		if err := s.history.WithTx(tx).AppendVehicleEntries(ctx, readings); err != nil {
			return fmt.Errorf("append vehicle history: %w", err)
		}
		return nil
	})
	if err != nil {
		return &PersistenceError{Op: "ingest vehicle batch", Err: err}
	}
	s.logger.Debug("ingested vehicle readings", zap.Int("count", len(readings)))
	return nil
}

// latestMeterPerDevice collapses a batch to the last reading per device in
// batch order. The state upsert must see each device once; history still
// records every reading.
func latestMeterPerDevice(readings []models.MeterReading) []models.MeterReading {
	index := make(map[string]int, len(readings))
	collapsed := make([]models.MeterReading, 0, len(readings))
	for _, rec := range readings {
		if pos, ok := index[rec.DeviceID]; ok {
			collapsed[pos] = rec
			continue
		}
		index[rec.DeviceID] = len(collapsed)
		collapsed = append(collapsed, rec)
	}
	return collapsed
}

func latestVehiclePerDevice(readings []models.VehicleReading) []models.VehicleReading {
	index := make(map[string]int, len(readings))
	collapsed := make([]models.VehicleReading, 0, len(readings))
	for _, rec := range readings {
		if pos, ok := index[rec.DeviceID]; ok {
			collapsed[pos] = rec
			continue
		}
		index[rec.DeviceID] = len(collapsed)
		collapsed = append(collapsed, rec)
	}
	return collapsed
}
