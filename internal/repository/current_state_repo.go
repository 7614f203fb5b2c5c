package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gridpulse/internal/models"
)

// ErrStateNotFound indicates no current-state row exists for the device.
var ErrStateNotFound = errors.New("device state not found")

// CurrentStateRepository maintains the single-row-per-device state tables.
type CurrentStateRepository struct {
	q Querier
}

// NewCurrentStateRepository returns repository backed by the connection pool.
func NewCurrentStateRepository(db *sql.DB) *CurrentStateRepository {
	return &CurrentStateRepository{q: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CurrentStateRepository) WithTx(tx *sql.Tx) *CurrentStateRepository {
	return &CurrentStateRepository{q: tx}
}

// UpsertMeterStates replaces-or-inserts the current-state rows for a batch of
// meter readings in a single statement. Callers must pass at most one reading
// per device; ON CONFLICT cannot touch the same row twice in one command.
// created_at is set on first insert only.
func (r *CurrentStateRepository) UpsertMeterStates(ctx context.Context, readings []models.MeterReading) error {
	if len(readings) == 0 {
		return nil
	}
	const query = `
		INSERT INTO meter_current_state (device_id, kwh_consumed_ac, voltage, last_updated, created_at)
		SELECT d, e, v, t, NOW()
		FROM unnest($1::text[], $2::float8[], $3::float8[], $4::timestamptz[]) AS u(d, e, v, t)
		ON CONFLICT (device_id) DO UPDATE SET
			kwh_consumed_ac = EXCLUDED.kwh_consumed_ac,
			voltage = EXCLUDED.voltage,
			last_updated = EXCLUDED.last_updated
	`
	ids := make([]string, len(readings))
	energies := make([]float64, len(readings))
	voltages := make([]float64, len(readings))
	timestamps := make([]time.Time, len(readings))
	for i, rec := range readings {
		ids[i] = rec.DeviceID
		energies[i] = rec.KWhConsumedAC
		voltages[i] = rec.Voltage
		timestamps[i] = rec.RecordedAt
	}
	_, err := r.q.ExecContext(ctx, query, ids, energies, voltages, timestamps)
	return err
}

// UpsertVehicleStates replaces-or-inserts the current-state rows for a batch of
// vehicle readings. Same one-reading-per-device contract as UpsertMeterStates.
func (r *CurrentStateRepository) UpsertVehicleStates(ctx context.Context, readings []models.VehicleReading) error {
	if len(readings) == 0 {
		return nil
	}
	const query = `
		INSERT INTO vehicle_current_state (device_id, soc, kwh_delivered_dc, battery_temp, last_updated, created_at)
		SELECT d, s, e, bt, t, NOW()
		FROM unnest($1::text[], $2::float8[], $3::float8[], $4::float8[], $5::timestamptz[]) AS u(d, s, e, bt, t)
		ON CONFLICT (device_id) DO UPDATE SET
			soc = EXCLUDED.soc,
			kwh_delivered_dc = EXCLUDED.kwh_delivered_dc,
			battery_temp = EXCLUDED.battery_temp,
			last_updated = EXCLUDED.last_updated
	`
	ids := make([]string, len(readings))
	socs := make([]float64, len(readings))
	energies := make([]float64, len(readings))
	temps := make([]float64, len(readings))
	timestamps := make([]time.Time, len(readings))
	for i, rec := range readings {
		ids[i] = rec.DeviceID
		socs[i] = rec.SoC
		energies[i] = rec.KWhDeliveredDC
		temps[i] = rec.BatteryTemp
		timestamps[i] = rec.RecordedAt
	}
	_, err := r.q.ExecContext(ctx, query, ids, socs, energies, temps, timestamps)
	return err
}

// GetMeterState returns the latest meter state for the device.
func (r *CurrentStateRepository) GetMeterState(ctx context.Context, deviceID string) (*models.MeterState, error) {
	const query = `
		SELECT device_id, kwh_consumed_ac, voltage, last_updated, created_at
		FROM meter_current_state
		WHERE device_id = $1
	`
	var state models.MeterState
	err := r.q.QueryRowContext(ctx, query, deviceID).Scan(
		&state.DeviceID,
		&state.KWhConsumedAC,
		&state.Voltage,
		&state.LastUpdated,
		&state.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetVehicleState returns the latest vehicle state for the device.
func (r *CurrentStateRepository) GetVehicleState(ctx context.Context, deviceID string) (*models.VehicleState, error) {
	const query = `
		SELECT device_id, soc, kwh_delivered_dc, battery_temp, last_updated, created_at
		FROM vehicle_current_state
		WHERE device_id = $1
	`
	var state models.VehicleState
	err := r.q.QueryRowContext(ctx, query, deviceID).Scan(
		&state.DeviceID,
		&state.SoC,
		&state.KWhDeliveredDC,
		&state.BatteryTemp,
		&state.LastUpdated,
		&state.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}
