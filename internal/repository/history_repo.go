package repository

import (
	"context"
	"database/sql"
	"time"

	"gridpulse/internal/models"
)

// HistoryRepository appends to and aggregates over the append-only history streams.
// Nothing here ever updates or deletes a history row.
type HistoryRepository struct {
	q Querier
}

// NewHistoryRepository returns repository backed by the connection pool.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{q: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *HistoryRepository) WithTx(tx *sql.Tx) *HistoryRepository {
	return &HistoryRepository{q: tx}
}

// AppendMeterEntries bulk-inserts one history entry per reading. The surrogate
// id comes from the sequence; created_at records ingestion receipt time.
func (r *HistoryRepository) AppendMeterEntries(ctx context.Context, readings []models.MeterReading) error {
	if len(readings) == 0 {
		return nil
	}
	const query = `
		INSERT INTO meter_history (device_id, kwh_consumed_ac, voltage, recorded_at, created_at)
		SELECT d, e, v, t, NOW()
		FROM unnest($1::text[], $2::float8[], $3::float8[], $4::timestamptz[]) AS u(d, e, v, t)
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

// AppendVehicleEntries bulk-inserts one history entry per vehicle reading.
func (r *HistoryRepository) AppendVehicleEntries(ctx context.Context, readings []models.VehicleReading) error {
	if len(readings) == 0 {
		return nil
	}
	const query = `
		INSERT INTO vehicle_history (device_id, soc, kwh_delivered_dc, battery_temp, recorded_at, created_at)
		SELECT d, s, e, bt, t, NOW()
		FROM unnest($1::text[], $2::float8[], $3::float8[], $4::float8[], $5::timestamptz[]) AS u(d, s, e, bt, t)
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

// VehicleWindowAggregate computes the vehicle-stream aggregates over the
// inclusive [from, to] window. The composite (device_id, recorded_at) index
// keeps this a range scan.
func (r *HistoryRepository) VehicleWindowAggregate(ctx context.Context, deviceID string, from, to time.Time) (models.VehicleAggregate, error) {
	const query = `
		SELECT COALESCE(SUM(kwh_delivered_dc), 0), COALESCE(AVG(battery_temp), 0), COUNT(*)
		FROM vehicle_history
		WHERE device_id = $1 AND recorded_at BETWEEN $2 AND $3
	`
	var agg models.VehicleAggregate
	err := r.q.QueryRowContext(ctx, query, deviceID, from, to).Scan(
		&agg.TotalKWhDeliveredDC,
		&agg.AvgBatteryTemp,
		&agg.SampleCount,
	)
	if err != nil {
		return models.VehicleAggregate{}, err
	}
	return agg, nil
}

// MeterWindowEnergy returns total AC energy consumed by the meter over the
// inclusive [from, to] window. Zero when the meter has no entries there.
func (r *HistoryRepository) MeterWindowEnergy(ctx context.Context, deviceID string, from, to time.Time) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(kwh_consumed_ac), 0)
		FROM meter_history
		WHERE device_id = $1 AND recorded_at BETWEEN $2 AND $3
	`
	var total float64
	if err := r.q.QueryRowContext(ctx, query, deviceID, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
