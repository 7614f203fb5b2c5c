package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Current-state tables hold one row per device; history tables are append-only.
// The (device_id, recorded_at) indexes drive every window scan so aggregation
// never touches rows outside the requested device and range.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS meter_current_state (
		device_id       TEXT PRIMARY KEY,
		kwh_consumed_ac NUMERIC(12,4) NOT NULL,
		voltage         NUMERIC(8,2)  NOT NULL,
		last_updated    TIMESTAMPTZ   NOT NULL,
		created_at      TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS vehicle_current_state (
		device_id        TEXT PRIMARY KEY,
		soc              NUMERIC(5,2)  NOT NULL,
		kwh_delivered_dc NUMERIC(12,4) NOT NULL,
		battery_temp     NUMERIC(6,2)  NOT NULL,
		last_updated     TIMESTAMPTZ   NOT NULL,
		created_at       TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS meter_history (
		id              BIGSERIAL PRIMARY KEY,
		device_id       TEXT          NOT NULL,
		kwh_consumed_ac NUMERIC(12,4) NOT NULL,
		voltage         NUMERIC(8,2)  NOT NULL,
		recorded_at     TIMESTAMPTZ   NOT NULL,
		created_at      TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meter_history_device_time
		ON meter_history (device_id, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS vehicle_history (
		id               BIGSERIAL PRIMARY KEY,
		device_id        TEXT          NOT NULL,
		soc              NUMERIC(5,2)  NOT NULL,
		kwh_delivered_dc NUMERIC(12,4) NOT NULL,
		battery_temp     NUMERIC(6,2)  NOT NULL,
		recorded_at      TIMESTAMPTZ   NOT NULL,
		created_at       TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_history_device_time
		ON vehicle_history (device_id, recorded_at)`,
}

// EnsureSchema creates the telemetry tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("repository: ensure schema: %w", err)
		}
	}
	return nil
}
