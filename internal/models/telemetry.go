package models

import "time"

// MeterState is the hot single-row-per-device view of the latest grid meter reading.
type MeterState struct {
	DeviceID      string    `db:"device_id" json:"device_id"`
	KWhConsumedAC float64   `db:"kwh_consumed_ac" json:"kwh_consumed_ac"`
	Voltage       float64   `db:"voltage" json:"voltage"`
	LastUpdated   time.Time `db:"last_updated" json:"last_updated"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// VehicleState is the hot single-row-per-device view of the latest vehicle reading.
type VehicleState struct {
	DeviceID       string    `db:"device_id" json:"device_id"`
	SoC            float64   `db:"soc" json:"soc"`
	KWhDeliveredDC float64   `db:"kwh_delivered_dc" json:"kwh_delivered_dc"`
	BatteryTemp    float64   `db:"battery_temp" json:"battery_temp"`
	LastUpdated    time.Time `db:"last_updated" json:"last_updated"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// MeterReading is a single validated grid meter observation bound for persistence.
type MeterReading struct {
	DeviceID      string
	KWhConsumedAC float64
	Voltage       float64
	RecordedAt    time.Time
}

// VehicleReading is a single validated vehicle observation bound for persistence.
type VehicleReading struct {
	DeviceID       string
	SoC            float64
	KWhDeliveredDC float64
	BatteryTemp    float64
	RecordedAt     time.Time
}

// VehicleAggregate holds window aggregates over the vehicle history stream.
type VehicleAggregate struct {
	TotalKWhDeliveredDC float64
	AvgBatteryTemp      float64
	SampleCount         int64
}
