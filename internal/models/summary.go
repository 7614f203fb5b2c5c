package models

import "time"

// HealthStatus classifies a vehicle's charging efficiency over a window.
type HealthStatus string

const (
	HealthExcellent        HealthStatus = "EXCELLENT"
	HealthNormal           HealthStatus = "NORMAL"
	HealthWarning          HealthStatus = "WARNING"
	HealthCritical         HealthStatus = "CRITICAL"
	HealthInsufficientData HealthStatus = "INSUFFICIENT_DATA"
)

// PerformanceSummary is the trailing-window efficiency report for one vehicle.
type PerformanceSummary struct {
	DeviceID            string       `json:"device_id"`
	WindowStart         time.Time    `json:"window_start"`
	WindowEnd           time.Time    `json:"window_end"`
	TotalKWhConsumedAC  float64      `json:"total_kwh_consumed_ac"`
	TotalKWhDeliveredDC float64      `json:"total_kwh_delivered_dc"`
	EfficiencyRatio     float64      `json:"efficiency_ratio"`
	AvgBatteryTemp      float64      `json:"avg_battery_temp"`
	DataPointsAnalyzed  int64        `json:"data_points_analyzed"`
	HealthStatus        HealthStatus `json:"health_status"`
}
