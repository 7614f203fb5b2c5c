package service

import "gridpulse/internal/models"

// minSamplesForClassification gates the efficiency bands: below this count the
// window is too sparse for the ratio to mean anything.
const minSamplesForClassification = 10

// ClassifyHealth maps an efficiency ratio and vehicle sample count to a health
// status. Band lower bounds are inclusive, so exactly 0.85 is NORMAL.
func ClassifyHealth(efficiencyRatio float64, sampleCount int64) models.HealthStatus {
	if sampleCount < minSamplesForClassification {
		return models.HealthInsufficientData
	}
	switch {
	case efficiencyRatio >= 0.90:
		return models.HealthExcellent
	case efficiencyRatio >= 0.85:
		return models.HealthNormal
	case efficiencyRatio >= 0.75:
		return models.HealthWarning
	default:
		return models.HealthCritical
	}
}
