package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"gridpulse/internal/models"
	"gridpulse/internal/repository"
)

// performanceWindow is the trailing analytics interval, inclusive at both ends.
const performanceWindow = 24 * time.Hour

// MeterResolver maps a vehicle identifier to the grid meter that fed it during
// the window. Deployments with a device registry plug their own implementation
// in; the default assumes meter id equals vehicle id.
type MeterResolver interface {
	ResolveMeterID(ctx context.Context, vehicleID string, from, to time.Time) (string, error)
}

// IdentityMeterResolver returns the vehicle identifier unchanged.
type IdentityMeterResolver struct{}

// ResolveMeterID implements MeterResolver.
func (IdentityMeterResolver) ResolveMeterID(_ context.Context, vehicleID string, _, _ time.Time) (string, error) {
	return vehicleID, nil
}

// SummaryCache caches computed summaries for the hot read path. Implementations
// must treat a miss as (nil, nil).
type SummaryCache interface {
	GetSummary(ctx context.Context, deviceID string) (*models.PerformanceSummary, error)
	SaveSummary(ctx context.Context, deviceID string, summary *models.PerformanceSummary) error
}

// PerformanceService is the read path: trailing-window efficiency analytics
// over the history streams. It never reads current-state.
type PerformanceService struct {
	history  *repository.HistoryRepository
	resolver MeterResolver
	cache    SummaryCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewPerformanceService returns service instance. cache may be nil.
func NewPerformanceService(
	history *repository.HistoryRepository,
	resolver MeterResolver,
	cache SummaryCache,
	logger *zap.Logger,
) *PerformanceService {
	if resolver == nil {
		resolver = IdentityMeterResolver{}
	}
	return &PerformanceService{
		history:  history,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// GetVehiclePerformance computes the efficiency summary for the trailing
// 24-hour window ending now. Zero vehicle samples in the window fail with
// NotFoundError; missing meter data only degrades the AC total to zero.
func (s *PerformanceService) GetVehiclePerformance(ctx context.Context, deviceID string) (*models.PerformanceSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSummary(ctx, deviceID)
		if err != nil {
			s.logger.Debug("summary cache read failed", zap.String("device_id", deviceID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	windowEnd := s.now().UTC()
	windowStart := windowEnd.Add(-performanceWindow)

	vehicleAgg, err := s.history.VehicleWindowAggregate(ctx, deviceID, windowStart, windowEnd)
	if err != nil {
		return nil, &PersistenceError{Op: "aggregate vehicle window", Err: err}
	}
	if vehicleAgg.SampleCount == 0 {
		return nil, &NotFoundError{DeviceID: deviceID, WindowStart: windowStart, WindowEnd: windowEnd}
	}

	meterID, err := s.resolver.ResolveMeterID(ctx, deviceID, windowStart, windowEnd)
	if err != nil {
		return nil, &PersistenceError{Op: "resolve meter id", Err: err}
	}

	totalAC, err := s.history.MeterWindowEnergy(ctx, meterID, windowStart, windowEnd)
	if err != nil {
		return nil, &PersistenceError{Op: "aggregate meter window", Err: err}
	}

	ratio := 0.0
	if totalAC > 0 {
		ratio = roundTo(vehicleAgg.TotalKWhDeliveredDC/totalAC, 4)
	}

	summary := &models.PerformanceSummary{
		DeviceID:            deviceID,
		WindowStart:         windowStart,
		WindowEnd:           windowEnd,
		TotalKWhConsumedAC:  totalAC,
		TotalKWhDeliveredDC: vehicleAgg.TotalKWhDeliveredDC,
		EfficiencyRatio:     ratio,
		AvgBatteryTemp:      roundTo(vehicleAgg.AvgBatteryTemp, 2),
		DataPointsAnalyzed:  vehicleAgg.SampleCount,
		HealthStatus:        ClassifyHealth(ratio, vehicleAgg.SampleCount),
	}

	if s.cache != nil {
		if err := s.cache.SaveSummary(ctx, deviceID, summary); err != nil {
			s.logger.Debug("summary cache write failed", zap.String("device_id", deviceID), zap.Error(err))
		}
	}
	return summary, nil
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow10(places)
	return math.Round(value*factor) / factor
}
