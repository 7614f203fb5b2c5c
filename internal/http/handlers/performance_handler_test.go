package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gridpulse/internal/models"
	"gridpulse/internal/service"
)

type stubPerformanceReader struct {
	summary *models.PerformanceSummary
	err     error
	gotID   string
}

func (s *stubPerformanceReader) GetVehiclePerformance(_ context.Context, deviceID string) (*models.PerformanceSummary, error) {
	s.gotID = deviceID
	return s.summary, s.err
}

func TestPerformanceHandler_ReturnsSummary(t *testing.T) {
	stub := &stubPerformanceReader{summary: &models.PerformanceSummary{
		DeviceID:           "V-1",
		EfficiencyRatio:    0.8381,
		DataPointsAnalyzed: 10,
		HealthStatus:       models.HealthWarning,
	}}
	handler := NewPerformanceHandler(stub, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/V-1/performance", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "V-1", stub.gotID)
	assert.Contains(t, rec.Body.String(), `"health_status":"WARNING"`)
}

func TestPerformanceHandler_NotFound(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubPerformanceReader{err: &service.NotFoundError{
		DeviceID:    "UNKNOWN-999",
		WindowStart: now.Add(-24 * time.Hour),
		WindowEnd:   now,
	}}
	handler := NewPerformanceHandler(stub, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/UNKNOWN-999/performance", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN-999")
}

func TestPerformanceHandler_BadPath(t *testing.T) {
	stub := &stubPerformanceReader{}
	handler := NewPerformanceHandler(stub, zap.NewNop())

	for _, path := range []string{
		"/api/v1/vehicles/",
		"/api/v1/vehicles/V-1",
		"/api/v1/vehicles/V-1/history",
		"/api/v1/vehicles//performance",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
		assert.Empty(t, stub.gotID)
	}
}
