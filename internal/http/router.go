package httpserver

import "net/http"

// Routes defines HTTP endpoints.
type Routes struct {
	IngestMeter        http.HandlerFunc
	IngestMeterBatch   http.HandlerFunc
	IngestVehicle      http.HandlerFunc
	IngestVehicleBatch http.HandlerFunc
	VehiclePerformance http.Handler
	DeviceState        http.Handler
	LiveFeed           http.Handler
	Health             http.Handler
}

// NewRouter sets up HTTP routing.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.IngestMeter != nil {
		mux.Handle("/api/v1/telemetry/meter", method(http.MethodPost, routes.IngestMeter))
	}
	if routes.IngestMeterBatch != nil {
		mux.Handle("/api/v1/telemetry/meter/batch", method(http.MethodPost, routes.IngestMeterBatch))
	}
	if routes.IngestVehicle != nil {
		mux.Handle("/api/v1/telemetry/vehicle", method(http.MethodPost, routes.IngestVehicle))
	}
	if routes.IngestVehicleBatch != nil {
		mux.Handle("/api/v1/telemetry/vehicle/batch", method(http.MethodPost, routes.IngestVehicleBatch))
	}
	if routes.VehiclePerformance != nil {
		mux.Handle("/api/v1/vehicles/", method(http.MethodGet, routes.VehiclePerformance.ServeHTTP))
	}
	if routes.DeviceState != nil {
		mux.Handle("/api/v1/devices/", method(http.MethodGet, routes.DeviceState.ServeHTTP))
	}
	if routes.LiveFeed != nil {
		mux.Handle("/api/v1/telemetry/live", method(http.MethodGet, routes.LiveFeed.ServeHTTP))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health.ServeHTTP))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
