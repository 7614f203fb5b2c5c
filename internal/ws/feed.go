package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gridpulse/internal/models"
	"gridpulse/internal/repository"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingPeriod   = 30 * time.Second
)

// StateSource reads the latest current-state row for a device.
type StateSource interface {
	GetMeterState(ctx context.Context, deviceID string) (*models.MeterState, error)
	GetVehicleState(ctx context.Context, deviceID string) (*models.VehicleState, error)
}

// Feed streams periodic current-state snapshots for one device over a
// WebSocket connection. It polls the state table; ingestion stays free of
// notification side effects.
type Feed struct {
	states   StateSource
	interval time.Duration
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewFeed builds feed handler.
func NewFeed(states StateSource, interval time.Duration, logger *zap.Logger) *Feed {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Feed{
		states:   states,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades GET /api/v1/telemetry/live?device_id=&class= to a WebSocket.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}
	class := r.URL.Query().Get("class")
	if class != "meter" && class != "vehicle" {
		http.Error(w, "class must be meter or vehicle", http.StatusBadRequest)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	go f.readLoop(conn, cancel)
	f.writeLoop(ctx, conn, deviceID, class)
}

// readLoop drains incoming frames so pongs are processed and close frames end
// the write loop.
func (f *Feed) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writeLoop(ctx context.Context, conn *websocket.Conn, deviceID, class string) {
	defer conn.Close()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			payload, err := f.snapshot(ctx, deviceID, class)
			if err != nil {
				if errors.Is(err, repository.ErrStateNotFound) {
					continue
				}
				f.logger.Warn("state snapshot failed", zap.String("device_id", deviceID), zap.Error(err))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func (f *Feed) snapshot(ctx context.Context, deviceID, class string) ([]byte, error) {
	if class == "meter" {
		state, err := f.states.GetMeterState(ctx, deviceID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(state)
	}
	state, err := f.states.GetVehicleState(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(state)
}
