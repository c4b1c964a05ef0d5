package api

import (
	"time"

	"github.com/nerrad567/gatehouse-core/internal/auth"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/mqtt"
)

// accountEvent describes one account action for the audit trail, the MQTT
// event stream, and login telemetry.
type accountEvent struct {
	action   string
	userID   string // account acted upon
	username string
	role     auth.Role
	actorID  string // empty for anonymous callers
	ip       string
	device   string
	success  bool
	details  map[string]any
}

// recordEvent fans an account event out to every configured sink. It never
// blocks the request on a slow sink.
func (s *Server) recordEvent(ev accountEvent) {
	s.queueAudit(ev)

	if s.telemetry != nil && s.telemetry.IsConnected() {
		s.telemetry.WriteAuthEvent(influxdb.AuthEventPoint{
			Kind:    ev.action,
			Role:    string(ev.role),
			Device:  ev.device,
			Success: ev.success,
		})
	}

	if s.events != nil && s.events.IsConnected() {
		payload := mqtt.AuthEvent{
			Kind:      ev.action,
			UserID:    ev.userID,
			Username:  ev.username,
			Role:      string(ev.role),
			ActorID:   ev.actorID,
			IP:        ev.ip,
			Device:    ev.device,
			Timestamp: time.Now().UTC(),
		}
		go func() {
			if err := s.events.PublishAuthEvent(payload); err != nil {
				s.logger.Warn("auth event publish failed", "kind", payload.Kind, "error", err)
			}
		}()
	}
}
