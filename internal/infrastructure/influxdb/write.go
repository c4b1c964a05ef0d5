package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementAuthEvents holds one point per account event.
const MeasurementAuthEvents = "auth_events"

// AuthEventPoint is the input to WriteAuthEvent. Tags are kept low
// cardinality: user ids and addresses are not written.
type AuthEventPoint struct {
	Kind    string
	Role    string
	Device  string
	Success bool
	At      time.Time
}

// WriteAuthEvent queues an auth_events point. Dropped silently when the
// client is not connected.
func (c *Client) WriteAuthEvent(ev AuthEventPoint) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(authEventPoint(ev))
	c.queued.Add(1)
}

func authEventPoint(ev AuthEventPoint) *write.Point {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	outcome := "failure"
	if ev.Success {
		outcome = "success"
	}

	tags := map[string]string{
		"kind":    ev.Kind,
		"outcome": outcome,
	}
	if ev.Role != "" {
		tags["role"] = ev.Role
	}
	if ev.Device != "" {
		tags["device"] = ev.Device
	}

	return write.NewPoint(MeasurementAuthEvents, tags, map[string]interface{}{"count": 1}, at)
}
