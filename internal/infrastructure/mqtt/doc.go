// Package mqtt publishes Gatehouse account events to an MQTT broker.
//
// Other services subscribe to gatehouse/events/auth/# to react to logins,
// registrations, role changes, and deletions without polling the API.
// Publishing is best-effort: the API never fails a request because the
// broker is unreachable.
//
// The client reconnects automatically with exponential backoff and uses a
// Last Will and Testament on gatehouse/system/status so subscribers can tell
// when the service disappears.
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS) outside local development
//   - Event payloads never contain passwords or tokens
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishAuthEvent(mqtt.AuthEvent{Kind: "login", UserID: id})
package mqtt
