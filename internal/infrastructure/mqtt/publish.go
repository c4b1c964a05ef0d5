package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// maxPayloadSize caps a single message at 1MB.
const maxPayloadSize = 1 << 20

// AuthEvent is the payload published for each account event.
type AuthEvent struct {
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Device    string    `json:"device,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publish sends payload to topic with the given QoS. Events are published
// non-retained; only the system status topic is retained.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validatePublish(topic, payload, qos); err != nil {
		return err
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishAuthEvent marshals ev and publishes it on Topics{}.AuthEvent(ev.Kind)
// at the configured QoS. A zero Timestamp is set to now.
func (c *Client) PublishAuthEvent(ev AuthEvent) error {
	if ev.Kind == "" {
		return ErrInvalidTopic
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: encoding event: %w", ErrPublishFailed, err)
	}
	return c.Publish(Topics{}.AuthEvent(ev.Kind), payload, byte(c.cfg.QoS), false)
}

func validatePublish(topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	return nil
}
