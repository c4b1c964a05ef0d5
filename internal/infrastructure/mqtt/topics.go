package mqtt

import "fmt"

const (
	// TopicPrefix is the root of every Gatehouse topic.
	TopicPrefix = "gatehouse"

	// TopicPrefixEvents is the base for event topics.
	TopicPrefixEvents = TopicPrefix + "/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for Gatehouse MQTT topics.
//
//	topic := mqtt.Topics{}.AuthEvent("login")
//	// Returns: "gatehouse/events/auth/login"
type Topics struct{}

// AuthEvent returns the topic for one kind of account event.
//
// Example: gatehouse/events/auth/role_change
func (Topics) AuthEvent(kind string) string {
	return fmt.Sprintf("%s/auth/%s", TopicPrefixEvents, kind)
}

// AllAuthEvents returns a wildcard matching every account event.
//
// Example: gatehouse/events/auth/+
func (Topics) AllAuthEvents() string {
	return fmt.Sprintf("%s/auth/+", TopicPrefixEvents)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: gatehouse/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
