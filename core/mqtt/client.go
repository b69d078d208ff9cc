package mqtt

// Publisher sends a payload to an MQTT topic. Implementations retry
// transient failures on their own.
type Publisher interface {
	Publish(topic string, payload []byte) error
}
