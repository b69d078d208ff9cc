// Package metrics defines the prediction event emitted for every request and
// the sinks that record it. Sinks like PromSink, InfluxSink and the MQTT
// publisher live in infra packages and register themselves by type name; the
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
