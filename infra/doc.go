// Package infra groups the adapters behind the core interfaces: the zerolog
// logger, Prometheus and InfluxDB prediction sinks, the Paho MQTT client,
// file loaders for model artifacts and Sentry reporting. Nothing in core
// imports these packages; app wires them together at startup.
package infra
