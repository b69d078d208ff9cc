package metrics

import "github.com/kilianp07/pilgrimcast/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort is the listen address of the /metrics server. Empty disables it.
	PrometheusPort string `json:"prometheus_port"`
}
