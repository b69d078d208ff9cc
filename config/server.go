package config

import (
	"fmt"
	"time"
)

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Address string `json:"address"`
	// LogToken protects GET /api/predictions/logs when set.
	LogToken          string `json:"log_token"`
	ReadTimeoutMS     int    `json:"read_timeout_ms"`
	WriteTimeoutMS    int    `json:"write_timeout_ms"`
	ShutdownTimeoutMS int    `json:"shutdown_timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":5000"
	}
	if c.ReadTimeoutMS == 0 {
		c.ReadTimeoutMS = 10000
	}
	if c.WriteTimeoutMS == 0 {
		c.WriteTimeoutMS = 10000
	}
	if c.ShutdownTimeoutMS == 0 {
		c.ShutdownTimeoutMS = 5000
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.ReadTimeoutMS < 0 || c.WriteTimeoutMS < 0 || c.ShutdownTimeoutMS < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
