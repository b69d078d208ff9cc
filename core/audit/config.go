package audit

import (
	"context"
	"fmt"
)

// Backends supported by NewStore.
const (
	BackendNone     = "none"
	BackendJSONL    = "jsonl"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config defines settings for audit storage and rotation.
type Config struct {
	// Backend selects the store type: "none", "jsonl", "sqlite" or "postgres".
	Backend string `json:"backend"`
	// Path is the file location of the jsonl and sqlite stores.
	Path string `json:"path"`
	// DSN is the postgres connection string.
	DSN string `json:"dsn"`
	// MaxSizeMB enables rotation of the jsonl store when positive.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
	// Buffer is the number of events queued for the recorder before new ones
	// are dropped.
	Buffer int `json:"buffer"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendJSONL
	}
	if c.Buffer <= 0 {
		c.Buffer = 256
	}
	if c.Path == "" {
		switch c.Backend {
		case BackendJSONL:
			c.Path = "predictions.jsonl"
		case BackendSQLite:
			c.Path = "predictions.db"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone:
	case BackendJSONL, BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("audit: path is required for %s", c.Backend)
		}
	case BackendPostgres:
		if c.DSN == "" {
			return fmt.Errorf("audit: dsn is required for postgres")
		}
	default:
		return fmt.Errorf("audit: unknown backend %s", c.Backend)
	}
	return nil
}

// NewStore opens the store selected by cfg. The "none" backend returns a nil
// store and no error.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendJSONL:
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, nil
	}
}
