package config

import (
	"fmt"

	"github.com/kilianp07/pilgrimcast/core/model"
	"github.com/kilianp07/pilgrimcast/core/prediction"
)

// PredictionConfig tunes request handling around the model.
type PredictionConfig struct {
	// MetadataPolicy is "strict" (reject malformed metadata) or "permissive"
	// (replace malformed fields with their defaults).
	MetadataPolicy model.MetadataPolicy `json:"metadata_policy"`
	// Spread is the relative half-width of the confidence interval.
	Spread float64 `json:"spread"`
}

// SetDefaults applies sane defaults.
func (c *PredictionConfig) SetDefaults() {
	if c.MetadataPolicy == "" {
		c.MetadataPolicy = model.PolicyStrict
	}
	if c.Spread == 0 {
		c.Spread = prediction.DefaultSpread
	}
}

// Validate checks the policy and spread.
func (c PredictionConfig) Validate() error {
	if !c.MetadataPolicy.Valid() {
		return fmt.Errorf("unknown metadata_policy %q", c.MetadataPolicy)
	}
	if c.Spread <= 0 || c.Spread >= 1 {
		return fmt.Errorf("spread must be in (0,1)")
	}
	return nil
}
