package model

import (
	"encoding/json"
	"fmt"
)

// CrowdLevel is the coarse bucket shown to pilgrims.
type CrowdLevel int

const (
	CrowdLow CrowdLevel = iota
	CrowdMedium
	CrowdHigh
	CrowdVeryHigh
)

// String returns the display label of the crowd level.
func (c CrowdLevel) String() string {
	switch c {
	case CrowdLow:
		return "Low"
	case CrowdMedium:
		return "Medium"
	case CrowdHigh:
		return "High"
	case CrowdVeryHigh:
		return "Very High"
	default:
		return "unknown"
	}
}

// ParseCrowdLevel converts a label back to a CrowdLevel. Both "Very High" and
// "VeryHigh" are accepted.
func ParseCrowdLevel(s string) (CrowdLevel, bool) {
	switch s {
	case "Low":
		return CrowdLow, true
	case "Medium":
		return CrowdMedium, true
	case "High":
		return CrowdHigh, true
	case "Very High", "VeryHigh":
		return CrowdVeryHigh, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes the level as its display label.
func (c CrowdLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a display label.
func (c *CrowdLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := ParseCrowdLevel(s)
	if !ok {
		return fmt.Errorf("unknown crowd level %q", s)
	}
	*c = v
	return nil
}

// ConfidenceInterval is a fixed-fraction band around the final prediction.
// It is a display heuristic, not a calibrated statistical interval.
type ConfidenceInterval struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

// ProcessedResult is the post-processed prediction for one request.
type ProcessedResult struct {
	PredictedVisitors  int                `json:"predicted_visitors"`
	RawPrediction      int                `json:"raw_prediction"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	CrowdLevel         CrowdLevel         `json:"crowd_level"`
	RulesApplied       []string           `json:"rules_applied"`
}
