package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncoders_Enrich(t *testing.T) {
	enc := NewLabelEncoders(map[string][]string{
		"weather_condition": {"Clear", "Cloudy", "Heavy Rain", "Rainy", "Snowy"},
		"road_condition":    {"Closed", "Fair", "Good", "Poor"},
		"yatra_phase":       {"Early", "Late", "Peak"},
	})
	in := map[string]any{
		"weather_condition": "Heavy Rain",
		"road_condition":    "Flooded",
		"month":             6,
	}
	out := enc.Enrich(in)
	assert.Equal(t, 2, out["weather_condition_encoded"])
	_, ok := out["road_condition_encoded"]
	assert.False(t, ok, "unknown category must be skipped")
	_, ok = out["yatra_phase_encoded"]
	assert.False(t, ok, "absent column must be skipped")
	_, ok = in["weather_condition_encoded"]
	assert.False(t, ok, "input payload must not be mutated")
	assert.Equal(t, 6, out["month"])
}

func TestEncoders_NilPayload(t *testing.T) {
	var enc Encoders
	out := enc.Enrich(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestLabelEncoder_NumericCategory(t *testing.T) {
	enc := Encoders{"zone": LabelEncoder([]string{"1", "2.5"})}
	out := enc.Enrich(map[string]any{"zone": 2.5})
	assert.Equal(t, 1, out["zone_encoded"])
}
