package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pilgrimcast/core/model"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `server:
  address: ":8080"
  log_token: "secret"
artifacts:
  model_path: "models/model.json"
  feature_columns: "models/feature_columns.json"
  label_encoders: "models/label_encoders.json"
prediction:
  metadata_policy: "permissive"
rules:
  road_closure_cap: 400
  winter_months: [11, 12, 1]
metrics:
  prometheus_port: ":9100"
  sinks:
    - type: "prometheus"
mqtt:
  broker: "tcp://localhost:1883"
  request_topic: "pilgrimcast/requests"
audit:
  backend: "sqlite"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.address", cfg.Server.Address, ":8080"},
		{"server.log_token", cfg.Server.LogToken, "secret"},
		{"server.shutdown_timeout_ms", cfg.Server.ShutdownTimeoutMS, 5000},
		{"artifacts.model_path", cfg.Artifacts.ModelPath, "models/model.json"},
		{"prediction.metadata_policy", cfg.Prediction.MetadataPolicy, model.PolicyPermissive},
		{"prediction.spread", cfg.Prediction.Spread, 0.15},
		{"rules.road_closure_cap", cfg.Rules.RoadClosureCap, 400.0},
		{"rules.winter_closure_cap", cfg.Rules.WinterClosureCap, 150.0},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"metrics.sink", cfg.Metrics.Sinks[0].Type, "prometheus"},
		{"mqtt.topic", cfg.MQTT.Topic, "pilgrimcast/predictions"},
		{"mqtt.response_topic", cfg.MQTT.ResponseTopic, "pilgrimcast/requests/response"},
		{"audit.path", cfg.Audit.Path, "predictions.db"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	assert.Equal(t, []int{11, 12, 1}, cfg.Rules.WinterMonths)
}

func TestLoad_JSONAndEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "artifacts": {"model": {"type": "constant", "conf": {"value": 1200}}, "feature_columns": "cols.json"},
  "audit": {"backend": "none"}
}`)
	t.Setenv("K_SERVER__ADDRESS", ":9999")
	t.Setenv("K_PREDICTION__METADATA_POLICY", "strict")
	t.Setenv("APP_ENV", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, model.PolicyStrict, cfg.Prediction.MetadataPolicy)
	assert.Equal(t, "constant", cfg.Artifacts.Model.Type)
	assert.Equal(t, "production", cfg.Sentry.Environment)
	assert.False(t, cfg.MQTT.Enabled())
	assert.Empty(t, cfg.MQTT.Topic)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"no model": `artifacts:
  feature_columns: "cols.json"
`,
		"bad policy": `artifacts:
  model_path: "m.json"
  feature_columns: "cols.json"
prediction:
  metadata_policy: "lenient"
`,
		"bad spread": `artifacts:
  model_path: "m.json"
  feature_columns: "cols.json"
prediction:
  spread: 1.5
`,
		"bad rules": `artifacts:
  model_path: "m.json"
  feature_columns: "cols.json"
rules:
  extreme_weather_factor: 2
`,
		"bad sentry": `artifacts:
  model_path: "m.json"
  feature_columns: "cols.json"
sentry:
  traces_sample_rate: 2
`,
		"bad audit": `artifacts:
  model_path: "m.json"
  feature_columns: "cols.json"
audit:
  backend: "mongo"
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yml", data))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
