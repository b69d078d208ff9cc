package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Expected is the envelope a request must produce. Zero fields are not checked
// except Status, which defaults to "success".
type Expected struct {
	Status            string   `yaml:"status"`
	PredictedVisitors int      `yaml:"predicted_visitors"`
	CrowdLevel        string   `yaml:"crowd_level"`
	RulesApplied      []string `yaml:"rules_applied"`
	Lower             int      `yaml:"lower"`
	Upper             int      `yaml:"upper"`
}

type RequestDef struct {
	Name     string         `yaml:"name"`
	Raw      float64        `yaml:"raw"`
	Payload  map[string]any `yaml:"payload"`
	Expected Expected       `yaml:"expected"`
}

type Scenario struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Policy      string              `yaml:"metadata_policy,omitempty"`
	Columns     []string            `yaml:"feature_columns"`
	Encoders    map[string][]string `yaml:"label_encoders,omitempty"`
	Requests    []RequestDef        `yaml:"requests"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
