// Package artifacts loads the model-training outputs the prediction service
// depends on: the regression model, the ordered feature columns and the label
// encoders for categorical inputs.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kilianp07/pilgrimcast/core/factory"
	"github.com/kilianp07/pilgrimcast/core/features"
	"github.com/kilianp07/pilgrimcast/core/logger"
	"github.com/kilianp07/pilgrimcast/core/prediction"
)

// Config locates the artifacts. Model may be given inline or through
// ModelPath, a JSON file holding the same {type, conf} document.
type Config struct {
	Model          factory.ModuleConfig `json:"model"`
	ModelPath      string               `json:"model_path"`
	FeatureColumns string               `json:"feature_columns"`
	LabelEncoders  string               `json:"label_encoders"`
}

// Validate checks that a model and a feature schema are configured.
func (c Config) Validate() error {
	if c.Model.Type == "" && c.ModelPath == "" {
		return errors.New("artifacts: model or model_path is required")
	}
	if c.FeatureColumns == "" {
		return errors.New("artifacts: feature_columns is required")
	}
	return nil
}

// Artifacts are the immutable, startup-loaded inputs of the prediction service.
type Artifacts struct {
	Model    prediction.Regressor
	Schema   features.Schema
	Encoders features.Encoders
}

// Load reads every artifact. Model and schema failures are returned; an
// unreadable encoder file is logged and replaced by empty encoders.
func Load(cfg Config, log logger.Logger) (*Artifacts, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := LoadModel(cfg)
	if err != nil {
		return nil, err
	}
	schema, err := LoadSchema(cfg.FeatureColumns)
	if err != nil {
		return nil, err
	}
	enc := features.Encoders{}
	if cfg.LabelEncoders != "" {
		loaded, err := LoadEncoders(cfg.LabelEncoders)
		if err != nil {
			log.Warnf("label encoders unavailable, categorical columns will not be encoded: %v", err)
		} else {
			enc = loaded
		}
	}
	log.Infof("artifacts loaded: %d feature columns, %d encoders", schema.Len(), len(enc))
	return &Artifacts{Model: model, Schema: schema, Encoders: enc}, nil
}

// LoadModel instantiates the configured regressor.
func LoadModel(cfg Config) (prediction.Regressor, error) {
	mc := cfg.Model
	if cfg.ModelPath != "" {
		if err := readJSON(cfg.ModelPath, &mc); err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
	}
	m, err := prediction.NewRegressor(mc)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return m, nil
}

// LoadSchema reads a JSON array of feature column names.
func LoadSchema(path string) (features.Schema, error) {
	var cols []string
	if err := readJSON(path, &cols); err != nil {
		return features.Schema{}, fmt.Errorf("load feature columns: %w", err)
	}
	s, err := features.NewSchema(cols)
	if err != nil {
		return features.Schema{}, fmt.Errorf("load feature columns: %w", err)
	}
	return s, nil
}

// LoadEncoders reads a JSON object mapping column names to their class list.
func LoadEncoders(path string) (features.Encoders, error) {
	var classes map[string][]string
	if err := readJSON(path, &classes); err != nil {
		return nil, fmt.Errorf("load label encoders: %w", err)
	}
	return features.NewLabelEncoders(classes), nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
