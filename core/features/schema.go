// Package features turns a raw request payload into the ordered numeric vector
// expected by the regression model.
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kilianp07/pilgrimcast/core/model"
)

// Schema is the ordered list of feature columns the model was trained on.
type Schema struct {
	columns []string
}

// NewSchema validates and copies the column list.
func NewSchema(columns []string) (Schema, error) {
	if len(columns) == 0 {
		return Schema{}, errors.New("feature schema is empty")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c == "" {
			return Schema{}, errors.New("feature schema contains an empty column name")
		}
		if _, dup := seen[c]; dup {
			return Schema{}, fmt.Errorf("duplicate feature column %s", c)
		}
		seen[c] = struct{}{}
	}
	return Schema{columns: slices.Clone(columns)}, nil
}

// Columns returns a copy of the column names in model order.
func (s Schema) Columns() []string { return slices.Clone(s.columns) }

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.columns) }

// Align builds the feature vector in schema order. Columns absent from the
// payload (or null) are filled with 0 and returned in missing; payload keys not
// in the schema are ignored. A value that cannot be read as a number yields an
// error wrapping model.ErrSchemaMismatch.
func (s Schema) Align(payload map[string]any) (vec []float64, missing []string, err error) {
	vec = make([]float64, len(s.columns))
	for i, col := range s.columns {
		v, ok := payload[col]
		if !ok || v == nil {
			missing = append(missing, col)
			continue
		}
		f, err := numeric(v)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: column %s: %v", model.ErrSchemaMismatch, col, err)
		}
		vec[i] = f
	}
	return vec, missing, nil
}

func numeric(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return t.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric value %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
