package features

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// EncodedSuffix is appended to a categorical column name to form the name of
// its encoded feature.
const EncodedSuffix = "_encoded"

// EncodeFunc maps a category to its integer code. ok is false for unknown
// categories.
type EncodeFunc func(category string) (code int, ok bool)

// Encoders maps a categorical column name to its encoder.
type Encoders map[string]EncodeFunc

// LabelEncoder returns an EncodeFunc assigning each class its index in classes.
// classes is expected in the order produced at training time (sorted).
func LabelEncoder(classes []string) EncodeFunc {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return func(category string) (int, bool) {
		code, ok := idx[category]
		return code, ok
	}
}

// NewLabelEncoders builds Encoders from column -> classes.
func NewLabelEncoders(classes map[string][]string) Encoders {
	enc := make(Encoders, len(classes))
	for col, cl := range classes {
		enc[col] = LabelEncoder(cl)
	}
	return enc
}

// Enrich returns a copy of payload with "<column>_encoded" entries for every
// column that has an encoder, is present, and holds a known category. Other
// columns are left untouched.
func (e Encoders) Enrich(payload map[string]any) map[string]any {
	out := maps.Clone(payload)
	if out == nil {
		out = map[string]any{}
	}
	for col, encode := range e {
		v, ok := payload[col]
		if !ok || v == nil {
			continue
		}
		code, ok := encode(category(v))
		if !ok {
			continue
		}
		out[col+EncodedSuffix] = code
	}
	return out
}

func category(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
