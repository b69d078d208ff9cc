package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// MetadataPolicy controls how malformed metadata fields are handled.
type MetadataPolicy string

const (
	// PolicyStrict rejects requests with malformed metadata fields.
	PolicyStrict MetadataPolicy = "strict"
	// PolicyPermissive replaces malformed fields with their defaults.
	PolicyPermissive MetadataPolicy = "permissive"
)

// Valid reports whether p is a known policy.
func (p MetadataPolicy) Valid() bool {
	return p == PolicyStrict || p == PolicyPermissive
}

// ParseMetadata extracts PredictionMetadata from a raw request payload.
// Absent or null fields take the DefaultMetadata values. Malformed fields are
// also replaced by their defaults and reported in the returned error, which
// wraps ErrInvalidInput; the caller decides whether to reject the request.
func ParseMetadata(payload map[string]any) (PredictionMetadata, error) {
	meta := DefaultMetadata()
	var errs []error

	if v, ok := present(payload, KeyYatraSeason); ok {
		if n, err := flagValue(v); err != nil {
			errs = append(errs, fieldError(KeyYatraSeason, err))
		} else {
			meta.YatraSeason = n
		}
	}
	if v, ok := present(payload, KeyExtremeWeather); ok {
		if n, err := flagValue(v); err != nil {
			errs = append(errs, fieldError(KeyExtremeWeather, err))
		} else {
			meta.ExtremeWeather = n
		}
	}
	if v, ok := present(payload, KeyMonth); ok {
		n, err := intValue(v)
		if err == nil && (n < 1 || n > 12) {
			err = fmt.Errorf("month %d out of range 1-12", n)
		}
		if err != nil {
			errs = append(errs, fieldError(KeyMonth, err))
		} else {
			meta.Month = n
		}
	}
	if v, ok := present(payload, KeyTempleOpenStatus); ok {
		s, err := stringValue(v)
		if err == nil && !TempleStatus(s).Valid() {
			err = fmt.Errorf("unknown temple status %q", s)
		}
		if err != nil {
			errs = append(errs, fieldError(KeyTempleOpenStatus, err))
		} else {
			meta.TempleOpenStatus = TempleStatus(s)
		}
	}
	if v, ok := present(payload, KeyRoadCondition); ok {
		s, err := stringValue(v)
		if err == nil && !RoadCondition(s).Valid() {
			err = fmt.Errorf("unknown road condition %q", s)
		}
		if err != nil {
			errs = append(errs, fieldError(KeyRoadCondition, err))
		} else {
			meta.RoadCondition = RoadCondition(s)
		}
	}
	if v, ok := present(payload, KeyWeatherCondition); ok {
		s, err := stringValue(v)
		if err == nil && strings.TrimSpace(s) == "" {
			err = errors.New("empty weather condition")
		}
		if err != nil {
			errs = append(errs, fieldError(KeyWeatherCondition, err))
		} else {
			meta.WeatherCondition = WeatherCondition(s)
		}
	}

	if len(errs) > 0 {
		return meta, fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return meta, nil
}

func present(payload map[string]any, key string) (any, bool) {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func fieldError(key string, err error) error {
	return fmt.Errorf("%s: %w", key, err)
}

func flagValue(v any) (int, error) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	n, err := intValue(v)
	if err != nil {
		return 0, err
	}
	if n != 0 && n != 1 {
		return 0, fmt.Errorf("expected 0 or 1, got %d", n)
	}
	return n, nil
}

func intValue(v any) (int, error) {
	var f float64
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float32:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), nil
		}
		x, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t.String())
		}
		f = x
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int(f), nil
}

func stringValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}
