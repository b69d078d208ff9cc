package model

import "errors"

var (
	// ErrInvalidInput is returned for malformed or type-mismatched metadata.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSchemaMismatch is returned when a feature column cannot be read as a number.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrModelInvocation is returned when the regression model fails or yields a non-finite value.
	ErrModelInvocation = errors.New("model invocation failed")
)

// Error kinds reported in metrics and audit records.
const (
	KindInvalidInput    = "invalid_input"
	KindSchemaMismatch  = "schema_mismatch"
	KindModelInvocation = "model_invocation"
	KindInternal        = "internal"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrModelInvocation):
		return KindModelInvocation
	default:
		return KindInternal
	}
}
