package mqtt

import "errors"

var (
	// ErrPublishTimeout is returned when the broker does not confirm a publish in time.
	ErrPublishTimeout = errors.New("timeout waiting for publish confirmation")
	// ErrNotConnected is returned when publishing on a closed client.
	ErrNotConnected = errors.New("mqtt client not connected")
)
