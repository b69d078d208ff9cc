package metrics

import (
	"time"

	"github.com/kilianp07/pilgrimcast/core/model"
)

// PredictionEvent describes the outcome of one prediction request.
type PredictionEvent struct {
	ID       string
	Time     time.Time
	Status   string
	Metadata model.PredictionMetadata
	// RawValue is the untruncated model output; zero when the model was not reached.
	RawValue float64
	Result   *model.ProcessedResult
	// ErrorKind classifies failures, see model.ErrorKind.
	ErrorKind      string
	Error          string
	MissingColumns []string
	Latency        time.Duration
	Input          map[string]any
}

// OK reports whether the prediction succeeded.
func (e PredictionEvent) OK() bool { return e.Status == model.StatusSuccess && e.Result != nil }

// MetricsSink records prediction events for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }
