// Package audit persists one record per prediction request so operators can
// review what the service answered and which rules shaped the answer.
package audit

import (
	"context"
	"slices"
	"time"

	"github.com/kilianp07/pilgrimcast/core/metrics"
	"github.com/kilianp07/pilgrimcast/core/model"
)

// Record captures one prediction request and its outcome.
type Record struct {
	ID             string                   `json:"id"`
	Timestamp      time.Time                `json:"timestamp"`
	Status         string                   `json:"status"`
	Metadata       model.PredictionMetadata `json:"metadata"`
	RawValue       float64                  `json:"raw_value"`
	Result         *model.ProcessedResult   `json:"result,omitempty"`
	ErrorKind      string                   `json:"error_kind,omitempty"`
	Error          string                   `json:"error,omitempty"`
	MissingColumns []string                 `json:"missing_columns,omitempty"`
	LatencyMS      float64                  `json:"latency_ms"`
	Input          map[string]any           `json:"input,omitempty"`
}

// NewRecord converts a prediction event into its audit record.
func NewRecord(ev metrics.PredictionEvent) Record {
	return Record{
		ID:             ev.ID,
		Timestamp:      ev.Time,
		Status:         ev.Status,
		Metadata:       ev.Metadata,
		RawValue:       ev.RawValue,
		Result:         ev.Result,
		ErrorKind:      ev.ErrorKind,
		Error:          ev.Error,
		MissingColumns: ev.MissingColumns,
		LatencyMS:      float64(ev.Latency.Microseconds()) / 1000,
		Input:          ev.Input,
	}
}

// crowdLevel returns the label of the result, or "" for failed requests.
func (r Record) crowdLevel() string {
	if r.Result == nil {
		return ""
	}
	return r.Result.CrowdLevel.String()
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start time.Time
	End   time.Time
	// Status is model.StatusSuccess or model.StatusError.
	Status string
	// CrowdLevel is a display label such as "Very High".
	CrowdLevel string
	// Rule matches records whose result applied the named rule.
	Rule string
	// Limit caps the number of records returned, oldest first.
	Limit int
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.CrowdLevel != "" && r.crowdLevel() != q.CrowdLevel {
		return false
	}
	if q.Rule != "" && (r.Result == nil || !slices.Contains(r.Result.RulesApplied, q.Rule)) {
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[:q.Limit]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
