package mqtt

import (
	"time"

	"github.com/kilianp07/pilgrimcast/core/model"
)

// PredictionMessage is the JSON document published for every successful
// prediction.
type PredictionMessage struct {
	RequestID string                   `json:"request_id"`
	Timestamp int64                    `json:"timestamp"`
	Metadata  model.PredictionMetadata `json:"metadata"`
	model.ProcessedResult
}

// NewPredictionMessage builds the message for a processed result.
func NewPredictionMessage(id string, at time.Time, meta model.PredictionMetadata, res model.ProcessedResult) PredictionMessage {
	return PredictionMessage{RequestID: id, Timestamp: at.UnixMilli(), Metadata: meta, ProcessedResult: res}
}

// RequestMessage is a prediction request received over MQTT. Payload holds
// the same object accepted by POST /predict.
type RequestMessage struct {
	RequestID string         `json:"request_id"`
	Payload   map[string]any `json:"payload"`
}

// ResponseMessage answers a RequestMessage.
type ResponseMessage struct {
	RequestID string         `json:"request_id"`
	Response  model.Response `json:"response"`
}
