package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"

	coremetrics "github.com/kilianp07/pilgrimcast/core/metrics"
	coremqtt "github.com/kilianp07/pilgrimcast/core/mqtt"
	"github.com/kilianp07/pilgrimcast/infra/logger"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// PredictionSink publishes every successful prediction as a JSON message.
// Failed requests are not published.
type PredictionSink struct {
	pub   Publisher
	topic string
	log   logger.Logger
}

// NewPredictionSink returns a sink publishing to topic through pub.
func NewPredictionSink(pub Publisher, topic string) *PredictionSink {
	return &PredictionSink{pub: pub, topic: topic, log: logger.New("mqtt_sink")}
}

// RecordPrediction implements metrics.MetricsSink.
func (s *PredictionSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	if !ev.OK() {
		return nil
	}
	msg := coremqtt.NewPredictionMessage(ev.ID, ev.Time, ev.Metadata, *ev.Result)
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := s.pub.Publish(s.topic, payload); err != nil {
		return fmt.Errorf("publish prediction %s: %w", ev.ID, err)
	}
	return nil
}

// MockPublisher records published payloads per topic. It is used in tests.
type MockPublisher struct {
	Messages map[string][][]byte
	FailAll  bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][][]byte)}
}

// Publish records the payload or returns an error if configured to fail.
func (m *MockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return fmt.Errorf("publish failed")
	}
	m.Messages[topic] = append(m.Messages[topic], payload)
	return nil
}

// Count returns the number of payloads published on topic.
func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages[topic])
}
