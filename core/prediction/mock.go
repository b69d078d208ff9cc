package prediction

import (
	"context"
	"slices"
	"sync"
)

// MockRegressor returns a configured value or error and records the vectors it
// was called with.
type MockRegressor struct {
	Value float64
	Err   error

	mu    sync.Mutex
	calls [][]float64
}

// Predict returns Value or Err.
func (m *MockRegressor) Predict(_ context.Context, features []float64) (float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, slices.Clone(features))
	m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Value, nil
}

// Calls returns the feature vectors received so far.
func (m *MockRegressor) Calls() [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float64, len(m.calls))
	for i, c := range m.calls {
		out[i] = slices.Clone(c)
	}
	return out
}
