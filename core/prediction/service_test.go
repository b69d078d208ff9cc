package prediction

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pilgrimcast/core/features"
	"github.com/kilianp07/pilgrimcast/core/metrics"
	"github.com/kilianp07/pilgrimcast/core/model"
	"github.com/kilianp07/pilgrimcast/core/monitoring"
	"github.com/kilianp07/pilgrimcast/core/rules"
)

type captureSink struct {
	mu     sync.Mutex
	events []metrics.PredictionEvent
}

func (c *captureSink) RecordPrediction(ev metrics.PredictionEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) last(t *testing.T) metrics.PredictionEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.events)
	return c.events[len(c.events)-1]
}

type capturePublisher struct{ events []metrics.PredictionEvent }

func (c *capturePublisher) Publish(ev metrics.PredictionEvent) { c.events = append(c.events, ev) }

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func newTestService(t *testing.T, reg Regressor, policy model.MetadataPolicy) (*Service, *captureSink, *capturePublisher) {
	t.Helper()
	schema, err := features.NewSchema([]string{"month", "yatra_season", "humidity", "weather_condition_encoded"})
	require.NoError(t, err)
	sink := &captureSink{}
	pub := &capturePublisher{}
	svc, err := NewService(Options{
		Model:    reg,
		Schema:   schema,
		Encoders: features.NewLabelEncoders(map[string][]string{"weather_condition": {"Clear", "Rainy", "Snowy"}}),
		Policy:   policy,
		Sink:     sink,
		Events:   pub,
	})
	require.NoError(t, err)
	return svc, sink, pub
}

func TestService_RoadClosedScenario(t *testing.T) {
	reg := &MockRegressor{Value: 10000}
	svc, sink, pub := newTestService(t, reg, model.PolicyStrict)
	resp := svc.Predict(context.Background(), map[string]any{
		"yatra_season":   1.0,
		"road_condition": "Closed",
		"month":          6.0,
		"humidity":       70.0,
	})
	require.True(t, resp.OK(), "unexpected response %+v", resp)
	assert.Equal(t, 500, resp.PredictedVisitors)
	assert.Equal(t, 10000, resp.RawPrediction)
	assert.Equal(t, []string{rules.RoadClosureCap, rules.MinimumVisitorsFloor}, resp.RulesApplied)
	assert.Equal(t, model.CrowdLow, resp.CrowdLevel)
	assert.Equal(t, model.ConfidenceInterval{Lower: 425, Upper: Interval(500, DefaultSpread).Upper}, resp.ConfidenceInterval)

	ev := sink.last(t)
	assert.Equal(t, model.StatusSuccess, ev.Status)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 10000.0, ev.RawValue)
	require.Len(t, pub.events, 1)
	assert.Equal(t, ev.ID, pub.events[0].ID)
}

func TestService_SchemaAlignmentFillsZero(t *testing.T) {
	reg := &MockRegressor{Value: 3000}
	svc, sink, _ := newTestService(t, reg, model.PolicyStrict)
	resp := svc.Predict(context.Background(), map[string]any{
		"weather_condition": "Snowy",
		"templeId":          "kedarnath",
	})
	require.True(t, resp.OK(), "unexpected response %+v", resp)
	calls := reg.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []float64{0, 0, 0, 2}, calls[0])
	assert.Equal(t, []string{"month", "yatra_season", "humidity"}, sink.last(t).MissingColumns)
	// 3000 * 0.6 -> 1800, then open-season floor
	assert.Equal(t, 1800, resp.PredictedVisitors)
	assert.Equal(t, []string{rules.SevereWeatherReduction, rules.MinimumVisitorsFloor}, resp.RulesApplied)
}

func TestService_StrictRejectsMalformedMetadata(t *testing.T) {
	reg := &MockRegressor{Value: 3000}
	svc, sink, _ := newTestService(t, reg, model.PolicyStrict)
	resp := svc.Predict(context.Background(), map[string]any{"month": 6.0, "yatra_season": 0.0, "road_condition": "Muddy"})
	assert.False(t, resp.OK())
	assert.Equal(t, model.StatusError, resp.Status)
	assert.Equal(t, model.FailureMessage, resp.Message)
	assert.Contains(t, resp.Error, "road_condition")
	assert.Empty(t, reg.Calls())
	assert.Equal(t, model.KindInvalidInput, sink.last(t).ErrorKind)
}

func TestService_PermissiveDefaultsMalformedMetadata(t *testing.T) {
	reg := &MockRegressor{Value: 3000}
	svc, _, _ := newTestService(t, reg, model.PolicyPermissive)
	resp := svc.Predict(context.Background(), map[string]any{"yatra_season": 0.0, "month": "Jan"})
	require.True(t, resp.OK())
	// month falls back to 6, so the regular closure cap applies
	assert.Equal(t, 300, resp.PredictedVisitors)
	assert.Equal(t, []string{rules.RegularClosureCap}, resp.RulesApplied)
}

func TestService_NonNumericFeature(t *testing.T) {
	reg := &MockRegressor{Value: 3000}
	svc, sink, _ := newTestService(t, reg, model.PolicyStrict)
	resp := svc.Predict(context.Background(), map[string]any{"humidity": "very"})
	assert.False(t, resp.OK())
	assert.Contains(t, resp.Error, "humidity")
	assert.Equal(t, model.KindSchemaMismatch, sink.last(t).ErrorKind)
}

func TestService_ModelFailure(t *testing.T) {
	mon := &recordMonitor{}
	monitoring.Init(mon)
	defer monitoring.Init(monitoring.NopMonitor{})

	reg := &MockRegressor{Err: errors.New("model unavailable")}
	svc, sink, _ := newTestService(t, reg, model.PolicyStrict)
	resp := svc.Predict(context.Background(), map[string]any{"month": 6.0})
	assert.False(t, resp.OK())
	assert.Contains(t, resp.Error, "model unavailable")
	ev := sink.last(t)
	assert.Equal(t, model.KindModelInvocation, ev.ErrorKind)
	require.Error(t, mon.err)
	assert.True(t, errors.Is(mon.err, model.ErrModelInvocation))
	assert.Equal(t, ev.ID, mon.tags["request_id"])
}

func TestService_NonFinitePrediction(t *testing.T) {
	svc, sink, _ := newTestService(t, &MockRegressor{Value: math.Inf(1)}, model.PolicyStrict)
	resp := svc.Predict(context.Background(), map[string]any{})
	assert.False(t, resp.OK())
	assert.Equal(t, model.KindModelInvocation, sink.last(t).ErrorKind)
}

func TestService_OutOfRangePrediction(t *testing.T) {
	for _, raw := range []float64{1e19, -1e19, 1e16} {
		svc, sink, _ := newTestService(t, &MockRegressor{Value: raw}, model.PolicyStrict)
		resp := svc.Predict(context.Background(), map[string]any{})
		assert.False(t, resp.OK(), "raw %v", raw)
		assert.Contains(t, resp.Error, "out of range")
		assert.Equal(t, model.KindModelInvocation, sink.last(t).ErrorKind)
	}

	svc, _, _ := newTestService(t, &MockRegressor{Value: 1e15}, model.PolicyStrict)
	resp := svc.Predict(context.Background(), map[string]any{})
	require.True(t, resp.OK())
	assert.Equal(t, 1000000000000000, resp.PredictedVisitors)
	assert.Equal(t, model.CrowdVeryHigh, resp.CrowdLevel)
}

func TestService_PanicIsContained(t *testing.T) {
	reg := RegressorFunc(func(context.Context, []float64) (float64, error) { panic("corrupt model") })
	svc, sink, _ := newTestService(t, reg, model.PolicyStrict)
	var resp model.Response
	assert.NotPanics(t, func() { resp = svc.Predict(context.Background(), map[string]any{}) })
	assert.False(t, resp.OK())
	assert.Contains(t, resp.Error, "corrupt model")
	assert.Equal(t, model.KindInternal, sink.last(t).ErrorKind)
}

func TestNewService_Validation(t *testing.T) {
	schema, err := features.NewSchema([]string{"a"})
	require.NoError(t, err)
	_, err = NewService(Options{Schema: schema})
	assert.Error(t, err)
	_, err = NewService(Options{Model: &MockRegressor{}})
	assert.Error(t, err)
	_, err = NewService(Options{Model: &MockRegressor{}, Schema: schema, Policy: "lenient"})
	assert.Error(t, err)
	svc, err := NewService(Options{Model: &MockRegressor{Value: 10}, Schema: schema})
	require.NoError(t, err)
	resp := svc.Predict(context.Background(), nil)
	require.True(t, resp.OK())
	assert.Equal(t, 100, resp.PredictedVisitors)
}
