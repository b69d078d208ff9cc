package scenarios

import (
	"context"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/pilgrimcast/core/features"
	coremetrics "github.com/kilianp07/pilgrimcast/core/metrics"
	"github.com/kilianp07/pilgrimcast/core/model"
	"github.com/kilianp07/pilgrimcast/core/prediction"
	"github.com/kilianp07/pilgrimcast/infra/logger"
	"github.com/kilianp07/pilgrimcast/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sinkIf, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	sink, ok := sinkIf.(*metrics.PromSink)
	if !ok {
		t.Fatalf("expected *metrics.PromSink, got %T", sinkIf)
	}

	var raw float64
	schema, err := features.NewSchema(sc.Columns)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	svc, err := prediction.NewService(prediction.Options{
		Model: prediction.RegressorFunc(func(context.Context, []float64) (float64, error) {
			return raw, nil
		}),
		Schema:   schema,
		Encoders: features.NewLabelEncoders(sc.Encoders),
		Policy:   model.MetadataPolicy(sc.Policy),
		Sink:     sink,
		Logger:   logger.NopLogger{},
	})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	failures := 0
	for _, req := range sc.Requests {
		raw = req.Raw
		resp := svc.Predict(context.Background(), req.Payload)
		if !check(t, req, resp) {
			failures++
		}
	}
	if failures > 0 {
		t.Errorf("scenario %s: %d of %d requests diverged", sc.Name, failures, len(sc.Requests))
	}
	got, err := testutil.GatherAndCount(reg, "prediction_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got == 0 && len(sc.Requests) > 0 {
		t.Errorf("scenario %s recorded no prediction metrics", sc.Name)
	}
}

func check(t *testing.T, req RequestDef, resp model.Response) bool {
	t.Helper()
	want := req.Expected
	if want.Status == "" {
		want.Status = model.StatusSuccess
	}
	ok := true
	fail := func(format string, args ...any) {
		t.Errorf("%s: "+format, append([]any{req.Name}, args...)...)
		ok = false
	}
	if resp.Status != want.Status {
		fail("status %s, want %s (error %q)", resp.Status, want.Status, resp.Error)
		return false
	}
	if want.Status == model.StatusError {
		if resp.Message != model.FailureMessage || resp.Error == "" {
			fail("error envelope %+v", resp)
		}
		return ok
	}
	if want.PredictedVisitors != 0 && resp.PredictedVisitors != want.PredictedVisitors {
		fail("predicted_visitors %d, want %d", resp.PredictedVisitors, want.PredictedVisitors)
	}
	if want.CrowdLevel != "" && resp.CrowdLevel.String() != want.CrowdLevel {
		fail("crowd_level %s, want %s", resp.CrowdLevel, want.CrowdLevel)
	}
	if want.RulesApplied != nil && !slices.Equal(resp.RulesApplied, want.RulesApplied) {
		fail("rules_applied %v, want %v", resp.RulesApplied, want.RulesApplied)
	}
	if want.Lower != 0 && resp.ConfidenceInterval.Lower != want.Lower {
		fail("lower %d, want %d", resp.ConfidenceInterval.Lower, want.Lower)
	}
	if want.Upper != 0 && resp.ConfidenceInterval.Upper != want.Upper {
		fail("upper %d, want %d", resp.ConfidenceInterval.Upper, want.Upper)
	}
	return ok
}
