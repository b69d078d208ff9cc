package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestCrowdLevelJSON(t *testing.T) {
	b, err := json.Marshal(CrowdVeryHigh)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"Very High"` {
		t.Fatalf("unexpected label %s", b)
	}
	var c CrowdLevel
	if err := json.Unmarshal([]byte(`"VeryHigh"`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c != CrowdVeryHigh {
		t.Fatalf("expected very high got %v", c)
	}
	if err := json.Unmarshal([]byte(`"Packed"`), &c); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestResponseSuccessShape(t *testing.T) {
	res := Success(ProcessedResult{
		PredictedVisitors:  150,
		RawPrediction:      5000,
		ConfidenceInterval: ConfidenceInterval{Lower: 127, Upper: 172},
		CrowdLevel:         CrowdLow,
	})
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["status"] != "success" || out["crowd_level"] != "Low" {
		t.Fatalf("unexpected body %s", b)
	}
	if rules, ok := out["rules_applied"].([]any); !ok || len(rules) != 0 {
		t.Fatalf("rules_applied should be an empty list: %s", b)
	}
	if _, ok := out["error"]; ok {
		t.Fatalf("success must not carry error: %s", b)
	}
}

func TestResponseFailureShape(t *testing.T) {
	res := Failure(errors.New("boom"))
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"status":"error"`) || !strings.Contains(s, `"error":"boom"`) || !strings.Contains(s, `"message":"Prediction failed"`) {
		t.Fatalf("unexpected body %s", s)
	}
	if strings.Contains(s, "predicted_visitors") {
		t.Fatalf("error must not carry a result: %s", s)
	}
	if res.OK() {
		t.Fatal("failure reported ok")
	}
}
