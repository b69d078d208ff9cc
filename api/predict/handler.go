package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kilianp07/pilgrimcast/core/model"
)

// maxBodyBytes bounds the size of a prediction request body.
const maxBodyBytes = 1 << 20

// Predictor runs one prediction request.
type Predictor interface {
	Predict(ctx context.Context, payload map[string]any) model.Response
}

// Info is returned by GET /.
type Info struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Model   string `json:"model"`
}

// NewPredictHandler returns the POST /predict handler. Malformed JSON bodies
// are answered with 400 and the error envelope; every outcome of the
// predictor is answered with 200.
func NewPredictHandler(p Predictor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		payload, err := decodePayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.Failure(fmt.Errorf("%w: %v", model.ErrInvalidInput, err)))
			return
		}
		writeJSON(w, http.StatusOK, p.Predict(r.Context(), payload))
	})
}

// decodePayload reads a single JSON object. Numbers are decoded as
// json.Number so integer features keep their exact value.
func decodePayload(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("request body must be a JSON object")
	}
	if dec.More() {
		return nil, fmt.Errorf("request body must contain a single JSON object")
	}
	return payload, nil
}

// NewRouter mounts the prediction endpoints on a new ServeMux.
func NewRouter(p Predictor, info Info) *http.ServeMux {
	mux := http.NewServeMux()
	h := NewPredictHandler(p)
	mux.Handle("/predict", h)
	mux.Handle("/predict/", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, info)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
