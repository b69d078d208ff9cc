package regressor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kilianp07/pilgrimcast/auth"
)

// BreakerConfig tunes the circuit breaker guarding a remote model.
type BreakerConfig struct {
	MaxFailures int `json:"max_failures"`
	OpenMS      int `json:"open_ms"`
	IntervalMS  int `json:"interval_ms"`
}

// RemoteConfig points at a model server exposing POST {"features": [...]}.
type RemoteConfig struct {
	URL       string        `json:"url"`
	TimeoutMS int           `json:"timeout_ms"`
	Breaker   BreakerConfig `json:"breaker"`
	OAuth     auth.Conf     `json:"oauth"`
}

// SetDefaults fills unset timeouts and breaker thresholds.
func (c *RemoteConfig) SetDefaults() {
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 2000
	}
	if c.Breaker.MaxFailures <= 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.OpenMS <= 0 {
		c.Breaker.OpenMS = 30000
	}
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	Prediction  *float64  `json:"prediction"`
	Predictions []float64 `json:"predictions"`
}

// Remote calls a model server. Requests are not retried: a failed call fails
// the prediction and counts towards opening the breaker.
type Remote struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	cred   *auth.ClientCred
}

// NewRemote builds a Remote regressor from cfg.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.URL == "" {
		return nil, errors.New("remote model url is required")
	}
	cfg.SetDefaults()
	r := &Remote{
		url:    cfg.URL,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		cb:     newBreaker(cfg.URL, cfg.Breaker),
	}
	if cfg.OAuth.Enabled() {
		r.cred = auth.NewClientCred(cfg.OAuth)
	}
	return r, nil
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	fails := uint32(cfg.MaxFailures)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: time.Duration(cfg.IntervalMS) * time.Millisecond,
		Timeout:  time.Duration(cfg.OpenMS) * time.Millisecond,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
	})
}

// Predict implements prediction.Regressor.
func (r *Remote) Predict(ctx context.Context, features []float64) (float64, error) {
	res, err := r.cb.Execute(func() (any, error) {
		return r.call(ctx, features)
	})
	if err != nil {
		return 0, fmt.Errorf("remote model %s: %w", r.url, err)
	}
	return res.(float64), nil
}

func (r *Remote) call(ctx context.Context, features []float64) (float64, error) {
	body, err := json.Marshal(remoteRequest{Features: features})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cred != nil {
		if err := r.cred.SetAuthHeader(ctx, req); err != nil {
			return 0, err
		}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	switch {
	case out.Prediction != nil:
		return *out.Prediction, nil
	case len(out.Predictions) > 0:
		return out.Predictions[0], nil
	default:
		return 0, errors.New("response carries no prediction")
	}
}
