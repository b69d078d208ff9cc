package regressor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pilgrimcast/auth"
)

func TestRemote_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sum := 0.0
		for _, f := range req.Features {
			sum += f
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"prediction": sum * 100})
	}))
	defer srv.Close()

	r, err := NewRemote(RemoteConfig{URL: srv.URL})
	require.NoError(t, err)
	got, err := r.Predict(context.Background(), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 600.0, got)
}

func TestRemote_PredictionsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[4321.5]}`))
	}))
	defer srv.Close()
	r, err := NewRemote(RemoteConfig{URL: srv.URL})
	require.NoError(t, err)
	got, err := r.Predict(context.Background(), []float64{1})
	require.NoError(t, err)
	assert.Equal(t, 4321.5, got)
}

func TestRemote_NoRetryAndBreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, err := NewRemote(RemoteConfig{URL: srv.URL, Breaker: BreakerConfig{MaxFailures: 2, OpenMS: 60000}})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := r.Predict(context.Background(), []float64{1})
		require.Error(t, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	_, err = r.Predict(context.Background(), []float64{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRemote_OAuthHeader(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"model-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()
	modelSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer model-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"prediction":1234}`))
	}))
	defer modelSrv.Close()

	r, err := NewRemote(RemoteConfig{
		URL:   modelSrv.URL,
		OAuth: auth.Conf{ClientID: "pilgrimcast", ClientSecret: "s", AuthURL: tokenSrv.URL},
	})
	require.NoError(t, err)
	got, err := r.Predict(context.Background(), []float64{0})
	require.NoError(t, err)
	assert.Equal(t, 1234.0, got)
}

func TestRemote_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	r, err := NewRemote(RemoteConfig{URL: srv.URL})
	require.NoError(t, err)
	_, err = r.Predict(context.Background(), []float64{1})
	assert.Error(t, err)
}

func TestNewRemote_RequiresURL(t *testing.T) {
	_, err := NewRemote(RemoteConfig{})
	assert.Error(t, err)
}
