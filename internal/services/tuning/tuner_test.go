package tuning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReplicaForecast/internal/domain/models"
	"ReplicaForecast/pkg/config"
)

func newTuner(t *testing.T, url string) *HTTPTuner {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.HoltWinters.TuningURL = url
	cfg.HoltWinters.TuningTimeout = time.Second
	return NewHTTPTuner(cfg)
}

func TestNewHTTPTunerDisabled(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	assert.Nil(t, NewHTTPTuner(cfg))
}

func TestTune(t *testing.T) {
	var got models.TuningRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"alpha":0.5,"beta":null,"gamma":0.25}`))
	}))
	defer ts.Close()

	params, err := newTuner(t, ts.URL).Tune(context.Background(), &models.TuningRequest{
		Trend:           "add",
		Seasonal:        "mul",
		SeasonalPeriods: 3,
		Series:          []float64{1, 2, 3},
	})
	require.NoError(t, err)

	require.NotNil(t, params.Alpha)
	assert.Equal(t, 0.5, *params.Alpha)
	assert.Nil(t, params.Beta)
	assert.Equal(t, 0.25, *params.Gamma)
	assert.Equal(t, 3, got.SeasonalPeriods)
	assert.Equal(t, []float64{1, 2, 3}, got.Series)
}

func TestTuneRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"alpha":0.9,"beta":0.9,"gamma":0.9}`))
	}))
	defer ts.Close()

	params, err := newTuner(t, ts.URL).Tune(context.Background(), &models.TuningRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0.9, *params.Beta)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTuneRejectsOutOfRange(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"alpha":1.5}`))
	}))
	defer ts.Close()

	_, err := newTuner(t, ts.URL).Tune(context.Background(), &models.TuningRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha 1.5 outside [0, 1]")
}

func TestTuneFailsAfterRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTuner(t, ts.URL).Tune(context.Background(), &models.TuningRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
