package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReplicaForecast/internal/algorithm"
	"ReplicaForecast/internal/domain/models"
	"ReplicaForecast/pkg/cache"
)

const holtWintersBody = `{"trend":"add","seasonal":"add","alpha":0.9,"beta":0.9,"gamma":0.3,` +
	`"seasonalPeriods":3,"series":[1,3,1,1,3,1,1,3,1,1,3,1,1]}`

const linearBody = `{"lookAhead":10000,"currentTime":"2020-02-01T00:56:12Z","replicaHistory":[` +
	`{"time":"2020-02-01T00:55:33Z","replicas":1},` +
	`{"time":"2020-02-01T00:55:43Z","replicas":2},` +
	`{"time":"2020-02-01T00:55:53Z","replicas":3},` +
	`{"time":"2020-02-01T00:56:03Z","replicas":4}]}`

var fixedNow = time.Date(2020, 2, 1, 1, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...ServiceOption) (*ForecastService, *fakeMetrics, *cache.MemoryCache) {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	metrics := newFakeMetrics()
	base := []ServiceOption{
		WithCache(mc, time.Minute),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "id-1" }),
	}
	return NewForecastService(metrics, nil, append(base, opts...)...), metrics, mc
}

func TestHoltWintersForecastIsCached(t *testing.T) {
	rec := &fakeRecorder{}
	svc, metrics, _ := newService(t, WithRecorder(rec))
	ctx := context.Background()

	first, err := svc.Forecast(ctx, models.AlgorithmHoltWinters, []byte(holtWintersBody))
	require.NoError(t, err)
	assert.Equal(t, &models.ForecastResult{Algorithm: "holt-winters", Prediction: 3}, first)

	second, err := svc.Forecast(ctx, models.AlgorithmHoltWinters, []byte(holtWintersBody))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 3, second.Prediction)

	assert.Equal(t, 1, metrics.forecasts["holt-winters/ok"])
	assert.Equal(t, 1, metrics.forecasts["holt-winters/cached"])
	assert.Equal(t, 1, metrics.cacheHits)
	assert.Equal(t, 3, metrics.predictions["holt-winters"])

	require.Len(t, rec.records, 1)
	r := rec.records[0]
	assert.Equal(t, "id-1", r.ID)
	assert.Equal(t, 13, r.Observations)
	assert.Equal(t, fixedNow, r.CreatedAt)
	assert.Len(t, r.RequestHash, 32)
}

func TestLinearRegressionCachesOnlyWithCurrentTime(t *testing.T) {
	svc, metrics, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := svc.LinearRegression(ctx, []byte(linearBody))
		require.NoError(t, err)
		assert.Equal(t, 6, got.Prediction)
	}
	assert.Equal(t, 1, metrics.cacheHits)

	clockBody := []byte(`{"lookAhead":0,"replicaHistory":[{"time":"2020-02-01T00:59:00Z","replicas":4}]}`)
	for i := 0; i < 2; i++ {
		got, err := svc.LinearRegression(ctx, clockBody)
		require.NoError(t, err)
		assert.False(t, got.Cached)
		assert.Equal(t, 4, got.Prediction)
	}
	assert.Equal(t, 1, metrics.cacheHits)
}

func TestForecastErrors(t *testing.T) {
	svc, metrics, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Forecast(ctx, "arima", []byte(holtWintersBody))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = svc.Forecast(ctx, models.AlgorithmHoltWinters, nil)
	require.Error(t, err)
	assert.True(t, algorithm.IsValidation(err))
	assert.EqualError(t, err, "No standard input provided to Holt-Winters algorithm, exiting")

	_, err = svc.Forecast(ctx, models.AlgorithmHoltWinters, []byte(`{"trend":"add","seasonal":"mul","alpha":0.9,"beta":0.9,"gamma":0.3,`+
		`"seasonalPeriods":3,"series":[1,3,1,1,0,1,1,3,1,1,3,1,1]}`))
	require.Error(t, err)
	assert.True(t, algorithm.IsComputation(err))

	_, err = svc.Forecast(ctx, models.AlgorithmLinearRegression, []byte(`{"lookAhead":9223372036854775807,`+
		`"currentTime":"2020-02-01T00:56:12Z","replicaHistory":[{"time":"2020-02-01T00:55:33Z","replicas":1}]}`))
	require.Error(t, err)
	assert.True(t, algorithm.IsComputation(err))

	assert.Equal(t, 1, metrics.forecasts["holt-winters/validation"])
	assert.Equal(t, 1, metrics.forecasts["holt-winters/computation"])
	assert.Equal(t, 1, metrics.forecasts["linear-regression/computation"])
}

func TestTuningOverridesConstants(t *testing.T) {
	alpha := 0.9
	tuner := &fakeTuner{params: &models.TuningParams{Alpha: &alpha}}
	svc, _, mc := newService(t, WithTuner(tuner))

	body := `{"trend":"add","seasonal":"add","alpha":0.1,"beta":0.9,"gamma":0.3,` +
		`"seasonalPeriods":3,"series":[1,3,1,1,3,1,1,3,1,1,3,1,1]}`
	got, err := svc.HoltWinters(context.Background(), []byte(body))
	require.NoError(t, err)

	require.NotNil(t, tuner.got)
	assert.Equal(t, 3, tuner.got.SeasonalPeriods)
	assert.Len(t, tuner.got.Series, 13)

	// The tuned request is the one cached, so it shares the entry of the untuned 0.9 request.
	untuned, err := svc.HoltWinters(context.Background(), []byte(holtWintersBody))
	require.NoError(t, err)
	assert.Equal(t, got.Prediction, untuned.Prediction)
	assert.True(t, untuned.Cached)
	assert.Equal(t, 1, mc.Len())
}

func TestTuningFailureFallsBack(t *testing.T) {
	tuner := &fakeTuner{err: errors.New("connection refused")}
	svc, metrics, _ := newService(t, WithTuner(tuner))

	got, err := svc.HoltWinters(context.Background(), []byte(holtWintersBody))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Prediction)
	assert.Equal(t, 1, metrics.errorCount("tuning"))
}

func TestRecent(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Recent(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrRecordsUnavailable)

	sink := &fakeSink{recent: []*models.ForecastRecord{
		{ID: "2", Algorithm: models.AlgorithmLinearRegression},
		{ID: "1", Algorithm: models.AlgorithmHoltWinters},
	}}
	svc, _, _ = newService(t, WithStorage(sink), WithHealthCheck(sink))

	got, err := svc.Recent(context.Background(), models.AlgorithmHoltWinters, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	assert.NoError(t, svc.Health(context.Background()))
	sink.err = errors.New("down")
	assert.EqualError(t, svc.Health(context.Background()), "down")
}
