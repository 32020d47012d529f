package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ReplicaForecast/internal/algorithm"
	"ReplicaForecast/internal/algorithm/holtwinters"
	"ReplicaForecast/internal/algorithm/linear"
	"ReplicaForecast/internal/domain/models"
	drepo "ReplicaForecast/internal/domain/repository"
	"ReplicaForecast/pkg/cache"
	"ReplicaForecast/pkg/logger"
)

var (
	ErrUnknownAlgorithm   = errors.New("unknown forecast algorithm")
	ErrRecordsUnavailable = errors.New("forecast records are not stored by the configured backend")
)

// Metric outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeCached      = "cached"
	OutcomeValidation  = "validation"
	OutcomeComputation = "computation"
)

// Recorder accepts computed forecasts for the record sink.
type Recorder interface {
	Enqueue(r *models.ForecastRecord) bool
}

// HealthChecker probes a dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ForecastService answers forecast requests with the same adapters the CLIs use, adding result
// caching, runtime tuning and record keeping.
type ForecastService struct {
	holtWinters *holtwinters.Adapter
	linear      *linear.Adapter
	metrics     drepo.Metrics
	logger      *logger.Logger

	cache    cache.Service
	cacheTTL time.Duration
	tuner    drepo.Tuner
	recorder Recorder
	storage  drepo.Storage
	health   HealthChecker
	now      func() time.Time
	newID    func() string
}

// ServiceOption configures ForecastService.
type ServiceOption func(*ForecastService)

// WithCache caches deterministic results in c for ttl.
func WithCache(c cache.Service, ttl time.Duration) ServiceOption {
	return func(s *ForecastService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithTuner overrides Holt-Winters smoothing constants with values from t.
func WithTuner(t drepo.Tuner) ServiceOption {
	return func(s *ForecastService) {
		s.tuner = t
	}
}

// WithRecorder sends every computed forecast to r.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *ForecastService) {
		s.recorder = r
	}
}

// WithStorage enables listing stored records.
func WithStorage(st drepo.Storage) ServiceOption {
	return func(s *ForecastService) {
		s.storage = st
	}
}

// WithHealthCheck sets the dependency probed by Health.
func WithHealthCheck(h HealthChecker) ServiceOption {
	return func(s *ForecastService) {
		s.health = h
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ForecastService) {
		s.now = now
	}
}

// WithIDGenerator replaces the record ID source.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *ForecastService) {
		s.newID = newID
	}
}

// NewForecastService creates a ForecastService.
func NewForecastService(metrics drepo.Metrics, l *logger.Logger, opts ...ServiceOption) *ForecastService {
	if l == nil {
		l = logger.Nop()
	}
	s := &ForecastService{
		metrics: metrics,
		logger:  l,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.holtWinters = holtwinters.NewAdapter(l)
	s.linear = linear.NewAdapter(l, linear.WithClock(s.now))
	return s
}

// Forecast dispatches body to the named algorithm.
func (s *ForecastService) Forecast(ctx context.Context, alg string, body []byte) (*models.ForecastResult, error) {
	switch alg {
	case models.AlgorithmHoltWinters:
		return s.HoltWinters(ctx, body)
	case models.AlgorithmLinearRegression:
		return s.LinearRegression(ctx, body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}

// HoltWinters forecasts the next value of a seasonal series.
func (s *ForecastService) HoltWinters(ctx context.Context, body []byte) (*models.ForecastResult, error) {
	const alg = models.AlgorithmHoltWinters

	req, err := holtwinters.ParseRequest(body)
	if err != nil {
		s.metrics.RecordForecast(alg, OutcomeValidation)
		return nil, err
	}

	s.tune(ctx, req)

	canonical, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	return s.serve(ctx, alg, canonical, true, len(req.Series), func() (int, error) {
		return s.holtWinters.Forecast(req)
	})
}

// LinearRegression forecasts the replica count lookAhead milliseconds past the current time.
// Requests without currentTime depend on the clock and are never cached.
func (s *ForecastService) LinearRegression(ctx context.Context, body []byte) (*models.ForecastResult, error) {
	const alg = models.AlgorithmLinearRegression

	req, series, err := linear.ParseRequest(body, s.now())
	if err != nil {
		outcome := OutcomeValidation
		if algorithm.IsComputation(err) {
			outcome = OutcomeComputation
		}
		s.metrics.RecordForecast(alg, outcome)
		return nil, err
	}

	canonical, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	return s.serve(ctx, alg, canonical, req.Deterministic(), len(series.Points), func() (int, error) {
		return s.linear.Forecast(series)
	})
}

// Recent lists the latest stored records, newest first.
func (s *ForecastService) Recent(ctx context.Context, alg string, limit int) ([]*models.ForecastRecord, error) {
	if s.storage == nil {
		return nil, ErrRecordsUnavailable
	}
	records, err := s.storage.Recent(ctx, alg, limit)
	if err != nil {
		s.metrics.RecordError("records_query")
		return nil, fmt.Errorf("recent records: %w", err)
	}
	return records, nil
}

// Health probes the record sink.
func (s *ForecastService) Health(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	return s.health.Health(ctx)
}

// tune applies runtime smoothing constants. A failing tuner leaves the request unchanged.
func (s *ForecastService) tune(ctx context.Context, req *holtwinters.Request) {
	if s.tuner == nil {
		return
	}

	params, err := s.tuner.Tune(ctx, &models.TuningRequest{
		Trend:           req.Trend,
		Seasonal:        req.Seasonal,
		SeasonalPeriods: req.Periods(),
		Series:          req.Series,
	})
	if err != nil {
		s.metrics.RecordError("tuning")
		s.logger.Warn("tuning unavailable, using request constants", logger.Error(err))
		return
	}
	if params == nil {
		return
	}

	if params.Alpha != nil {
		req.Alpha = params.Alpha
	}
	if params.Beta != nil {
		req.Beta = params.Beta
	}
	if params.Gamma != nil {
		req.Gamma = params.Gamma
	}
}

func (s *ForecastService) serve(
	ctx context.Context,
	alg string,
	canonical []byte,
	cacheable bool,
	observations int,
	compute func() (int, error),
) (*models.ForecastResult, error) {
	hash := cache.HashBytes(canonical)
	key := cache.GenerateKey("forecast:"+alg, hash)
	useCache := cacheable && s.cache != nil

	if useCache {
		var prediction int
		err := s.cache.Get(ctx, key, &prediction)
		if err == nil {
			s.metrics.RecordCacheHit(alg)
			s.metrics.RecordForecast(alg, OutcomeCached)
			return &models.ForecastResult{Algorithm: alg, Prediction: prediction, Cached: true}, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.RecordError("cache_get")
			s.logger.Warn("forecast cache read failed", logger.String("key", key), logger.Error(err))
		}
	}

	start := time.Now()
	prediction, err := compute()
	elapsed := time.Since(start)
	s.metrics.RecordLatency("forecast_"+alg, elapsed.Seconds())

	if err != nil {
		outcome := OutcomeComputation
		if algorithm.IsValidation(err) {
			outcome = OutcomeValidation
		}
		s.metrics.RecordForecast(alg, outcome)
		return nil, err
	}

	s.metrics.RecordForecast(alg, OutcomeOK)
	s.metrics.RecordPrediction(alg, prediction)

	if useCache {
		if err := s.cache.Set(ctx, key, prediction, s.cacheTTL); err != nil {
			s.metrics.RecordError("cache_set")
			s.logger.Warn("forecast cache write failed", logger.String("key", key), logger.Error(err))
		}
	}

	if s.recorder != nil {
		s.recorder.Enqueue(&models.ForecastRecord{
			ID:           s.newID(),
			Algorithm:    alg,
			Prediction:   prediction,
			Observations: observations,
			RequestHash:  hash,
			DurationMs:   elapsed.Milliseconds(),
			CreatedAt:    s.now().UTC(),
		})
	}

	return &models.ForecastResult{Algorithm: alg, Prediction: prediction}, nil
}
