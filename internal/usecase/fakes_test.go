package usecase

import (
	"context"
	"sync"

	"ReplicaForecast/internal/domain/models"
)

type fakeMetrics struct {
	mu          sync.Mutex
	forecasts   map[string]int
	cacheHits   int
	predictions map[string]int
	errors      map[string]int
	latencies   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		forecasts:   map[string]int{},
		predictions: map[string]int{},
		errors:      map[string]int{},
		latencies:   map[string]int{},
	}
}

func (m *fakeMetrics) RecordForecast(alg, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts[alg+"/"+outcome]++
}

func (m *fakeMetrics) RecordCacheHit(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *fakeMetrics) RecordPrediction(alg string, prediction int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[alg] = prediction
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(op string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies[op]++
}

func (m *fakeMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

type fakeRecorder struct {
	records []*models.ForecastRecord
}

func (r *fakeRecorder) Enqueue(rec *models.ForecastRecord) bool {
	r.records = append(r.records, rec)
	return true
}

type fakeTuner struct {
	params *models.TuningParams
	err    error
	got    *models.TuningRequest
}

func (t *fakeTuner) Tune(_ context.Context, req *models.TuningRequest) (*models.TuningParams, error) {
	t.got = req
	return t.params, t.err
}

type fakeSink struct {
	mu       sync.Mutex
	batches  [][]*models.ForecastRecord
	failures int
	err      error
	closed   bool
	recent   []*models.ForecastRecord
}

func (s *fakeSink) write(records []*models.ForecastRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return s.err
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *fakeSink) Publish(_ context.Context, r *models.ForecastRecord) error {
	return s.write([]*models.ForecastRecord{r})
}

func (s *fakeSink) PublishBatch(_ context.Context, records []*models.ForecastRecord) error {
	return s.write(records)
}

func (s *fakeSink) ProcessBatch(_ context.Context, records []*models.ForecastRecord) error {
	return s.write(records)
}

func (s *fakeSink) Init(context.Context) error { return nil }

func (s *fakeSink) Store(_ context.Context, r *models.ForecastRecord) error {
	return s.write([]*models.ForecastRecord{r})
}

func (s *fakeSink) StoreBatch(_ context.Context, records []*models.ForecastRecord) error {
	return s.write(records)
}

func (s *fakeSink) Recent(_ context.Context, alg string, limit int) ([]*models.ForecastRecord, error) {
	var out []*models.ForecastRecord
	for _, r := range s.recent {
		if alg == "" || r.Algorithm == alg {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeSink) Health(context.Context) error { return s.err }

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSink) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}
