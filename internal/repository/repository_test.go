package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReplicaForecast/internal/domain/models"
	pkgkafka "ReplicaForecast/pkg/kafka"
)

var created = time.Date(2020, 2, 1, 0, 56, 12, 0, time.UTC)

func record(id, algorithm string, prediction int) *models.ForecastRecord {
	return &models.ForecastRecord{
		ID:           id,
		Algorithm:    algorithm,
		Prediction:   prediction,
		Observations: 13,
		RequestHash:  "abc",
		DurationMs:   4,
		CreatedAt:    created,
	}
}

func TestClickHouseStorageInit(t *testing.T) {
	f, db := newFakeDB(t)
	s := NewClickHouseStorage(db, "forecast_records", nil)

	require.NoError(t, s.Init(context.Background()))
	require.Len(t, f.execs, 1)
	assert.Contains(t, f.execs[0].query, "CREATE TABLE IF NOT EXISTS forecast_records")
	assert.Contains(t, f.execs[0].query, "ENGINE = MergeTree")
}

func TestClickHouseStorageStoreBatch(t *testing.T) {
	f, db := newFakeDB(t)
	s := NewClickHouseStorage(db, "forecast_records", nil)

	err := s.StoreBatch(context.Background(), []*models.ForecastRecord{
		record("1", models.AlgorithmHoltWinters, 3),
		nil,
		{Algorithm: models.AlgorithmHoltWinters},
		record("2", models.AlgorithmLinearRegression, 7),
	})
	require.NoError(t, err)

	require.Len(t, f.execs, 1)
	assert.Equal(t, 2, strings.Count(f.execs[0].query, "(?, ?, ?, ?, ?, ?, ?)"))
	require.Len(t, f.execs[0].args, 14)
	assert.Equal(t, []driver.Value{"1", "holt-winters", int64(3), int64(13), "abc", int64(4), created}, f.execs[0].args[:7])

	require.NoError(t, s.StoreBatch(context.Background(), nil))
	assert.Len(t, f.execs, 1)
}

func TestClickHouseStorageStoreError(t *testing.T) {
	f, db := newFakeDB(t)
	f.execErr = errors.New("table is read only")
	s := NewClickHouseStorage(db, "forecast_records", nil)

	err := s.Store(context.Background(), record("1", models.AlgorithmHoltWinters, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table is read only")
}

func TestClickHouseStorageRecent(t *testing.T) {
	f, db := newFakeDB(t)
	f.columns = []string{"id", "algorithm", "prediction", "observations", "request_hash", "duration_ms", "created_at"}
	f.rows = [][]driver.Value{
		{"2", "linear-regression", int64(7), int64(3), "def", int64(1), created},
		{"1", "linear-regression", int64(5), int64(3), "abc", int64(2), created.Add(-time.Minute)},
	}
	s := NewClickHouseStorage(db, "forecast_records", nil)

	got, err := s.Recent(context.Background(), models.AlgorithmLinearRegression, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, 7, got[0].Prediction)
	assert.Equal(t, 3, got[0].Observations)
	assert.Equal(t, created, got[0].CreatedAt)

	require.Len(t, f.queries, 1)
	assert.Contains(t, f.queries[0].query, "WHERE algorithm = ?")
	assert.Equal(t, []driver.Value{"linear-regression", int64(10)}, f.queries[0].args)

	_, err = s.Recent(context.Background(), "", 5)
	require.NoError(t, err)
	assert.NotContains(t, f.queries[1].query, "WHERE")
	assert.Equal(t, []driver.Value{int64(5)}, f.queries[1].args)
}

type fakeProducer struct {
	topic  string
	keys   []string
	values []interface{}
	closed bool
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic = topic
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

func (p *fakeProducer) PublishBatch(_ context.Context, topic string, messages []pkgkafka.Message) error {
	p.topic = topic
	for _, m := range messages {
		p.keys = append(p.keys, string(m.Key))
		p.values = append(p.values, m.Value)
	}
	return nil
}

func (p *fakeProducer) Close() error {
	p.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaPublisher(fp, "replica-forecasts")

	r := record("1", models.AlgorithmHoltWinters, 3)
	require.NoError(t, pub.Publish(context.Background(), r))
	require.NoError(t, pub.PublishBatch(context.Background(), []*models.ForecastRecord{
		record("2", models.AlgorithmLinearRegression, 5),
	}))
	require.NoError(t, pub.PublishBatch(context.Background(), nil))
	require.NoError(t, pub.Close())

	assert.Equal(t, "replica-forecasts", fp.topic)
	assert.Equal(t, []string{"holt-winters", "linear-regression"}, fp.keys)
	assert.Same(t, r, fp.values[0])
	assert.True(t, fp.closed)
}
