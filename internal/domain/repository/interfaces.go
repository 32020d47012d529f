package repository

import (
	"context"

	"ReplicaForecast/internal/domain/models"
)

// Publisher streams forecast records to a message broker.
type Publisher interface {
	Publish(ctx context.Context, r *models.ForecastRecord) error
	PublishBatch(ctx context.Context, records []*models.ForecastRecord) error
	Close() error
}

// Storage persists forecast records.
type Storage interface {
	Init(ctx context.Context) error // ensure tables
	Store(ctx context.Context, r *models.ForecastRecord) error
	StoreBatch(ctx context.Context, records []*models.ForecastRecord) error
	Recent(ctx context.Context, algorithm string, limit int) ([]*models.ForecastRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordForecast(algorithm, outcome string)
	RecordCacheHit(algorithm string)
	RecordPrediction(algorithm string, prediction int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// Tuner fetches smoothing constants for a Holt-Winters request at runtime.
type Tuner interface {
	Tune(ctx context.Context, req *models.TuningRequest) (*models.TuningParams, error)
}
