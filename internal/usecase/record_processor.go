package usecase

import (
	"context"
	"fmt"
	"time"

	"ReplicaForecast/internal/domain/models"
	drepo "ReplicaForecast/internal/domain/repository"
	"ReplicaForecast/pkg/config"
)

// RecordProcessor routes forecast records to the configured backend.
type RecordProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
}

// NewRecordProcessor creates a new RecordProcessor instance.
func NewRecordProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
) *RecordProcessor {
	return &RecordProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Backend is the configured record sink.
func (p *RecordProcessor) Backend() string {
	return p.backend
}

// Process sends a single record to the configured backend.
func (p *RecordProcessor) Process(ctx context.Context, r *models.ForecastRecord) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	return p.ProcessBatch(ctx, []*models.ForecastRecord{r})
}

// ProcessBatch sends multiple records in one write.
func (p *RecordProcessor) ProcessBatch(ctx context.Context, records []*models.ForecastRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case config.BackendKafka:
		err = p.pub.PublishBatch(ctx, records)
	case config.BackendClickHouse:
		err = p.store.StoreBatch(ctx, records)
	case config.BackendNone:
		return nil
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("record_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	p.metrics.RecordLatency("record_batch", time.Since(start).Seconds())
	return nil
}

// Health checks the configured backend. Kafka has no cheap probe and is reported healthy.
func (p *RecordProcessor) Health(ctx context.Context) error {
	if p.backend == config.BackendClickHouse {
		return p.store.Health(ctx)
	}
	return nil
}

// Close closes underlying resources if available.
func (p *RecordProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
