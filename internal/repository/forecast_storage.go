package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ReplicaForecast/internal/domain/models"
	"ReplicaForecast/internal/domain/repository"
	"ReplicaForecast/pkg/logger"
)

const insertChunkSize = 2000

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS %s (
    id           String,
    algorithm    LowCardinality(String),
    prediction   Int64,
    observations UInt32,
    request_hash String,
    duration_ms  UInt64,
    created_at   DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (algorithm, created_at)`

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
	l     *logger.Logger
}

// NewClickHouseStorage creates ClickHouse storage over table.
func NewClickHouseStorage(db *sql.DB, table string, l *logger.Logger) repository.Storage {
	if l == nil {
		l = logger.Nop()
	}
	return &ClickHouseStorage{db: db, table: table, l: l}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createRecordsTable, s.table)); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

func (s *ClickHouseStorage) Store(ctx context.Context, r *models.ForecastRecord) error {
	return s.StoreBatch(ctx, []*models.ForecastRecord{r})
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, records []*models.ForecastRecord) error {
	for start := 0; start < len(records); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(records) {
			end = len(records)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, r := range records[start:end] {
			if r == nil || r.ID == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.ID,
				r.Algorithm,
				int64(r.Prediction),
				int64(r.Observations),
				r.RequestHash,
				r.DurationMs,
				r.CreatedAt.UTC(),
			)
		}
		if len(values) == 0 {
			continue
		}

		q := fmt.Sprintf("INSERT INTO %s (id, algorithm, prediction, observations, request_hash, duration_ms, created_at) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert error",
				logger.String("table", s.table),
				logger.Int("rows", len(values)),
				logger.Error(err),
			)
			return fmt.Errorf("insert forecast records: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStorage) Recent(ctx context.Context, algorithm string, limit int) ([]*models.ForecastRecord, error) {
	q := fmt.Sprintf("SELECT id, algorithm, prediction, observations, request_hash, duration_ms, created_at FROM %s", s.table)
	args := make([]interface{}, 0, 2)
	if algorithm != "" {
		q += " WHERE algorithm = ?"
		args = append(args, algorithm)
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query forecast records: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ForecastRecord, 0, limit)
	for rows.Next() {
		var (
			r            models.ForecastRecord
			prediction   int64
			observations int64
			createdAt    time.Time
		)
		if err := rows.Scan(&r.ID, &r.Algorithm, &prediction, &observations, &r.RequestHash, &r.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan forecast record: %w", err)
		}
		r.Prediction = int(prediction)
		r.Observations = int(observations)
		r.CreatedAt = createdAt.UTC()
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // pool is owned by pkg/clickhouse.Client
}
