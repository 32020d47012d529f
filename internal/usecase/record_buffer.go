package usecase

import (
	"context"
	"sync"
	"time"

	"ReplicaForecast/internal/domain/models"
	drepo "ReplicaForecast/internal/domain/repository"
	"ReplicaForecast/pkg/logger"
)

// BatchProcessor is the minimal processor interface the buffer needs.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, records []*models.ForecastRecord) error
}

// RecordBuffer takes forecast records off the request path and writes them in batches of
// batchSize, or whatever has accumulated after flushInterval.
type RecordBuffer struct {
	proc          BatchProcessor
	metrics       drepo.Metrics
	logger        *logger.Logger
	batchSize     int
	flushInterval time.Duration
	maxAttempts   int
	backoff       time.Duration

	ch       chan *models.ForecastRecord
	done     chan struct{}
	mu       sync.Mutex
	started  bool
	stopped  bool
	stopOnce sync.Once
}

// BufferOption configures a RecordBuffer.
type BufferOption func(*RecordBuffer)

// WithBatch sets the batch size and the longest a partial batch waits.
func WithBatch(size int, interval time.Duration) BufferOption {
	return func(b *RecordBuffer) {
		if size > 0 {
			b.batchSize = size
		}
		if interval > 0 {
			b.flushInterval = interval
		}
	}
}

// WithQueueSize sets how many records may wait for a flush before new ones are dropped.
func WithQueueSize(n int) BufferOption {
	return func(b *RecordBuffer) {
		if n > 0 {
			b.ch = make(chan *models.ForecastRecord, n)
		}
	}
}

// WithRetry sets the write attempts per batch and the first retry delay, doubled per attempt.
func WithRetry(attempts int, backoff time.Duration) BufferOption {
	return func(b *RecordBuffer) {
		if attempts > 0 {
			b.maxAttempts = attempts
		}
		b.backoff = backoff
	}
}

// NewRecordBuffer creates a buffer in front of proc.
func NewRecordBuffer(proc BatchProcessor, metrics drepo.Metrics, l *logger.Logger, opts ...BufferOption) *RecordBuffer {
	if l == nil {
		l = logger.Nop()
	}
	b := &RecordBuffer{
		proc:          proc,
		metrics:       metrics,
		logger:        l,
		batchSize:     100,
		flushInterval: time.Second,
		maxAttempts:   3,
		backoff:       50 * time.Millisecond,
		ch:            make(chan *models.ForecastRecord, 1000),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start launches the flushing loop. The loop writes with ctx until Stop is called.
func (b *RecordBuffer) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return
	}
	b.started = true
	go b.run(ctx)
}

// Enqueue hands r to the buffer without blocking. It reports false when the record was dropped.
func (b *RecordBuffer) Enqueue(r *models.ForecastRecord) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		b.metrics.RecordError("record_buffer_closed")
		return false
	}
	select {
	case b.ch <- r:
		return true
	default:
		b.metrics.RecordError("record_buffer_full")
		return false
	}
}

// Stop flushes what is queued and waits for the loop to exit or ctx to expire.
func (b *RecordBuffer) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.stopped = true
		started := b.started
		close(b.ch)
		b.mu.Unlock()
		if !started {
			close(b.done)
		}
	})

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *RecordBuffer) run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	batch := make([]*models.ForecastRecord, 0, b.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.write(ctx, batch)
		batch = make([]*models.ForecastRecord, 0, b.batchSize)
	}

	for {
		select {
		case r, ok := <-b.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, r)
			if len(batch) >= b.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (b *RecordBuffer) write(ctx context.Context, batch []*models.ForecastRecord) {
	backoff := b.backoff
	var err error
retry:
	for attempt := 1; ; attempt++ {
		if err = b.proc.ProcessBatch(ctx, batch); err == nil {
			return
		}
		if attempt >= b.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			break retry
		}
		backoff *= 2
	}

	b.metrics.RecordError("record_buffer_drop")
	b.logger.Error("dropping forecast records",
		logger.Int("records", len(batch)),
		logger.Error(err),
	)
}
