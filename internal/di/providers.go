package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ReplicaForecast/internal/domain/repository"
	"ReplicaForecast/internal/handler/api"
	internalrepo "ReplicaForecast/internal/repository"
	"ReplicaForecast/internal/service/ratelimit"
	"ReplicaForecast/internal/services/tuning"
	"ReplicaForecast/internal/usecase"
	"ReplicaForecast/pkg/cache"
	pkgch "ReplicaForecast/pkg/clickhouse"
	"ReplicaForecast/pkg/config"
	xhttp "ReplicaForecast/pkg/http"
	"ReplicaForecast/pkg/http/middleware"
	pkgkafka "ReplicaForecast/pkg/kafka"
	"ReplicaForecast/pkg/logger"
	"ReplicaForecast/pkg/metrics"
	"ReplicaForecast/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served on the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideClickHouseClient connects to ClickHouse when it is the record backend.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Backend.Type != config.BackendClickHouse {
		return nil, func() {}, nil
	}

	// The record database may not exist yet; tables are addressed as <database>.<table>.
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase("default"),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
	}); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, func() { _ = client.Close() }, nil
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is the record backend.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry, l *logger.Logger) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != config.BackendKafka {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(cfg.Kafka.AutoCreate),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	l.Info("kafka producer ready",
		logger.Strings("brokers", cfg.Kafka.Brokers),
		logger.String("topic", cfg.Kafka.Topic),
	)
	return producer, nil
}

// ProvideRecordStorage creates the ClickHouse record table and repository.
func ProvideRecordStorage(chClient *pkgch.Client, cfg *config.Config, l *logger.Logger) (repository.Storage, error) {
	if chClient == nil {
		return nil, nil
	}

	store := internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table, l)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse storage: %w", err)
	}
	return store, nil
}

// ProvideRecordPublisher creates the Kafka record publisher.
func ProvideRecordPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRecordProcessor creates the record routing use case.
func ProvideRecordProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.RecordProcessor {
	return usecase.NewRecordProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideRecordBuffer batches records in front of the processor. It is nil without a backend.
func ProvideRecordBuffer(
	proc *usecase.RecordProcessor,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.RecordBuffer {
	if cfg.Backend.Type == config.BackendNone {
		return nil
	}
	return usecase.NewRecordBuffer(proc, m, l,
		usecase.WithBatch(cfg.Backend.BatchSize, cfg.Backend.BatchTimeout),
		usecase.WithQueueSize(cfg.Backend.BatchSize*20),
	)
}

// ProvideCache creates the forecast result cache, memory-only unless Redis is enabled.
// An unreachable Redis degrades to memory-only.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.Service, func()) {
	if !cfg.Cache.Enabled {
		return nil, func() {}
	}

	var remote cache.Service
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdle, cfg.Cache.Redis.PoolTimeout),
		)
		if err != nil {
			l.Warn("redis unavailable, caching in memory only", logger.Error(err))
		} else {
			remote = rc
		}
	}

	lc := cache.NewLayeredCache(remote,
		cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		cache.WithLayeredMemoryTTL(cfg.Cache.TTL),
	)
	return lc, func() { _ = lc.Close() }
}

// ProvideTuner creates the runtime tuning client when a tuning URL is configured.
func ProvideTuner(cfg *config.Config) repository.Tuner {
	if t := tuning.NewHTTPTuner(cfg); t != nil {
		return t
	}
	return nil
}

// ProvideForecastService creates the forecast use case.
func ProvideForecastService(
	cfg *config.Config,
	m repository.Metrics,
	l *logger.Logger,
	c cache.Service,
	tuner repository.Tuner,
	buffer *usecase.RecordBuffer,
	store repository.Storage,
	proc *usecase.RecordProcessor,
) *usecase.ForecastService {
	opts := []usecase.ServiceOption{usecase.WithHealthCheck(proc)}
	if c != nil {
		opts = append(opts, usecase.WithCache(c, cfg.Cache.TTL))
	}
	if tuner != nil {
		opts = append(opts, usecase.WithTuner(tuner))
	}
	if buffer != nil {
		opts = append(opts, usecase.WithRecorder(buffer))
	}
	if store != nil {
		opts = append(opts, usecase.WithStorage(store))
	}
	return usecase.NewForecastService(m, l, opts...)
}

// ProvideRateLimiter creates the per-client limiter when rate limiting is enabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideHTTPServer creates the Echo server with every route registered.
func ProvideHTTPServer(
	cfg *config.Config,
	l *logger.Logger,
	reg *prometheus.Registry,
	m repository.Metrics,
	svc *usecase.ForecastService,
	limiter *ratelimit.Limiter,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts,
			xhttp.WithMetrics(cfg.Metrics.Path, reg),
			xhttp.WithMiddleware(middleware.NewHTTPMetrics(reg).Middleware(l, cfg.Metrics.SlowThreshold)),
		)
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(ratelimit.Middleware(limiter, m)))
	}

	handlers := xhttp.Handlers{
		api.NewForecastEchoHandler(l, svc, cfg.Backend.Type),
		api.NewTuningEchoHandler(cfg),
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	httpServer *xhttp.Server,
	buffer *usecase.RecordBuffer,
	proc *usecase.RecordProcessor,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, httpServer, buffer, proc, limiter)
}
