//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"ReplicaForecast/pkg/config"
	"ReplicaForecast/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,
		ProvideTuner,

		// Repositories
		ProvideRecordStorage,
		ProvideRecordPublisher,

		// Use cases
		ProvideRecordProcessor,
		ProvideRecordBuffer,
		ProvideForecastService,

		// Transport
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
