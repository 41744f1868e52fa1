//go:build wireinject
// +build wireinject

package di

import (
	"DraftPulse/pkg/config"
	"DraftPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideReadCache,

		// Repositories
		ProvideOddsStore,
		ProvideObservationPublisher,

		// Domain services
		ProvideOddsCache,
		ProvideOddsSource,
		ProvideMockGenerator,

		// Use cases
		ProvideNormalizer,
		ProvideOddsFetcher,
		ProvideCollector,
		ProvideAnalytics,
		ProvideScheduler,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
