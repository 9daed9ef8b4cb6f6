//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideProfileCache,
	ProvideClickHouseClient,
	ProvideMarketStore,
	ProvideKafkaProducer,
	ProvideReportPublisher,
)

var usecaseSet = wire.NewSet(
	ProvideMarketData,
	ProvideSocialSignals,
	ProvideSnapshotStore,
	ProvidePredictionService,
	ProvideDailyFetcher,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		usecaseSet,
		ProvideBaseContext,
		ProvideRunGate,
		ProvideLiveCollector,
		ProvidePredictionsHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeTools wires the use cases for the command line binaries.
func InitializeTools(cfg *config.Config) (*Tools, func(), error) {
	wire.Build(
		infraSet,
		usecaseSet,
		ProvideConstituentSource,
		ProvideTools,
	)
	return nil, nil, nil
}
