//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/planetreboot/internal/app"
	"github.com/zeusync/planetreboot/internal/config"
	"github.com/zeusync/planetreboot/internal/core/observability/log"
	"github.com/zeusync/planetreboot/internal/core/storage"
)

func InitializeApp(cfg config.Config) (*app.App, func(), error) {
	wire.Build(app.ProviderSet)
	return nil, nil, nil
}

func InitializeStore(cfg config.Config) (*storage.StateStore, func(), error) {
	wire.Build(
		app.ProvideLogger,
		wire.Bind(new(log.Log), new(*log.Logger)),
		app.ProvideKV,
		app.ProvideStateStore,
	)
	return nil, nil, nil
}
