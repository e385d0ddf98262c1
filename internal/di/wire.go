//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/momentics/hioload-aio/control"
)

//go:generate wire

// ProviderSet lists every application provider.
var ProviderSet = wire.NewSet(
	ProvideConfigStore,
	ProvideLogger,
	ProvideMetricsCollector,
	ProvideLoop,
	ProvideDebugProbes,
	ProvideTracerProvider,
	wire.Struct(new(App), "*"),
)

// InitializeApp builds the App from a loaded configuration. The returned
// cleanup closes the reactor loop.
func InitializeApp(cfg *control.Config, path ConfigPath) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
