package fxparams

import (
	"github.com/uber-go/tally/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/coinbase/chainparsers/internal/config"
)

type (
	// Params is embedded by the fx.In structs of components that need the
	// config, a logger and a metrics scope.
	Params struct {
		Config  *config.Config
		Logger  *zap.Logger
		Metrics tally.Scope
	}

	sharedParams struct {
		fx.In
		Config  *config.Config
		Logger  *zap.Logger
		Metrics tally.Scope
	}
)

var Module = fx.Provide(newParams)

// newParams tags the shared logger with the chain the app is configured for.
func newParams(in sharedParams) Params {
	return Params{
		Config: in.Config,
		Logger: in.Logger.With(
			zap.String("blockchain", string(in.Config.Blockchain())),
			zap.String("network", string(in.Config.Network())),
		),
		Metrics: in.Metrics,
	}
}
