package tally

import (
	"context"

	"github.com/uber-go/tally/v4"
	"go.uber.org/fx"

	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/utils/consts"
)

type RootScopeParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Reporter  tally.StatsReporter
}

// NewRootScope returns a no-op scope unless a statsd reporter is configured.
// Otherwise metrics are prefixed with the service name, tagged with the chain
// and flushed to the reporter once per reporting interval.
func NewRootScope(params RootScopeParams) tally.Scope {
	if params.Reporter == tally.NullStatsReporter {
		return tally.NoopScope
	}

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   consts.ServiceName,
		Reporter: params.Reporter,
		Tags:     params.Config.GetCommonTags(),
	}, reportingInterval)
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return closer.Close()
		},
	})

	return scope
}
