package testapp

import (
	"fmt"
	"testing"

	"github.com/uber-go/tally/v4"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/utils/fxparams"
	"github.com/coinbase/chainparsers/internal/utils/testutil"
)

type (
	TestApp interface {
		Close()
		Logger() *zap.Logger
		Config() *config.Config
		Metrics() tally.TestScope
	}

	TestFn func(t *testing.T, cfg *config.Config)

	TestConfig struct {
		Namespace   string
		ConfigNames []string
	}

	testAppImpl struct {
		app     *fxtest.App
		logger  *zap.Logger
		config  *config.Config
		metrics tally.TestScope
	}
)

var (
	TestConfigs = []TestConfig{
		{
			Namespace: config.DefaultNamespace,
			ConfigNames: []string{
				"multiversx-devnet",
				"multiversx-mainnet",
				"multiversx-testnet",
			},
		},
	}

	EnvsToTest = []config.Env{
		config.EnvLocal,
		config.EnvDevelopment,
		config.EnvProduction,
	}
)

func New(t testing.TB, opts ...fx.Option) TestApp {
	logger := zaptest.NewLogger(t)
	metrics := tally.NewTestScope("", nil)

	var cfg *config.Config
	opts = append(
		opts,
		config.Module,
		fxparams.Module,
		fx.NopLogger,
		fx.Provide(func() testing.TB { return t }),
		fx.Provide(func() *zap.Logger { return logger }),
		fx.Provide(func() tally.Scope { return metrics }),
		fx.Populate(&cfg),
	)

	app := fxtest.New(t, opts...)
	app.RequireStart()
	return &testAppImpl{
		app:     app,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}
}

// WithConfig overrides the default config.
func WithConfig(cfg *config.Config) fx.Option {
	return config.WithCustomConfig(cfg)
}

// WithBlockchainNetwork loads the config according to the specified blockchain and network.
func WithBlockchainNetwork(blockchain config.Blockchain, network config.Network) fx.Option {
	cfg, err := config.New(
		config.WithBlockchain(blockchain),
		config.WithNetwork(network),
	)
	if err != nil {
		panic(err)
	}

	return WithConfig(cfg)
}

func (a *testAppImpl) Close() {
	a.app.RequireStop()
}

func (a *testAppImpl) Logger() *zap.Logger {
	return a.logger
}

func (a *testAppImpl) Config() *config.Config {
	return a.config
}

func (a *testAppImpl) Metrics() tally.TestScope {
	return a.metrics
}

func TestAllEnvs(t *testing.T, fn TestFn) {
	for _, env := range EnvsToTest {
		t.Run(string(env), func(t *testing.T) {
			require := testutil.Require(t)

			cfg, err := config.New(config.WithEnvironment(env))
			require.NoError(err)
			require.Equal(env, cfg.Env())

			fn(t, cfg)
		})
	}
}

func TestAllConfigs(t *testing.T, fn TestFn) {
	for _, testConfig := range TestConfigs {
		namespace := testConfig.Namespace
		for _, configName := range testConfig.ConfigNames {
			configName := configName
			name := fmt.Sprintf("%v/%v", namespace, configName)
			t.Run(name, func(t *testing.T) {
				for _, env := range EnvsToTest {
					env := env
					t.Run(string(env), func(t *testing.T) {
						require := testutil.Require(t)

						blockchain, network, err := config.ParseConfigName(configName)
						require.NoError(err)

						cfg, err := config.New(
							config.WithNamespace(namespace),
							config.WithEnvironment(env),
							config.WithBlockchain(blockchain),
							config.WithNetwork(network),
						)
						require.NoError(err)
						require.Equal(namespace, cfg.Namespace())
						require.Equal(env, cfg.Env())
						require.Equal(blockchain, cfg.Blockchain())
						require.Equal(network, cfg.Network())

						fn(t, cfg)
					})
				}
			})
		}
	}
}
