package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/tally"
	"github.com/coinbase/chainparsers/internal/utils/fxparams"
	"github.com/coinbase/chainparsers/internal/utils/log"
)

const (
	envFlagName        = "env"
	blockchainFlagName = "blockchain"
	networkFlagName    = "network"
)

type (
	CmdApp interface {
		Close()
		Config() *config.Config
	}

	cmdAppImpl struct {
		app    *fx.App
		config *config.Config
	}
)

var (
	commonFlags struct {
		env        string
		blockchain string
		network    string
		out        string
		logLevel   string
	}

	logger *zap.Logger
)

func init() {
	logger = log.NewDevelopment()
	rootCmd.PersistentFlags().StringVar(&commonFlags.env, envFlagName, string(config.EnvLocal), "one of [local, development, production]")
	rootCmd.PersistentFlags().StringVar(&commonFlags.blockchain, blockchainFlagName, string(config.BlockchainMultiversX), "blockchain full name")
	rootCmd.PersistentFlags().StringVar(&commonFlags.network, networkFlagName, string(config.NetworkMainnet), "network name (e.g. mainnet)")
	rootCmd.PersistentFlags().StringVar(&commonFlags.out, "out", "", "output filepath; the output is printed when empty")
	rootCmd.PersistentFlags().StringVar(&commonFlags.logLevel, "log-level", "info", "one of [debug, info, warn, error]")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		l, err := log.NewDevelopmentWithLevel(commonFlags.logLevel)
		if err != nil {
			return xerrors.Errorf("failed to create logger: %w", err)
		}

		logger = l
		return nil
	}
}

func newConfig() (*config.Config, error) {
	blockchain := config.Blockchain(commonFlags.blockchain)
	network, err := config.ParseNetwork(blockchain, commonFlags.network)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse network: %w", err)
	}

	cfg, err := config.New(
		config.WithBlockchain(blockchain),
		config.WithNetwork(network),
		config.WithEnvironment(config.Env(commonFlags.env)),
	)
	if err != nil {
		return nil, xerrors.Errorf("failed to create service config: %w", err)
	}

	return cfg, nil
}

func startApp(opts ...fx.Option) (CmdApp, error) {
	cfg, err := newConfig()
	if err != nil {
		return nil, err
	}

	finalOpts := []fx.Option{
		config.Module,
		config.WithCustomConfig(cfg),
		fxparams.Module,
		tally.Module,
		fx.NopLogger,
		fx.Provide(func() *zap.Logger { return logger }),
	}
	finalOpts = append(finalOpts, opts...)

	app := fx.New(finalOpts...)
	if err := app.Start(context.Background()); err != nil {
		return nil, xerrors.Errorf("failed to start app: %w", err)
	}

	return &cmdAppImpl{
		app:    app,
		config: cfg,
	}, nil
}

func (a *cmdAppImpl) Close() {
	if err := a.app.Stop(context.Background()); err != nil {
		logger.Error("failed to stop app", zap.Error(err))
	}
}

func (a *cmdAppImpl) Config() *config.Config {
	return a.config
}

// writeOutput prints v as indented JSON, or writes it to the --out file.
func writeOutput(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to marshal output: %w", err)
	}

	if commonFlags.out == "" {
		if _, err := cmd.OutOrStdout().Write(append(data, '\n')); err != nil {
			return xerrors.Errorf("failed to print output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(commonFlags.out, data, 0644); /* #nosec G306 */ err != nil {
		return xerrors.Errorf("failed to write output file: %w", err)
	}

	logger.Info("wrote output", zap.String("out", commonFlags.out))
	return nil
}
