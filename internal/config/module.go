package config

import (
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In
		Override *override `optional:"true"`
	}

	// override replaces the config loaded from the environment.
	override struct {
		config *Config
	}
)

var Module = fx.Options(
	fx.Provide(NewFacade),
)

// NewFacade provides the overriding config if any, and otherwise loads the config selected by the environment.
func NewFacade(params Params) (*Config, error) {
	if params.Override != nil {
		return params.Override.config, nil
	}

	return New()
}

// WithCustomConfig injects a custom config to replace the default one.
func WithCustomConfig(config *Config) fx.Option {
	return fx.Provide(func() *override {
		return &override{config: config}
	})
}
