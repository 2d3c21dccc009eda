package parser

import (
	"context"

	"go.uber.org/fx"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/utils/fxparams"
	"github.com/coinbase/chainparsers/internal/utils/log"
)

type (
	// Parser turns raw records of a single kind into indexed records.
	// Its config is bound at creation and a parser is safe for concurrent use.
	Parser interface {
		Kind() Kind
		Config() config.ParserConfig
		Parse(ctx context.Context, record Record) (IndexedRecord, error)
	}

	ParserFactory interface {
		Kind() Kind
		NewParser(cfg config.ParserConfig) (Parser, error)
	}

	ParserParams struct {
		fx.In
		fxparams.Params
	}

	NewParserFn func(params ParserParams, cfg config.ParserConfig) (Parser, error)

	ParserBuilder struct {
		kind        Kind
		newParserFn NewParserFn
	}

	parserFactoryImpl struct {
		params      ParserParams
		kind        Kind
		newParserFn NewParserFn
	}
)

func NewParserBuilder(kind Kind, newParserFn NewParserFn) *ParserBuilder {
	return &ParserBuilder{
		kind:        kind,
		newParserFn: newParserFn,
	}
}

// Build provides the factory under the name of its kind.
func (b *ParserBuilder) Build() fx.Option {
	return fx.Provide(fx.Annotated{
		Name: string(b.kind),
		Target: func(params ParserParams) ParserFactory {
			return NewParserFactory(params, b.kind, b.newParserFn)
		},
	})
}

func NewParserFactory(params ParserParams, kind Kind, newParserFn NewParserFn) ParserFactory {
	return &parserFactoryImpl{
		params:      params,
		kind:        kind,
		newParserFn: newParserFn,
	}
}

func (f *parserFactoryImpl) Kind() Kind {
	return f.kind
}

func (f *parserFactoryImpl) NewParser(cfg config.ParserConfig) (Parser, error) {
	parser, err := f.newParserFn(f.params, cfg)
	if err != nil {
		return nil, xerrors.Errorf("failed to create %v parser: %w", f.kind, err)
	}

	return WithInstrumentInterceptor(parser, f.params.Metrics, log.WithPackage(f.params.Logger)), nil
}

// DefaultParserConfig returns the parser config of the given kind declared in the app config.
func DefaultParserConfig(cfg *config.Config, kind Kind) (config.ParserConfig, error) {
	var parserConfig config.ParserConfig
	switch kind {
	case KindTransaction:
		parserConfig = cfg.Parser.Transaction
	case KindTransfer:
		parserConfig = cfg.Parser.Transfer
	default:
		return config.ParserConfig{}, newUnknownKindError(kind)
	}

	if parserConfig.AddressHrp == "" {
		parserConfig.AddressHrp = cfg.Chain.AddressHrp
	}

	return parserConfig, nil
}
