package parser

import (
	"context"
	"fmt"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/utils/instrument"
)

type (
	instrumentInterceptor struct {
		parser          Parser
		instrumentParse instrument.InstrumentWithResult[IndexedRecord]
	}
)

const (
	kindTag = "kind"
)

var _ Parser = (*instrumentInterceptor)(nil)

func WithInstrumentInterceptor(parser Parser, scope tally.Scope, logger *zap.Logger) Parser {
	scope = scope.SubScope("parser")
	kind := parser.Kind()

	return &instrumentInterceptor{
		parser:          parser,
		instrumentParse: newInstrumentWithResult[IndexedRecord]("parse", kind, scope, logger),
	}
}

func newInstrumentWithResult[T any](method string, kind Kind, scope tally.Scope, logger *zap.Logger) instrument.InstrumentWithResult[T] {
	return instrument.NewWithResult[T](
		scope,
		method,
		instrument.WithLogger(logger.With(zap.String(kindTag, string(kind))), fmt.Sprintf("parser.%v", method)),
		instrument.WithTracer(fmt.Sprintf("parser.%v", method), map[string]string{kindTag: string(kind)}),
		instrument.WithTags(map[string]string{kindTag: string(kind)}),
		instrument.WithClassifier(ErrorKind),
	)
}

func (i *instrumentInterceptor) Kind() Kind {
	return i.parser.Kind()
}

func (i *instrumentInterceptor) Config() config.ParserConfig {
	return i.parser.Config()
}

func (i *instrumentInterceptor) Parse(ctx context.Context, record Record) (IndexedRecord, error) {
	return i.instrumentParse.Instrument(
		ctx,
		func(ctx context.Context) (IndexedRecord, error) {
			return i.parser.Parse(ctx, record)
		},
		instrument.WithLoggerFields(
			zap.String("hash", recordHash(record)),
		),
	)
}

func recordHash(record Record) string {
	switch r := record.(type) {
	case *RawTransaction:
		if r != nil {
			return r.Hash
		}
	case *RawTransfer:
		if r != nil {
			return r.Hash
		}
	}

	return ""
}
