package log

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func New() *zap.Logger {
	cfg := zap.NewProductionConfig()

	logger, err := cfg.Build(zap.AddStacktrace(zap.FatalLevel))
	if err != nil {
		panic(err)
	}

	return logger
}

func NewDevelopment() *zap.Logger {
	logger, err := NewDevelopmentWithLevel(zapcore.DebugLevel.String())
	if err != nil {
		panic(err)
	}

	return logger
}

// NewDevelopmentWithLevel builds a console logger which drops entries below the given level, e.g. "info".
func NewDevelopmentWithLevel(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, xerrors.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	logger, err := cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, xerrors.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

// WithPackage adds a package tag to the logger, using the package name of the caller.
func WithPackage(logger *zap.Logger) *zap.Logger {
	const skipOffset = 1 // skip WithPackage

	_, file, _, ok := runtime.Caller(skipOffset)
	if !ok {
		return logger
	}

	packageName := filepath.Base(filepath.Dir(file))
	return logger.With(zap.String("package", packageName))
}

// WithSpan adds datadog span trace id for datadog https://docs.datadoghq.com/tracing/connect_logs_and_traces/go/
func WithSpan(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if span, ok := tracer.SpanFromContext(ctx); ok {
		spanContext := span.Context()
		return logger.With(
			zap.String("dd.trace_id", strconv.FormatUint(spanContext.TraceID(), 10)),
			zap.String("dd.span_id", strconv.FormatUint(spanContext.SpanID(), 10)),
		)
	}

	return logger
}
