package instrument

import (
	"context"
	"time"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/coinbase/chainparsers/internal/utils/log"
	"github.com/coinbase/chainparsers/internal/utils/timesource"
)

type (
	Instrument interface {
		Instrument(ctx context.Context, operation OperationFn, opts ...InstrumentOption) error
	}

	InstrumentWithResult[T any] interface {
		Instrument(ctx context.Context, operation OperationWithResultFn[T], opts ...InstrumentOption) (T, error)
	}

	OperationFn                  func(ctx context.Context) error
	OperationWithResultFn[T any] func(ctx context.Context) (T, error)
	FilterFn                     func(err error) bool
	// ClassifierFn maps an error to a low-cardinality metric tag value.
	ClassifierFn func(err error) string

	Option           func(c *options)
	InstrumentOption func(options *instrumentOptions)

	instrument struct {
		impl InstrumentWithResult[struct{}]
	}

	instrumentWithResult[T any] struct {
		name              string
		scope             tally.Scope
		success           tally.Counter
		successWithFilter tally.Counter
		latency           tally.Timer
		*options
	}

	options struct {
		filter     FilterFn
		classifier ClassifierFn
		timeSource timesource.TimeSource
		logger     *zap.Logger
		loggerMsg  string
		tracerMsg  string
		tracerTags map[string]string
		tags       map[string]string
	}

	instrumentOptions struct {
		loggerFields []zap.Field
	}
)

const (
	resultTypeTag     = "result_type"
	resultTypeError   = "error"
	resultTypeSuccess = "success"
	errorKindTag      = "error_kind"
	latencySuffix     = "latency"
	durationTag       = "duration"
	filteredTag       = "filtered"
)

func New(scope tally.Scope, name string, opts ...Option) Instrument {
	return &instrument{
		impl: NewWithResult[struct{}](scope, name, opts...),
	}
}

func NewWithResult[T any](scope tally.Scope, name string, opts ...Option) InstrumentWithResult[T] {
	options := &options{
		timeSource: timesource.NewRealTimeSource(),
		logger:     zap.NewNop(),
		loggerMsg:  name,
		tracerMsg:  name,
		tracerTags: make(map[string]string),
		tags:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(options)
	}

	if len(options.tags) > 0 {
		scope = scope.Tagged(options.tags)
	}

	return &instrumentWithResult[T]{
		name:  name,
		scope: scope,
		success: scope.Tagged(map[string]string{
			resultTypeTag: resultTypeSuccess,
		}).Counter(name),
		successWithFilter: scope.Tagged(map[string]string{
			resultTypeTag: resultTypeSuccess,
			filteredTag:   "true",
		}).Counter(name),
		latency: scope.SubScope(name).Timer(latencySuffix),
		options: options,
	}
}

// WithFilter counts the errors accepted by filter as successes.
func WithFilter(filter FilterFn) Option {
	return func(o *options) {
		o.filter = filter
	}
}

// WithClassifier tags the error counter with the kind returned by classifier.
func WithClassifier(classifier ClassifierFn) Option {
	return func(o *options) {
		o.classifier = classifier
	}
}

func WithLogger(logger *zap.Logger, msg string) Option {
	return func(o *options) {
		o.logger = logger
		o.loggerMsg = msg
	}
}

func WithTracer(msg string, tags map[string]string) Option {
	return func(o *options) {
		o.tracerMsg = msg
		for k, v := range tags {
			o.tracerTags[k] = v
		}
	}
}

// WithTags adds tags to every metric emitted by the instrument.
func WithTags(tags map[string]string) Option {
	return func(o *options) {
		for k, v := range tags {
			o.tags[k] = v
		}
	}
}

func WithTimeSource(timeSource timesource.TimeSource) Option {
	return func(o *options) {
		o.timeSource = timeSource
	}
}

func WithLoggerFields(fields ...zap.Field) InstrumentOption {
	return func(options *instrumentOptions) {
		options.loggerFields = append(options.loggerFields, fields...)
	}
}

func (i *instrument) Instrument(ctx context.Context, operation OperationFn, opts ...InstrumentOption) error {
	_, err := i.impl.Instrument(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	}, opts...)
	return err
}

func (i *instrumentWithResult[T]) Instrument(ctx context.Context, operation OperationWithResultFn[T], opts ...InstrumentOption) (T, error) {
	options := new(instrumentOptions)
	for _, opt := range opts {
		opt(options)
	}

	startTime := i.timeSource.Now()
	span, ctx := i.startSpan(ctx, startTime)
	res, err := operation(ctx)

	finishTime := i.timeSource.Now()
	duration := finishTime.Sub(startTime)
	i.latency.Record(duration)

	logger := log.WithSpan(ctx, i.logger).With(zap.String(durationTag, duration.String()))
	if len(options.loggerFields) > 0 {
		logger = logger.With(options.loggerFields...)
	}

	if err != nil {
		if i.filter != nil && i.filter(err) {
			i.onSuccessWithFilter(logger, span, finishTime, err)
		} else {
			i.onError(logger, span, finishTime, err)
		}
		return res, err
	}

	i.onSuccess(logger, span, finishTime)
	return res, nil
}

func (i *instrumentWithResult[T]) startSpan(ctx context.Context, startTime time.Time) (tracer.Span, context.Context) {
	opts := []tracer.StartSpanOption{
		tracer.SpanType("custom"),
		tracer.StartTime(startTime),
	}
	for k, v := range i.tracerTags {
		opts = append(opts, tracer.Tag(k, v))
	}
	return tracer.StartSpanFromContext(ctx, i.tracerMsg, opts...)
}

func (i *instrumentWithResult[T]) onSuccess(logger *zap.Logger, span tracer.Span, finishTime time.Time) {
	i.success.Inc(1)
	logger.Debug(i.loggerMsg)
	span.Finish(tracer.FinishTime(finishTime))
}

func (i *instrumentWithResult[T]) onSuccessWithFilter(logger *zap.Logger, span tracer.Span, finishTime time.Time, err error) {
	i.successWithFilter.Inc(1)
	logger.Debug(i.loggerMsg, zap.Error(err))
	span.Finish(tracer.FinishTime(finishTime), tracer.WithError(err))
}

func (i *instrumentWithResult[T]) onError(logger *zap.Logger, span tracer.Span, finishTime time.Time, err error) {
	tags := map[string]string{
		resultTypeTag: resultTypeError,
	}
	if i.classifier != nil {
		kind := i.classifier(err)
		tags[errorKindTag] = kind
		logger = logger.With(zap.String(errorKindTag, kind))
	}

	i.scope.Tagged(tags).Counter(i.name).Inc(1)
	logger.Warn(i.loggerMsg, zap.Error(err))
	span.Finish(tracer.FinishTime(finishTime), tracer.WithError(err))
}
