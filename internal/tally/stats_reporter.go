package tally

import (
	"context"
	"sort"
	"strconv"
	"time"

	smirastatsd "github.com/smira/go-statsd"
	"github.com/uber-go/tally/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/coinbase/chainparsers/internal/config"
)

type (
	StatsReporterParams struct {
		fx.In
		Lifecycle fx.Lifecycle
		Logger    *zap.Logger
		Config    *config.Config
	}

	reporter struct {
		client *smirastatsd.Client
	}
)

const (
	reportingInterval = time.Second

	bucketTag = "bucket"
)

var (
	// Tags are emitted in the datadog format.
	tagFormat = smirastatsd.TagFormatDatadog
)

func NewStatsReporter(params StatsReporterParams) tally.StatsReporter {
	if params.Config.StatsD == nil {
		return tally.NullStatsReporter
	}

	cfg := params.Config.StatsD
	client := smirastatsd.NewClient(
		cfg.Address,
		smirastatsd.MetricPrefix(cfg.Prefix),
		smirastatsd.TagStyle(tagFormat),
		smirastatsd.ReportInterval(reportingInterval),
	)
	params.Logger.Info("initialized statsd client", zap.String("address", cfg.Address))
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return newReporter(client)
}

func newReporter(client *smirastatsd.Client) tally.StatsReporter {
	return &reporter{
		client: client,
	}
}

func convertTags(tagsMap map[string]string, extra ...smirastatsd.Tag) []smirastatsd.Tag {
	keys := make([]string, 0, len(tagsMap))
	for key := range tagsMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tags := make([]smirastatsd.Tag, 0, len(tagsMap)+len(extra))
	for _, key := range keys {
		tags = append(tags, smirastatsd.StringTag(key, tagsMap[key]))
	}
	return append(tags, extra...)
}

func (r *reporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.client.Incr(name, value, convertTags(tags)...)
}

func (r *reporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.client.FGauge(name, value, convertTags(tags)...)
}

func (r *reporter) ReportTimer(name string, tags map[string]string, value time.Duration) {
	r.client.PrecisionTiming(name, value, convertTags(tags)...)
}

// ReportHistogramValueSamples reports the samples of a bucket as a counter tagged with the bucket upper bound.
func (r *reporter) ReportHistogramValueSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound,
	bucketUpperBound float64,
	samples int64) {
	bucket := smirastatsd.StringTag(bucketTag, strconv.FormatFloat(bucketUpperBound, 'f', -1, 64))
	r.client.Incr(name, samples, convertTags(tags, bucket)...)
}

func (r *reporter) ReportHistogramDurationSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound,
	bucketUpperBound time.Duration,
	samples int64) {
	bucket := smirastatsd.StringTag(bucketTag, bucketUpperBound.String())
	r.client.Incr(name, samples, convertTags(tags, bucket)...)
}

func (r *reporter) Capabilities() tally.Capabilities {
	return r
}

func (r *reporter) Reporting() bool {
	return true
}

func (r *reporter) Tagging() bool {
	return true
}

func (r *reporter) Flush() {
	// The statsd client flushes on its own interval.
}
