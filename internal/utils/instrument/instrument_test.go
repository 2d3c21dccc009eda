package instrument

import (
	"context"
	"testing"
	"time"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/utils/testutil"
	"github.com/coinbase/chainparsers/internal/utils/timesource"
)

var errMock = xerrors.New("mock")

func TestInstrument(t *testing.T) {
	tests := []struct {
		name          string
		hasError      bool
		successValue  int64
		filteredValue int64
		errorValue    int64
		fn            OperationFn
		opts          []Option
	}{
		{
			name:         "success",
			successValue: 1,
			fn:           func(ctx context.Context) error { return nil },
		},
		{
			name:       "error",
			hasError:   true,
			errorValue: 1,
			fn:         func(ctx context.Context) error { return errMock },
		},
		{
			name:          "withFilter",
			hasError:      true,
			filteredValue: 1,
			fn:            func(ctx context.Context) error { return xerrors.Errorf("wrapped: %w", errMock) },
			opts: []Option{
				WithFilter(func(err error) bool {
					return xerrors.Is(err, errMock)
				}),
			},
		},
		{
			name:         "withTimeSource",
			successValue: 1,
			fn:           func(ctx context.Context) error { return nil },
			opts: []Option{
				WithTimeSource(timesource.NewTickingTimeSource()),
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := testutil.Require(t)

			scope := tally.NewTestScope("", nil)
			err := New(scope, "test", test.opts...).Instrument(context.Background(), test.fn)
			if test.hasError {
				require.Error(err)
			} else {
				require.NoError(err)
			}

			counters := countersByResult(scope)
			require.Equal(test.successValue, counters["success"])
			require.Equal(test.filteredValue, counters["success/filtered"])
			require.Equal(test.errorValue, counters["error"])
		})
	}
}

func TestInstrumentWithResult(t *testing.T) {
	require := testutil.Require(t)

	scope := tally.NewTestScope("", nil)
	instrument := NewWithResult[int](scope, "answer", WithTimeSource(timesource.NewTickingTimeSource()))
	result, err := instrument.Instrument(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(err)
	require.Equal(42, result)

	timers := scope.Snapshot().Timers()
	require.Len(timers, 1)
	for _, timer := range timers {
		require.Equal("answer.latency", timer.Name())
		require.Equal([]time.Duration{time.Second}, timer.Values())
	}
}

func TestInstrument_Classifier(t *testing.T) {
	require := testutil.Require(t)

	core, logs := observer.New(zap.DebugLevel)
	scope := tally.NewTestScope("", nil)
	instrument := New(
		scope,
		"parse",
		WithLogger(zap.New(core), "parser.parse"),
		WithTags(map[string]string{"kind": "transfer"}),
		WithClassifier(func(err error) string { return "malformed_argument" }),
	)

	err := instrument.Instrument(context.Background(), func(ctx context.Context) error {
		return errMock
	}, WithLoggerFields(zap.Uint64("handle", 7)))
	require.Error(err)

	var found bool
	for _, counter := range scope.Snapshot().Counters() {
		if counter.Tags()[resultTypeTag] != resultTypeError {
			continue
		}

		found = true
		require.Equal("parse", counter.Name())
		require.Equal("malformed_argument", counter.Tags()[errorKindTag])
		require.Equal("transfer", counter.Tags()["kind"])
		require.Equal(int64(1), counter.Value())
	}
	require.True(found)

	entries := logs.FilterMessage("parser.parse").All()
	require.Len(entries, 1)
	require.Equal(zap.WarnLevel, entries[0].Level)
	require.Equal(uint64(7), entries[0].ContextMap()["handle"])
	require.Equal("malformed_argument", entries[0].ContextMap()[errorKindTag])
}

func countersByResult(scope tally.TestScope) map[string]int64 {
	res := make(map[string]int64)
	for _, counter := range scope.Snapshot().Counters() {
		key := counter.Tags()[resultTypeTag]
		if counter.Tags()[filteredTag] == "true" {
			key += "/filtered"
		}

		res[key] += counter.Value()
	}

	return res
}
