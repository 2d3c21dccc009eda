package parser_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
	"go.uber.org/mock/gomock"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/parser"
	"github.com/coinbase/chainparsers/internal/blockchain/parser/parsermocks"
	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/utils/testapp"
	"github.com/coinbase/chainparsers/internal/utils/testutil"
)

type registryTestSuite struct {
	suite.Suite

	ctrl               *gomock.Controller
	app                testapp.TestApp
	registry           parser.Registry
	transactionFactory *parsermocks.MockParserFactory
	transferFactory    *parsermocks.MockParserFactory
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(registryTestSuite))
}

func (s *registryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.transactionFactory = parsermocks.NewMockParserFactory(s.ctrl)
	s.transactionFactory.EXPECT().Kind().Return(parser.KindTransaction).AnyTimes()
	s.transferFactory = parsermocks.NewMockParserFactory(s.ctrl)
	s.transferFactory.EXPECT().Kind().Return(parser.KindTransfer).AnyTimes()

	s.app = testapp.New(
		s.T(),
		fx.Provide(fx.Annotated{
			Name:   string(parser.KindTransaction),
			Target: func() parser.ParserFactory { return s.transactionFactory },
		}),
		fx.Provide(fx.Annotated{
			Name:   string(parser.KindTransfer),
			Target: func() parser.ParserFactory { return s.transferFactory },
		}),
		fx.Provide(parser.NewRegistry),
		fx.Populate(&s.registry),
	)
}

func (s *registryTestSuite) TearDownTest() {
	s.app.Close()
	s.ctrl.Finish()
}

func (s *registryTestSuite) newParser() *parsermocks.MockParser {
	p := parsermocks.NewMockParser(s.ctrl)
	s.transactionFactory.EXPECT().NewParser(gomock.Any()).Return(p, nil)
	return p
}

func (s *registryTestSuite) TestCreate_HandlesAreNeverReused() {
	require := testutil.Require(s.T())

	s.newParser()
	first, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)
	require.Equal(parser.Handle(1), first)

	s.registry.Dispose(first)

	s.newParser()
	second, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)
	require.Greater(uint64(second), uint64(first))
	require.Equal([]parser.Handle{second}, s.registry.Handles())
}

func (s *registryTestSuite) TestCreate_UnknownKind() {
	require := testutil.Require(s.T())

	_, err := s.registry.Create(parser.Kind("block"), config.ParserConfig{})
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrUnknownKind))
}

func (s *registryTestSuite) TestCreate_FactoryError() {
	require := testutil.Require(s.T())

	s.transferFactory.EXPECT().NewParser(gomock.Any()).Return(nil, parser.ErrInvalidConfig)
	_, err := s.registry.Create(parser.KindTransfer, config.ParserConfig{})
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrInvalidConfig))
	require.Empty(s.registry.Handles())
}

func (s *registryTestSuite) TestParse_AfterDispose() {
	require := testutil.Require(s.T())

	s.newParser()
	handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)

	s.registry.Dispose(handle)
	s.registry.Dispose(handle)

	_, err = s.registry.Parse(context.Background(), handle, &parser.RawTransaction{})
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrUnknownHandle))

	_, err = s.registry.ParseBatch(context.Background(), handle, []parser.Record{&parser.RawTransaction{}})
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrUnknownHandle))
}

func (s *registryTestSuite) TestDispose_UnknownHandle() {
	require := testutil.Require(s.T())

	require.NotPanics(func() {
		s.registry.Dispose(parser.Handle(42))
	})
}

func (s *registryTestSuite) TestParse_Delegates() {
	require := testutil.Require(s.T())

	p := s.newParser()
	handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)

	transaction := &parser.RawTransaction{Hash: "abc"}
	expected := &parser.IndexedTransaction{RawTransaction: *transaction}
	p.EXPECT().Parse(gomock.Any(), transaction).Return(expected, nil)

	actual, err := s.registry.ParseTransaction(context.Background(), handle, transaction)
	require.NoError(err)
	require.Equal(expected, actual)
}

func (s *registryTestSuite) TestParseTransaction_UnexpectedResult() {
	require := testutil.Require(s.T())

	p := s.newParser()
	handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)

	p.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(&parser.IndexedTransfer{}, nil)
	_, err = s.registry.ParseTransaction(context.Background(), handle, &parser.RawTransaction{})
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrInvalidRecord))
}

func (s *registryTestSuite) TestDispose_WaitsForInflightParse() {
	require := testutil.Require(s.T())

	p := s.newParser()
	handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)

	started := make(chan struct{})
	release := make(chan struct{})
	p.EXPECT().Parse(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, record parser.Record) (parser.IndexedRecord, error) {
			close(started)
			<-release
			return &parser.IndexedTransaction{}, nil
		},
	)

	parsed := make(chan error, 1)
	go func() {
		_, err := s.registry.Parse(context.Background(), handle, &parser.RawTransaction{})
		parsed <- err
	}()
	<-started

	disposed := make(chan struct{})
	go func() {
		s.registry.Dispose(handle)
		close(disposed)
	}()

	select {
	case <-disposed:
		require.Fail("dispose returned while a parse was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	// New lookups fail as soon as the handle is removed.
	require.Eventually(func() bool {
		_, err := s.registry.Parse(context.Background(), handle, &parser.RawTransaction{})
		return xerrors.Is(err, parser.ErrUnknownHandle)
	}, time.Second, 10*time.Millisecond)

	close(release)
	<-disposed
	require.NoError(<-parsed)
}

func (s *registryTestSuite) TestParse_ConcurrentDispose() {
	require := testutil.Require(s.T())

	const numParsers = 8
	const numWorkers = 16

	handles := make([]parser.Handle, numParsers)
	for i := range handles {
		p := s.newParser()
		p.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(&parser.IndexedTransaction{}, nil).AnyTimes()

		handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
		require.NoError(err)
		handles[i] = handle
	}

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers*numParsers)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, handle := range handles {
				if _, err := s.registry.Parse(context.Background(), handle, &parser.RawTransaction{}); err != nil {
					errs <- err
				}
			}
		}()
	}

	for _, handle := range handles {
		s.registry.Dispose(handle)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.True(xerrors.Is(err, parser.ErrUnknownHandle), err.Error())
	}
	require.Empty(s.registry.Handles())
}

func (s *registryTestSuite) TestParseBatch_PreservesOrder() {
	require := testutil.Require(s.T())

	p := s.newParser()
	handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)

	p.EXPECT().Parse(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, record parser.Record) (parser.IndexedRecord, error) {
			transaction := record.(*parser.RawTransaction)
			// Later records finish first.
			time.Sleep(time.Duration(10-transaction.Nonce) * time.Millisecond)
			return &parser.IndexedTransaction{RawTransaction: *transaction}, nil
		},
	).Times(10)

	records := make([]parser.Record, 10)
	for i := range records {
		records[i] = &parser.RawTransaction{Nonce: uint64(i)}
	}

	results, err := s.registry.ParseBatch(context.Background(), handle, records)
	require.NoError(err)
	require.Len(results, len(records))
	for i, result := range results {
		require.Equal(uint64(i), result.(*parser.IndexedTransaction).Nonce)
	}
}

func (s *registryTestSuite) TestParseBatch_Error() {
	require := testutil.Require(s.T())

	p := s.newParser()
	handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
	require.NoError(err)

	p.EXPECT().Parse(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, record parser.Record) (parser.IndexedRecord, error) {
			if record.(*parser.RawTransaction).Nonce == 3 {
				return nil, xerrors.Errorf("bad data: %w", parser.ErrMalformedArgument)
			}

			return &parser.IndexedTransaction{}, nil
		},
	).AnyTimes()

	records := make([]parser.Record, 5)
	for i := range records {
		records[i] = &parser.RawTransaction{Nonce: uint64(i)}
	}

	results, err := s.registry.ParseBatch(context.Background(), handle, records)
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrMalformedArgument))
	require.Nil(results)
}

func (s *registryTestSuite) TestClose() {
	require := testutil.Require(s.T())

	var handles []parser.Handle
	for i := 0; i < 3; i++ {
		s.newParser()
		handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{})
		require.NoError(err)
		handles = append(handles, handle)
	}
	require.Equal(handles, s.registry.Handles())

	s.registry.Close()
	require.Empty(s.registry.Handles())

	_, err := s.registry.Parse(context.Background(), handles[0], &parser.RawTransaction{})
	require.True(xerrors.Is(err, parser.ErrUnknownHandle))
}
