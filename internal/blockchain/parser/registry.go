package parser

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/utils/fxparams"
	"github.com/coinbase/chainparsers/internal/utils/log"
	"github.com/coinbase/chainparsers/internal/utils/syncgroup"
)

type (
	// Registry owns the live parsers and hands out opaque handles to them.
	Registry interface {
		// Create validates cfg against the requirements of kind and binds a new parser to a fresh handle.
		Create(kind Kind, cfg config.ParserConfig) (Handle, error)
		Parse(ctx context.Context, handle Handle, record Record) (IndexedRecord, error)
		ParseTransaction(ctx context.Context, handle Handle, transaction *RawTransaction) (*IndexedTransaction, error)
		ParseTransfer(ctx context.Context, handle Handle, transfer *RawTransfer) (*IndexedTransfer, error)
		// ParseBatch parses the records concurrently. The outputs follow the order of the inputs.
		ParseBatch(ctx context.Context, handle Handle, records []Record) ([]IndexedRecord, error)
		// Dispose invalidates the handle and waits for the parses in flight on it.
		// Unknown or already disposed handles are ignored.
		Dispose(handle Handle)
		Handles() []Handle
		Close()
	}

	RegistryParams struct {
		fx.In
		fxparams.Params
		Lifecycle   fx.Lifecycle
		Transaction ParserFactory `name:"transaction"`
		Transfer    ParserFactory `name:"transfer"`
	}

	registryImpl struct {
		logger     *zap.Logger
		numWorkers int
		factories  map[Kind]ParserFactory
		lastHandle *atomic.Uint64

		mu      sync.RWMutex
		entries map[Handle]*registryEntry
	}

	registryEntry struct {
		parser Parser
		// inflight counts the parses holding the entry.
		inflight sync.WaitGroup
	}
)

var _ Registry = (*registryImpl)(nil)

func NewRegistry(params RegistryParams) Registry {
	registry := newRegistry(params.Params, params.Transaction, params.Transfer)
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			registry.Close()
			return nil
		},
	})

	return registry
}

func newRegistry(params fxparams.Params, factories ...ParserFactory) *registryImpl {
	registry := &registryImpl{
		logger:     log.WithPackage(params.Logger),
		numWorkers: params.Config.Parser.NumWorkers,
		factories:  make(map[Kind]ParserFactory, len(factories)),
		lastHandle: atomic.NewUint64(0),
		entries:    make(map[Handle]*registryEntry),
	}

	for _, factory := range factories {
		registry.factories[factory.Kind()] = factory
	}

	return registry
}

func (r *registryImpl) Create(kind Kind, cfg config.ParserConfig) (Handle, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return 0, newUnknownKindError(kind)
	}

	parser, err := factory.NewParser(cfg)
	if err != nil {
		return 0, xerrors.Errorf("failed to create parser: %w", err)
	}

	handle := Handle(r.lastHandle.Inc())

	r.mu.Lock()
	r.entries[handle] = &registryEntry{parser: parser}
	r.mu.Unlock()

	r.logger.Debug(
		"created parser",
		zap.Uint64("handle", uint64(handle)),
		zap.String("kind", string(kind)),
		zap.Reflect("config", cfg),
	)
	return handle, nil
}

func (r *registryImpl) Parse(ctx context.Context, handle Handle, record Record) (IndexedRecord, error) {
	entry, err := r.acquire(handle)
	if err != nil {
		return nil, err
	}
	defer entry.inflight.Done()

	return entry.parser.Parse(ctx, record)
}

func (r *registryImpl) ParseTransaction(ctx context.Context, handle Handle, transaction *RawTransaction) (*IndexedTransaction, error) {
	indexed, err := r.Parse(ctx, handle, transaction)
	if err != nil {
		return nil, err
	}

	result, ok := indexed.(*IndexedTransaction)
	if !ok {
		return nil, xerrors.Errorf("handle %v produced a %T: %w", handle, indexed, ErrInvalidRecord)
	}

	return result, nil
}

func (r *registryImpl) ParseTransfer(ctx context.Context, handle Handle, transfer *RawTransfer) (*IndexedTransfer, error) {
	indexed, err := r.Parse(ctx, handle, transfer)
	if err != nil {
		return nil, err
	}

	result, ok := indexed.(*IndexedTransfer)
	if !ok {
		return nil, xerrors.Errorf("handle %v produced a %T: %w", handle, indexed, ErrInvalidRecord)
	}

	return result, nil
}

func (r *registryImpl) ParseBatch(ctx context.Context, handle Handle, records []Record) ([]IndexedRecord, error) {
	entry, err := r.acquire(handle)
	if err != nil {
		return nil, err
	}
	defer entry.inflight.Done()

	return syncgroup.Map(
		ctx,
		records,
		func(ctx context.Context, index int, record Record) (IndexedRecord, error) {
			indexed, err := entry.parser.Parse(ctx, record)
			if err != nil {
				return nil, xerrors.Errorf("failed to parse record %d: %w", index, err)
			}

			return indexed, nil
		},
		syncgroup.WithThrottling(r.numWorkers),
		syncgroup.WithRecover(),
	)
}

func (r *registryImpl) Dispose(handle Handle) {
	r.mu.Lock()
	entry, ok := r.entries[handle]
	delete(r.entries, handle)
	r.mu.Unlock()

	if !ok {
		return
	}

	entry.inflight.Wait()
	r.logger.Debug("disposed parser", zap.Uint64("handle", uint64(handle)))
}

// Handles returns the live handles in creation order.
func (r *registryImpl) Handles() []Handle {
	r.mu.RLock()
	handles := make([]Handle, 0, len(r.entries))
	for handle := range r.entries {
		handles = append(handles, handle)
	}
	r.mu.RUnlock()

	sort.Slice(handles, func(i, j int) bool {
		return handles[i] < handles[j]
	})
	return handles
}

// Close disposes every live handle. The registry remains usable afterwards.
func (r *registryImpl) Close() {
	for _, handle := range r.Handles() {
		r.Dispose(handle)
	}
}

// acquire registers a parse on the entry. The caller must release it with inflight.Done.
// The entry is looked up and pinned under the same read lock, so Dispose cannot start waiting in between.
func (r *registryImpl) acquire(handle Handle) (*registryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[handle]
	if !ok {
		return nil, xerrors.Errorf("handle %v: %w", handle, ErrUnknownHandle)
	}

	entry.inflight.Add(1)
	return entry, nil
}
