package parser

import (
	"context"

	"github.com/go-playground/validator/v10"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/config"
)

type (
	transferParser struct {
		*recordParser
	}

	transferConfigRequirements struct {
		MinGasLimit     uint64 `validate:"required"`
		GasLimitPerByte uint64 `validate:"required"`
		PubkeyLength    uint32 `validate:"required"`
	}
)

var _ Parser = (*transferParser)(nil)

// NewTransferParser requires every gas parameter and the pubkey length.
func NewTransferParser(params ParserParams, cfg config.ParserConfig) (Parser, error) {
	requirements := &transferConfigRequirements{
		MinGasLimit:     cfg.MinGasLimit,
		GasLimitPerByte: cfg.GasLimitPerByte,
		PubkeyLength:    cfg.PubkeyLength,
	}
	if err := validator.New().Struct(requirements); err != nil {
		return nil, xerrors.Errorf("incomplete transfer parser config: %v: %w", NewTruncatedError(err), ErrInvalidConfig)
	}

	return &transferParser{
		recordParser: newRecordParser(params, KindTransfer, cfg),
	}, nil
}

func (p *transferParser) Parse(ctx context.Context, record Record) (IndexedRecord, error) {
	transfer, ok := record.(*RawTransfer)
	if !ok || transfer == nil {
		return nil, p.invalidRecordError(record)
	}

	if err := p.validate.StructExcept(transfer, "Sender", "GasLimit"); err != nil {
		return nil, xerrors.Errorf("invalid transfer %v: %v: %w", transfer.Hash, NewTruncatedError(err), ErrInvalidRecord)
	}

	extraction, err := p.extract((*RawTransaction)(transfer), true)
	if err != nil {
		return nil, err
	}

	return &IndexedTransfer{
		RawTransfer: *transfer,
		Extraction:  *extraction,
	}, nil
}
