package parser

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/datafield"
	"github.com/coinbase/chainparsers/internal/config"
)

type transactionParser struct {
	*recordParser
}

var _ Parser = (*transactionParser)(nil)

// NewTransactionParser accepts a partial config.
// Without gas parameters the gas limit is not validated, and without a pubkey length addresses of any length are accepted.
func NewTransactionParser(params ParserParams, cfg config.ParserConfig) (Parser, error) {
	return &transactionParser{
		recordParser: newRecordParser(params, KindTransaction, cfg),
	}, nil
}

func (p *transactionParser) Parse(ctx context.Context, record Record) (IndexedRecord, error) {
	transaction, ok := record.(*RawTransaction)
	if !ok || transaction == nil {
		return nil, p.invalidRecordError(record)
	}

	if err := p.validate.Struct(transaction); err != nil {
		return nil, xerrors.Errorf("invalid transaction %v: %v: %w", transaction.Hash, NewTruncatedError(err), ErrInvalidRecord)
	}

	extraction, err := p.extract(transaction, false)
	if err != nil {
		return nil, err
	}

	indexed := &IndexedTransaction{
		RawTransaction: *transaction,
		Extraction:     *extraction,
	}

	if indexed.Function == "" {
		if function, _, err := datafield.ParseCallData(transaction.Data); err == nil {
			indexed.Function = function
		}
	}

	return indexed, nil
}
