package parser

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/address"
	"github.com/coinbase/chainparsers/internal/blockchain/datafield"
	"github.com/coinbase/chainparsers/internal/blockchain/gas"
	"github.com/coinbase/chainparsers/internal/config"
)

// recordParser holds the logic shared by the transaction and transfer parsers.
// Every field is read-only after construction.
type recordParser struct {
	kind     Kind
	config   config.ParserConfig
	gasModel gas.Model
	decoder  *datafield.Decoder
	validate *validator.Validate
}

func newRecordParser(params ParserParams, kind Kind, cfg config.ParserConfig) *recordParser {
	if cfg.AddressHrp == "" && params.Config != nil {
		cfg.AddressHrp = params.Config.Chain.AddressHrp
	}

	if cfg.AddressHrp == "" {
		cfg.AddressHrp = address.DefaultHrp
	}

	return &recordParser{
		kind:     kind,
		config:   cfg,
		gasModel: gas.NewModel(cfg.MinGasLimit, cfg.GasLimitPerByte),
		decoder: datafield.NewDecoder(
			datafield.WithAddressLength(int(cfg.PubkeyLength)),
			datafield.WithHrp(cfg.AddressHrp),
		),
		validate: validator.New(),
	}
}

func (p *recordParser) Kind() Kind {
	return p.kind
}

func (p *recordParser) Config() config.ParserConfig {
	return p.config
}

// extract decodes the addresses, the data field and the amounts of a record.
// The gas validation is computed when the parser has a gas model or when requireGas is set.
func (p *recordParser) extract(record *RawTransaction, requireGas bool) (*Extraction, error) {
	value, err := datafield.ParseDecimalAmount(record.Value)
	if err != nil {
		return nil, xerrors.Errorf("invalid value of %v %v: %w", p.kind, record.Hash, err)
	}

	var sender address.Address
	if record.Sender != "" {
		sender, err = p.decodeAddress("sender", record.Sender)
		if err != nil {
			return nil, err
		}
	}

	receiver, err := p.decodeAddress("receiver", record.Receiver)
	if err != nil {
		return nil, err
	}

	transfers, err := p.decoder.Decode(record.Data, receiver)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode data of %v %v: %w", p.kind, record.Hash, err)
	}

	var validation *gas.Validation
	if requireGas || p.gasModel.IsEnabled() {
		validation, err = p.gasModel.Validate(record.GasLimit, uint64(len(record.Data)))
		if err != nil {
			return nil, xerrors.Errorf("failed to validate gas limit of %v %v: %w", p.kind, record.Hash, err)
		}
	}

	operations, err := buildOperations(&operationsInput{
		record:   record,
		sender:   sender,
		receiver: receiver,
		value:    value,
		events:   transfers,
		gasModel: p.gasModel,
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to build operations of %v %v: %w", p.kind, record.Hash, err)
	}

	if operations == nil {
		operations = []*Operation{}
	}

	return &Extraction{
		Transfers:          transfers,
		GasLimitValidation: validation,
		Operations:         operations,
	}, nil
}

func (p *recordParser) decodeAddress(field string, value string) (address.Address, error) {
	addr, err := address.Decode(value, p.config.AddressHrp)
	if err != nil {
		return address.Address{}, xerrors.Errorf("failed to decode %v: %v: %w", field, err, ErrMalformedArgument)
	}

	if p.config.PubkeyLength > 0 && addr.Len() != int(p.config.PubkeyLength) {
		return address.Address{}, xerrors.Errorf(
			"%v %v has %d bytes (expected=%d): %w",
			field, value, addr.Len(), p.config.PubkeyLength, ErrInvalidAddressLength,
		)
	}

	return addr, nil
}

func (p *recordParser) invalidRecordError(record Record) error {
	return xerrors.Errorf("%v parser cannot parse a %T: %w", p.kind, record, ErrInvalidRecord)
}
