package parser_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/gas"
	"github.com/coinbase/chainparsers/internal/blockchain/parser"
	"github.com/coinbase/chainparsers/internal/config"
	"github.com/coinbase/chainparsers/internal/utils/fixtures"
	"github.com/coinbase/chainparsers/internal/utils/testapp"
	"github.com/coinbase/chainparsers/internal/utils/testutil"
)

const (
	alice    = "erd1qyu5wthldzr8wx5c9ucg8kjagg0jfs53s8nr3zpz3hypefsdd8ssycr6th"
	bob      = "erd1spyavw0956vq68xj8y4tenjpq2wd5a9p2c6j8gsz7ztyrnpxrruqzu66jx"
	frank    = "erd1kdl46yctawygtwg2k462307dmz2v55c605737dp3zkxh04sct7asqylhyv"
	contract = "erd1qqqqqqqqqqqqqpgqzyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zygshp4wmg"
	// shortAddress encodes a 31-byte public key.
	shortAddress = "erd1qyu5wthldzr8wx5c9ucg8kjagg0jfs53s8nr3zpz3hypefsddya6kryz"
)

type transactionParserTestSuite struct {
	suite.Suite

	app      testapp.TestApp
	registry parser.Registry
	handle   parser.Handle
}

func TestTransactionParserTestSuite(t *testing.T) {
	suite.Run(t, new(transactionParserTestSuite))
}

func (s *transactionParserTestSuite) SetupTest() {
	require := testutil.Require(s.T())

	s.app = testapp.New(
		s.T(),
		parser.Module,
		fx.Populate(&s.registry),
	)

	cfg, err := parser.DefaultParserConfig(s.app.Config(), parser.KindTransaction)
	require.NoError(err)

	s.handle, err = s.registry.Create(parser.KindTransaction, cfg)
	require.NoError(err)
}

func (s *transactionParserTestSuite) TearDownTest() {
	s.app.Close()
}

func (s *transactionParserTestSuite) TestParseRegular() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_regular.json")
	indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.NoError(err)

	require.Equal(parser.KindTransaction, indexed.Kind())
	require.Equal(transaction.Hash, indexed.Hash)
	require.Empty(indexed.Transfers)
	require.NotNil(indexed.Transfers)
	require.Nil(indexed.GasLimitValidation)
	require.Empty(indexed.Function)
	require.Equal([]*parser.Operation{
		feeOperation(alice, "50000000000000", parser.OperationSubtypeFeeRegular),
		nativeOperation(parser.OperationStatusSuccess, alice, "1000000000000000000", parser.OperationDirectionDebit),
		nativeOperation(parser.OperationStatusSuccess, bob, "1000000000000000000", parser.OperationDirectionCredit),
	}, indexed.Operations)
}

func (s *transactionParserTestSuite) TestParseESDTTransfer() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_esdt.json")
	indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.NoError(err)

	require.Len(indexed.Transfers, 1)
	event := indexed.Transfers[0]
	require.Equal("WEGLD-bd4d79", event.TokenIdentifier)
	require.Equal(uint64(0), event.Nonce)
	require.Equal("1000000000000000000", event.Amount.String())
	require.Equal(bob, event.Receiver.String())
	require.Equal("ESDTTransfer", indexed.Function)

	require.Equal([]*parser.Operation{
		feeOperation(alice, "131000000000000", parser.OperationSubtypeFeeRegular),
		customOperation(alice, "WEGLD-bd4d79", "1000000000000000000", parser.OperationDirectionDebit),
		customOperation(bob, "WEGLD-bd4d79", "1000000000000000000", parser.OperationDirectionCredit),
		{
			Status:      parser.OperationStatusSuccess,
			Type:        parser.OperationTypeFeeRefund,
			Subtype:     parser.OperationSubtypeFeeRefundAsReceipt,
			Address:     alice,
			AmountValue: "3690000000000",
			AmountType:  parser.AmountTypeNative,
			Direction:   parser.OperationDirectionCredit,
		},
	}, indexed.Operations)
}

func (s *transactionParserTestSuite) TestParseInvalid() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_invalid.json")
	indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.NoError(err)

	require.Equal([]*parser.Operation{
		feeOperation(alice, "50000000000000", parser.OperationSubtypeFeeOfInvalidTransaction),
		nativeOperation(parser.OperationStatusFailure, alice, "2500000000000000000", parser.OperationDirectionDebit),
		nativeOperation(parser.OperationStatusFailure, frank, "2500000000000000000", parser.OperationDirectionCredit),
	}, indexed.Operations)
}

func (s *transactionParserTestSuite) TestParseFailedRegular() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_regular.json")
	transaction.Status = parser.StatusFail
	indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.NoError(err)

	require.Equal([]*parser.Operation{
		feeOperation(alice, "50000000000000", parser.OperationSubtypeFeeRegular),
		nativeOperation(parser.OperationStatusFailure, alice, "1000000000000000000", parser.OperationDirectionDebit),
		nativeOperation(parser.OperationStatusFailure, bob, "1000000000000000000", parser.OperationDirectionCredit),
	}, indexed.Operations)
}

func (s *transactionParserTestSuite) TestParseUnknownSelector() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_regular.json")
	transaction.Value = "0"
	transaction.Data = []byte("claimRewards@01")
	indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.NoError(err)
	require.Empty(indexed.Transfers)
	require.Equal("claimRewards", indexed.Function)
	require.Equal([]*parser.Operation{
		feeOperation(alice, "50000000000000", parser.OperationSubtypeFeeRegular),
	}, indexed.Operations)
}

func (s *transactionParserTestSuite) TestParseMissingFields() {
	require := testutil.Require(s.T())

	for name, mutate := range map[string]func(transaction *parser.RawTransaction){
		"sender":   func(transaction *parser.RawTransaction) { transaction.Sender = "" },
		"receiver": func(transaction *parser.RawTransaction) { transaction.Receiver = "" },
		"gasLimit": func(transaction *parser.RawTransaction) { transaction.GasLimit = 0 },
	} {
		transaction := loadTransaction("multiversx/transaction_regular.json")
		mutate(transaction)

		indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
		require.Error(err, name)
		require.True(xerrors.Is(err, parser.ErrInvalidRecord), name)
		require.Nil(indexed)
	}
}

func (s *transactionParserTestSuite) TestParseInvalidValue() {
	require := testutil.Require(s.T())

	for _, value := range []string{"-1", "1.5", "abc"} {
		transaction := loadTransaction("multiversx/transaction_regular.json")
		transaction.Value = value

		_, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
		require.Error(err, value)
		require.True(xerrors.Is(err, parser.ErrInvalidAmount), value)
	}
}

func (s *transactionParserTestSuite) TestParseMalformedData() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_esdt.json")
	transaction.Data = []byte("ESDTTransfer@zz@01")
	_, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrMalformedArgument))

	transaction.Data = []byte("ESDTTransfer@5745474c442d626434643739")
	_, err = s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrArityMismatch))
}

func (s *transactionParserTestSuite) TestParseUndecodableReceiver() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_regular.json")
	transaction.Receiver = "not-an-address"
	_, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrMalformedArgument))
}

func (s *transactionParserTestSuite) TestParseShortAddressWithoutPubkeyLength() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_regular.json")
	transaction.Receiver = shortAddress
	indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.NoError(err)
	require.Equal(shortAddress, indexed.Operations[2].Address)
}

func (s *transactionParserTestSuite) TestParseWithGasModel() {
	require := testutil.Require(s.T())

	handle, err := s.registry.Create(parser.KindTransaction, config.ParserConfig{
		MinGasLimit:     50000,
		GasLimitPerByte: 1500,
	})
	require.NoError(err)

	transaction := loadTransaction("multiversx/transaction_esdt.json")
	indexed, err := s.registry.ParseTransaction(context.Background(), handle, transaction)
	require.NoError(err)
	require.Equal(&gas.Validation{
		Required:   131000,
		Declared:   500000,
		Sufficient: true,
	}, indexed.GasLimitValidation)
}

func (s *transactionParserTestSuite) TestParseWrongRecordKind() {
	require := testutil.Require(s.T())

	transfer := loadTransfer("multiversx/transfer_multi.json")
	_, err := s.registry.ParseTransfer(context.Background(), s.handle, transfer)
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrInvalidRecord))

	_, err = s.registry.ParseTransaction(context.Background(), s.handle, nil)
	require.Error(err)
	require.True(xerrors.Is(err, parser.ErrInvalidRecord))
}

func (s *transactionParserTestSuite) TestMarshalIndexedTransaction() {
	require := testutil.Require(s.T())

	transaction := loadTransaction("multiversx/transaction_esdt.json")
	indexed, err := s.registry.ParseTransaction(context.Background(), s.handle, transaction)
	require.NoError(err)

	data, err := json.Marshal(indexed)
	require.NoError(err)

	var fields map[string]json.RawMessage
	require.NoError(json.Unmarshal(data, &fields))
	require.Contains(fields, "txHash")
	require.Contains(fields, "transfers")
	require.Contains(fields, "operations")
	require.NotContains(fields, "gasLimitValidation")
	require.Equal(`"RVNEVFRyYW5zZmVyQDU3NDU0NzRjNDQyZDYyNjQzNDY0MzczOUAwZGUwYjZiM2E3NjQwMDAw"`, string(fields["data"]))

	var decoded parser.IndexedTransaction
	require.NoError(json.Unmarshal(data, &decoded))
	require.Equal(indexed.Operations, decoded.Operations)
	require.Len(decoded.Transfers, 1)
	require.True(indexed.Transfers[0].Equal(decoded.Transfers[0]))
	require.Equal(transaction.Data, decoded.Data)
}

func loadTransaction(path string) *parser.RawTransaction {
	var transaction parser.RawTransaction
	fixtures.MustUnmarshalRecord(path, &transaction)
	return &transaction
}

func loadTransfer(path string) *parser.RawTransfer {
	var transfer parser.RawTransfer
	fixtures.MustUnmarshalRecord(path, &transfer)
	return &transfer
}

func feeOperation(address string, amount string, subtype parser.OperationSubtype) *parser.Operation {
	return &parser.Operation{
		Status:      parser.OperationStatusSuccess,
		Type:        parser.OperationTypeFee,
		Subtype:     subtype,
		Address:     address,
		AmountValue: amount,
		AmountType:  parser.AmountTypeNative,
		Direction:   parser.OperationDirectionDebit,
	}
}

func nativeOperation(status parser.OperationStatus, address string, amount string, direction parser.OperationDirection) *parser.Operation {
	return &parser.Operation{
		Status:      status,
		Type:        parser.OperationTypeTransfer,
		Subtype:     parser.OperationSubtypeTransferNative,
		Address:     address,
		AmountValue: amount,
		AmountType:  parser.AmountTypeNative,
		Direction:   direction,
	}
}

func customOperation(address string, token string, amount string, direction parser.OperationDirection) *parser.Operation {
	return &parser.Operation{
		Status:         parser.OperationStatusSuccess,
		Type:           parser.OperationTypeTransfer,
		Subtype:        parser.OperationSubtypeTransferCustomFungible,
		Address:        address,
		AmountValue:    amount,
		AmountType:     parser.AmountTypeCustomFungible,
		AmountCurrency: token,
		Direction:      direction,
	}
}
