package parser

import (
	"github.com/coinbase/chainparsers/internal/blockchain/datafield"
	"github.com/coinbase/chainparsers/internal/blockchain/gas"
)

type (
	// Kind selects the record schema a parser accepts.
	Kind string

	// Handle identifies a live parser in the Registry.
	Handle uint64

	Record interface {
		Kind() Kind
	}

	IndexedRecord interface {
		Kind() Kind
		GetOperations() []*Operation
	}

	// RawTransaction mirrors a transaction as returned by the MultiversX API.
	// Data carries the decoded bytes; JSON encodes it as base64.
	RawTransaction struct {
		Hash          string   `json:"txHash"`
		Timestamp     uint64   `json:"timestamp"`
		Round         uint64   `json:"round"`
		Nonce         uint64   `json:"nonce"`
		Type          string   `json:"type,omitempty"`
		Sender        string   `json:"sender,omitempty" validate:"required"`
		SenderShard   uint32   `json:"senderShard"`
		Receiver      string   `json:"receiver" validate:"required"`
		ReceiverShard uint32   `json:"receiverShard"`
		Value         string   `json:"value"`
		Data          []byte   `json:"data,omitempty"`
		GasPrice      uint64   `json:"gasPrice"`
		GasLimit      uint64   `json:"gasLimit" validate:"required"`
		Fee           string   `json:"fee,omitempty"`
		Status        string   `json:"status"`
		Function      string   `json:"function,omitempty"`
		Receipt       *Receipt `json:"receipt,omitempty"`
	}

	// RawTransfer is a value movement as returned by the transfers endpoint.
	// It shares the transaction layout, but its sender and gas limit are optional.
	RawTransfer RawTransaction

	Receipt struct {
		Hash   string `json:"txHash"`
		Value  string `json:"value"`
		Sender string `json:"sender"`
		Data   string `json:"data,omitempty"`
	}

	// Extraction holds what a parser derives from a raw record.
	Extraction struct {
		Transfers []*datafield.TransferEvent `json:"transfers"`
		// GasLimitValidation is nil when the parser runs without a gas model.
		GasLimitValidation *gas.Validation `json:"gasLimitValidation,omitempty"`
		Operations         []*Operation    `json:"operations"`
	}

	IndexedTransaction struct {
		RawTransaction
		Extraction
	}

	IndexedTransfer struct {
		RawTransfer
		Extraction
	}
)

const (
	KindTransaction Kind = "transaction"
	KindTransfer    Kind = "transfer"

	TypeTransaction         = "Transaction"
	TypeSmartContractResult = "SmartContractResult"
	TypeReward              = "Reward"

	StatusSuccess = "success"
	StatusPending = "pending"
	StatusFail    = "fail"
	StatusInvalid = "invalid"

	MetachainShardID uint32 = 4294967295
)

var (
	_ Record        = (*RawTransaction)(nil)
	_ Record        = (*RawTransfer)(nil)
	_ IndexedRecord = (*IndexedTransaction)(nil)
	_ IndexedRecord = (*IndexedTransfer)(nil)
)

func Kinds() []Kind {
	return []Kind{KindTransaction, KindTransfer}
}

func ParseKind(value string) (Kind, error) {
	for _, kind := range Kinds() {
		if string(kind) == value {
			return kind, nil
		}
	}

	return "", newUnknownKindError(Kind(value))
}

func (t *RawTransaction) Kind() Kind {
	return KindTransaction
}

// RecordType returns the record type, treating a missing type as a regular transaction.
func (t *RawTransaction) RecordType() string {
	if t.Type == "" {
		return TypeTransaction
	}

	return t.Type
}

func (t *RawTransfer) Kind() Kind {
	return KindTransfer
}

func (t *IndexedTransaction) Kind() Kind {
	return KindTransaction
}

func (t *IndexedTransaction) GetOperations() []*Operation {
	return t.Operations
}

func (t *IndexedTransfer) Kind() Kind {
	return KindTransfer
}

func (t *IndexedTransfer) GetOperations() []*Operation {
	return t.Operations
}
