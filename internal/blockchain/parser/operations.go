package parser

import (
	"math/big"

	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/address"
	"github.com/coinbase/chainparsers/internal/blockchain/datafield"
	"github.com/coinbase/chainparsers/internal/blockchain/gas"
)

type (
	OperationStatus    string
	OperationType      string
	OperationSubtype   string
	AmountType         string
	OperationDirection string

	// Operation is a single balance change of one account.
	Operation struct {
		Status         OperationStatus    `json:"status"`
		Type           OperationType      `json:"type"`
		Subtype        OperationSubtype   `json:"subtype,omitempty"`
		Address        string             `json:"address"`
		AmountValue    string             `json:"amountValue"`
		AmountType     AmountType         `json:"amountType"`
		AmountCurrency string             `json:"amountCurrency,omitempty"`
		Metadata       *OperationMetadata `json:"metadata,omitempty"`
		Direction      OperationDirection `json:"direction"`
	}

	OperationMetadata struct {
		TokenNonce uint64 `json:"tokenNonce"`
	}

	operationsInput struct {
		record   *RawTransaction
		sender   address.Address
		receiver address.Address
		value    *big.Int
		events   []*datafield.TransferEvent
		gasModel gas.Model
	}
)

const (
	OperationStatusSuccess OperationStatus = "success"
	OperationStatusFailure OperationStatus = "failure"
	OperationStatusPending OperationStatus = "pending"

	OperationTypeTransfer        OperationType = "transfer"
	OperationTypeFee             OperationType = "fee"
	OperationTypeFeeRefund       OperationType = "feeRefund"
	OperationTypeReward          OperationType = "reward"
	OperationTypeTokenManagement OperationType = "tokenManagement"

	OperationSubtypeTransferNative                 OperationSubtype = "transferNative"
	OperationSubtypeTransferCustomFungible         OperationSubtype = "transferCustomFungible"
	OperationSubtypeTransferCustomSemiFungible     OperationSubtype = "transferCustomSemiFungible"
	OperationSubtypeTransferCustomNonFungible      OperationSubtype = "transferCustomNonFungible"
	OperationSubtypeFeeRegular                     OperationSubtype = "feeRegular"
	OperationSubtypeFeeOfInvalidTransaction        OperationSubtype = "feeOfInvalidTransaction"
	OperationSubtypeFeeRefundAsReceipt             OperationSubtype = "feeRefundAsReceipt"
	OperationSubtypeFeeRefundAsSmartContractResult OperationSubtype = "feeRefundAsSmartContractResult"
	OperationSubtypeStakingRewards                 OperationSubtype = "stakingRewards"
	OperationSubtypeDelegationRewards              OperationSubtype = "delegationRewards"
	OperationSubtypeDeveloperRewards               OperationSubtype = "developerRewards"
	OperationSubtypeCustomTokenMint                OperationSubtype = "customTokenMint"
	OperationSubtypeCustomTokenBurn                OperationSubtype = "customTokenBurn"
	OperationSubtypeCustomTokenWipe                OperationSubtype = "customTokenWipe"

	AmountTypeNative             AmountType = "native"
	AmountTypeCustomFungible     AmountType = "customFungible"
	AmountTypeCustomSemiFungible AmountType = "customSemiFungible"
	AmountTypeCustomNonFungible  AmountType = "customNonFungible"

	OperationDirectionCredit OperationDirection = "credit"
	OperationDirectionDebit  OperationDirection = "debit"
)

// buildOperations derives the balance changes of a record.
// The cases are mutually exclusive and checked in order.
func buildOperations(in *operationsInput) ([]*Operation, error) {
	switch {
	case in.isStakingReward():
		return in.stakingRewardOperations(), nil
	case in.record.Status == StatusInvalid:
		return in.invalidTransactionOperations()
	case in.record.RecordType() == TypeSmartContractResult:
		return in.smartContractResultOperations(), nil
	case in.isSentToNonPayableContract():
		return in.nonPayableContractOperations()
	default:
		return in.regularOperations()
	}
}

// isStakingReward matches value minted by the metachain without a data field.
func (in *operationsInput) isStakingReward() bool {
	return in.record.SenderShard == MetachainShardID &&
		in.value.Sign() > 0 &&
		len(in.record.Data) == 0
}

// isSentToNonPayableContract matches value sent to a contract without calling any of its functions.
// A successful regular transaction never matches.
func (in *operationsInput) isSentToNonPayableContract() bool {
	if in.record.Status != StatusFail && in.record.RecordType() == TypeTransaction {
		return false
	}

	if !in.receiver.IsSmartContract() {
		return false
	}

	return !datafield.IsCallData(in.record.Data)
}

func (in *operationsInput) stakingRewardOperations() []*Operation {
	return []*Operation{
		{
			Status:      OperationStatusSuccess,
			Type:        OperationTypeReward,
			Subtype:     OperationSubtypeStakingRewards,
			Address:     in.receiver.String(),
			AmountValue: in.value.String(),
			AmountType:  AmountTypeNative,
			Direction:   OperationDirectionCredit,
		},
	}
}

func (in *operationsInput) invalidTransactionOperations() ([]*Operation, error) {
	fee, err := in.fee()
	if err != nil {
		return nil, err
	}

	operations := in.feeOperations(fee, OperationSubtypeFeeOfInvalidTransaction)
	operations = append(operations, in.nativeTransferOperations(OperationStatusFailure)...)
	return operations, nil
}

func (in *operationsInput) smartContractResultOperations() []*Operation {
	operations := in.nativeTransferOperations(OperationStatusSuccess)
	return append(operations, in.customTransferOperations(in.movementStatus())...)
}

// nonPayableContractOperations charges the gas the protocol requires for the payload
// instead of the declared fee. Without a gas model the declared fee is kept.
func (in *operationsInput) nonPayableContractOperations() ([]*Operation, error) {
	var fee *big.Int
	if in.gasModel.IsEnabled() {
		required, err := in.gasModel.RequiredGas(uint64(len(in.record.Data)))
		if err != nil {
			return nil, xerrors.Errorf("failed to compute fee of transaction %v: %w", in.record.Hash, err)
		}

		fee = gas.Fee(required, in.record.GasPrice)
	} else {
		declared, err := in.fee()
		if err != nil {
			return nil, err
		}

		fee = declared
	}

	operations := in.feeOperations(fee, OperationSubtypeFeeOfInvalidTransaction)
	operations = append(operations, in.nativeTransferOperations(OperationStatusFailure)...)
	return operations, nil
}

func (in *operationsInput) regularOperations() ([]*Operation, error) {
	fee, err := in.fee()
	if err != nil {
		return nil, err
	}

	status := in.movementStatus()
	operations := in.feeOperations(fee, OperationSubtypeFeeRegular)
	operations = append(operations, in.nativeTransferOperations(status)...)
	operations = append(operations, in.customTransferOperations(status)...)

	refund, err := in.receiptRefundOperations()
	if err != nil {
		return nil, err
	}

	return append(operations, refund...), nil
}

func (in *operationsInput) movementStatus() OperationStatus {
	switch in.record.Status {
	case StatusFail, StatusInvalid:
		return OperationStatusFailure
	case StatusPending:
		return OperationStatusPending
	default:
		return OperationStatusSuccess
	}
}

func (in *operationsInput) fee() (*big.Int, error) {
	fee, err := datafield.ParseDecimalAmount(in.record.Fee)
	if err != nil {
		return nil, xerrors.Errorf("invalid fee of transaction %v: %w", in.record.Hash, err)
	}

	return fee, nil
}

func (in *operationsInput) feeOperations(fee *big.Int, subtype OperationSubtype) []*Operation {
	if in.sender.IsEmpty() {
		return nil
	}

	return []*Operation{
		{
			Status:      OperationStatusSuccess,
			Type:        OperationTypeFee,
			Subtype:     subtype,
			Address:     in.sender.String(),
			AmountValue: fee.String(),
			AmountType:  AmountTypeNative,
			Direction:   OperationDirectionDebit,
		},
	}
}

func (in *operationsInput) nativeTransferOperations(status OperationStatus) []*Operation {
	if in.value.Sign() == 0 {
		return nil
	}

	return in.transferOperations(&Operation{
		Status:      status,
		Type:        OperationTypeTransfer,
		Subtype:     OperationSubtypeTransferNative,
		AmountValue: in.value.String(),
		AmountType:  AmountTypeNative,
	}, in.receiver)
}

func (in *operationsInput) customTransferOperations(status OperationStatus) []*Operation {
	var operations []*Operation
	for _, event := range in.events {
		amountType, subtype := classifyToken(event)

		var metadata *OperationMetadata
		if !event.IsFungible() {
			metadata = &OperationMetadata{TokenNonce: event.Nonce}
		}

		operations = append(operations, in.transferOperations(&Operation{
			Status:         status,
			Type:           OperationTypeTransfer,
			Subtype:        subtype,
			AmountValue:    event.Amount.String(),
			AmountType:     amountType,
			AmountCurrency: event.TokenIdentifier,
			Metadata:       metadata,
		}, event.Receiver)...)
	}

	return operations
}

// transferOperations expands a template into a debit of the sender and a credit of the receiver.
func (in *operationsInput) transferOperations(template *Operation, receiver address.Address) []*Operation {
	var operations []*Operation
	if !in.sender.IsEmpty() {
		debit := *template
		debit.Address = in.sender.String()
		debit.Direction = OperationDirectionDebit
		operations = append(operations, &debit)
	}

	credit := *template
	credit.Address = receiver.String()
	credit.Direction = OperationDirectionCredit
	return append(operations, &credit)
}

func (in *operationsInput) receiptRefundOperations() ([]*Operation, error) {
	receipt := in.record.Receipt
	if receipt == nil || in.sender.IsEmpty() {
		return nil, nil
	}

	value, err := datafield.ParseDecimalAmount(receipt.Value)
	if err != nil {
		return nil, xerrors.Errorf("invalid receipt value of transaction %v: %w", in.record.Hash, err)
	}

	if value.Sign() == 0 {
		return nil, nil
	}

	return []*Operation{
		{
			Status:      OperationStatusSuccess,
			Type:        OperationTypeFeeRefund,
			Subtype:     OperationSubtypeFeeRefundAsReceipt,
			Address:     in.sender.String(),
			AmountValue: value.String(),
			AmountType:  AmountTypeNative,
			Direction:   OperationDirectionCredit,
		},
	}, nil
}

// classifyToken tells fungible, semi-fungible and non-fungible movements apart.
// A non-zero nonce with a quantity of one is taken as a non-fungible token.
func classifyToken(event *datafield.TransferEvent) (AmountType, OperationSubtype) {
	switch {
	case event.IsFungible():
		return AmountTypeCustomFungible, OperationSubtypeTransferCustomFungible
	case event.Amount.Cmp(big.NewInt(1)) == 0:
		return AmountTypeCustomNonFungible, OperationSubtypeTransferCustomNonFungible
	default:
		return AmountTypeCustomSemiFungible, OperationSubtypeTransferCustomSemiFungible
	}
}
