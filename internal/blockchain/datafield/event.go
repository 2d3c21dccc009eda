package datafield

import (
	"bytes"
	"encoding/json"
	"math/big"

	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/address"
)

type (
	// TransferEvent is one unit of value movement decoded from a data field.
	TransferEvent struct {
		TokenIdentifier string
		// Nonce is zero for fungible tokens.
		Nonce        uint64
		Amount       *big.Int
		Receiver     address.Address
		RawArguments [][]byte
	}

	transferEventJSON struct {
		TokenIdentifier string          `json:"tokenIdentifier"`
		Nonce           uint64          `json:"nonce"`
		Amount          string          `json:"amount"`
		Receiver        address.Address `json:"receiver"`
		RawArguments    [][]byte        `json:"rawArguments,omitempty"`
	}
)

func (e *TransferEvent) IsFungible() bool {
	return e.Nonce == 0
}

// Equal compares two events field by field.
func (e *TransferEvent) Equal(other *TransferEvent) bool {
	if e == nil || other == nil {
		return e == other
	}

	if e.TokenIdentifier != other.TokenIdentifier || e.Nonce != other.Nonce {
		return false
	}

	if (e.Amount == nil) != (other.Amount == nil) {
		return false
	}
	if e.Amount != nil && e.Amount.Cmp(other.Amount) != 0 {
		return false
	}

	if !e.Receiver.Equal(other.Receiver) {
		return false
	}

	if len(e.RawArguments) != len(other.RawArguments) {
		return false
	}
	for i := range e.RawArguments {
		if !bytes.Equal(e.RawArguments[i], other.RawArguments[i]) {
			return false
		}
	}

	return true
}

func (e TransferEvent) MarshalJSON() ([]byte, error) {
	amount := "0"
	if e.Amount != nil {
		amount = e.Amount.String()
	}

	return json.Marshal(&transferEventJSON{
		TokenIdentifier: e.TokenIdentifier,
		Nonce:           e.Nonce,
		Amount:          amount,
		Receiver:        e.Receiver,
		RawArguments:    e.RawArguments,
	})
}

func (e *TransferEvent) UnmarshalJSON(data []byte) error {
	var v transferEventJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return xerrors.Errorf("failed to unmarshal transfer event: %w", err)
	}

	amount, err := ParseDecimalAmount(v.Amount)
	if err != nil {
		return err
	}

	*e = TransferEvent{
		TokenIdentifier: v.TokenIdentifier,
		Nonce:           v.Nonce,
		Amount:          amount,
		Receiver:        v.Receiver,
		RawArguments:    v.RawArguments,
	}
	return nil
}

// ParseDecimalAmount parses a non-negative base 10 amount. An empty string is zero.
func ParseDecimalAmount(value string) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}

	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, xerrors.Errorf("%q is not an integer: %w", value, ErrInvalidAmount)
	}

	if amount.Sign() < 0 {
		return nil, xerrors.Errorf("%q is negative: %w", value, ErrInvalidAmount)
	}

	return amount, nil
}
