package parser

import (
	"fmt"

	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/datafield"
	"github.com/coinbase/chainparsers/internal/blockchain/gas"
)

// truncatedError truncates the error message if it is too long.
type truncatedError struct {
	err error
}

var (
	ErrInvalidConfig = xerrors.New("invalid config")
	ErrUnknownHandle = xerrors.New("unknown handle")
	ErrUnknownKind   = xerrors.New("unknown parser kind")
	ErrInvalidRecord = xerrors.New("invalid record")

	ErrMalformedArgument    = datafield.ErrMalformedArgument
	ErrArityMismatch        = datafield.ErrArityMismatch
	ErrInvalidAmount        = datafield.ErrInvalidAmount
	ErrInvalidAddressLength = datafield.ErrInvalidAddressLength
	ErrArithmeticOverflow   = gas.ErrArithmeticOverflow
)

var (
	_ error           = (*truncatedError)(nil)
	_ xerrors.Wrapper = (*truncatedError)(nil)

	errorKinds = []struct {
		err  error
		kind string
	}{
		{ErrInvalidConfig, "invalid_config"},
		{ErrUnknownHandle, "unknown_handle"},
		{ErrUnknownKind, "unknown_kind"},
		{ErrInvalidRecord, "invalid_record"},
		{ErrMalformedArgument, "malformed_argument"},
		{ErrArityMismatch, "arity_mismatch"},
		{ErrInvalidAmount, "invalid_amount"},
		{ErrInvalidAddressLength, "invalid_address_length"},
		{ErrArithmeticOverflow, "arithmetic_overflow"},
	}
)

const (
	errorKindUnknown = "unknown"
)

func NewTruncatedError(err error) error {
	if err == nil {
		return nil
	}

	return &truncatedError{err: err}
}

func (e *truncatedError) Error() string {
	const maxLength = 256

	msg := e.err.Error()
	if len(msg) <= maxLength {
		return msg
	}

	return fmt.Sprintf("%v...", msg[0:maxLength])
}

func (e *truncatedError) Unwrap() error {
	return e.err
}

// ErrorKind maps err to the snake_case name of the sentinel it wraps.
func ErrorKind(err error) string {
	for _, e := range errorKinds {
		if xerrors.Is(err, e.err) {
			return e.kind
		}
	}

	return errorKindUnknown
}

func newUnknownKindError(kind Kind) error {
	return xerrors.Errorf("%q: %w", kind, ErrUnknownKind)
}
