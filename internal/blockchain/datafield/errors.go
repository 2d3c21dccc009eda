package datafield

import (
	"golang.org/x/xerrors"
)

var (
	ErrMalformedArgument    = xerrors.New("malformed argument")
	ErrArityMismatch        = xerrors.New("arity mismatch")
	ErrInvalidAmount        = xerrors.New("invalid amount")
	ErrInvalidAddressLength = xerrors.New("invalid address length")
)
