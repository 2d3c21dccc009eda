package datafield

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/xerrors"
)

// ParseCallData splits a contract call data field into the function name and its decoded arguments.
// Unlike Decoder, every argument is decoded regardless of the function name.
func ParseCallData(data []byte) (string, [][]byte, error) {
	if len(data) == 0 {
		return "", nil, xerrors.Errorf("empty call data: %w", ErrArityMismatch)
	}

	tokens := split(data)
	function := string(tokens[0])
	if function == "" {
		return "", nil, xerrors.Errorf("empty function name: %w", ErrMalformedArgument)
	}

	args, err := decodeArguments(tokens[1:])
	if err != nil {
		return "", nil, err
	}

	return function, args, nil
}

// IsCallData reports whether data has the shape of a contract call.
func IsCallData(data []byte) bool {
	_, _, err := ParseCallData(data)
	return err == nil
}

func split(data []byte) [][]byte {
	return bytes.Split(data, []byte{Separator})
}

func decodeArguments(tokens [][]byte) ([][]byte, error) {
	args := make([][]byte, len(tokens))
	for i, token := range tokens {
		arg := make([]byte, hex.DecodedLen(len(token)))
		if _, err := hex.Decode(arg, token); err != nil {
			return nil, xerrors.Errorf("argument %d (%q) is not hex: %v: %w", i+1, token, err, ErrMalformedArgument)
		}

		args[i] = arg
	}

	return args, nil
}
