package gas

import (
	"math/big"
	"math/bits"

	"golang.org/x/xerrors"
)

type (
	// Model computes the minimum gas a transaction must declare for a payload of a given size.
	Model struct {
		MinGasLimit     uint64
		GasLimitPerByte uint64
	}

	// Validation compares the declared gas limit against the computed minimum.
	Validation struct {
		Required   uint64 `json:"required"`
		Declared   uint64 `json:"declared"`
		Sufficient bool   `json:"sufficient"`
	}
)

var (
	ErrArithmeticOverflow = xerrors.New("arithmetic overflow")
)

func NewModel(minGasLimit uint64, gasLimitPerByte uint64) Model {
	return Model{
		MinGasLimit:     minGasLimit,
		GasLimitPerByte: gasLimitPerByte,
	}
}

// IsEnabled returns false when the model carries no gas parameters at all.
func (m Model) IsEnabled() bool {
	return m.MinGasLimit != 0 || m.GasLimitPerByte != 0
}

// RequiredGas returns MinGasLimit + GasLimitPerByte * dataLength.
func (m Model) RequiredGas(dataLength uint64) (uint64, error) {
	hi, perByte := bits.Mul64(m.GasLimitPerByte, dataLength)
	if hi != 0 {
		return 0, xerrors.Errorf("gas per byte %d * data length %d: %w", m.GasLimitPerByte, dataLength, ErrArithmeticOverflow)
	}

	required, carry := bits.Add64(m.MinGasLimit, perByte, 0)
	if carry != 0 {
		return 0, xerrors.Errorf("min gas limit %d + %d: %w", m.MinGasLimit, perByte, ErrArithmeticOverflow)
	}

	return required, nil
}

func (m Model) Validate(declared uint64, dataLength uint64) (*Validation, error) {
	required, err := m.RequiredGas(dataLength)
	if err != nil {
		return nil, err
	}

	return &Validation{
		Required:   required,
		Declared:   declared,
		Sufficient: declared >= required,
	}, nil
}

// Fee returns gasLimit * gasPrice without overflow.
func Fee(gasLimit uint64, gasPrice uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), new(big.Int).SetUint64(gasPrice))
}
