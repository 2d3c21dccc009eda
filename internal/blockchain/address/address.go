package address

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/xerrors"
)

type (
	// Address is a fixed-length public key together with the human readable part used to render it.
	// The bech32 form is derived on demand.
	Address struct {
		pubkey []byte
		hrp    string
	}
)

const (
	DefaultHrp = "erd"

	// numInitialZeroBytes is the number of leading zero bytes of a smart contract address.
	numInitialZeroBytes = 8
)

var (
	ErrInvalidAddress = xerrors.New("invalid address")
)

// Decode converts a bech32 address into an Address. The human readable part must match hrp.
func Decode(bech32Address string, hrp string) (Address, error) {
	if hrp == "" {
		hrp = DefaultHrp
	}

	decodedHrp, pubkey, err := bech32.DecodeToBase256(bech32Address)
	if err != nil {
		return Address{}, xerrors.Errorf("failed to decode %q: %v: %w", bech32Address, err, ErrInvalidAddress)
	}

	if decodedHrp != hrp {
		return Address{}, xerrors.Errorf("unexpected hrp for %q (expected=%v, actual=%v): %w", bech32Address, hrp, decodedHrp, ErrInvalidAddress)
	}

	return Address{pubkey: pubkey, hrp: hrp}, nil
}

// FromBytes wraps a raw public key. The input is copied.
func FromBytes(pubkey []byte, hrp string) Address {
	if hrp == "" {
		hrp = DefaultHrp
	}

	return Address{
		pubkey: bytes.Clone(pubkey),
		hrp:    hrp,
	}
}

func (a Address) Bytes() []byte {
	return bytes.Clone(a.pubkey)
}

func (a Address) Len() int {
	return len(a.pubkey)
}

func (a Address) IsEmpty() bool {
	return len(a.pubkey) == 0
}

func (a Address) Hrp() string {
	return a.hrp
}

// Equal compares the public keys only.
func (a Address) Equal(other Address) bool {
	return bytes.Equal(a.pubkey, other.pubkey)
}

func (a Address) Hex() string {
	return hex.EncodeToString(a.pubkey)
}

// String returns the bech32 form, or an empty string if the address is empty.
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}

	hrp := a.hrp
	if hrp == "" {
		hrp = DefaultHrp
	}

	encoded, err := bech32.EncodeFromBase256(hrp, a.pubkey)
	if err != nil {
		// Only reachable with an invalid hrp.
		return a.Hex()
	}

	return encoded
}

// IsSmartContract reports whether the address belongs to a deployed contract.
func (a Address) IsSmartContract() bool {
	if len(a.pubkey) <= numInitialZeroBytes {
		return false
	}

	for _, b := range a.pubkey[:numInitialZeroBytes] {
		if b != 0 {
			return false
		}
	}

	return true
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}

	hrp, pubkey, err := bech32.DecodeToBase256(string(text))
	if err != nil {
		return xerrors.Errorf("failed to decode %q: %v: %w", text, err, ErrInvalidAddress)
	}

	decoded := Address{pubkey: pubkey, hrp: hrp}
	*a = decoded
	return nil
}
