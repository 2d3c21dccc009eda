package datafield

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/address"
)

type (
	// Decoder extracts transfer events from a data field. It holds no mutable state.
	Decoder struct {
		addressLength int
		hrp           string
	}

	Option func(d *Decoder)

	argumentReader struct {
		selector string
		args     [][]byte
		pos      int
	}
)

const (
	maxNonceLength = 8
)

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		hrp: address.DefaultHrp,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// WithAddressLength enforces the length of destination addresses found in the data field.
// Zero disables the check.
func WithAddressLength(length int) Option {
	return func(d *Decoder) {
		d.addressLength = length
	}
}

func WithHrp(hrp string) Option {
	return func(d *Decoder) {
		if hrp != "" {
			d.hrp = hrp
		}
	}
}

// Decode returns the transfer events encoded in data, in source order.
// The receiver is used by the selectors whose destination is implicit.
// A data field with an unknown selector yields no events and no error.
func (d *Decoder) Decode(data []byte, receiver address.Address) ([]*TransferEvent, error) {
	if len(data) == 0 {
		return []*TransferEvent{}, nil
	}

	tokens := split(data)
	selector := string(tokens[0])
	kind, ok := selectors[selector]
	if !ok {
		return []*TransferEvent{}, nil
	}

	args, err := decodeArguments(tokens[1:])
	if err != nil {
		return nil, xerrors.Errorf("failed to decode %v arguments: %w", selector, err)
	}

	reader := &argumentReader{
		selector: selector,
		args:     args,
	}

	switch kind {
	case selectorSingle:
		return d.decodeSingle(reader, receiver)
	case selectorSingleNFT:
		return d.decodeSingleNFT(reader, receiver)
	case selectorMulti:
		return d.decodeMulti(reader)
	default:
		return []*TransferEvent{}, nil
	}
}

func (d *Decoder) decodeSingle(reader *argumentReader, receiver address.Address) ([]*TransferEvent, error) {
	tokenIdentifier, err := reader.nextTokenIdentifier()
	if err != nil {
		return nil, err
	}

	amount, err := reader.nextAmount()
	if err != nil {
		return nil, err
	}

	return []*TransferEvent{
		{
			TokenIdentifier: tokenIdentifier,
			Amount:          amount,
			Receiver:        receiver,
			RawArguments:    reader.rest(),
		},
	}, nil
}

func (d *Decoder) decodeSingleNFT(reader *argumentReader, receiver address.Address) ([]*TransferEvent, error) {
	tokenIdentifier, err := reader.nextTokenIdentifier()
	if err != nil {
		return nil, err
	}

	nonce, err := reader.nextUint64("nonce")
	if err != nil {
		return nil, err
	}

	amount, err := reader.nextAmount()
	if err != nil {
		return nil, err
	}

	return []*TransferEvent{
		{
			TokenIdentifier: tokenIdentifier,
			Nonce:           nonce,
			Amount:          amount,
			Receiver:        receiver,
			RawArguments:    reader.rest(),
		},
	}, nil
}

func (d *Decoder) decodeMulti(reader *argumentReader) ([]*TransferEvent, error) {
	numDestinations, err := reader.nextUint64("number of destinations")
	if err != nil {
		return nil, err
	}

	if numDestinations == 0 {
		return nil, xerrors.Errorf("%v declares no destinations: %w", reader.selector, ErrArityMismatch)
	}

	var events []*TransferEvent
	for i := uint64(0); i < numDestinations; i++ {
		if reader.remaining() == 0 {
			return nil, xerrors.Errorf("%v declares %d destinations, found %d: %w", reader.selector, numDestinations, i, ErrArityMismatch)
		}

		destination, err := d.nextDestination(reader)
		if err != nil {
			return nil, err
		}

		numTokens, err := reader.nextUint64("number of tokens")
		if err != nil {
			return nil, err
		}

		if numTokens == 0 {
			return nil, xerrors.Errorf("%v destination %d declares no tokens: %w", reader.selector, i, ErrArityMismatch)
		}

		for j := uint64(0); j < numTokens; j++ {
			if reader.remaining() == 0 {
				return nil, xerrors.Errorf("%v destination %d declares %d tokens, found %d: %w", reader.selector, i, numTokens, j, ErrArityMismatch)
			}

			event, err := reader.nextMovement(destination)
			if err != nil {
				return nil, err
			}

			events = append(events, event)
		}
	}

	// A trailing contract call is only meaningful for a single destination.
	rawArguments := reader.rest()
	if len(rawArguments) > 0 {
		if numDestinations > 1 {
			return nil, xerrors.Errorf("%v has %d unexpected trailing arguments: %w", reader.selector, len(rawArguments), ErrArityMismatch)
		}

		for _, event := range events {
			event.RawArguments = rawArguments
		}
	}

	return events, nil
}

func (d *Decoder) nextDestination(reader *argumentReader) (address.Address, error) {
	pubkey, err := reader.next("destination")
	if err != nil {
		return address.Address{}, err
	}

	if len(pubkey) == 0 {
		return address.Address{}, xerrors.Errorf("%v has an empty destination: %w", reader.selector, ErrMalformedArgument)
	}

	if d.addressLength > 0 && len(pubkey) != d.addressLength {
		return address.Address{}, xerrors.Errorf(
			"%v destination has %d bytes (expected=%d): %w",
			reader.selector, len(pubkey), d.addressLength, ErrInvalidAddressLength,
		)
	}

	return address.FromBytes(pubkey, d.hrp), nil
}

func (r *argumentReader) remaining() int {
	return len(r.args) - r.pos
}

func (r *argumentReader) next(name string) ([]byte, error) {
	if r.remaining() == 0 {
		return nil, xerrors.Errorf("%v is missing argument %d (%v): %w", r.selector, r.pos+1, name, ErrArityMismatch)
	}

	arg := r.args[r.pos]
	r.pos++
	return arg, nil
}

// rest consumes the remaining arguments. It returns nil if there is none.
func (r *argumentReader) rest() [][]byte {
	if r.remaining() == 0 {
		return nil
	}

	rest := r.args[r.pos:]
	r.pos = len(r.args)
	return rest
}

func (r *argumentReader) nextTokenIdentifier() (string, error) {
	arg, err := r.next("token identifier")
	if err != nil {
		return "", err
	}

	if len(arg) == 0 {
		return "", xerrors.Errorf("%v has an empty token identifier: %w", r.selector, ErrMalformedArgument)
	}

	return string(arg), nil
}

func (r *argumentReader) nextUint64(name string) (uint64, error) {
	arg, err := r.next(name)
	if err != nil {
		return 0, err
	}

	if len(arg) > maxNonceLength {
		return 0, xerrors.Errorf("%v %v does not fit in 64 bits (%d bytes): %w", r.selector, name, len(arg), ErrMalformedArgument)
	}

	var buf [maxNonceLength]byte
	copy(buf[maxNonceLength-len(arg):], arg)
	return binary.BigEndian.Uint64(buf[:]), nil
}

func (r *argumentReader) nextAmount() (*big.Int, error) {
	arg, err := r.next("amount")
	if err != nil {
		return nil, err
	}

	if len(arg) == 0 {
		return nil, xerrors.Errorf("%v has an empty amount: %w", r.selector, ErrInvalidAmount)
	}

	return new(big.Int).SetBytes(arg), nil
}

func (r *argumentReader) nextMovement(destination address.Address) (*TransferEvent, error) {
	tokenIdentifier, err := r.nextTokenIdentifier()
	if err != nil {
		return nil, err
	}

	nonce, err := r.nextUint64("nonce")
	if err != nil {
		return nil, err
	}

	amount, err := r.nextAmount()
	if err != nil {
		return nil, err
	}

	return &TransferEvent{
		TokenIdentifier: tokenIdentifier,
		Nonce:           nonce,
		Amount:          amount,
		Receiver:        destination,
	}, nil
}
