package datafield

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"github.com/coinbase/chainparsers/internal/blockchain/address"
)

// Builder assembles a data field from a function name and its arguments.
type Builder struct {
	function string
	args     [][]byte
}

func NewBuilder(function string) *Builder {
	return &Builder{function: function}
}

func (b *Builder) ArgBytes(value []byte) *Builder {
	b.args = append(b.args, bytes.Clone(value))
	return b
}

func (b *Builder) ArgString(value string) *Builder {
	return b.ArgBytes([]byte(value))
}

// ArgUint64 appends the minimal big-endian encoding of value. Zero is encoded as an empty argument.
func (b *Builder) ArgUint64(value uint64) *Builder {
	return b.ArgBytes(new(big.Int).SetUint64(value).Bytes())
}

// ArgAmount appends a non-negative amount. Zero is encoded as a single zero byte,
// since an empty amount argument does not decode.
func (b *Builder) ArgAmount(value *big.Int) *Builder {
	if value == nil || value.Sign() == 0 {
		return b.ArgBytes([]byte{0})
	}

	return b.ArgBytes(value.Bytes())
}

func (b *Builder) ArgAddress(value address.Address) *Builder {
	return b.ArgBytes(value.Bytes())
}

// Transfer appends the arguments of a single ESDTTransfer or ESDTNFTTransfer movement.
func (b *Builder) Transfer(event *TransferEvent) *Builder {
	b.ArgString(event.TokenIdentifier)
	if b.function != SelectorESDTTransfer {
		b.ArgUint64(event.Nonce)
	}

	return b.ArgAmount(event.Amount)
}

func (b *Builder) Build() []byte {
	var buf bytes.Buffer
	buf.WriteString(b.function)
	for _, arg := range b.args {
		buf.WriteByte(Separator)
		buf.WriteString(hex.EncodeToString(arg))
	}

	return buf.Bytes()
}

func (b *Builder) String() string {
	return string(b.Build())
}

// EncodeMultiTransfer builds a MultiESDTNFTTransfer data field. Events sharing a receiver are
// grouped in order of first appearance. Call arguments are appended only for a single destination.
func EncodeMultiTransfer(events []*TransferEvent, callArguments ...[]byte) []byte {
	type group struct {
		destination address.Address
		events      []*TransferEvent
	}

	var groups []*group
	for _, event := range events {
		var target *group
		for _, g := range groups {
			if g.destination.Equal(event.Receiver) {
				target = g
				break
			}
		}

		if target == nil {
			target = &group{destination: event.Receiver}
			groups = append(groups, target)
		}

		target.events = append(target.events, event)
	}

	builder := NewBuilder(SelectorMultiESDTNFTTransfer).ArgUint64(uint64(len(groups)))
	for _, g := range groups {
		builder.ArgAddress(g.destination).ArgUint64(uint64(len(g.events)))
		for _, event := range g.events {
			builder.ArgString(event.TokenIdentifier).ArgUint64(event.Nonce).ArgAmount(event.Amount)
		}
	}

	if len(groups) == 1 {
		for _, arg := range callArguments {
			builder.ArgBytes(arg)
		}
	}

	return builder.Build()
}
