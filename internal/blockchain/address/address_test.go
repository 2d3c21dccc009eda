package address

import (
	"encoding/json"
	"testing"

	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/utils/testutil"
)

const (
	alice    = "erd1qyu5wthldzr8wx5c9ucg8kjagg0jfs53s8nr3zpz3hypefsdd8ssycr6th"
	aliceHex = "0139472eff6886771a982f3083da5d421f24c29181e63888228dc81ca60d69e1"
	contract = "erd1qqqqqqqqqqqqqpgqzyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zygshp4wmg"
)

func TestDecode(t *testing.T) {
	require := testutil.Require(t)

	addr, err := Decode(alice, DefaultHrp)
	require.NoError(err)
	require.Equal(32, addr.Len())
	require.Equal(aliceHex, addr.Hex())
	require.Equal(alice, addr.String())
	require.False(addr.IsSmartContract())
}

func TestDecode_WrongHrp(t *testing.T) {
	require := testutil.Require(t)

	_, err := Decode(alice, "moa")
	require.Error(err)
	require.True(xerrors.Is(err, ErrInvalidAddress))
}

func TestDecode_BadChecksum(t *testing.T) {
	require := testutil.Require(t)

	_, err := Decode(alice[:len(alice)-1]+"x", DefaultHrp)
	require.True(xerrors.Is(err, ErrInvalidAddress))
}

func TestIsSmartContract(t *testing.T) {
	require := testutil.Require(t)

	addr, err := Decode(contract, "")
	require.NoError(err)
	require.True(addr.IsSmartContract())
}

func TestFromBytes(t *testing.T) {
	require := testutil.Require(t)

	decoded, err := Decode(alice, "")
	require.NoError(err)

	pubkey := decoded.Bytes()
	addr := FromBytes(pubkey, "")
	pubkey[0] = 0xff
	require.True(addr.Equal(decoded))
	require.Equal(alice, addr.String())
	require.Equal("", Address{}.String())
}

func TestMarshalJSON(t *testing.T) {
	require := testutil.Require(t)

	addr, err := Decode(alice, "")
	require.NoError(err)

	data, err := json.Marshal(addr)
	require.NoError(err)
	require.Equal(`"`+alice+`"`, string(data))

	var actual Address
	require.NoError(json.Unmarshal(data, &actual))
	require.True(addr.Equal(actual))
	require.Equal(DefaultHrp, actual.Hrp())
}
