package wallet

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"
)

func testTypedData() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"Permit": []apitypes.Type{
				{Name: "owner", Type: "address"},
				{Name: "value", Type: "uint256"},
			},
		},
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:    "Permit2",
			ChainId: (*math.HexOrDecimal256)(hexutil.MustDecodeBig("0x2105")),
		},
		Message: apitypes.TypedDataMessage{
			"owner": "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1",
			"value": "1000000",
		},
	}
}

func TestSignTypedDataRecoversSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	typedData := testTypedData()
	signature, err := SignTypedData(typedData, key)
	require.NoError(t, err)

	sig := hexutil.MustDecode(signature)
	require.Len(t, sig, 65)
	require.GreaterOrEqual(t, sig[64], byte(27))

	domainSep, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	require.NoError(t, err)
	msgHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	require.NoError(t, err)
	digest := crypto.Keccak256Hash([]byte(fmt.Sprintf("\x19\x01%s%s", string(domainSep), string(msgHash))))

	recoverable := make([]byte, 65)
	copy(recoverable, sig)
	recoverable[64] -= 27
	pub, err := crypto.SigToPub(digest.Bytes(), recoverable)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(*pub))
}

func TestSignTypedDataIsDeterministic(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	first, err := SignTypedData(testTypedData(), key)
	require.NoError(t, err)
	second, err := SignTypedData(testTypedData(), key)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestParseBig(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1000", 1000, false},
		{"0x3e8", 1000, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseBig(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestDecodeHexData(t *testing.T) {
	data, err := decodeHexData("0xdeadbeef")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data)

	data, err = decodeHexData("")
	require.NoError(t, err)
	require.Nil(t, data)

	data, err = decodeHexData("0x")
	require.NoError(t, err)
	require.Nil(t, data)

	_, err = decodeHexData("deadbeef")
	require.Error(t, err, "data must be 0x-prefixed")
}
