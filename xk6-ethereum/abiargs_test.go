package ethereum

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, name string, components ...abi.ArgumentMarshaling) abi.Type {
	t.Helper()

	typ, err := abi.NewType(name, "", components)
	require.NoError(t, err)

	return typ
}

func TestConvertValueIntegers(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		arg     any
		want    any
		wantErr error
	}{
		{name: "uint8 from int64", typ: "uint8", arg: int64(200), want: uint8(200)},
		{name: "uint8 overflow", typ: "uint8", arg: int64(256), wantErr: errIntegerOverflow},
		{name: "uint64 from hex", typ: "uint64", arg: "0xff", want: uint64(255)},
		{name: "uint64 negative", typ: "uint64", arg: int64(-1), wantErr: errIntegerOverflow},
		{name: "int32 negative", typ: "int32", arg: float64(-12), want: int32(-12)},
		{name: "uint256 from decimal string", typ: "uint256", arg: "115792089237316195423570985008687907853269984665640564039457584007913129639935", want: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))},
		{name: "uint256 negative", typ: "uint256", arg: "-1", wantErr: errIntegerOverflow},
		{name: "int256 negative", typ: "int256", arg: int64(-9), want: big.NewInt(-9)},
		{name: "fractional float", typ: "uint256", arg: 1.5, wantErr: errInvalidNumberType},
		{name: "unsafe float", typ: "uint256", arg: float64(1 << 60), wantErr: errInvalidNumberType},
		{name: "garbage string", typ: "uint256", arg: "12ab", wantErr: errInvalidNumberType},
		{name: "wrong type", typ: "uint256", arg: true, wantErr: errInvalidNumberType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertValue(tt.arg, mustType(t, tt.typ))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			if want, ok := tt.want.(*big.Int); ok {
				require.Equal(t, 0, want.Cmp(got.(*big.Int)))

				return
			}

			require.Equal(t, tt.want, got)
		})
	}
}

func TestConvertValueScalars(t *testing.T) {
	addr, err := convertValue(testAccountAddress, mustType(t, "address"))
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testAccountAddress), addr)

	_, err = convertValue("0x1234", mustType(t, "address"))
	require.ErrorIs(t, err, errInvalidAddress)

	_, err = convertValue(int64(1), mustType(t, "address"))
	require.ErrorIs(t, err, errInvalidAddressType)

	flag, err := convertValue("TRUE", mustType(t, "bool"))
	require.NoError(t, err)
	require.Equal(t, true, flag)

	_, err = convertValue(int64(1), mustType(t, "bool"))
	require.ErrorIs(t, err, errInvalidBoolType)

	text, err := convertValue("hello", mustType(t, "string"))
	require.NoError(t, err)
	require.Equal(t, "hello", text)

	_, err = convertValue(int64(1), mustType(t, "string"))
	require.ErrorIs(t, err, errInvalidStringType)
}

func TestConvertValueBytes(t *testing.T) {
	dynamic, err := convertValue("0xabc", mustType(t, "bytes"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0xbc}, dynamic)

	fixed, err := convertValue("0x01020304", mustType(t, "bytes4"))
	require.NoError(t, err)
	require.Equal(t, [4]byte{1, 2, 3, 4}, fixed)

	_, err = convertValue("0x0102", mustType(t, "bytes4"))
	require.ErrorIs(t, err, errFixedBytesLength)

	_, err = convertValue("0xzz", mustType(t, "bytes"))
	require.ErrorIs(t, err, errInvalidBytesType)
}

func TestConvertValueSequences(t *testing.T) {
	slice, err := convertValue([]any{int64(1), "2", float64(3)}, mustType(t, "uint16[]"))
	require.NoError(t, err)
	require.Equal(t, []uint16{1, 2, 3}, slice)

	array, err := convertValue([]any{true, false}, mustType(t, "bool[2]"))
	require.NoError(t, err)
	require.Equal(t, [2]bool{true, false}, array)

	_, err = convertValue([]any{true}, mustType(t, "bool[2]"))
	require.ErrorIs(t, err, errArrayLength)

	_, err = convertValue("1,2", mustType(t, "uint16[]"))
	require.ErrorIs(t, err, errInvalidArrayType)
}

func TestConvertValueTuple(t *testing.T) {
	typ := mustType(t, "tuple",
		abi.ArgumentMarshaling{Name: "owner", Type: "address"},
		abi.ArgumentMarshaling{Name: "amount", Type: "uint64"},
	)

	value, err := convertValue([]any{testAccountAddress, int64(42)}, typ)
	require.NoError(t, err)

	packed, err := abi.Arguments{{Type: typ}}.Pack(value)
	require.NoError(t, err)
	require.Len(t, packed, 64)
	require.Equal(t, common.HexToAddress(testAccountAddress).Bytes(), packed[12:32])
	require.Equal(t, byte(42), packed[63])

	_, err = convertValue([]any{testAccountAddress}, typ)
	require.ErrorIs(t, err, errArrayLength)
}

func TestPackMethodCall(t *testing.T) {
	method := parseMathABI(t).Methods["incrementBy"]

	input, err := packMethodCall(method, []any{int64(5)})
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{}, method.ID...), word(5)...), input)

	_, err = packMethodCall(method, []any{int64(5), int64(6)})
	require.ErrorIs(t, err, errInvalidArgCount)
}
