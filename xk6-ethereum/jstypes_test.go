package ethereum

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "small big int", in: big.NewInt(42), want: int64(42)},
		{name: "negative big int", in: big.NewInt(-42), want: int64(-42)},
		{name: "huge big int", in: huge, want: "123456789012345678901234567890"},
		{name: "large uint64", in: uint64(1 << 60), want: "1152921504606846976"},
		{name: "small uint64", in: uint64(7), want: uint64(7)},
		{name: "address", in: common.HexToAddress(testAccountAddress), want: testAccountAddress},
		{name: "bytes", in: []byte{0xde, 0xad}, want: "0xdead"},
		{name: "fixed bytes", in: [2]byte{0xbe, 0xef}, want: "0xbeef"},
		{name: "bool", in: true, want: true},
		{name: "slice", in: []*big.Int{big.NewInt(1), big.NewInt(2)}, want: []any{int64(1), int64(2)}},
		{
			name: "struct",
			in: struct {
				Owner  common.Address
				Amount *big.Int
			}{Owner: common.HexToAddress(testAccountAddress), Amount: big.NewInt(5)},
			want: map[string]any{"owner": testAccountAddress, "amount": int64(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}

func TestNewReceipt(t *testing.T) {
	require.Nil(t, NewReceipt(nil))

	txHash := common.HexToHash("0x01")
	topic := common.HexToHash("0x02")

	receipt := NewReceipt(&types.Receipt{
		Type:              types.DynamicFeeTxType,
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            txHash,
		GasUsed:           21_000,
		CumulativeGasUsed: 42_000,
		EffectiveGasPrice: big.NewInt(7),
		BlockNumber:       big.NewInt(12),
		Logs: []*types.Log{
			{Address: common.HexToAddress(mathAddress), Topics: []common.Hash{topic}, Data: []byte{1}, Index: 3},
			nil,
		},
	})

	require.Equal(t, uint8(types.DynamicFeeTxType), receipt.Type)
	require.Equal(t, uint64(1), receipt.Status)
	require.Equal(t, txHash.Hex(), receipt.TxHash)
	require.Equal(t, uint64(12), receipt.BlockNumber)
	require.Equal(t, "7", receipt.EffectiveGasPrice)
	require.Len(t, receipt.Logs, 1)
	require.Equal(t, []string{topic.Hex()}, receipt.Logs[0].Topics)
	require.Equal(t, "0x01", receipt.Logs[0].Data)
	require.Equal(t, uint(3), receipt.Logs[0].Index)
}

func TestNewBlockRecoversSenders(t *testing.T) {
	require.Nil(t, NewBlock(nil))

	key, err := parsePrivateKey(testPrivateKey)
	require.NoError(t, err)

	to := common.HexToAddress(mathAddress)
	chainID := big.NewInt(31337)

	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    4,
		GasPrice: big.NewInt(1),
		Gas:      21_000,
		To:       &to,
		Value:    big.NewInt(10),
	}), types.LatestSignerForChainID(chainID), key)
	require.NoError(t, err)

	block := types.NewBlockWithHeader(&types.Header{
		Number:   big.NewInt(9),
		GasLimit: 30_000_000,
		Time:     1_700_000_000,
		BaseFee:  big.NewInt(100),
	}).WithBody(types.Body{Transactions: []*types.Transaction{tx}})

	out := NewBlock(block)

	require.Equal(t, uint64(9), out.Number)
	require.Equal(t, "100", out.BaseFee)
	require.Len(t, out.Transactions, 1)
	require.Equal(t, tx.Hash().Hex(), out.Transactions[0].Hash)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), out.Transactions[0].From)
	require.Equal(t, to.Hex(), out.Transactions[0].To)
	require.Equal(t, "10", out.Transactions[0].Value)
	require.Equal(t, uint64(4), out.Transactions[0].Nonce)
}
