package ethereum

import (
	"encoding/hex"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// The wrappers below flatten go-ethereum types into camelCase values for
// scripts (js tags) and command output (json tags).

// Receipt is the script-facing view of a transaction receipt.
type Receipt struct {
	Type              uint8  `js:"type"              json:"type"`
	Status            uint64 `js:"status"            json:"status"`
	TxHash            string `js:"transactionHash"   json:"transactionHash"`
	ContractAddress   string `js:"contractAddress"   json:"contractAddress"`
	GasUsed           uint64 `js:"gasUsed"           json:"gasUsed"`
	CumulativeGasUsed uint64 `js:"cumulativeGasUsed" json:"cumulativeGasUsed"`
	EffectiveGasPrice string `js:"effectiveGasPrice" json:"effectiveGasPrice"`
	BlockHash         string `js:"blockHash"         json:"blockHash"`
	BlockNumber       uint64 `js:"blockNumber"       json:"blockNumber"`
	TransactionIndex  uint   `js:"transactionIndex"  json:"transactionIndex"`
	Logs              []*Log `js:"logs"              json:"logs"`
}

// Log is the script-facing view of an event log.
type Log struct {
	Address string   `js:"address"  json:"address"`
	Topics  []string `js:"topics"   json:"topics"`
	Data    string   `js:"data"     json:"data"`
	Index   uint     `js:"logIndex" json:"logIndex"`
	Removed bool     `js:"removed"  json:"removed"`
}

// Block is the script-facing view of a block. Transactions are listed in block order.
type Block struct {
	Number       uint64              `js:"number"                  json:"number"`
	Hash         string              `js:"hash"                    json:"hash"`
	ParentHash   string              `js:"parentHash"              json:"parentHash"`
	Miner        string              `js:"miner"                   json:"miner"`
	GasLimit     uint64              `js:"gasLimit"                json:"gasLimit"`
	GasUsed      uint64              `js:"gasUsed"                 json:"gasUsed"`
	Timestamp    uint64              `js:"timestamp"               json:"timestamp"`
	BaseFee      string              `js:"baseFeePerGas,omitempty" json:"baseFeePerGas,omitempty"`
	Transactions []*BlockTransaction `js:"transactions"            json:"transactions"`
}

// BlockTransaction is a transaction as listed in a Block.
type BlockTransaction struct {
	Type  uint8  `js:"type"           json:"type"`
	Hash  string `js:"hash"           json:"hash"`
	From  string `js:"from,omitempty" json:"from,omitempty"`
	To    string `js:"to,omitempty"   json:"to,omitempty"`
	Input string `js:"input"          json:"input"`
	Nonce uint64 `js:"nonce"          json:"nonce"`
	Gas   uint64 `js:"gas"            json:"gas"`
	Value string `js:"value"          json:"value"`
}

// NewReceipt converts a go-ethereum receipt.
func NewReceipt(in *types.Receipt) *Receipt {
	if in == nil {
		return nil
	}

	out := &Receipt{
		Type:              in.Type,
		Status:            in.Status,
		TxHash:            in.TxHash.Hex(),
		ContractAddress:   in.ContractAddress.Hex(),
		GasUsed:           in.GasUsed,
		CumulativeGasUsed: in.CumulativeGasUsed,
		BlockHash:         in.BlockHash.Hex(),
		TransactionIndex:  in.TransactionIndex,
		Logs:              make([]*Log, 0, len(in.Logs)),
	}

	if in.EffectiveGasPrice != nil {
		out.EffectiveGasPrice = in.EffectiveGasPrice.String()
	}

	if in.BlockNumber != nil {
		out.BlockNumber = in.BlockNumber.Uint64()
	}

	for _, l := range in.Logs {
		if l == nil {
			continue
		}

		topics := make([]string, len(l.Topics))
		for i, topic := range l.Topics {
			topics[i] = topic.Hex()
		}

		out.Logs = append(out.Logs, &Log{
			Address: l.Address.Hex(),
			Topics:  topics,
			Data:    hexutilBytes(l.Data),
			Index:   l.Index,
			Removed: l.Removed,
		})
	}

	return out
}

// NewBlock converts a go-ethereum block.
func NewBlock(in *types.Block) *Block {
	if in == nil {
		return nil
	}

	txs := in.Transactions()
	out := &Block{
		Number:       in.NumberU64(),
		Hash:         in.Hash().Hex(),
		ParentHash:   in.ParentHash().Hex(),
		Miner:        in.Coinbase().Hex(),
		GasLimit:     in.GasLimit(),
		GasUsed:      in.GasUsed(),
		Timestamp:    in.Time(),
		Transactions: make([]*BlockTransaction, len(txs)),
	}

	if baseFee := in.BaseFee(); baseFee != nil {
		out.BaseFee = baseFee.String()
	}

	for i, tx := range txs {
		btx := &BlockTransaction{
			Type:  tx.Type(),
			Hash:  tx.Hash().Hex(),
			Input: hexutilBytes(tx.Data()),
			Nonce: tx.Nonce(),
			Gas:   tx.Gas(),
			Value: tx.Value().String(),
		}

		if to := tx.To(); to != nil {
			btx.To = to.Hex()
		}

		if chainID := tx.ChainId(); chainID != nil && chainID.Sign() > 0 {
			if from, err := types.Sender(types.LatestSignerForChainID(chainID), tx); err == nil {
				btx.From = from.Hex()
			}
		}

		out.Transactions[i] = btx
	}

	return out
}

func hexutilBytes(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

// normalizeValue converts decoded ABI values into plain values scripts can use:
// addresses and hashes become hex strings, integers outside the safe JS range become
// decimal strings, byte sequences become 0x-prefixed hex, structs become maps.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case *big.Int:
		if v == nil {
			return nil
		}

		if v.IsInt64() && v.Int64() <= maxSafeJSInt && v.Int64() >= -maxSafeJSInt {
			return v.Int64()
		}

		return v.String()
	case []byte:
		return hexutilBytes(v)
	case uint64:
		if v > maxSafeJSInt {
			return new(big.Int).SetUint64(v).String()
		}

		return v
	case int64:
		if v > maxSafeJSInt || v < -maxSafeJSInt {
			return big.NewInt(v).String()
		}

		return v
	}

	rv := reflect.ValueOf(value)

	//nolint:exhaustive // Scalars are returned unchanged.
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}

		return normalizeValue(rv.Elem().Interface())
	case reflect.Array, reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(raw), rv)

			return hexutilBytes(raw)
		}

		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}

		return out
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())

		for i := range rv.NumField() {
			field := rv.Type().Field(i)
			if !field.IsExported() {
				continue
			}

			out[lowerFirst(field.Name)] = normalizeValue(rv.Field(i).Interface())
		}

		return out
	default:
		return value
	}
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}

	return string(name[0]|0x20) + name[1:]
}
