package ethereum

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// Static errors for contract operations.
var (
	errContractNotInitialized = errors.New("contract not initialized")
	errMethodNotFound         = errors.New("method not found in ABI")
	errInvalidBlockTag        = errors.New("invalid block tag")
)

// Backend executes encoded contract invocations against a node.
// *Client is the production implementation.
type Backend interface {
	// ContractCall runs input read-only against the state selected by opts.Block.
	ContractCall(ctx context.Context, to common.Address, input []byte, opts CallOpts) ([]byte, error)
	// ContractTransact signs and submits input as a transaction and returns its hash.
	ContractTransact(ctx context.Context, to common.Address, input []byte, opts TxnOpts) (string, error)
}

// BlockTag selects the state a call runs against: "latest" (or empty),
// "pending", "earliest", "safe", "finalized", or a decimal/hex block number.
type BlockTag string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (b *BlockTag) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*b = BlockTag(text)

		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("%w: %s", errInvalidBlockTag, string(data))
	}

	*b = BlockTag(number.String())

	return nil
}

// CallOpts contains options for a read-only contract call.
type CallOpts struct {
	From     string   `js:"from"     json:"from"`
	GasLimit uint64   `js:"gasLimit" json:"gasLimit"`
	GasPrice uint64   `js:"gasPrice" json:"gasPrice"`
	Value    uint64   `js:"value"    json:"value"`
	Block    BlockTag `js:"block"    json:"block"`
}

// TxnOpts contains transaction options. Zero gas fields are filled in by the
// client (gas estimated, gas price suggested). A nil Nonce is taken from the
// nonce manager; a set Nonce, including 0, is used as is.
type TxnOpts struct {
	From      string  `js:"from"      json:"from"`
	Value     uint64  `js:"value"     json:"value"`
	GasPrice  uint64  `js:"gasPrice"  json:"gasPrice"`
	GasFeeCap uint64  `js:"gasFeeCap" json:"gasFeeCap"`
	GasTipCap uint64  `js:"gasTipCap" json:"gasTipCap"`
	GasLimit  uint64  `js:"gasLimit"  json:"gasLimit"`
	Nonce     *uint64 `js:"nonce"     json:"nonce"`
}

// Contract exposes a deployed contract through explicit Call and Txn methods.
type Contract struct {
	abi         *abi.ABI
	backend     Backend
	addr        common.Address
	baseContext func() context.Context
}

// NewContract binds abiJSON to address, executing through backend.
func NewContract(backend Backend, address string, abiJSON string) (*Contract, error) {
	contractABI, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}

	contractAddress, err := parseHexAddress(address)
	if err != nil {
		return nil, err
	}

	return &Contract{
		abi:         &contractABI,
		backend:     backend,
		addr:        contractAddress,
		baseContext: context.Background,
	}, nil
}

// Address returns the contract address as a checksummed hex string.
func (c *Contract) Address() string {
	return c.addr.Hex()
}

// Call executes a read-only call and returns the outputs keyed by name,
// or by position for unnamed outputs.
func (c *Contract) Call(method string, args ...any) (map[string]any, error) {
	abiMethod, err := c.lookup(method)
	if err != nil {
		return nil, err
	}

	outputs, err := c.call(c.baseContext(), abiMethod, CallOpts{}, args)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any, len(outputs))

	for index, output := range abiMethod.Outputs {
		name := output.Name
		if name == "" {
			name = strconv.Itoa(index)
		}

		if index < len(outputs) {
			result[name] = outputs[index]
		}
	}

	return result, nil
}

// Txn submits a transaction invoking method and returns the transaction hash.
// It does not wait for the receipt.
func (c *Contract) Txn(method string, opts TxnOpts, args ...any) (string, error) {
	abiMethod, err := c.lookup(method)
	if err != nil {
		return "", err
	}

	return c.transact(c.baseContext(), abiMethod, opts, args)
}

// EncodeABI encodes a contract method call into calldata.
func (c *Contract) EncodeABI(method string, args ...any) ([]byte, error) {
	abiMethod, err := c.lookup(method)
	if err != nil {
		return nil, err
	}

	return packMethodCall(abiMethod, args)
}

func (c *Contract) lookup(method string) (abi.Method, error) {
	if c == nil || c.abi == nil || c.backend == nil {
		return abi.Method{}, errContractNotInitialized
	}

	abiMethod, ok := c.abi.Methods[method]
	if !ok {
		return abi.Method{}, fmt.Errorf("%w: %s", errMethodNotFound, method)
	}

	return abiMethod, nil
}

func (c *Contract) call(ctx context.Context, method abi.Method, opts CallOpts, args []any) ([]any, error) {
	input, err := packMethodCall(method, args)
	if err != nil {
		return nil, err
	}

	output, err := c.backend.ContractCall(ctx, c.addr, input, opts)
	if err != nil {
		return nil, err
	}

	results, err := method.Outputs.Unpack(output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method.Name, err)
	}

	return results, nil
}

func (c *Contract) transact(ctx context.Context, method abi.Method, opts TxnOpts, args []any) (string, error) {
	input, err := packMethodCall(method, args)
	if err != nil {
		return "", err
	}

	return c.backend.ContractTransact(ctx, c.addr, input, opts)
}

func (c *Contract) methodNames() []string {
	names := make([]string, 0, len(c.abi.Methods))
	for name := range c.abi.Methods {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// parseBlockTag maps a BlockTag onto the block number argument go-ethereum
// expects: nil for latest, negative rpc.BlockNumber values for named tags.
func parseBlockTag(tag BlockTag) (*big.Int, error) {
	clean := strings.ToLower(strings.TrimSpace(string(tag)))

	switch clean {
	case "", "latest":
		return nil, nil
	case "pending":
		return big.NewInt(int64(rpc.PendingBlockNumber)), nil
	case "earliest":
		return big.NewInt(int64(rpc.EarliestBlockNumber)), nil
	case "safe":
		return big.NewInt(int64(rpc.SafeBlockNumber)), nil
	case "finalized":
		return big.NewInt(int64(rpc.FinalizedBlockNumber)), nil
	}

	number, err := convertNumber(clean)
	if err != nil || number.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", errInvalidBlockTag, string(tag))
	}

	return number, nil
}

// encodeDeployment returns bytecode followed by the packed constructor args.
func encodeDeployment(abiJSON string, bytecode string, args []any) ([]byte, error) {
	contractABI, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}

	code, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(bytecode), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode: %w", err)
	}

	converted, err := convertArgs(contractABI.Constructor.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("constructor: %w", err)
	}

	if len(converted) == 0 {
		return code, nil
	}

	packed, err := contractABI.Constructor.Inputs.Pack(converted...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack constructor arguments: %w", err)
	}

	return append(code, packed...), nil
}
