// Package ethereum provides an xk6 extension for Ethereum contract interaction,
// including the deprecated implicit call/transact contract convention.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/grafana/sobek"
	"github.com/sirupsen/logrus"
	"go.k6.io/k6/js/modules"
	"go.k6.io/k6/metrics"
)

// Static errors for client operations.
var (
	errReceiptNotFound      = errors.New("receipt not found")
	errReceiptTimeout       = errors.New("receipt polling timed out")
	errWalletNotInitialized = errors.New("wallet not initialized")
	errInvalidAddress       = errors.New("invalid address")
	errFromMismatch         = errors.New("from does not match the signing account")
	errPrivateKeyRequired   = errors.New("Client must be initialized with a private key")
	errURLRequired          = errors.New("Client must be initialized with a URL")
)

// Receipt polling configuration.
const (
	defaultReceiptTimeout      = 5 * time.Minute
	defaultReceiptPollInterval = 100 * time.Millisecond
	maxNetworkRetries          = 5
	deployGasLimit             = 3_000_000
)

// Transaction represents an Ethereum transaction request. Zero gas and fee
// fields and a nil nonce are filled in by the client before signing.
type Transaction struct {
	From      string  `js:"from"`
	To        string  `js:"to"`
	Input     []byte  `js:"input"`
	GasPrice  uint64  `js:"gasPrice"`
	GasFeeCap uint64  `js:"gasFeeCap"`
	GasTipCap uint64  `js:"gasTipCap"`
	Gas       uint64  `js:"gas"`
	Value     uint64  `js:"value"`
	Nonce     *uint64 `js:"nonce"`
}

// Client is the Ethereum JSON-RPC client. It implements Backend.
type Client struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	client     *ethclient.Client
	rpcClient  *rpc.Client
	chainID    *big.Int
	vu         modules.VU
	metrics    ethMetrics
	opts       *Options
	logger     logrus.FieldLogger
	nonces     *NonceManager
}

var _ Backend = (*Client)(nil)

// Dial connects to opts.URL and returns a client signing with opts.PrivateKey.
// Without a private key the client is read-only.
func Dial(ctx context.Context, opts *Options) (*Client, error) {
	if opts == nil || opts.URL == "" {
		return nil, errURLRequired
	}

	rpcClient, err := rpc.DialOptions(ctx, opts.URL, rpc.WithHTTPClient(&http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        1000,
			MaxIdleConnsPerHost: 1000,
			IdleConnTimeout:     90 * time.Second,
		},
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", opts.URL, err)
	}

	client := &Client{
		client:    ethclient.NewClient(rpcClient),
		rpcClient: rpcClient,
		opts:      opts,
		nonces:    globalNonceManager,
	}

	client.chainID, err = client.client.ChainID(ctx)
	if err != nil {
		rpcClient.Close()

		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if opts.PrivateKey != "" {
		if err := client.SetPrivateKey(opts.PrivateKey); err != nil {
			rpcClient.Close()

			return nil, err
		}
	}

	return client, nil
}

// WithLogger sets the logger used when the client runs outside a k6 VU.
func (c *Client) WithLogger(logger logrus.FieldLogger) *Client {
	c.logger = logger

	return c
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Exports implements the modules.Instance interface.
func (c *Client) Exports() modules.Exports {
	return modules.Exports{}
}

func (c *Client) runtimeTagSet() *metrics.TagSet {
	if c == nil || c.vu == nil {
		return nil
	}

	state := c.vu.State()
	if state == nil || state.Tags == nil {
		return nil
	}

	return state.Tags.GetCurrentValues().Tags
}

func (c *Client) getLogger() logrus.FieldLogger {
	if c == nil {
		return nil
	}

	if c.vu != nil {
		if state := c.vu.State(); state != nil && state.Logger != nil {
			return state.Logger
		}

		if env := c.vu.InitEnv(); env != nil && env.TestPreInitState != nil && env.Logger != nil {
			return env.Logger
		}
	}

	return c.logger
}

func (c *Client) getBaseContext() context.Context {
	if c.vu != nil {
		return c.vu.Context()
	}

	return context.Background()
}

func (c *Client) requireSigner() error {
	if c == nil || c.privateKey == nil {
		return errPrivateKeyRequired
	}

	return nil
}

func (c *Client) nonceManager() *NonceManager {
	if c.nonces == nil {
		return globalNonceManager
	}

	return c.nonces
}

func (c *Client) endpoint() string {
	if c.opts == nil {
		return ""
	}

	return c.opts.URL
}

func parseHexAddress(input string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%w: %s", errInvalidAddress, input)
	}

	return common.HexToAddress(input), nil
}

func (c *Client) reportCallMetrics(endpoint string, duration time.Duration) {
	rootTS := c.runtimeTagSet()
	if rootTS == nil {
		return
	}

	metrics.PushIfNotDone(c.vu.Context(), c.vu.State().Samples, metrics.Sample{
		TimeSeries: metrics.TimeSeries{
			Metric: c.metrics.RequestDuration,
			Tags:   rootTS.With("endpoint", endpoint),
		},
		Value: float64(duration / time.Millisecond),
		Time:  time.Now(),
	})
}

func (c *Client) reportTimeToMine(duration time.Duration) {
	rootTS := c.runtimeTagSet()
	if rootTS == nil {
		return
	}

	metrics.PushIfNotDone(c.vu.Context(), c.vu.State().Samples, metrics.Sample{
		TimeSeries: metrics.TimeSeries{
			Metric: c.metrics.TimeToMine,
			Tags:   rootTS,
		},
		Value: float64(duration / time.Millisecond),
		Time:  time.Now(),
	})
}

// reportImplicitDispatch counts implicit invocations by resolved mode.
func (c *Client) reportImplicitDispatch(decision Decision) {
	rootTS := c.runtimeTagSet()
	if rootTS == nil {
		return
	}

	overridden := "false"
	if decision.Overridden {
		overridden = "true"
	}

	metrics.PushIfNotDone(c.vu.Context(), c.vu.State().Samples, metrics.Sample{
		TimeSeries: metrics.TimeSeries{
			Metric: c.metrics.ImplicitInvocations,
			Tags:   rootTS.With("mode", decision.Mode.String()).With("overridden", overridden),
		},
		Value: 1,
		Time:  time.Now(),
	})
}

// sanitizeTagValue makes an error message safe for use as an InfluxDB tag value.
func sanitizeTagValue(msg string) string {
	const maxLen = 100

	sanitized := strings.NewReplacer(
		",", "_", " ", "_", "=", "_", "\n", "_", "\r", "_",
		"\"", "", "'", "", "{", "", "}", "", "[", "", "]", "",
	).Replace(msg)

	if len(sanitized) > maxLen {
		sanitized = sanitized[:maxLen]
	}

	return sanitized
}

func (c *Client) recordError(err error, method string) {
	if err == nil {
		return
	}

	rootTS := c.runtimeTagSet()
	if rootTS == nil {
		return
	}

	metrics.PushIfNotDone(c.vu.Context(), c.vu.State().Samples, metrics.Sample{
		TimeSeries: metrics.TimeSeries{
			Metric: c.metrics.Errors,
			Tags:   rootTS.With("method", method).With("reason", sanitizeTagValue(err.Error())),
		},
		Value: 1,
		Time:  time.Now(),
	})
}

// Call executes a raw JSON-RPC call.
func (c *Client) Call(method string, params ...any) (any, error) {
	var out any

	startTime := time.Now()
	err := c.rpcClient.CallContext(c.getBaseContext(), &out, method, params...)
	c.reportCallMetrics(method, time.Since(startTime))

	if err != nil {
		c.recordError(err, method)
	}

	return out, err //nolint:wrapcheck // Raw RPC call returns unwrapped errors.
}

// ChainID returns the chain ID the client signs for.
func (c *Client) ChainID() uint64 {
	if c.chainID == nil {
		return 0
	}

	return c.chainID.Uint64()
}

// BlockNumber returns the current block number.
func (c *Client) BlockNumber() (uint64, error) {
	startTime := time.Now()
	blockNum, err := c.client.BlockNumber(c.getBaseContext())
	c.reportCallMetrics("eth_blockNumber", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_blockNumber")

		return 0, fmt.Errorf("failed to get block number: %w", err)
	}

	return blockNum, nil
}

// GetBlockByNumber returns the block selected by tag ("latest", "pending", a number, ...).
func (c *Client) GetBlockByNumber(tag string) (*Block, error) {
	number, err := parseBlockTag(BlockTag(tag))
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	block, err := c.client.BlockByNumber(c.getBaseContext(), number)
	c.reportCallMetrics("eth_getBlockByNumber", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_getBlockByNumber")

		return nil, fmt.Errorf("failed to get block %s: %w", tag, err)
	}

	return NewBlock(block), nil
}

// GetBlockTransactionCount returns the number of transactions in the block selected by tag.
func (c *Client) GetBlockTransactionCount(tag string) (uint64, error) {
	number, err := parseBlockTag(BlockTag(tag))
	if err != nil {
		return 0, err
	}

	var count hexutil.Uint

	startTime := time.Now()
	err = c.rpcClient.CallContext(c.getBaseContext(), &count, "eth_getBlockTransactionCountByNumber", blockNumberArg(number))
	c.reportCallMetrics("eth_getBlockTransactionCountByNumber", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_getBlockTransactionCountByNumber")

		return 0, fmt.Errorf("failed to get transaction count of block %s: %w", tag, err)
	}

	return uint64(count), nil
}

// blockNumberArg renders a block number the way ethclient does on the wire.
func blockNumberArg(number *big.Int) string {
	if number == nil {
		return "latest"
	}

	if number.Sign() >= 0 {
		return hexutil.EncodeBig(number)
	}

	return rpc.BlockNumber(number.Int64()).String()
}

// GetBalance returns the balance in wei of address at the block selected by tag.
func (c *Client) GetBalance(address string, tag string) (string, error) {
	addr, err := parseHexAddress(address)
	if err != nil {
		return "", err
	}

	number, err := parseBlockTag(BlockTag(tag))
	if err != nil {
		return "", err
	}

	startTime := time.Now()
	balance, err := c.client.BalanceAt(c.getBaseContext(), addr, number)
	c.reportCallMetrics("eth_getBalance", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_getBalance")

		return "", fmt.Errorf("failed to get balance: %w", err)
	}

	return balance.String(), nil
}

// GetNonce returns the pending nonce for address.
func (c *Client) GetNonce(address string) (uint64, error) {
	addr, err := parseHexAddress(address)
	if err != nil {
		return 0, err
	}

	startTime := time.Now()
	nonce, err := c.client.PendingNonceAt(c.getBaseContext(), addr)
	c.reportCallMetrics("eth_getTransactionCount", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_getTransactionCount")

		return 0, fmt.Errorf("failed to get nonce: %w", err)
	}

	return nonce, nil
}

// GasPrice returns the suggested gas price in wei.
func (c *Client) GasPrice() (uint64, error) {
	gasPrice, err := c.suggestGasPrice(c.getBaseContext())
	if err != nil {
		return 0, err
	}

	return gasPrice.Uint64(), nil
}

func (c *Client) suggestGasPrice(ctx context.Context) (*big.Int, error) {
	startTime := time.Now()
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	c.reportCallMetrics("eth_gasPrice", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_gasPrice")

		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	return gasPrice, nil
}

// EstimateGas returns the estimated gas for the given transaction.
func (c *Client) EstimateGas(transaction Transaction) (uint64, error) {
	return c.estimateGas(c.getBaseContext(), transaction)
}

func (c *Client) estimateGas(ctx context.Context, transaction Transaction) (uint64, error) {
	msg, err := c.callMsg(transaction.From, transaction.To, transaction.Input, transaction.Value)
	if err != nil {
		return 0, err
	}

	if transaction.GasFeeCap > 0 || transaction.GasTipCap > 0 {
		msg.GasFeeCap = new(big.Int).SetUint64(transaction.GasFeeCap)
		msg.GasTipCap = new(big.Int).SetUint64(transaction.GasTipCap)
	} else if transaction.GasPrice > 0 {
		msg.GasPrice = new(big.Int).SetUint64(transaction.GasPrice)
	}

	startTime := time.Now()
	gas, err := c.client.EstimateGas(ctx, msg)
	c.reportCallMetrics("eth_estimateGas", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_estimateGas")

		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}

	return gas, nil
}

// callMsg builds an ethereum.CallMsg. An empty from falls back to the signer,
// or the zero address for read-only clients; an empty to means contract creation.
func (c *Client) callMsg(from, to string, input []byte, value uint64) (ethereum.CallMsg, error) {
	msg := ethereum.CallMsg{
		From:  c.address,
		Data:  input,
		Value: new(big.Int).SetUint64(value),
	}

	if from != "" {
		addr, err := parseHexAddress(from)
		if err != nil {
			return msg, err
		}

		msg.From = addr
	}

	if to != "" {
		addr, err := parseHexAddress(to)
		if err != nil {
			return msg, err
		}

		msg.To = &addr
	}

	return msg, nil
}

// ContractCall executes input read-only via eth_call. It never changes chain state.
func (c *Client) ContractCall(ctx context.Context, to common.Address, input []byte, opts CallOpts) ([]byte, error) {
	number, err := parseBlockTag(opts.Block)
	if err != nil {
		return nil, err
	}

	msg, err := c.callMsg(opts.From, to.Hex(), input, opts.Value)
	if err != nil {
		return nil, err
	}

	msg.Gas = opts.GasLimit
	if opts.GasPrice > 0 {
		msg.GasPrice = new(big.Int).SetUint64(opts.GasPrice)
	}

	startTime := time.Now()
	output, err := c.client.CallContract(ctx, msg, number)
	c.reportCallMetrics("eth_call", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_call")

		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	return output, nil
}

// ContractTransact signs and submits input as a transaction to the contract.
// It returns once the node accepted the transaction; waiting for the receipt is
// up to the caller.
func (c *Client) ContractTransact(ctx context.Context, to common.Address, input []byte, opts TxnOpts) (string, error) {
	return c.sendTransaction(ctx, Transaction{
		From:      opts.From,
		To:        to.Hex(),
		Input:     input,
		GasPrice:  opts.GasPrice,
		GasFeeCap: opts.GasFeeCap,
		GasTipCap: opts.GasTipCap,
		Gas:       opts.GasLimit,
		Value:     opts.Value,
		Nonce:     opts.Nonce,
	})
}

// SendTransaction signs and sends a transaction without waiting for the receipt.
func (c *Client) SendTransaction(transaction Transaction) (string, error) {
	return c.sendTransaction(c.getBaseContext(), transaction)
}

func (c *Client) sendTransaction(ctx context.Context, transaction Transaction) (string, error) {
	if err := c.requireSigner(); err != nil {
		return "", err
	}

	if transaction.From != "" && !strings.EqualFold(transaction.From, c.address.Hex()) {
		return "", fmt.Errorf("%w: %s", errFromMismatch, transaction.From)
	}

	managedNonce := transaction.Nonce == nil
	if managedNonce {
		nonce, err := c.nonceManager().Acquire(ctx, c.client, c.endpoint(), c.address)
		if err != nil {
			c.recordError(err, "eth_sendRawTransaction")

			return "", fmt.Errorf("failed to acquire nonce: %w", err)
		}

		transaction.Nonce = &nonce
	}

	signedTx, err := c.signTx(ctx, transaction)
	if err != nil {
		c.recordError(err, "eth_sendRawTransaction")

		return "", err
	}

	startTime := time.Now()
	err = c.client.SendTransaction(ctx, signedTx)
	c.reportCallMetrics("eth_sendRawTransaction", time.Since(startTime))

	if err != nil {
		c.recordError(err, "eth_sendRawTransaction")

		if managedNonce {
			// The reserved nonce may never land; resync so the next send does not leave a gap.
			if refreshErr := c.nonceManager().Refresh(ctx, c.client, c.endpoint(), c.address); refreshErr != nil {
				if logger := c.getLogger(); logger != nil {
					logger.WithError(refreshErr).Warn("Failed to refresh nonce after send failure")
				}
			}
		}

		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash().Hex(), nil
}

func (c *Client) signTx(ctx context.Context, transaction Transaction) (*types.Transaction, error) {
	typedTx, err := c.buildTypedTx(ctx, transaction)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	signedTx, err := types.SignTx(typedTx, types.LatestSignerForChainID(c.chainID), c.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return signedTx, nil
}

// buildTypedTx converts a Transaction into a go-ethereum transaction. Fee cap
// or tip cap selects an EIP-1559 transaction, otherwise a legacy one is built.
func (c *Client) buildTypedTx(ctx context.Context, transaction Transaction) (*types.Transaction, error) {
	var toAddr *common.Address

	if transaction.To != "" {
		addr, err := parseHexAddress(transaction.To)
		if err != nil {
			return nil, err
		}

		toAddr = &addr
	}

	gas := transaction.Gas
	if gas == 0 {
		estimated, err := c.estimateGas(ctx, transaction)
		if err != nil {
			return nil, err
		}

		gas = estimated
	}

	var nonce uint64
	if transaction.Nonce != nil {
		nonce = *transaction.Nonce
	}

	value := new(big.Int).SetUint64(transaction.Value)

	if transaction.GasFeeCap > 0 || transaction.GasTipCap > 0 {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   c.chainID,
			Nonce:     nonce,
			GasTipCap: new(big.Int).SetUint64(transaction.GasTipCap),
			GasFeeCap: new(big.Int).SetUint64(transaction.GasFeeCap),
			Gas:       gas,
			To:        toAddr,
			Value:     value,
			Data:      transaction.Input,
		}), nil
	}

	gasPrice := new(big.Int).SetUint64(transaction.GasPrice)
	if transaction.GasPrice == 0 {
		suggested, err := c.suggestGasPrice(ctx)
		if err != nil {
			return nil, err
		}

		gasPrice = suggested
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       toAddr,
		Value:    value,
		Data:     transaction.Input,
	}), nil
}

// GetTransactionReceipt returns the receipt for hash, or an error if it is not mined yet.
func (c *Client) GetTransactionReceipt(hash string) (*Receipt, error) {
	return c.transactionReceipt(c.getBaseContext(), hash)
}

func (c *Client) transactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	startTime := time.Now()
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(hash))
	c.reportCallMetrics("eth_getTransactionReceipt", time.Since(startTime))

	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, errReceiptNotFound
		}

		c.recordError(err, "eth_getTransactionReceipt")

		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	return NewReceipt(receipt), nil
}

// WaitForReceipt blocks until hash is mined, the receipt timeout elapses or the
// VU context ends. Transient network errors are tolerated up to a limit.
func (c *Client) WaitForReceipt(hash string) (*Receipt, error) {
	return c.WaitForReceiptContext(c.getBaseContext(), hash)
}

// WaitForReceiptContext is WaitForReceipt bounded by ctx as well as the receipt timeout.
func (c *Client) WaitForReceiptContext(ctx context.Context, hash string) (*Receipt, error) {
	startTime := time.Now()
	timeout := c.opts.receiptTimeout()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.receiptPollInterval())
	defer ticker.Stop()

	networkRetries := 0

	for {
		receipt, err := c.transactionReceipt(waitCtx, hash)

		switch {
		case err == nil:
			c.reportTimeToMine(time.Since(startTime))

			return receipt, nil
		case errors.Is(err, errReceiptNotFound):
			networkRetries = 0
		case waitCtx.Err() != nil:
			// Reported below.
		case isTransientNetworkError(err):
			networkRetries++
			if networkRetries > maxNetworkRetries {
				return nil, fmt.Errorf("max network retries (%d) exceeded waiting for receipt of %s: %w", maxNetworkRetries, hash, err)
			}
		default:
			return nil, err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() == nil {
				c.recordError(errReceiptTimeout, "eth_getTransactionReceipt")

				return nil, fmt.Errorf("waiting for receipt of %s after %v: %w", hash, timeout, errReceiptTimeout)
			}

			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// WaitForTransactionReceipt resolves with the receipt of hash once it is mined.
func (c *Client) WaitForTransactionReceipt(hash string) *sobek.Promise {
	promise, resolve, reject := c.makeHandledPromise()

	go func() {
		receipt, err := c.WaitForReceipt(hash)
		if err != nil {
			reject(err)

			return
		}

		resolve(receipt)
	}()

	return promise
}

// makeHandledPromise returns a promise whose resolve and reject run on the
// event loop, keeping the iteration alive until one of them is called.
func (c *Client) makeHandledPromise() (*sobek.Promise, func(any), func(any)) {
	callback := c.vu.RegisterCallback()
	promise, resolve, reject := c.vu.Runtime().NewPromise()

	resolveFunc := func(value any) {
		callback(func() error {
			resolve(value)

			return nil
		})
	}

	rejectFunc := func(value any) {
		callback(func() error {
			reject(value)

			return nil
		})
	}

	return promise, resolveFunc, rejectFunc
}

func isTransientNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}

// DeployContract deploys bytecode with constructor args and waits for the receipt.
func (c *Client) DeployContract(abiStr string, bytecode string, args ...any) (*Receipt, error) {
	if err := c.requireSigner(); err != nil {
		return nil, err
	}

	input, err := encodeDeployment(abiStr, bytecode, args)
	if err != nil {
		return nil, err
	}

	hash, err := c.SendTransaction(Transaction{Input: input, Gas: deployGasLimit})
	if err != nil {
		return nil, err
	}

	return c.WaitForReceipt(hash)
}

// NewContract creates a contract bound to this client for explicit Call and Txn use.
func (c *Client) NewContract(address string, abiStr string) (*Contract, error) {
	contract, err := NewContract(c, address, abiStr)
	if err != nil {
		return nil, err
	}

	contract.baseContext = c.getBaseContext

	return contract, nil
}

// Address returns the signing account address, or the zero address for read-only clients.
func (c *Client) Address() string {
	return c.address.Hex()
}

// GetWallet returns the signing account address and private key.
func (c *Client) GetWallet() (*Key, error) {
	if c.privateKey == nil {
		return nil, errWalletNotInitialized
	}

	return &Key{
		Address:    c.address.Hex(),
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(c.privateKey)),
	}, nil
}

// SetPrivateKey switches the signing account.
func (c *Client) SetPrivateKey(privateKey string) error {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return err
	}

	c.privateKey = key
	c.address = crypto.PubkeyToAddress(key.PublicKey)

	return nil
}
