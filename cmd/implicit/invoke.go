package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ethereum "xk6-implicit/xk6-ethereum"
)

type invokeFlags struct {
	abiPath  string
	address  string
	call     bool
	transact bool
	from     string
	gas      uint64
	gasPrice uint64
	value    uint64
	block    string
	wait     bool
}

type invokeOutput struct {
	Mode    string            `json:"mode"`
	Outputs []any             `json:"outputs,omitempty"`
	TxHash  string            `json:"txHash,omitempty"`
	Receipt *ethereum.Receipt `json:"receipt,omitempty"`
	Notices []string          `json:"notices"`
}

func newInvokeCmd(logger *logrus.Logger, global *globalFlags) *cobra.Command {
	flags := &invokeFlags{}

	cmd := &cobra.Command{
		Use:   "invoke FUNCTION [ARGS...]",
		Short: "Invoke a contract function, calling or transacting as its ABI dictates",
		Long: `Invoke a contract function. View and pure functions are executed with eth_call,
everything else is sent as a signed transaction. --call or --transact force the
path for this invocation. Arguments are plain strings, or JSON arrays for array and tuple parameters.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd, logger, global, flags, args[0], args[1:])
		},
	}

	cmd.Flags().StringVar(&flags.abiPath, "abi", "", "path to the contract ABI JSON")
	cmd.Flags().StringVar(&flags.address, "address", "", "contract address")
	cmd.Flags().BoolVar(&flags.call, "call", false, "force a read-only call")
	cmd.Flags().BoolVar(&flags.transact, "transact", false, "force a transaction")
	cmd.Flags().StringVar(&flags.from, "from", "", "sender address")
	cmd.Flags().Uint64Var(&flags.gas, "gas", 0, "gas limit (estimated when zero)")
	cmd.Flags().Uint64Var(&flags.gasPrice, "gas-price", 0, "gas price in wei (suggested when zero)")
	cmd.Flags().Uint64Var(&flags.value, "value", 0, "value in wei")
	cmd.Flags().StringVar(&flags.block, "block", "", "block tag for calls")
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "wait for the receipt after transacting")

	_ = cmd.MarkFlagRequired("abi")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func (f *invokeFlags) callOpts() ethereum.CallOpts {
	return ethereum.CallOpts{
		From:     f.from,
		GasLimit: f.gas,
		GasPrice: f.gasPrice,
		Value:    f.value,
		Block:    ethereum.BlockTag(f.block),
	}
}

func (f *invokeFlags) txnOpts() ethereum.TxnOpts {
	return ethereum.TxnOpts{
		From:     f.from,
		GasLimit: f.gas,
		GasPrice: f.gasPrice,
		Value:    f.value,
	}
}

// override forces the path requested by --call or --transact. Without either,
// the same options apply to whichever path the ABI selects.
func (f *invokeFlags) override() ethereum.Override {
	var override ethereum.Override

	if f.call {
		opts := f.callOpts()
		override.Call = &opts
	}

	if f.transact {
		opts := f.txnOpts()
		override.Transact = &opts
	}

	return override
}

func runInvoke(cmd *cobra.Command, logger *logrus.Logger, global *globalFlags, flags *invokeFlags, function string, rawArgs []string) error {
	if flags.call && flags.transact {
		return &ethereum.UsageError{Function: function, Err: ethereum.ErrConflictingOverrides}
	}

	abiJSON, err := os.ReadFile(flags.abiPath)
	if err != nil {
		return fmt.Errorf("failed to read abi: %w", err)
	}

	args := make([]any, len(rawArgs))
	for i, raw := range rawArgs {
		args[i] = parseCLIArg(raw)
	}

	ctx := cmd.Context()

	client, err := dial(ctx, global)
	if err != nil {
		return err
	}
	defer client.Close()

	contract, err := client.NewContract(flags.address, string(abiJSON))
	if err != nil {
		return err
	}

	ic, err := ethereum.NewImplicitContract(contract, logger)
	if err != nil {
		return err
	}

	ic.SetDefaults(ethereum.Defaults{Call: flags.callOpts(), Txn: flags.txnOpts()})

	result, err := ic.Invoke(ctx, function, args, flags.override())
	if err != nil {
		return err
	}

	out := invokeOutput{
		Mode:    result.Mode.String(),
		Outputs: result.Values(),
		TxHash:  result.TxHash,
		Notices: make([]string, 0, len(result.Notices)),
	}

	for _, notice := range result.Notices {
		out.Notices = append(out.Notices, notice.Message)
	}

	if flags.wait && result.Mode == ethereum.ModeTransact {
		out.Receipt, err = client.WaitForReceiptContext(ctx, result.TxHash)
		if err != nil {
			return err
		}
	}

	return printJSON(cmd.OutOrStdout(), out)
}

// parseCLIArg decodes JSON arrays (for array and tuple parameters); everything
// else is passed on as a string and converted according to the ABI type.
func parseCLIArg(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return raw
	}

	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()

	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return raw
	}

	return stringifyNumbers(decoded)
}

// stringifyNumbers turns JSON numbers into strings so integers wider than
// float64 precision survive.
func stringifyNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		return v.String()
	case []any:
		for i := range v {
			v[i] = stringifyNumbers(v[i])
		}

		return v
	default:
		return value
	}
}
