package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ethereum "xk6-implicit/xk6-ethereum"
)

const privateKeyEnv = "IMPLICIT_PRIVATE_KEY"

var errUnknownLogFormat = errors.New("unknown log format, expected text or json")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	rpcURL     string
	privateKey string
	logLevel   string
	logFormat  string
	timeout    time.Duration
}

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "implicit",
		Short:         "Invoke contract functions with implicit call/transact selection",
		Long:          "Invoke contract functions, letting the ABI state mutability decide between eth_call and a signed transaction.\nThis calling convention is deprecated; prefer explicit call and transact tooling.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return configureLogger(logger, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.rpcURL, "rpc", "http://localhost:8545", "JSON-RPC endpoint")
	root.PersistentFlags().StringVar(&flags.privateKey, "key", "", "hex private key of the signing account (default $"+privateKeyEnv+")")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().DurationVar(&flags.timeout, "receipt-timeout", 0, "how long to wait for receipts (default 5m)")

	root.AddCommand(newInvokeCmd(logger, flags), newWaitCmd(flags))

	return root
}

func configureLogger(logger *logrus.Logger, flags *globalFlags) error {
	level, err := logrus.ParseLevel(flags.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	logger.SetLevel(level)

	switch flags.logFormat {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("%w: %q", errUnknownLogFormat, flags.logFormat)
	}

	return nil
}

func dial(ctx context.Context, flags *globalFlags) (*ethereum.Client, error) {
	privateKey := flags.privateKey
	if privateKey == "" {
		privateKey = os.Getenv(privateKeyEnv)
	}

	return ethereum.Dial(ctx, &ethereum.Options{
		URL:            flags.rpcURL,
		PrivateKey:     privateKey,
		ReceiptTimeout: flags.timeout,
	})
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}
