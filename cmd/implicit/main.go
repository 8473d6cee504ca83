// Command implicit invokes contract functions through the implicit call/transact
// convention from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(logger).ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
