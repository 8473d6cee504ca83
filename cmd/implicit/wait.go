package main

import (
	"github.com/spf13/cobra"
)

func newWaitCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "wait TXHASH",
		Short: "Wait for a transaction receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer client.Close()

			receipt, err := client.WaitForReceiptContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), receipt)
		},
	}
}
