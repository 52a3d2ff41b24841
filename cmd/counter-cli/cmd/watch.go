// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/utils"
)

const (
	watchHandshakeTimeout = 10 * time.Second
	watchPendingMessages  = 1_024
	watchMaxMessageSize   = 2 * units.MiB
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Streams accepted transactions from the node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		scli, err := rpc.NewWebSocketClient(uri, watchHandshakeTimeout, watchPendingMessages, watchMaxMessageSize)
		if err != nil {
			return err
		}
		defer scli.Close()
		if err := scli.RegisterAccepted(); err != nil {
			return err
		}

		totalTxs := float64(0)
		start := time.Now()
		utils.Outf("{{green}}watching for accepted transactions 👀{{/}}\n")
		for ctx.Err() == nil {
			a, err := scli.ListenAccepted(ctx)
			if err != nil {
				return err
			}
			totalTxs++
			utils.Outf(
				"{{green}}height:{{/}}%d {{green}}txID:{{/}}%s {{green}}fee:{{/}}%s {{green}}avg TPS:{{/}}%f\n",
				a.Height,
				a.Result.TxID,
				utils.FormatBalance(a.Result.Fee),
				totalTxs/time.Since(start).Seconds(),
			)
			for i, output := range a.Result.Outputs {
				utils.Outf("  {{cyan}}output %d:{{/}} %s\n", i, summarizeOutput(output))
			}
		}
		return ctx.Err()
	},
}
