// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/neilotoole/errgroup"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"golang.org/x/exp/rand"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/utils"
	"github.com/ava-labs/countervm/vm"
)

var (
	spamRecords int
	spamTxs     int
	spamWorkers int
)

// spamPlan returns the record index and value of the [i]th set. Every
// (record, value) pair is used at most once, so no two transactions built
// in the same second share an id.
func spamPlan(i, records int) (int, uint8) {
	return i % records, uint8((i / records) % (1 << 8))
}

var spamCmd = &cobra.Command{
	Use:   "spam",
	Short: "Creates records and floods the node with set transactions",
	PreRunE: func(*cobra.Command, []string) error {
		if spamRecords <= 0 || spamWorkers <= 0 || spamTxs <= 0 {
			return ErrInvalidArgs
		}
		if spamTxs > spamRecords*(1<<8) {
			return fmt.Errorf("%w: at most %d txs for %d records", ErrInvalidArgs, spamRecords*(1<<8), spamRecords)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		factory, payer, err := loadFactory()
		if err != nil {
			return err
		}
		registry, err := vm.NewRegistry()
		if err != nil {
			return err
		}
		cli := rpc.NewJSONRPCClient(uri)
		network, err := cli.Network(ctx)
		if err != nil {
			return err
		}
		if spamRecords > int(network.MaxActionsPerTx) {
			return fmt.Errorf("%w: at most %d records", ErrInvalidArgs, network.MaxActionsPerTx)
		}

		// Records are created in a single transaction.
		records := make([]codec.Address, spamRecords)
		creates := make([]chain.Action, spamRecords)
		for i := range records {
			records[i], err = newRecordAddress()
			if err != nil {
				return err
			}
			creates[i] = &actions.Create{Counter: records[i]}
		}
		if _, err := cli.GenerateAndSubmit(ctx, registry, factory, creates...); err != nil {
			return err
		}
		utils.Outf("{{yellow}}created %d records{{/}}\n", spamRecords)

		var (
			accepted = atomic.NewUint64(0)
			failed   = atomic.NewUint64(0)
			start    = time.Now()
		)
		// Issue in random order so workers rarely queue on the same record.
		g, gctx := errgroup.WithContextN(ctx, spamWorkers, spamWorkers*4)
		for _, i := range rand.Perm(spamTxs) {
			r, v := spamPlan(i, spamRecords)
			record := records[r]
			g.Go(func() error {
				ictx, cancel := context.WithTimeout(gctx, requestTimeout)
				defer cancel()
				_, err := cli.GenerateAndSubmit(ictx, registry, factory, &actions.Set{Counter: record, Value: v})
				if err != nil {
					failed.Inc()
					utils.Outf("{{orange}}set failed:{{/}} %v\n", err)
					return nil
				}
				accepted.Inc()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		elapsed := time.Since(start)
		utils.Outf(
			"{{green}}accepted:{{/}} %d {{red}}failed:{{/}} %d {{green}}elapsed:{{/}} %s {{green}}TPS:{{/}} %f\n",
			accepted.Load(),
			failed.Load(),
			elapsed,
			float64(accepted.Load())/elapsed.Seconds(),
		)

		// Return the deposits.
		closes := make([]chain.Action, spamRecords)
		for i, record := range records {
			closes[i] = &actions.Close{Counter: record, Payer: payer}
		}
		if _, err := cli.GenerateAndSubmit(ctx, registry, factory, closes...); err != nil {
			return err
		}
		utils.Outf("{{yellow}}closed %d records, refunded %s %s{{/}}\n",
			spamRecords,
			utils.FormatBalance(network.RecordDeposit*uint64(spamRecords)),
			consts.Symbol,
		)
		return nil
	},
}
