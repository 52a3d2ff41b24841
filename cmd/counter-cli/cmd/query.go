// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/utils"
)

var getCmd = &cobra.Command{
	Use:     "get [record]",
	Short:   "Prints the count and deposit of a record",
	PreRunE: recordArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := parseRecord(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		count, deposit, err := rpc.NewJSONRPCClient(uri).GetCounter(ctx, record)
		if err != nil {
			return err
		}
		utils.Outf(
			"{{cyan}}record:{{/}} %s {{cyan}}count:{{/}} %d {{cyan}}deposit:{{/}} %s %s\n",
			args[0],
			count,
			utils.FormatBalance(deposit),
			consts.Symbol,
		)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Prints the balance of an address (defaults to the key file)",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) > 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			addr codec.Address
			err  error
		)
		if len(args) == 1 {
			addr, err = parseAddress(args[0])
		} else {
			_, addr, err = loadFactory()
		}
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		balance, err := rpc.NewJSONRPCClient(uri).GetBalance(ctx, addr)
		if err != nil {
			return err
		}
		utils.Outf(
			"{{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s %s\n",
			codec.MustAddressBech32(consts.HRP, addr),
			utils.FormatBalance(balance),
			consts.Symbol,
		)
		return nil
	},
}
