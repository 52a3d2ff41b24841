// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/rpc"
	"github.com/ava-labs/countervm/utils"
	"github.com/ava-labs/countervm/vm"
)

var closePayer string

// sendAndPrint signs [acts] with the key file, submits them in one
// transaction and prints every output.
func sendAndPrint(ctx context.Context, acts ...chain.Action) (*rpc.SubmitTxReply, error) {
	factory, _, err := loadFactory()
	if err != nil {
		return nil, err
	}
	registry, err := vm.NewRegistry()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	cli := rpc.NewJSONRPCClient(uri)
	reply, err := cli.GenerateAndSubmit(ctx, registry, factory, acts...)
	if err != nil {
		return nil, err
	}
	printStatus(reply.TxID, true)
	utils.Outf("{{yellow}}height:{{/}} %d {{yellow}}fee:{{/}} %s %s\n", reply.Height, utils.FormatBalance(reply.Fee), consts.Symbol)
	for i, output := range reply.Outputs {
		utils.Outf("{{cyan}}output %d:{{/}} %s\n", i, summarizeOutput(output))
	}
	return reply, nil
}

func recordArgs(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return ErrInvalidArgs
	}
	return nil
}

var createCmd = &cobra.Command{
	Use:   "create [record]",
	Short: "Creates a counter record funded by the key file",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) > 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			record codec.Address
			err    error
		)
		if len(args) == 1 {
			record, err = parseRecord(args[0])
		} else {
			record, err = newRecordAddress()
		}
		if err != nil {
			return err
		}
		utils.Outf("{{yellow}}record:{{/}} %s\n", codec.MustAddressBech32(consts.HRP, record))
		_, err = sendAndPrint(cmd.Context(), &actions.Create{Counter: record})
		return err
	},
}

var incrementCmd = &cobra.Command{
	Use:     "increment [record]",
	Short:   "Adds one to a counter",
	PreRunE: recordArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := parseRecord(args[0])
		if err != nil {
			return err
		}
		_, err = sendAndPrint(cmd.Context(), &actions.Increment{Counter: record})
		return err
	},
}

var decrementCmd = &cobra.Command{
	Use:     "decrement [record]",
	Short:   "Subtracts one from a counter",
	PreRunE: recordArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := parseRecord(args[0])
		if err != nil {
			return err
		}
		_, err = sendAndPrint(cmd.Context(), &actions.Decrement{Counter: record})
		return err
	},
}

var setCmd = &cobra.Command{
	Use:   "set [record] [value]",
	Short: "Overwrites a counter",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 2 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := parseRecord(args[0])
		if err != nil {
			return err
		}
		var value uint8
		if len(args) == 2 {
			value, err = parseValue(args[1])
		} else {
			value, err = promptValue()
		}
		if err != nil {
			return err
		}
		_, err = sendAndPrint(cmd.Context(), &actions.Set{Counter: record, Value: value})
		return err
	},
}

var closeCmd = &cobra.Command{
	Use:     "close [record]",
	Short:   "Deletes a counter and refunds its deposit",
	PreRunE: recordArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := parseRecord(args[0])
		if err != nil {
			return err
		}
		_, signer, err := loadFactory()
		if err != nil {
			return err
		}
		payer := signer
		if len(closePayer) > 0 {
			payer, err = parseAddress(closePayer)
			if err != nil {
				return err
			}
			if payer != signer {
				utils.Outf("{{red}}payer is not the signer, the node will reject this close{{/}}\n")
				cont, err := promptContinue()
				if !cont || err != nil {
					return err
				}
			}
		}
		_, err = sendAndPrint(cmd.Context(), &actions.Close{Counter: record, Payer: payer})
		return err
	},
}
