// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
)

const (
	fsModeWrite = 0o600

	defaultURI     = "http://127.0.0.1:9650"
	defaultKeyFile = "counter.pk"
)

var (
	uri            string
	keyFile        string
	requestTimeout time.Duration

	rootCmd = &cobra.Command{
		Use:           "counter-cli",
		Short:         "CounterVM CLI",
		SuggestFor:    []string{"counter-cli", "countercli"},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&uri, "uri", defaultURI, "node API URI")
	rootCmd.PersistentFlags().StringVar(&keyFile, "key", defaultKeyFile, "hex encoded private key file")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(
		keyCmd,
		genesisCmd,

		createCmd,
		incrementCmd,
		decrementCmd,
		setCmd,
		closeCmd,

		getCmd,
		balanceCmd,
		watchCmd,
		spamCmd,
		simulateCmd,
	)

	// key
	keyCmd.AddCommand(
		genKeyCmd,
		addressKeyCmd,
	)

	// genesis
	genesisCmd.AddCommand(
		genGenesisCmd,
	)
	genGenesisCmd.PersistentFlags().StringVar(&genesisFile, "genesis-file", "genesis.json", "genesis file path")
	genGenesisCmd.PersistentFlags().StringVar(&genesisBalance, "balance", "10", "balance of allocations without an explicit amount, in "+consts.Symbol)
	genGenesisCmd.PersistentFlags().Uint64Var(&genesisBaseFee, "base-fee", genesis.NewDefaultRules().BaseFee, "fee charged per transaction, must be positive")

	closeCmd.PersistentFlags().StringVar(&closePayer, "payer", "", "address refunded with the deposit (defaults to the signer)")

	spamCmd.PersistentFlags().IntVar(&spamRecords, "records", 4, "number of records created for the run")
	spamCmd.PersistentFlags().IntVar(&spamTxs, "txs", 256, "number of set transactions to submit")
	spamCmd.PersistentFlags().IntVar(&spamWorkers, "workers", 8, "concurrent submitters")

	simulateCmd.PersistentFlags().StringVar(&simulateLogLevel, "log-level", "info", "log level")
}

func Execute() error {
	return rootCmd.Execute()
}
