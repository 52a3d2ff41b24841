// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/utils"
)

var simulateLogLevel string

var simulateCmd = &cobra.Command{
	Use:   "simulate [path]",
	Short: "Runs a YAML plan against an in-memory node (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			planBytes []byte
			err       error
		)
		if args[0] == "-" {
			planBytes, err = io.ReadAll(cmd.InOrStdin())
		} else {
			planBytes, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		plan, err := unmarshalPlan(planBytes)
		if err != nil {
			return err
		}

		level, err := logging.ToLevel(simulateLogLevel)
		if err != nil {
			return err
		}
		log := logging.NewLogger("", logging.NewWrappedCore(level, os.Stderr, logging.Colors.ConsoleEncoder()))
		defer log.Stop()

		ctx := cmd.Context()
		s, err := newSimulator(ctx, log, plan)
		if err != nil {
			return err
		}
		responses, err := s.Run(ctx, plan, cmd.OutOrStdout())
		if err != nil {
			return errors.Join(err, s.Close())
		}
		utils.Outf("{{green}}plan %q passed:{{/}} %d steps\n", plan.Name, len(responses))
		return s.Close()
	},
}
