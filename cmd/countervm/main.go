// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/consts"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          consts.Name,
	Short:        "Counter node",
	SuggestFor:   []string{consts.Name},
	SilenceUsage: true,
	RunE:         runFunc,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints out the version",
	RunE: func(*cobra.Command, []string) error {
		fmt.Printf("%s@%s\n", consts.Name, consts.Version)
		return nil
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML node config (defaults are used when empty)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed %v\n", consts.Name, err)
		os.Exit(1)
	}
	os.Exit(0)
}
