// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/crypto/ed25519"
	"github.com/ava-labs/countervm/utils"
)

var keyCmd = &cobra.Command{
	Use: "key",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var genKeyCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates a new ed25519 key and saves it to the key file",
	RunE: func(*cobra.Command, []string) error {
		if _, err := os.Stat(keyFile); err == nil {
			return fmt.Errorf("%w: %s", ErrKeyExists, keyFile)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		priv, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return err
		}
		if err := priv.Save(keyFile); err != nil {
			return err
		}
		key, err := loadKey(keyFile)
		if err != nil {
			return err
		}
		utils.Outf(
			"{{green}}created new private key with address:{{/}} %s {{green}}saved to:{{/}} %s\n",
			codec.MustAddressBech32(consts.HRP, key.Address),
			keyFile,
		)
		return nil
	},
}

var addressKeyCmd = &cobra.Command{
	Use:   "address",
	Short: "Prints the address of the key file",
	RunE: func(*cobra.Command, []string) error {
		key, err := loadKey(keyFile)
		if err != nil {
			return err
		}
		utils.Outf("{{cyan}}address:{{/}} %s\n", codec.MustAddressBech32(consts.HRP, key.Address))
		return nil
	},
}
