// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/utils"
)

var (
	genesisFile    string
	genesisBalance string
	genesisBaseFee uint64
)

var genesisCmd = &cobra.Command{
	Use: "genesis",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var genGenesisCmd = &cobra.Command{
	Use:   "generate [address[:balance]]...",
	Short: "Writes a genesis file funding the given addresses",
	RunE: func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			key, err := loadKey(keyFile)
			if err != nil {
				return fmt.Errorf("%w: no addresses given and %w", ErrInvalidArgs, err)
			}
			args = []string{codec.MustAddressBech32(consts.HRP, key.Address)}
		}
		defaultBalance, err := utils.ParseBalance(genesisBalance)
		if err != nil {
			return fmt.Errorf("%w: balance %s: %w", ErrInvalidArgs, genesisBalance, err)
		}
		allocs, err := parseAllocations(args, defaultBalance)
		if err != nil {
			return err
		}
		g, err := newGenesis(allocs, genesisBaseFee)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(genesisFile, b, fsModeWrite); err != nil {
			return err
		}
		utils.Outf("{{yellow}}created genesis with %d allocations and saved to:{{/}} %s\n", len(allocs), genesisFile)
		return nil
	},
}

func newGenesis(allocs []*genesis.CustomAllocation, baseFee uint64) (*genesis.Genesis, error) {
	g := genesis.NewDefaultGenesis(allocs)
	g.Rules.BaseFee = baseFee
	if err := g.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	return g, nil
}

// parseAllocations reads "address[:amount]" arguments. Amounts are in whole
// units of the native asset.
func parseAllocations(args []string, defaultBalance uint64) ([]*genesis.CustomAllocation, error) {
	allocs := make([]*genesis.CustomAllocation, 0, len(args))
	for _, arg := range args {
		addr, rawBalance, hasBalance := strings.Cut(arg, ":")
		if _, err := parseAddress(addr); err != nil {
			return nil, fmt.Errorf("%w: %s", err, addr)
		}
		balance := defaultBalance
		if hasBalance {
			var err error
			balance, err = utils.ParseBalance(rawBalance)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArgs, arg, err)
			}
		}
		allocs = append(allocs, &genesis.CustomAllocation{Address: addr, Balance: balance})
	}
	return allocs, nil
}
