// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/manifoldco/promptui"

	"github.com/ava-labs/countervm/actions"
	"github.com/ava-labs/countervm/auth"
	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/crypto/ed25519"
	"github.com/ava-labs/countervm/utils"
)

func loadKey(path string) (*auth.PrivateKey, error) {
	pk, err := ed25519.LoadKey(path)
	if err != nil {
		return nil, err
	}
	return auth.NewED25519PrivateKeyFactory().LoadPrivateKey(pk[:])
}

func loadFactory() (chain.AuthFactory, codec.Address, error) {
	key, err := loadKey(keyFile)
	if err != nil {
		return nil, codec.EmptyAddress, fmt.Errorf("failed to load key %s: %w", keyFile, err)
	}
	factory, err := auth.GetFactory(key)
	if err != nil {
		return nil, codec.EmptyAddress, err
	}
	return factory, key.Address, nil
}

// newRecordAddress returns a fresh counter record address.
func newRecordAddress() (codec.Address, error) {
	b := make([]byte, ids.IDLen)
	if _, err := rand.Read(b); err != nil {
		return codec.EmptyAddress, err
	}
	id, err := ids.ToID(b)
	if err != nil {
		return codec.EmptyAddress, err
	}
	return codec.CreateAddress(consts.CounterAddressID, id), nil
}

func parseAddress(s string) (codec.Address, error) {
	return codec.ParseAddressBech32(consts.HRP, s)
}

func parseRecord(s string) (codec.Address, error) {
	record, err := parseAddress(s)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if record.TypeID() != consts.CounterAddressID {
		return codec.EmptyAddress, fmt.Errorf("%w: %s", actions.ErrInvalidRecordAddress, s)
	}
	return record, nil
}

func parseValue(input string) (uint8, error) {
	v, err := strconv.ParseUint(input, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

func promptValue() (uint8, error) {
	promptText := promptui.Prompt{
		Label: "value (0-255)",
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			_, err := parseValue(input)
			return err
		},
	}
	rawValue, err := promptText.Run()
	if err != nil {
		return 0, err
	}
	return parseValue(rawValue)
}

func promptContinue() (bool, error) {
	promptText := promptui.Prompt{
		Label: "continue (y/n)",
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			lower := strings.ToLower(input)
			if lower == "y" || lower == "n" {
				return nil
			}
			return ErrInvalidChoice
		},
	}
	rawContinue, err := promptText.Run()
	if err != nil {
		return false, err
	}
	if strings.ToLower(rawContinue) == "n" {
		utils.Outf("{{red}}exiting...{{/}}\n")
		return false, nil
	}
	return true, nil
}

func printStatus(txID ids.ID, success bool) {
	status := "⚠️"
	if success {
		status = "✅"
	}
	utils.Outf("%s {{yellow}}txID:{{/}} %s\n", status, txID)
}

// summarizeOutput renders an action output for the terminal.
func summarizeOutput(output []byte) string {
	typeID, out, err := actions.UnmarshalOutput(output)
	if err != nil {
		return codec.ToHex(output)
	}
	switch o := out.(type) {
	case *actions.CreateResult:
		return fmt.Sprintf("created count=%d deposit=%s %s", o.Count, utils.FormatBalance(o.Deposit), consts.Symbol)
	case *actions.CounterResult:
		return fmt.Sprintf("%s count=%d", actionName(typeID), o.Count)
	case *actions.CloseResult:
		return fmt.Sprintf("closed refund=%s %s payer balance=%s %s",
			utils.FormatBalance(o.Refund), consts.Symbol,
			utils.FormatBalance(o.PayerBalance), consts.Symbol,
		)
	default:
		return codec.ToHex(output)
	}
}

func actionName(typeID uint8) string {
	switch typeID {
	case consts.CreateID:
		return "create"
	case consts.IncrementID:
		return "increment"
	case consts.DecrementID:
		return "decrement"
	case consts.SetID:
		return "set"
	case consts.CloseID:
		return "close"
	default:
		return strconv.Itoa(int(typeID))
	}
}
