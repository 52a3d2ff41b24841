// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/countervm/codec"
	"github.com/ava-labs/countervm/consts"
	"github.com/ava-labs/countervm/genesis"
	"github.com/ava-labs/countervm/storage"
	"github.com/ava-labs/countervm/utils"
)

func runPlan(t *testing.T, plan *Plan) ([]*Response, string, error) {
	ctx := context.Background()
	s, err := newSimulator(ctx, logging.NoLog{}, plan)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, s.Close())
	}()
	out := &bytes.Buffer{}
	responses, err := s.Run(ctx, plan, out)
	return responses, out.String(), err
}

func TestCounterPlan(t *testing.T) {
	require := require.New(t)

	b, err := os.ReadFile("../plans/counter.yaml")
	require.NoError(err)
	plan, err := unmarshalPlan(b)
	require.NoError(err)

	responses, out, err := runPlan(t, plan)
	require.NoError(err)
	require.Len(responses, len(plan.Steps))
	require.Len(strings.Split(strings.TrimSpace(out), "\n"), len(plan.Steps))

	// Failed steps are free. Alice pays for her eight successful
	// transactions and gets the deposit back on close.
	rules := genesis.NewDefaultRules()
	last := responses[len(responses)-1]
	require.Nil(last.Count)
	require.Contains(last.Error, storage.ErrRecordNotFound.Error())
	closed := responses[len(responses)-2]
	require.Empty(closed.Error)
	require.Equal(plan.Balance-8*rules.BaseFee, closed.Balance)
}

func TestPlanRequireFailure(t *testing.T) {
	require := require.New(t)

	plan, err := unmarshalPlan([]byte(`
name: failing
keys: [alice]
steps:
  - action: create
    record: counter
  - action: increment
    record: counter
    require:
      count: 2
  - action: increment
    record: counter
`))
	require.NoError(err)
	responses, _, err := runPlan(t, plan)
	require.ErrorIs(err, ErrRequireFailed)
	require.Len(responses, 2)
	require.Equal(uint8(1), *responses[1].Count)
}

func TestPlanUnexpectedError(t *testing.T) {
	plan, err := unmarshalPlan([]byte(`
name: failing
keys: [alice]
steps:
  - action: create
    record: counter
  - action: decrement
    record: counter
`))
	require.NoError(t, err)
	_, _, err = runPlan(t, plan)
	require.ErrorIs(t, err, ErrRequireFailed)
}

func TestPlanUnknownRecord(t *testing.T) {
	plan, err := unmarshalPlan([]byte(`
name: unknown
keys: [alice]
steps:
  - action: increment
    record: missing
`))
	require.NoError(t, err)
	responses, _, err := runPlan(t, plan)
	require.ErrorIs(t, err, ErrUnknownRecord)
	require.Empty(t, responses)
}

func TestPlanVerify(t *testing.T) {
	tests := []struct {
		name string
		plan string
		err  error
	}{
		{
			name: "no keys",
			plan: "steps:\n  - action: create\n    record: a\n",
			err:  ErrInvalidPlan,
		},
		{
			name: "no steps",
			plan: "keys: [alice]\n",
			err:  ErrInvalidPlan,
		},
		{
			name: "unknown field",
			plan: "keys: [alice]\nsurprise: true\n",
			err:  ErrInvalidPlan,
		},
		{
			name: "unknown action",
			plan: "keys: [alice]\nsteps:\n  - action: reset\n    record: a\n",
			err:  ErrInvalidStep,
		},
		{
			name: "set without value",
			plan: "keys: [alice]\nsteps:\n  - action: set\n    record: a\n",
			err:  ErrInvalidStep,
		},
		{
			name: "missing record",
			plan: "keys: [alice]\nsteps:\n  - action: create\n",
			err:  ErrInvalidStep,
		},
		{
			name: "unknown payer",
			plan: "keys: [alice]\nsteps:\n  - action: close\n    record: a\n    payer: mallory\n",
			err:  ErrUnknownKey,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := unmarshalPlan([]byte(tt.plan))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseAllocations(t *testing.T) {
	require := require.New(t)

	addr, err := newRecordAddress()
	require.NoError(err)
	s := codec.MustAddressBech32(consts.HRP, addr)

	allocs, err := parseAllocations([]string{s, s + ":42", s + ":0.5"}, 7)
	require.NoError(err)
	require.Equal([]*genesis.CustomAllocation{
		{Address: s, Balance: 7},
		{Address: s, Balance: 42_000_000_000},
		{Address: s, Balance: 500_000_000},
	}, allocs)

	_, err = parseAllocations([]string{s + ":lots"}, 7)
	require.ErrorIs(err, ErrInvalidArgs)
	_, err = parseAllocations([]string{s + ":-1"}, 7)
	require.ErrorIs(err, utils.ErrInvalidBalance)
	_, err = parseAllocations([]string{"nope"}, 7)
	require.Error(err)
}

func TestNewGenesis(t *testing.T) {
	require := require.New(t)

	addr, err := newRecordAddress()
	require.NoError(err)
	allocs := []*genesis.CustomAllocation{{Address: codec.MustAddressBech32(consts.HRP, addr), Balance: 1}}

	g, err := newGenesis(allocs, 1)
	require.NoError(err)
	require.Equal(uint64(1), g.Rules.BaseFee)
	require.Equal(genesis.DefaultChainID, g.Rules.ChainID)

	_, err = newGenesis(allocs, 0)
	require.ErrorIs(err, ErrInvalidArgs)
}

func TestSpamPlan(t *testing.T) {
	require := require.New(t)

	const records = 3
	seen := make(map[[2]int]struct{})
	for i := 0; i < records*256; i++ {
		r, v := spamPlan(i, records)
		require.Less(r, records)
		key := [2]int{r, int(v)}
		require.NotContains(seen, key)
		seen[key] = struct{}{}
	}
}
