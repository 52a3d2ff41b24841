// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/stretchr/testify/require"
)

func TestToID(t *testing.T) {
	require := require.New(t)

	b := []byte("counter")
	require.Equal(ids.ID(hashing.ComputeHash256Array(b)), ToID(b))
	require.NotEqual(ToID(b), ToID([]byte("counters")))
}

func TestInitSubDirectory(t *testing.T) {
	require := require.New(t)

	root := t.TempDir()
	p, err := InitSubDirectory(root, "statedb")
	require.NoError(err)
	require.Equal(filepath.Join(root, "statedb"), p)
	info, err := os.Stat(p)
	require.NoError(err)
	require.True(info.IsDir())

	// Calling again on an existing directory is fine
	_, err = InitSubDirectory(root, "statedb")
	require.NoError(err)
}

func TestFormatAndParseBalance(t *testing.T) {
	// this test assumes that the number of decimals is 9
	require := require.New(t)

	testCases := []struct {
		input    uint64
		expected string
	}{
		{1000000000, "1.000000000"},
		{123456789, "0.123456789"},
		{1234567890, "1.234567890"},
		{953520, "0.000953520"},
		{0, "0.000000000"},
	}

	for _, tc := range testCases {
		formatted := FormatBalance(tc.input)
		require.Equal(tc.expected, formatted)

		parsed, err := ParseBalance(tc.expected)
		require.NoError(err)
		require.Equal(tc.input, parsed)
	}

	_, err := ParseBalance("invalid")
	require.ErrorIs(err, strconv.ErrSyntax)

	for _, bal := range []string{"-1", "NaN", "+Inf", "18446744073.709551616"} {
		_, err = ParseBalance(bal)
		require.ErrorIs(err, ErrInvalidBalance, bal)
	}
	parsed, err := ParseBalance("10")
	require.NoError(err)
	require.Equal(uint64(10_000_000_000), parsed)
}

func TestUnixRMilli(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(1_000), UnixRMilli(1_999, 0))
	require.Equal(int64(61_000), UnixRMilli(1_500, 60_000))
	require.Positive(UnixRMilli(-1, 0))
}

func TestBoundedBuffer(t *testing.T) {
	require := require.New(t)

	_, err := NewBoundedBuffer[int](0, nil)
	require.ErrorIs(err, errInvalidMaxSize)

	evicted := []int{}
	b, err := NewBoundedBuffer(2, func(i int) { evicted = append(evicted, i) })
	require.NoError(err)
	_, ok := b.Last()
	require.False(ok)

	b.Insert(1)
	b.Insert(2)
	b.Insert(3)
	last, ok := b.Last()
	require.True(ok)
	require.Equal(3, last)
	require.Equal([]int{2, 3}, b.Items())
	require.Equal([]int{1}, evicted)
}
