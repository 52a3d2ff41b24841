// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/stretchr/testify/require"
)

func TestKVDatabaseCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := NewDatabase(memdb.New())

	require.NoError(db.Commit(ctx, map[string]maybe.Maybe[[]byte]{
		"a": maybe.Some([]byte{1}),
		"b": maybe.Some([]byte{2}),
	}))
	v, err := db.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, v)

	require.NoError(db.Commit(ctx, map[string]maybe.Maybe[[]byte]{
		"a": maybe.Nothing[[]byte](),
	}))
	_, err = db.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)

	v, err = db.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
	require.NoError(db.Close())
}

func TestSimpleMutable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := NewDatabase(memdb.New())
	require.NoError(db.Commit(ctx, map[string]maybe.Maybe[[]byte]{
		"a": maybe.Some([]byte{1}),
	}))

	s := NewSimpleMutable(db)
	require.NoError(s.Insert(ctx, []byte("b"), []byte{2}))
	require.NoError(s.Remove(ctx, []byte("a")))

	// Buffered changes are visible through the mutable only
	_, err := s.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err := db.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, v)

	require.NoError(s.Commit(ctx))
	_, err = db.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err = db.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
}
