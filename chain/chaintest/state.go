// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/countervm/state"
)

var _ state.Mutable = (*InMemoryStore)(nil)

// InMemoryStore is a map backed [state.Mutable] that tests seed with
// balances and records and then hand to a processor or action.
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (i *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := i.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (i *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	i.Storage[string(key)] = value
	return nil
}

func (i *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(i.Storage, string(key))
	return nil
}

// Apply writes a change set, as returned by a transaction execution, to the
// store. Nothing values delete their key.
func (i *InMemoryStore) Apply(changes map[string]maybe.Maybe[[]byte]) {
	for k, v := range changes {
		if v.IsNothing() {
			delete(i.Storage, k)
			continue
		}
		i.Storage[k] = v.Value()
	}
}

// Clone returns a store holding the same values. Values are shared, so
// neither store may mutate a value in place.
func (i *InMemoryStore) Clone() *InMemoryStore {
	return &InMemoryStore{Storage: maps.Clone(i.Storage)}
}
