// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var _ Database = (*KVDatabase)(nil)

// KVDatabase implements [Database] on top of any avalanchego database (for
// example memdb).
type KVDatabase struct {
	db database.Database
}

func NewDatabase(db database.Database) *KVDatabase {
	return &KVDatabase{db: db}
}

func (k *KVDatabase) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return k.db.Get(key)
}

func (k *KVDatabase) Commit(_ context.Context, changes map[string]maybe.Maybe[[]byte]) error {
	batch := k.db.NewBatch()
	for key, value := range changes {
		var err error
		if value.IsNothing() {
			err = batch.Delete([]byte(key))
		} else {
			err = batch.Put([]byte(key), value.Value())
		}
		if err != nil {
			return err
		}
	}
	return batch.Write()
}

func (k *KVDatabase) Close() error {
	return k.db.Close()
}
