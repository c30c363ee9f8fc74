// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/ethproof/common"
	"github.com/0xsoniclabs/ethproof/mpt"
	"github.com/syndtr/goleveldb/leveldb"
)

// NodeStore is a LevelDB-backed mpt.NodeStore keeping raw trie nodes under
// their digest. It is safe for concurrent use; synchronization is provided
// by LevelDB.
type NodeStore struct {
	db *leveldb.DB
}

// OpenNodeStore opens (or creates) a LevelDB node store in the given
// directory. The store must be closed after use. A freshly created store is
// seeded with the canonical empty node.
func OpenNodeStore(path string) (*NodeStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open node store in %s: %w", path, err)
	}
	res := &NodeStore{db: db}
	if err := res.Put(mpt.HashedEmptyNode, mpt.EmptyNodeRLP); err != nil {
		_ = db.Close()
		return nil, err
	}
	return res, nil
}

// Node returns the raw node bytes stored under the given digest.
func (s *NodeStore) Node(hash common.Hash) ([]byte, error) {
	data, err := s.db.Get(hash[:], nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", mpt.ErrNodeNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", hash, err)
	}
	return data, nil
}

// Put stores raw node bytes under the given digest.
func (s *NodeStore) Put(hash common.Hash, data []byte) error {
	if err := s.db.Put(hash[:], data, nil); err != nil {
		return fmt.Errorf("failed to store node %s: %w", hash, err)
	}
	return nil
}

// Close flushes and closes the underlying database.
func (s *NodeStore) Close() error {
	return s.db.Close()
}
