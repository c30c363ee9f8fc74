// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/0xsoniclabs/ethproof/common"
	"github.com/0xsoniclabs/ethproof/mpt"

	_ "github.com/mattn/go-sqlite3"
)

// NodeStore is a SQLite-backed mpt.NodeStore keeping raw trie nodes under
// their digest in a single table. It is safe for concurrent use; access is
// synchronized by database/sql and SQLite itself.
type NodeStore struct {
	db *sql.DB
}

// OpenNodeStore opens (or creates) a SQLite node store in the given file.
// The store must be closed after use. A freshly created store is seeded with
// the canonical empty node.
func OpenNodeStore(file string) (*NodeStore, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("failed to open node store %s: %w", file, err)
	}
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS nodes (hash BLOB PRIMARY KEY, data BLOB NOT NULL)"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize node store %s: %w", file, err)
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
	var data []byte
	err := s.db.QueryRow("SELECT data FROM nodes WHERE hash = ?", hash[:]).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", mpt.ErrNodeNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load node %s: %w", hash, err)
	}
	return data, nil
}

// Put stores raw node bytes under the given digest.
func (s *NodeStore) Put(hash common.Hash, data []byte) error {
	if _, err := s.db.Exec("INSERT OR REPLACE INTO nodes (hash, data) VALUES (?, ?)", hash[:], data); err != nil {
		return fmt.Errorf("failed to store node %s: %w", hash, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *NodeStore) Close() error {
	return s.db.Close()
}
