// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"fmt"
	"sync"

	"github.com/0xsoniclabs/ethproof/common"
	"github.com/0xsoniclabs/ethproof/mpt"
	"golang.org/x/exp/maps"
)

// NodeStore is an in-memory mpt.NodeStore implementation mapping digests to
// raw node bytes. It is safe for concurrent use.
type NodeStore struct {
	mu    sync.RWMutex
	nodes map[common.Hash][]byte
}

// NewNodeStore creates an empty in-memory node store, pre-seeded with the
// canonical empty node so that lookups against an empty trie root resolve.
func NewNodeStore() *NodeStore {
	res := &NodeStore{nodes: map[common.Hash][]byte{}}
	res.nodes[mpt.HashedEmptyNode] = mpt.EmptyNodeRLP
	return res
}

// Node returns the raw node bytes stored under the given digest.
func (s *NodeStore) Node(hash common.Hash) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, found := s.nodes[hash]
	if !found {
		return nil, fmt.Errorf("%w: %s", mpt.ErrNodeNotFound, hash)
	}
	res := make([]byte, len(data))
	copy(res, data)
	return res, nil
}

// Put stores raw node bytes under the given digest.
func (s *NodeStore) Put(hash common.Hash, data []byte) error {
	node := make([]byte, len(data))
	copy(node, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[hash] = node
	return nil
}

// Size returns the number of stored nodes.
func (s *NodeStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Hashes returns the digests of all stored nodes, in no particular order.
func (s *NodeStore) Hashes() []common.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Keys(s.nodes)
}
