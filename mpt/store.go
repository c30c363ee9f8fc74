// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mpt

//go:generate mockgen -source store.go -destination store_mocks.go -package mpt

import (
	"errors"

	"github.com/0xsoniclabs/ethproof/common"
)

// ErrNodeNotFound is returned by node sources when no node is stored under
// the requested digest.
var ErrNodeNotFound = errors.New("node not found")

// NodeSource provides read access to a content-addressed collection of raw
// trie nodes. Synchronization of the backing storage is owned by the
// implementation.
type NodeSource interface {
	// Node returns the raw wire bytes stored under the given digest, or an
	// error wrapping ErrNodeNotFound if there is no such node.
	Node(hash common.Hash) ([]byte, error)
}

// NodeStore is a NodeSource that also accepts new nodes.
type NodeStore interface {
	NodeSource

	// Put stores raw node bytes under the given digest. Storing the same
	// digest again is a no-op since the mapping is content-addressed.
	Put(hash common.Hash, data []byte) error
}
