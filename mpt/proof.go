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

import (
	"github.com/0xsoniclabs/ethproof/common"
)

// ProofRecorder accumulates the raw bytes of trie nodes in visitation order.
// It is handed to a lookup as an observer and drained afterwards to obtain
// the proof. The recorder owns the accumulated buffers until they are handed
// to the caller by Drain.
type ProofRecorder struct {
	nodes [][]byte
}

// Record appends a copy of the given raw node bytes.
func (r *ProofRecorder) Record(data []byte) {
	node := make([]byte, len(data))
	copy(node, data)
	r.nodes = append(r.nodes, node)
}

// Drain returns the recorded nodes in visitation order and resets the
// recorder.
func (r *ProofRecorder) Drain() [][]byte {
	res := r.nodes
	r.nodes = nil
	return res
}

// GenerateProof produces a proof for the given key in the trie rooted at
// root, along with the value stored under the key (nil if the key is
// absent). The proof lists the raw bytes of every node on the descent path,
// root first, and is suitable for VerifyProof against the same root.
//
// GenerateProof performs no verification of its own and trusts the local
// source; errors of the source, such as a missing node, are propagated
// unchanged.
func GenerateProof(source NodeSource, root common.Hash, key []byte) ([][]byte, []byte, error) {
	recorder := &ProofRecorder{}
	value, err := Lookup(source, root, key, recorder)
	if err != nil {
		return nil, nil, err
	}
	return recorder.Drain(), value, nil
}
