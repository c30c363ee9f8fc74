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
	"path/filepath"
	"testing"

	"github.com/0xsoniclabs/ethproof/common"
	"github.com/0xsoniclabs/ethproof/mpt"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *NodeStore {
	t.Helper()
	store, err := OpenNodeStore(filepath.Join(t.TempDir(), "nodes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNodeStore_IsSeededWithTheEmptyNode(t *testing.T) {
	require := require.New(t)
	store := openTestStore(t)

	data, err := store.Node(mpt.HashedEmptyNode)
	require.NoError(err)
	require.Equal(mpt.EmptyNodeRLP, data)
}

func TestNodeStore_PutAndNodeRoundTrip(t *testing.T) {
	require := require.New(t)
	store := openTestStore(t)

	data := []byte{0xc2, 0x20, 0x01}
	hash := common.Keccak256(data)
	require.NoError(store.Put(hash, data))

	got, err := store.Node(hash)
	require.NoError(err)
	require.Equal(data, got)
}

func TestNodeStore_PutIsIdempotent(t *testing.T) {
	require := require.New(t)
	store := openTestStore(t)

	data := []byte{0xc2, 0x20, 0x01}
	hash := common.Keccak256(data)
	require.NoError(store.Put(hash, data))
	require.NoError(store.Put(hash, data))

	got, err := store.Node(hash)
	require.NoError(err)
	require.Equal(data, got)
}

func TestNodeStore_MissingNodeIsReported(t *testing.T) {
	require := require.New(t)
	store := openTestStore(t)

	_, err := store.Node(common.Keccak256([]byte("missing")))
	require.ErrorIs(err, mpt.ErrNodeNotFound)
}

func TestNodeStore_ContentSurvivesReopening(t *testing.T) {
	require := require.New(t)
	file := filepath.Join(t.TempDir(), "nodes.db")

	store, err := OpenNodeStore(file)
	require.NoError(err)
	data := []byte{0xc2, 0x20, 0x01}
	hash := common.Keccak256(data)
	require.NoError(store.Put(hash, data))
	require.NoError(store.Close())

	reopened, err := OpenNodeStore(file)
	require.NoError(err)
	defer reopened.Close()
	got, err := reopened.Node(hash)
	require.NoError(err)
	require.Equal(data, got)
}

func TestNodeStore_ServesProofGeneration(t *testing.T) {
	require := require.New(t)
	store := openTestStore(t)

	trie := mpt.NewTrie(store)
	trie.Update([]byte("horse"), []byte("stallion"))
	trie.Update([]byte("house"), []byte("building"))
	root, err := trie.Commit()
	require.NoError(err)

	proof, value, err := mpt.GenerateProof(store, root, []byte("house"))
	require.NoError(err)
	require.Equal([]byte("building"), value)
	require.NoError(mpt.VerifyProof(root, proof, []byte("house"), []byte("building")))
}
