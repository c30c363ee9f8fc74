// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"testing"

	"github.com/0xsoniclabs/ethproof/common"
	"github.com/0xsoniclabs/ethproof/mpt"
	"github.com/0xsoniclabs/ethproof/mpt/store/memory"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestEncodeStorageValue_MatchesKnownEncodings(t *testing.T) {
	require := require.New(t)

	value, err := uint256.FromHex("0x9f27993a07acac99ef1503695235bd02151f028f")
	require.NoError(err)
	encoded, err := EncodeStorageValue(value)
	require.NoError(err)
	require.Equal([]byte{
		148, 159, 39, 153, 58, 7, 172, 172, 153, 239, 21, 3, 105, 82, 53, 189, 2, 21, 31, 2, 143,
	}, encoded)

	// Small values encode without a length prefix, zero as the empty string.
	encoded, err = EncodeStorageValue(uint256.NewInt(1))
	require.NoError(err)
	require.Equal([]byte{0x01}, encoded)

	encoded, err = EncodeStorageValue(uint256.NewInt(0))
	require.NoError(err)
	require.Equal([]byte{0x80}, encoded)
}

func TestStorageTrieKey_IsDigestOfPaddedSlotIndex(t *testing.T) {
	require := require.New(t)

	var padded [32]byte
	padded[31] = 1
	require.Equal(common.Keccak256(padded[:]), StorageTrieKey(uint256.NewInt(1)))

	require.Equal(common.Keccak256(make([]byte, 32)), StorageTrieKey(uint256.NewInt(0)))
	require.NotEqual(StorageTrieKey(uint256.NewInt(1)), StorageTrieKey(uint256.NewInt(2)))
}

func TestAccountTrieKey_IsDigestOfAddress(t *testing.T) {
	require := require.New(t)

	address := Address{0x30, 0xdc, 0x13, 0x76, 0xaa, 0x20, 0x6a, 0x26, 0xac, 0xa0,
		0x73, 0xa8, 0x36, 0x7e, 0xdb, 0xe3, 0xe3, 0x4d, 0x51, 0x1c}
	require.Equal(common.Keccak256(address[:]), AccountTrieKey(address))
}

func TestAccount_EncodeIsAFourElementList(t *testing.T) {
	require := require.New(t)

	account := Account{
		Nonce:       1,
		Balance:     uint256.NewInt(0),
		StorageRoot: mpt.HashedEmptyNode,
		CodeHash:    common.Keccak256(nil),
	}
	encoded, err := account.Encode()
	require.NoError(err)

	content, rest, err := rlp.SplitList(encoded)
	require.NoError(err)
	require.Empty(rest)
	count, err := rlp.CountValues(content)
	require.NoError(err)
	require.Equal(4, count)

	// A nil balance encodes like a zero balance.
	account.Balance = nil
	sameEncoding, err := account.Encode()
	require.NoError(err)
	require.Equal(encoded, sameEncoding)
}

func TestStorageProof_SlotValueRoundTrip(t *testing.T) {
	require := require.New(t)

	// A storage trie holding value 1 in slot 1, proven under the slot's
	// keccak-derived trie key.
	slot := uint256.NewInt(1)
	key := StorageTrieKey(slot)
	value, err := EncodeStorageValue(uint256.NewInt(1))
	require.NoError(err)

	store := memory.NewNodeStore()
	trie := mpt.NewTrie(store)
	trie.Update(key.Bytes(), value)
	root, err := trie.Commit()
	require.NoError(err)

	proof, got, err := mpt.GenerateProof(store, root, key.Bytes())
	require.NoError(err)
	require.Equal(value, got)
	require.NoError(mpt.VerifyProof(root, proof, key.Bytes(), value))

	// Another slot is provably absent.
	absent := StorageTrieKey(uint256.NewInt(2))
	proof, got, err = mpt.GenerateProof(store, root, absent.Bytes())
	require.NoError(err)
	require.Nil(got)
	require.NoError(mpt.VerifyProof(root, proof, absent.Bytes(), nil))
}

func TestAccountProof_AccountStateRoundTrip(t *testing.T) {
	require := require.New(t)

	store := memory.NewNodeStore()
	trie := mpt.NewTrie(store)

	// A state trie with several accounts, keyed by hashed addresses.
	accounts := map[Address]Account{}
	for i := byte(1); i <= 5; i++ {
		address := Address{i, i, i}
		accounts[address] = Account{
			Nonce:       uint64(i),
			Balance:     uint256.NewInt(uint64(i) * 1000),
			StorageRoot: mpt.HashedEmptyNode,
			CodeHash:    common.Keccak256([]byte{i}),
		}
	}
	for address, account := range accounts {
		encoded, err := account.Encode()
		require.NoError(err)
		key := AccountTrieKey(address)
		trie.Update(key.Bytes(), encoded)
	}
	root, err := trie.Commit()
	require.NoError(err)

	for address, account := range accounts {
		encoded, err := account.Encode()
		require.NoError(err)
		key := AccountTrieKey(address)

		proof, value, err := mpt.GenerateProof(store, root, key.Bytes())
		require.NoError(err)
		require.Equal(encoded, value)
		require.NoError(mpt.VerifyProof(root, proof, key.Bytes(), encoded))

		// A proof for the right key but a different account state fails.
		other := account
		other.Nonce++
		otherEncoded, err := other.Encode()
		require.NoError(err)
		err = mpt.VerifyProof(root, proof, key.Bytes(), otherEncoded)
		var mismatch *mpt.ValueMismatchError
		require.ErrorAs(err, &mismatch)
	}

	// An address that was never funded is provably absent.
	unknown := AccountTrieKey(Address{0xff})
	proof, value, err := mpt.GenerateProof(store, root, unknown.Bytes())
	require.NoError(err)
	require.Nil(value)
	require.NoError(mpt.VerifyProof(root, proof, unknown.Bytes(), nil))
}
