// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state provides the Ethereum-specific key derivations and value
// encodings for proving account and storage entries: state and storage tries
// are keyed by digests of addresses and slot indices, and store
// RLP-serialized values.
package state

import (
	"fmt"

	"github.com/0xsoniclabs/ethproof/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// AddressSize is the number of bytes of an Ethereum address.
const AddressSize = 20

// Address is a 20-byte Ethereum account address.
type Address [AddressSize]byte

// Account is the value stored in the state trie under an account's trie key.
type Account struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot common.Hash
	CodeHash    common.Hash
}

// Encode produces the canonical RLP encoding of the account, the value form
// stored in the state trie.
func (a *Account) Encode() ([]byte, error) {
	balance := a.Balance
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	res, err := rlp.EncodeToBytes([]any{a.Nonce, balance, a.StorageRoot[:], a.CodeHash[:]})
	if err != nil {
		return nil, fmt.Errorf("failed to encode account: %w", err)
	}
	return res, nil
}

// AccountTrieKey derives the state trie key of an account, the Keccak-256
// digest of its address.
func AccountTrieKey(address Address) common.Hash {
	return common.Keccak256(address[:])
}

// StorageTrieKey derives the storage trie key of a slot, the Keccak-256
// digest of the 32-byte big-endian slot index.
func StorageTrieKey(slot *uint256.Int) common.Hash {
	index := slot.Bytes32()
	return common.Keccak256(index[:])
}

// EncodeStorageValue produces the RLP encoding of a storage value, the RLP
// string of its big-endian byte representation with leading zeros trimmed.
// The zero value encodes as the empty string.
func EncodeStorageValue(value *uint256.Int) ([]byte, error) {
	res, err := rlp.EncodeToBytes(value.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to encode storage value: %w", err)
	}
	return res, nil
}
