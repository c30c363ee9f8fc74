// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// HashSize is the number of bytes of a Hash.
const HashSize = 32

// Hash is a 32-byte cryptographic digest identifying data by content.
type Hash [HashSize]byte

// Keccak256 computes the Keccak-256 digest of the given data.
func Keccak256(data []byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	var hash Hash
	hasher.Sum(hash[0:0])
	return hash
}

// HashFromBytes creates a Hash from a byte slice, which must be exactly
// HashSize bytes long.
func HashFromBytes(data []byte) (Hash, error) {
	if len(data) != HashSize {
		return Hash{}, fmt.Errorf("invalid hash length %d, expected %d", len(data), HashSize)
	}
	return Hash(data), nil
}

// HashFromString parses a hex-encoded hash, with or without a 0x prefix.
func HashFromString(s string) (Hash, error) {
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return HashFromBytes(data)
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}
