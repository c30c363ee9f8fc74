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
	"bytes"
	"fmt"
)

// Nibbles is a key path in the trie, one element per 4-bit nibble. Each
// element is in the range 0-15.
type Nibbles []byte

// ToNibbles converts a byte key into its nibble path, emitting for every byte
// first its high and then its low nibble. The result is twice as long as the
// input.
func ToNibbles(key []byte) Nibbles {
	res := make(Nibbles, 0, 2*len(key))
	for _, b := range key {
		res = append(res, b>>4, b&0x0f)
	}
	return res
}

// Equal returns true if both paths contain the same nibble sequence.
func (n Nibbles) Equal(other Nibbles) bool {
	return bytes.Equal(n, other)
}

// HasPrefix returns true if the path starts with the given prefix.
func (n Nibbles) HasPrefix(prefix Nibbles) bool {
	return len(prefix) <= len(n) && bytes.Equal(n[:len(prefix)], prefix)
}

// commonPrefixLength returns the number of leading nibbles the two paths
// share.
func commonPrefixLength(a, b Nibbles) int {
	res := 0
	for res < len(a) && res < len(b) && a[res] == b[res] {
		res++
	}
	return res
}

// Hex-prefix encoding flags, stored in the high nibble of the first byte of a
// compact-encoded partial path.
const (
	oddFlag  = 0x1 // < the partial path has an odd number of nibbles
	leafFlag = 0x2 // < the partial path belongs to a leaf node
)

// EncodeCompact converts a partial key path into the hex-prefix (compact)
// encoding used inside leaf and extension nodes. The high nibble of the first
// byte carries the leaf and oddness flags; for odd-length paths the first
// nibble is folded into the low bits of that byte, the remaining nibbles are
// packed two per byte.
func EncodeCompact(partial Nibbles, isLeaf bool) []byte {
	flags := byte(0)
	if isLeaf {
		flags |= leafFlag
	}
	if len(partial)%2 == 1 {
		flags |= oddFlag
	}

	res := make([]byte, 0, len(partial)/2+1)
	first := flags << 4
	rest := partial
	if len(partial)%2 == 1 {
		first |= rest[0] & 0x0f
		rest = rest[1:]
	}
	res = append(res, first)
	for i := 0; i < len(rest); i += 2 {
		res = append(res, rest[i]<<4|rest[i+1]&0x0f)
	}
	return res
}

// DecodeCompact is the exact inverse of EncodeCompact. It rejects empty
// input and non-canonical flag bytes.
func DecodeCompact(data []byte) (isLeaf bool, partial Nibbles, err error) {
	if len(data) == 0 {
		return false, nil, fmt.Errorf("compact-encoded path must not be empty")
	}
	flags := data[0] >> 4
	if flags > oddFlag|leafFlag {
		return false, nil, fmt.Errorf("invalid hex-prefix flags in byte %#02x", data[0])
	}
	isLeaf = flags&leafFlag != 0
	odd := flags&oddFlag != 0
	if !odd && data[0]&0x0f != 0 {
		return false, nil, fmt.Errorf("non-zero padding in hex-prefix byte %#02x", data[0])
	}

	partial = make(Nibbles, 0, 2*len(data))
	if odd {
		partial = append(partial, data[0]&0x0f)
	}
	for _, b := range data[1:] {
		partial = append(partial, b>>4, b&0x0f)
	}
	return isLeaf, partial, nil
}
