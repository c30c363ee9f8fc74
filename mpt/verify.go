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
	"errors"
	"fmt"

	"github.com/0xsoniclabs/ethproof/common"
)

// ---- Verification errors ----

// ErrIncompleteProof is returned when the proof contains fewer nodes than the
// descent to the key requires, including the case of an empty proof.
var ErrIncompleteProof = errors.New("proof is incomplete")

// errInlineChild is reported when a descent step would have to follow an
// embedded child reference. Keccak-keyed Ethereum tries reference all proof
// nodes by digest, so an inline reference on the key path is unsupported.
var errInlineChild = errors.New("inline child references are not supported")

// HashMismatchError is returned when a proof node does not hash to the digest
// its parent (or the root) references.
type HashMismatchError struct {
	Expected common.Hash
	Found    common.Hash
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("node hash %s does not match expected %s", e.Found, e.Expected)
}

// ProofDecodeError is returned when a proof entry cannot be decoded as a trie
// node. Index identifies the offending entry.
type ProofDecodeError struct {
	Index int
	Err   error
}

func (e *ProofDecodeError) Error() string {
	return fmt.Sprintf("proof entry %d: %v", e.Index, e.Err)
}

func (e *ProofDecodeError) Unwrap() error {
	return e.Err
}

// ValueMismatchError is returned when the proof pins a value under the key
// that differs from the expected one. A nil Expected documents that the
// caller claimed absence while the proof shows a stored value.
type ValueMismatchError struct {
	Expected []byte
	Found    []byte
}

func (e *ValueMismatchError) Error() string {
	if e.Expected == nil {
		return fmt.Sprintf("expected no value, but proof shows 0x%x", e.Found)
	}
	return fmt.Sprintf("expected value 0x%x, but proof shows 0x%x", e.Expected, e.Found)
}

// NonExistingValueError is returned when the caller expected a value but the
// proof shows the key is not present in the trie.
type NonExistingValueError struct {
	Key []byte
}

func (e *NonExistingValueError) Error() string {
	return fmt.Sprintf("key 0x%x does not exist in the trie", e.Key)
}

// ---- Verifier ----

// Verifier checks proofs against a root digest using an injected node codec
// and hasher. A Verifier holds no mutable state and is safe for concurrent
// use.
type Verifier struct {
	codec  NodeCodec
	hasher Hasher
}

// NewVerifier creates a Verifier for the given wire format strategy.
func NewVerifier(codec NodeCodec, hasher Hasher) *Verifier {
	return &Verifier{codec: codec, hasher: hasher}
}

var defaultVerifier = NewVerifier(RLPCodec, KeccakHasher)

// VerifyProof checks a proof for the Ethereum wire format (RLP nodes,
// Keccak-256 digests). See Verifier.Verify for the contract.
func VerifyProof(root common.Hash, proof [][]byte, key []byte, expected []byte) error {
	return defaultVerifier.Verify(root, proof, key, expected)
}

// Verify checks whether the ordered list of raw trie nodes in proof is
// consistent with the given root digest and pins the expected value under the
// key. A nil expected value claims the key is absent from the trie.
//
// The outcome is exactly one of: nil for an accepted proof,
// ErrIncompleteProof, *HashMismatchError, *ProofDecodeError,
// *ValueMismatchError, or *NonExistingValueError. A stored value found where
// absence was claimed is reported as *ValueMismatchError with a nil Expected.
// Proof entries beyond the ones needed to resolve the key are ignored.
func (v *Verifier) Verify(root common.Hash, proof [][]byte, key []byte, expected []byte) error {
	if len(proof) == 0 {
		return ErrIncompleteProof
	}

	want := root
	path := ToNibbles(key)
	for cursor := 0; ; cursor++ {
		if cursor >= len(proof) {
			return ErrIncompleteProof
		}
		data := proof[cursor]

		// One uniform rule links the chain: the root references proof[0], and
		// every followed child reference names the digest of the next entry.
		found := v.hasher.Hash(data)
		if found != want {
			return &HashMismatchError{Expected: want, Found: found}
		}

		node, err := v.codec.Decode(data)
		if err != nil {
			return &ProofDecodeError{Index: cursor, Err: err}
		}

		switch n := node.(type) {
		case EmptyNode:
			// An empty node proves there is nothing here.
			if expected == nil {
				return nil
			}
			return &NonExistingValueError{Key: key}

		case LeafNode:
			if !n.Partial.Equal(path) {
				// The paths diverge, so the key is not in the trie.
				if expected == nil {
					return nil
				}
				return &NonExistingValueError{Key: key}
			}
			return checkValue(key, n.Value, expected)

		case ExtensionNode:
			if !path.HasPrefix(n.Partial) {
				if expected == nil {
					return nil
				}
				return &NonExistingValueError{Key: key}
			}
			if n.Child.IsInline() {
				return &ProofDecodeError{Index: cursor, Err: errInlineChild}
			}
			path = path[len(n.Partial):]
			want = n.Child.Hash

		case BranchNode:
			if len(path) == 0 {
				return checkValue(key, n.Value, expected)
			}
			child := n.Children[path[0]]
			if child == nil {
				if expected == nil {
					return nil
				}
				return &NonExistingValueError{Key: key}
			}
			if child.IsInline() {
				return &ProofDecodeError{Index: cursor, Err: errInlineChild}
			}
			path = path[1:]
			want = child.Hash
		}
	}
}

// checkValue resolves the terminal comparison between the value stored at the
// end of the key path (nil if there is none) and the caller's expectation.
func checkValue(key, stored, expected []byte) error {
	if stored == nil {
		if expected == nil {
			return nil
		}
		return &NonExistingValueError{Key: key}
	}
	if expected == nil || !bytes.Equal(stored, expected) {
		return &ValueMismatchError{Expected: expected, Found: stored}
	}
	return nil
}
