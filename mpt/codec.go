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
	"github.com/ethereum/go-ethereum/rlp"
)

// ---- Node model ----

// Node is a decoded trie node. There are four kinds of nodes: EmptyNode,
// LeafNode, ExtensionNode, and BranchNode.
type Node interface {
	isNode()
}

// EmptyNode represents the absence of a node. Its canonical wire form is the
// RLP encoding of the empty string, a single 0x80 byte.
type EmptyNode struct{}

// LeafNode terminates a key path. Its partial path must match all remaining
// key nibbles for its value to apply.
type LeafNode struct {
	Partial Nibbles
	Value   []byte
}

// ExtensionNode forwards to a single child below a shared partial path.
type ExtensionNode struct {
	Partial Nibbles
	Child   ChildRef
}

// BranchNode fans out into up to 16 children, indexed by the next nibble of
// the key. The optional value terminates a key exactly at this node. A nil
// child slot means there is no node under that nibble. Branch nodes never
// carry a partial path; the node model makes such a shape unrepresentable.
type BranchNode struct {
	Children [16]*ChildRef
	Value    []byte
}

func (EmptyNode) isNode()     {}
func (LeafNode) isNode()      {}
func (ExtensionNode) isNode() {}
func (BranchNode) isNode()    {}

// ChildRef is a reference to a child node, either by its 32-byte digest or as
// an inline raw sub-encoding embedded in the parent.
type ChildRef struct {
	Hash   common.Hash
	Inline []byte // < raw sub-encoding; nil for hash references
}

// HashRef creates a child reference by digest.
func HashRef(hash common.Hash) ChildRef {
	return ChildRef{Hash: hash}
}

// InlineRef creates an embedded child reference holding the raw sub-encoding.
func InlineRef(raw []byte) ChildRef {
	return ChildRef{Inline: raw}
}

// IsInline returns true if the reference embeds the child rather than
// pointing to it by digest.
func (r ChildRef) IsInline() bool {
	return r.Inline != nil
}

// ---- Codec strategy ----

// NodeCodec converts between raw node wire bytes and decoded nodes. It is an
// injected strategy so that the verifier, generator, and trie engine share
// one wire format definition.
type NodeCodec interface {
	// Decode parses raw node bytes. Malformed or truncated input yields an
	// error wrapping ErrInvalidNodeEncoding, never a panic.
	Decode(data []byte) (Node, error)
	// Encode produces the canonical wire bytes of a node.
	Encode(node Node) ([]byte, error)
	// EmptyNode returns the canonical wire form of the empty node.
	EmptyNode() []byte
	// IsEmpty returns true iff data is the canonical empty node encoding.
	IsEmpty(data []byte) bool
}

// Hasher digests node wire bytes. It is injected alongside the NodeCodec so
// alternate digest algorithms reuse the same verification logic.
type Hasher interface {
	Hash(data []byte) common.Hash
}

type keccakHasher struct{}

func (keccakHasher) Hash(data []byte) common.Hash {
	return common.Keccak256(data)
}

// KeccakHasher is the Keccak-256 Hasher used by Ethereum tries.
var KeccakHasher Hasher = keccakHasher{}

// ---- RLP node codec ----

// ErrInvalidNodeEncoding is wrapped by all errors reported for malformed
// node wire bytes.
var ErrInvalidNodeEncoding = errors.New("invalid node encoding")

// EmptyNodeRLP is the canonical wire form of the empty node, the RLP
// encoding of the empty string.
var EmptyNodeRLP = []byte{0x80}

// HashedEmptyNode is the Keccak-256 digest of EmptyNodeRLP, the canonical
// root of an empty Ethereum trie.
var HashedEmptyNode = common.Hash{
	0x56, 0xe8, 0x1f, 0x17, 0x1b, 0xcc, 0x55, 0xa6, 0xff, 0x83, 0x45, 0xe6, 0x92, 0xc0, 0xf8, 0x6e,
	0x5b, 0x48, 0xe0, 0x1b, 0x99, 0x6c, 0xad, 0xc0, 0x01, 0x62, 0x2f, 0xb5, 0xe3, 0x63, 0xb4, 0x21,
}

// RLPCodec is the NodeCodec for Ethereum's RLP node wire format.
var RLPCodec NodeCodec = rlpNodeCodec{}

type rlpNodeCodec struct{}

// rlpItem is one element of an RLP list: its payload, the raw bytes including
// the header, and whether the element is itself a list.
type rlpItem struct {
	payload []byte
	raw     []byte
	isList  bool
}

func (rlpNodeCodec) Decode(data []byte) (Node, error) {
	// The digest of the empty node is the well-known root of an empty trie
	// and is recognized without parsing.
	if bytes.Equal(data, HashedEmptyNode[:]) {
		return EmptyNode{}, nil
	}

	kind, content, rest, err := rlp.Split(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNodeEncoding, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after node", ErrInvalidNodeEncoding, len(rest))
	}
	switch kind {
	case rlp.String:
		if len(content) == 0 {
			return EmptyNode{}, nil
		}
		return nil, fmt.Errorf("%w: unexpected string of %d bytes", ErrInvalidNodeEncoding, len(content))
	case rlp.Byte:
		return nil, fmt.Errorf("%w: unexpected single byte", ErrInvalidNodeEncoding)
	}

	items, err := splitListItems(content)
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 2:
		return decodeShortNode(items)
	case 17:
		return decodeBranchNode(items)
	}
	return nil, fmt.Errorf("%w: list of %d elements is neither a leaf/extension nor a branch",
		ErrInvalidNodeEncoding, len(items))
}

// splitListItems splits the payload of an RLP list into its elements using
// bounds-checked header arithmetic.
func splitListItems(content []byte) ([]rlpItem, error) {
	items := make([]rlpItem, 0, 17)
	for len(content) > 0 {
		kind, payload, rest, err := rlp.Split(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNodeEncoding, err)
		}
		items = append(items, rlpItem{
			payload: payload,
			raw:     content[:len(content)-len(rest)],
			isList:  kind == rlp.List,
		})
		content = rest
	}
	return items, nil
}

func decodeShortNode(items []rlpItem) (Node, error) {
	if items[0].isList {
		return nil, fmt.Errorf("%w: partial path must be a string", ErrInvalidNodeEncoding)
	}
	isLeaf, partial, err := DecodeCompact(items[0].payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNodeEncoding, err)
	}
	if isLeaf {
		if items[1].isList {
			return nil, fmt.Errorf("%w: leaf value must be a string", ErrInvalidNodeEncoding)
		}
		return LeafNode{Partial: partial, Value: items[1].payload}, nil
	}
	child, err := decodeChildRef(items[1])
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("%w: extension node without child", ErrInvalidNodeEncoding)
	}
	return ExtensionNode{Partial: partial, Child: *child}, nil
}

func decodeBranchNode(items []rlpItem) (Node, error) {
	res := BranchNode{}
	for i := 0; i < 16; i++ {
		child, err := decodeChildRef(items[i])
		if err != nil {
			return nil, err
		}
		res.Children[i] = child
	}
	value := items[16]
	if value.isList {
		return nil, fmt.Errorf("%w: branch value must be a string", ErrInvalidNodeEncoding)
	}
	if len(value.payload) > 0 {
		res.Value = value.payload
	}
	return res, nil
}

// decodeChildRef interprets one list element as a child reference. An empty
// string means there is no child. A payload of digest length is a hash
// reference; everything else, including embedded sub-lists, is an inline
// reference holding the raw sub-encoding.
func decodeChildRef(item rlpItem) (*ChildRef, error) {
	if item.isList {
		res := InlineRef(item.raw)
		return &res, nil
	}
	switch len(item.payload) {
	case 0:
		return nil, nil
	case common.HashSize:
		hash, err := common.HashFromBytes(item.payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNodeEncoding, err)
		}
		res := HashRef(hash)
		return &res, nil
	default:
		res := InlineRef(item.raw)
		return &res, nil
	}
}

func (rlpNodeCodec) Encode(node Node) ([]byte, error) {
	switch n := node.(type) {
	case EmptyNode:
		return EmptyNodeRLP, nil
	case LeafNode:
		return rlp.EncodeToBytes([]any{EncodeCompact(n.Partial, true), n.Value})
	case ExtensionNode:
		return rlp.EncodeToBytes([]any{EncodeCompact(n.Partial, false), encodeChildRef(&n.Child)})
	case BranchNode:
		items := make([]any, 17)
		for i, child := range n.Children {
			items[i] = encodeChildRef(child)
		}
		if n.Value != nil {
			items[16] = n.Value
		} else {
			items[16] = []byte{}
		}
		return rlp.EncodeToBytes(items)
	}
	return nil, fmt.Errorf("unsupported node type %T", node)
}

func encodeChildRef(child *ChildRef) any {
	if child == nil {
		return []byte{}
	}
	if child.IsInline() {
		return rlp.RawValue(child.Inline)
	}
	return child.Hash[:]
}

func (rlpNodeCodec) EmptyNode() []byte {
	return EmptyNodeRLP
}

func (rlpNodeCodec) IsEmpty(data []byte) bool {
	return bytes.Equal(data, EmptyNodeRLP)
}
