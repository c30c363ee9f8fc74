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
	"fmt"

	"github.com/0xsoniclabs/ethproof/common"
)

// ---- Lookup ----

// Lookup resolves the value stored under the given key in the trie rooted at
// root, fetching nodes from the source. It returns nil if the key is not
// present. If a recorder is provided, the raw bytes of every visited node are
// reported to it in root-to-leaf order.
//
// Key hashing is caller policy: Lookup walks the nibble path of the key as
// given. Errors of the source and malformed stored nodes are propagated.
func Lookup(source NodeSource, root common.Hash, key []byte, recorder *ProofRecorder) ([]byte, error) {
	return lookup(source, RLPCodec, root, key, recorder)
}

func lookup(source NodeSource, codec NodeCodec, root common.Hash, key []byte, recorder *ProofRecorder) ([]byte, error) {
	path := ToNibbles(key)
	next := root
	for {
		data, err := source.Node(next)
		if err != nil {
			return nil, err
		}
		if recorder != nil {
			recorder.Record(data)
		}
		node, err := codec.Decode(data)
		if err != nil {
			return nil, err
		}

		switch n := node.(type) {
		case EmptyNode:
			return nil, nil
		case LeafNode:
			if !n.Partial.Equal(path) {
				return nil, nil
			}
			return n.Value, nil
		case ExtensionNode:
			if !path.HasPrefix(n.Partial) {
				return nil, nil
			}
			if n.Child.IsInline() {
				return nil, fmt.Errorf("node %s: %w", next, errInlineChild)
			}
			path = path[len(n.Partial):]
			next = n.Child.Hash
		case BranchNode:
			if len(path) == 0 {
				return n.Value, nil
			}
			child := n.Children[path[0]]
			if child == nil {
				return nil, nil
			}
			if child.IsInline() {
				return nil, fmt.Errorf("node %s: %w", next, errInlineChild)
			}
			path = path[1:]
			next = child.Hash
		}
	}
}

// ---- Construction ----

// Trie is an insert-only Merkle-Patricia Trie builder. Entries are collected
// in memory with Update and materialized into a NodeStore with Commit, which
// returns the root digest. It exists to populate stores for proof generation
// and testing; deletion and rebalancing are not supported.
//
// A Trie is not safe for concurrent use.
type Trie struct {
	store  NodeStore
	codec  NodeCodec
	hasher Hasher
	root   memNode
}

// NewTrie creates a trie builder committing to the given store using the
// Ethereum wire format.
func NewTrie(store NodeStore) *Trie {
	return &Trie{store: store, codec: RLPCodec, hasher: KeccakHasher}
}

// Update inserts or replaces the value under the given key. The value must
// not be empty; keys are used as given, hashing them first is caller policy.
func (t *Trie) Update(key, value []byte) {
	t.root = insert(t.root, ToNibbles(key), value)
}

// Commit encodes all nodes, stores each under its digest, and returns the
// root digest. An empty trie commits to the digest of the empty node. The
// builder remains usable; committing again after further updates stores the
// additional nodes next to the previous version's.
func (t *Trie) Commit() (common.Hash, error) {
	if t.root == nil {
		if err := t.store.Put(HashedEmptyNode, t.codec.EmptyNode()); err != nil {
			return common.Hash{}, err
		}
		return HashedEmptyNode, nil
	}
	return t.commit(t.root)
}

// memNode is an in-memory node of the builder before it is committed.
type memNode interface {
	isMemNode()
}

type memLeaf struct {
	partial Nibbles
	value   []byte
}

type memExtension struct {
	partial Nibbles
	child   memNode
}

type memBranch struct {
	children [16]memNode
	value    []byte
}

func (*memLeaf) isMemNode()      {}
func (*memExtension) isMemNode() {}
func (*memBranch) isMemNode()    {}

func insert(node memNode, path Nibbles, value []byte) memNode {
	switch n := node.(type) {
	case nil:
		return &memLeaf{partial: path, value: value}

	case *memLeaf:
		shared := commonPrefixLength(n.partial, path)
		if shared == len(n.partial) && shared == len(path) {
			n.value = value
			return n
		}
		branch := &memBranch{}
		branch.add(n.partial[shared:], n.value)
		branch.add(path[shared:], value)
		return wrap(path[:shared], branch)

	case *memExtension:
		shared := commonPrefixLength(n.partial, path)
		if shared == len(n.partial) {
			n.child = insert(n.child, path[shared:], value)
			return n
		}
		branch := &memBranch{}
		branch.children[n.partial[shared]] = wrap(n.partial[shared+1:], n.child)
		branch.add(path[shared:], value)
		return wrap(path[:shared], branch)

	case *memBranch:
		n.add(path, value)
		return n
	}
	panic(fmt.Sprintf("unexpected node type %T", node))
}

// add places a value below a branch, either as the branch's own value for an
// exhausted path or under the child slot of the next nibble.
func (b *memBranch) add(path Nibbles, value []byte) {
	if len(path) == 0 {
		b.value = value
		return
	}
	b.children[path[0]] = insert(b.children[path[0]], path[1:], value)
}

// wrap places a subtree below a partial path, introducing an extension node
// only if the path is non-empty. Leaves absorb the path into their own
// partial instead.
func wrap(path Nibbles, node memNode) memNode {
	if len(path) == 0 {
		return node
	}
	if leaf, ok := node.(*memLeaf); ok {
		return &memLeaf{partial: append(append(Nibbles{}, path...), leaf.partial...), value: leaf.value}
	}
	if ext, ok := node.(*memExtension); ok {
		return &memExtension{partial: append(append(Nibbles{}, path...), ext.partial...), child: ext.child}
	}
	return &memExtension{partial: append(Nibbles{}, path...), child: node}
}

// commit stores the subtree rooted in the given node and returns its digest.
// Children are committed first so that parents can reference them by digest;
// the engine never produces inline references.
func (t *Trie) commit(node memNode) (common.Hash, error) {
	encoded, err := t.encode(node)
	if err != nil {
		return common.Hash{}, err
	}
	hash := t.hasher.Hash(encoded)
	if err := t.store.Put(hash, encoded); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

func (t *Trie) encode(node memNode) ([]byte, error) {
	switch n := node.(type) {
	case *memLeaf:
		return t.codec.Encode(LeafNode{Partial: n.partial, Value: n.value})
	case *memExtension:
		child, err := t.commit(n.child)
		if err != nil {
			return nil, err
		}
		return t.codec.Encode(ExtensionNode{Partial: n.partial, Child: HashRef(child)})
	case *memBranch:
		res := BranchNode{Value: n.value}
		for i, child := range n.children {
			if child == nil {
				continue
			}
			hash, err := t.commit(child)
			if err != nil {
				return nil, err
			}
			ref := HashRef(hash)
			res.Children[i] = &ref
		}
		return t.codec.Encode(res)
	}
	return nil, fmt.Errorf("unexpected node type %T", node)
}
