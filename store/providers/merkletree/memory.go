/*
 * Copyright 2017-2022 Provide Technologies Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package merkletree

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/bits"
	"sync"
)

const (
	outOfBounds = "incorrect index; index out of bounds"
)

// Node is a single node or leaf in the merkle tree
type Node struct {
	hash   []byte
	index  int
	Parent *Node
}

// Hash returns the hex representation of the hash of the node
func (node *Node) Hash() string {
	return hex.EncodeToString(node.hash)
}

// Index returns the index of this node in its level
func (node *Node) Index() int {
	return node.index
}

// String returns the hash of this node. Alias to Hash()
func (node *Node) String() string {
	return node.Hash()
}

var _ MerkleTree = (*MemoryMerkleTree)(nil)
var _ MerkleTreeNode = (*Node)(nil)

// MemoryMerkleTree is an append-only merkle tree held in memory; an odd node at the end of
// a level is paired with itself
type MemoryMerkleTree struct {
	Digest   hash.Hash
	Mutex    sync.RWMutex
	Nodes    [][]*Node
	RootNode *Node
}

// NewMerkleTree returns an initialized MemoryMerkleTree; sha256 is used when h is nil
func NewMerkleTree(h hash.Hash) *MemoryMerkleTree {
	if h == nil {
		h = sha256.New()
	}
	return &MemoryMerkleTree{
		Digest: h,
		Nodes:  make([][]*Node, 1),
	}
}

func (tree *MemoryMerkleTree) hash(data ...[]byte) []byte {
	tree.Digest.Reset()
	for i := range data {
		tree.Digest.Write(data[i])
	}
	return tree.Digest.Sum(nil)
}

func (tree *MemoryMerkleTree) resizeVertically() {
	leafs := len(tree.Nodes[0])
	neededLevels := bits.Len(uint(leafs-1)) + 1
	if leafs <= 1 {
		neededLevels = 1
	}

	if len(tree.Nodes) < neededLevels {
		n := make([][]*Node, neededLevels)
		copy(n, tree.Nodes)
		tree.Nodes = n
	}
}

func (tree *MemoryMerkleTree) createParent(left, right *Node) *Node {
	parentNode := &Node{
		hash:  tree.hash(left.hash, right.hash),
		index: right.index / 2,
	}

	left.Parent = parentNode
	right.Parent = parentNode

	return parentNode
}

// propagateChange rehashes the path from the last inserted leaf to the root
func (tree *MemoryMerkleTree) propagateChange() *Node {
	tree.resizeVertically()
	levels := len(tree.Nodes)

	for i := 0; i < levels-1; i++ {
		levelLen := len(tree.Nodes[i])
		right := tree.Nodes[i][levelLen-1]
		left := right
		if levelLen%2 == 0 {
			left = tree.Nodes[i][levelLen-2]
		}

		parent := tree.createParent(left, right)
		if parent.index == len(tree.Nodes[i+1]) {
			tree.Nodes[i+1] = append(tree.Nodes[i+1], parent)
		} else {
			tree.Nodes[i+1][parent.index] = parent
		}
	}

	return tree.Nodes[levels-1][0]
}

func (tree *MemoryMerkleTree) getNodeSibling(level int, index int) *Node {
	nodesCount := len(tree.Nodes[level])
	if index%2 == 1 {
		return tree.Nodes[level][index-1]
	}
	if index == nodesCount-1 {
		return tree.Nodes[level][index]
	}
	return tree.Nodes[level][index+1]
}

// Add hashes data and appends it as the next leaf, returning its index and hex hash
func (tree *MemoryMerkleTree) Add(data []byte) (index int, hash string) {
	tree.Mutex.Lock()
	defer tree.Mutex.Unlock()

	leaf := &Node{
		hash:  tree.hash(data),
		index: len(tree.Nodes[0]),
	}
	tree.Nodes[0] = append(tree.Nodes[0], leaf)

	if leaf.index == 0 {
		tree.RootNode = leaf
	} else {
		tree.RootNode = tree.propagateChange()
	}

	return leaf.index, leaf.Hash()
}

// IntermediaryHashesByIndex returns all hashes needed to produce the root from the given index
func (tree *MemoryMerkleTree) IntermediaryHashesByIndex(index int) (intermediaryHashes []string, err error) {
	tree.Mutex.RLock()
	defer tree.Mutex.RUnlock()

	if index < 0 || index >= len(tree.Nodes[0]) {
		return nil, errors.New(outOfBounds)
	}

	intermediaryHashes = make([]string, 0, len(tree.Nodes))
	for level := 0; level < len(tree.Nodes)-1; level++ {
		intermediaryHashes = append(intermediaryHashes, tree.getNodeSibling(level, index).Hash())
		index /= 2
	}

	return intermediaryHashes, nil
}

// ValidateExistence recomputes the root from the original data at index and the given
// intermediary hashes, and compares it with the current root
func (tree *MemoryMerkleTree) ValidateExistence(original []byte, index int, intermediaryHashes []string) (result bool, err error) {
	tree.Mutex.RLock()
	defer tree.Mutex.RUnlock()

	if index < 0 || index >= len(tree.Nodes[0]) {
		return false, errors.New(outOfBounds)
	}

	computed := tree.hash(original)
	if !bytes.Equal(computed, tree.Nodes[0][index].hash) {
		return false, nil
	}

	for _, h := range intermediaryHashes {
		sibling, err := hex.DecodeString(h)
		if err != nil {
			return false, fmt.Errorf("failed to decode intermediary hash; %w", err)
		}
		if index%2 == 0 {
			computed = tree.hash(computed, sibling)
		} else {
			computed = tree.hash(sibling, computed)
		}
		index /= 2
	}

	return bytes.Equal(computed, tree.RootNode.hash), nil
}

// Root returns the hex hash of the root of the tree
func (tree *MemoryMerkleTree) Root() (*string, error) {
	tree.Mutex.RLock()
	defer tree.Mutex.RUnlock()

	if tree.RootNode == nil {
		return nil, fmt.Errorf("nil root node")
	}
	root := tree.RootNode.Hash()
	return &root, nil
}

// Length returns the count of the tree leafs
func (tree *MemoryMerkleTree) Length() int {
	tree.Mutex.RLock()
	defer tree.Mutex.RUnlock()
	return len(tree.Nodes[0])
}
