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

package ledger

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/provideplatform/matchledger/codec"
)

// Kind is the shape of a ledger node
type Kind uint8

const (
	// KindNull is a placeholder for a map entry that does not exist yet
	KindNull Kind = iota
	// KindCell holds a single encoded value
	KindCell
	// KindMap holds encoded keys mapped to child nodes
	KindMap
	// KindArray holds a fixed number of child nodes addressed by u8 index
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindCell:
		return "cell"
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// maxArrayLength bounds array nodes so indexes fit in a single byte
const maxArrayLength = 0xff

type keyComparer struct{}

func (keyComparer) Compare(a, b string) int {
	return strings.Compare(a, b)
}

type mapEntry struct {
	key  codec.Value
	node *Node
}

// Node is an immutable ledger tree node; every mutation returns a new node which shares
// all untouched children with the original
type Node struct {
	kind    Kind
	cell    codec.Value
	entries *immutable.SortedMap[string, mapEntry]
	items   []*Node
}

var nullNode = &Node{kind: KindNull}

// Null returns the null placeholder node
func Null() *Node {
	return nullNode
}

// Cell returns a cell node holding v
func Cell(v codec.Value) *Node {
	return &Node{kind: KindCell, cell: v}
}

// EmptyMap returns a map node with no entries
func EmptyMap() *Node {
	return &Node{kind: KindMap, entries: immutable.NewSortedMap[string, mapEntry](keyComparer{})}
}

// Array returns an array node holding the given children
func Array(items ...*Node) *Node {
	if len(items) > maxArrayLength {
		panic(fmt.Sprintf("array of %d items exceeds maximum length", len(items)))
	}
	cp := make([]*Node, len(items))
	copy(cp, items)
	return &Node{kind: KindArray, items: cp}
}

// Kind returns the node shape
func (n *Node) Kind() Kind {
	return n.kind
}

// Value returns the value held by a cell node
func (n *Node) Value() (codec.Value, error) {
	if n.kind != KindCell {
		return codec.Value{}, &PathError{Op: "value", Reason: fmt.Sprintf("expected cell, found %s", n.kind)}
	}
	return n.cell, nil
}

// Child resolves key within a map or array node; found is false for a missing map key
func (n *Node) Child(key codec.Value) (child *Node, found bool, err error) {
	switch n.kind {
	case KindMap:
		entry, ok := n.entries.Get(string(key.Bytes))
		if !ok {
			return nil, false, nil
		}
		return entry.node, true, nil
	case KindArray:
		i, err := arrayIndex(key, len(n.items))
		if err != nil {
			return nil, false, err
		}
		return n.items[i], true, nil
	}
	return nil, false, &PathError{Op: "index", Key: key.String(), Reason: fmt.Sprintf("cannot index into %s", n.kind)}
}

// Insert returns a copy of the node with key bound to child; a null node becomes a map
func (n *Node) Insert(key codec.Value, child *Node) (*Node, error) {
	switch n.kind {
	case KindNull:
		return EmptyMap().Insert(key, child)
	case KindMap:
		return &Node{kind: KindMap, entries: n.entries.Set(string(key.Bytes), mapEntry{key: key, node: child})}, nil
	case KindArray:
		i, err := arrayIndex(key, len(n.items))
		if err != nil {
			return nil, err
		}
		items := make([]*Node, len(n.items))
		copy(items, n.items)
		items[i] = child
		return &Node{kind: KindArray, items: items}, nil
	}
	return nil, &PathError{Op: "insert", Key: key.String(), Reason: fmt.Sprintf("cannot insert into %s", n.kind)}
}

// Contains returns true if key is bound within a map node
func (n *Node) Contains(key codec.Value) (bool, error) {
	if n.kind != KindMap {
		return false, &PathError{Op: "member", Key: key.String(), Reason: fmt.Sprintf("expected map, found %s", n.kind)}
	}
	_, ok := n.entries.Get(string(key.Bytes))
	return ok, nil
}

// Size returns the number of entries of a map or array node
func (n *Node) Size() (uint64, error) {
	switch n.kind {
	case KindMap:
		return uint64(n.entries.Len()), nil
	case KindArray:
		return uint64(len(n.items)), nil
	}
	return 0, &PathError{Op: "size", Reason: fmt.Sprintf("expected map or array, found %s", n.kind)}
}

// Walk calls fn for each child of a map (in key order) or array (in index order)
func (n *Node) Walk(fn func(key codec.Value, child *Node) error) error {
	switch n.kind {
	case KindMap:
		itr := n.entries.Iterator()
		for !itr.Done() {
			_, entry, _ := itr.Next()
			if err := fn(entry.key, entry.node); err != nil {
				return err
			}
		}
	case KindArray:
		for i, item := range n.items {
			if err := fn(codec.MustEncode[uint64](codec.U8, uint64(i)), item); err != nil {
				return err
			}
		}
	}
	return nil
}

func arrayIndex(key codec.Value, length int) (int, error) {
	i, err := codec.Decode[uint64](codec.U8, key)
	if err != nil {
		return 0, &PathError{Op: "index", Key: key.String(), Reason: fmt.Sprintf("invalid array index; %s", err.Error())}
	}
	if int(i) >= length {
		return 0, &PathError{Op: "index", Key: key.String(), Reason: fmt.Sprintf("array index %d out of bounds for length %d", i, length)}
	}
	return int(i), nil
}
