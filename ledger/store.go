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

	"github.com/provideplatform/matchledger/codec"
)

// Path is an ordered list of encoded keys from the root to a node
type Path []codec.Value

// Store is a persistent ledger tree; Set returns a new store and leaves the receiver valid
type Store struct {
	root *Node
}

// NewStore returns a store rooted at root
func NewStore(root *Node) Store {
	return Store{root: root}
}

// Root returns the root node of the store
func (s Store) Root() *Node {
	return s.root
}

// Get returns the value of the cell at path
func (s Store) Get(path Path) (codec.Value, error) {
	node, err := s.resolve(path)
	if err != nil {
		return codec.Value{}, err
	}
	return node.Value()
}

// Set returns a new store with the cell at path set to val; missing map entries along the
// path are created
func (s Store) Set(path Path, val codec.Value) (Store, error) {
	root, err := setAt(s.root, path, val)
	if err != nil {
		return s, err
	}
	return Store{root: root}, nil
}

// ContainsKey returns true if key is bound in the map at mapPath
func (s Store) ContainsKey(mapPath Path, key codec.Value) (bool, error) {
	node, err := s.resolve(mapPath)
	if err != nil {
		return false, err
	}
	return node.Contains(key)
}

// MapSize returns the number of entries in the map at mapPath
func (s Store) MapSize(mapPath Path) (uint64, error) {
	node, err := s.resolve(mapPath)
	if err != nil {
		return 0, err
	}
	if node.Kind() != KindMap {
		return 0, &PathError{Op: "size", Reason: fmt.Sprintf("expected map, found %s", node.Kind())}
	}
	return node.Size()
}

func (s Store) resolve(path Path) (*Node, error) {
	node := s.root
	for _, key := range path {
		child, found, err := node.Child(key)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &PathError{Op: "index", Key: key.String(), Reason: "key not found"}
		}
		node = child
	}
	return node, nil
}

func setAt(node *Node, path Path, val codec.Value) (*Node, error) {
	if len(path) == 0 {
		if node.Kind() != KindCell && node.Kind() != KindNull {
			return nil, &PathError{Op: "set", Reason: fmt.Sprintf("cannot overwrite %s with cell", node.Kind())}
		}
		return Cell(val), nil
	}

	key := path[0]
	child := Null()
	if node.Kind() != KindNull {
		existing, found, err := node.Child(key)
		if err != nil {
			return nil, err
		}
		if found {
			child = existing
		}
	}

	updated, err := setAt(child, path[1:], val)
	if err != nil {
		return nil, err
	}
	return node.Insert(key, updated)
}
