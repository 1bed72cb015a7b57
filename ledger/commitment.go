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
	"encoding/hex"
	"fmt"

	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/state"
	"github.com/provideplatform/matchledger/store/providers"
)

// Commit returns the commitment to the snapshot: an overall sparse merkle root over every
// cell of the ledger, and one claim per root slot
func (s *Snapshot) Commit(curve string) (*state.State, error) {
	tree, err := providers.InitSparseMerkleTreeStoreProvider(curve)
	if err != nil {
		return nil, err
	}

	total, err := s.TotalUsers()
	if err != nil {
		return nil, err
	}
	nonce, err := s.Nonce()
	if err != nil {
		return nil, err
	}

	claims := make([]*state.StateClaim, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		slot := Slot(i)
		claimTree, err := providers.InitSparseMerkleTreeStoreProvider(curve)
		if err != nil {
			return nil, err
		}

		claim := &state.StateClaim{
			Path:   []string{slot.String()},
			Values: make([]string, 0),
		}

		node := s.slot(slot)
		if node.Kind() != KindMap {
			val, err := node.Value()
			if err != nil {
				return nil, err
			}
			raw, err := val.MarshalBinary()
			if err != nil {
				return nil, err
			}
			claim.Values = append(claim.Values, hex.EncodeToString(raw))
		}

		err = leaves(Path{slot.Key()}, node, func(leaf string) error {
			if _, err := tree.Insert(leaf); err != nil {
				return fmt.Errorf("failed to commit ledger leaf; %w", err)
			}
			if _, err := claimTree.Insert(leaf); err != nil {
				return fmt.Errorf("failed to commit %s leaf; %w", slot, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		claim.Cardinality = uint64(claimTree.Length())
		if claim.Root, err = claimTree.Root(); err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}

	root, err := tree.Root()
	if err != nil {
		return nil, err
	}

	common.Log.Debugf("committed ledger state at nonce %d; root: %s", nonce, *root)
	return &state.State{
		Curve:       curve,
		Nonce:       nonce,
		TotalUsers:  total,
		Root:        root,
		StateClaims: claims,
	}, nil
}

// ContainsLeaf returns true if the cell at path with value val is committed to by the
// sparse merkle tree built from this snapshot
func (s *Snapshot) ContainsLeaf(curve string, path Path, val codec.Value) (bool, error) {
	tree, err := providers.InitSparseMerkleTreeStoreProvider(curve)
	if err != nil {
		return false, err
	}
	err = leaves(nil, s.store.Root(), func(leaf string) error {
		_, err := tree.Insert(leaf)
		return err
	})
	if err != nil {
		return false, err
	}

	leaf, err := encodeLeaf(path, val)
	if err != nil {
		return false, err
	}
	return tree.Contains(leaf), nil
}

// leaves calls fn with the encoding of every cell reachable from node
func leaves(path Path, node *Node, fn func(leaf string) error) error {
	switch node.Kind() {
	case KindCell:
		leaf, err := encodeLeaf(path, node.cell)
		if err != nil {
			return err
		}
		return fn(leaf)
	case KindMap, KindArray:
		return node.Walk(func(key codec.Value, child *Node) error {
			next := make(Path, len(path), len(path)+1)
			copy(next, path)
			return leaves(append(next, key), child, fn)
		})
	}
	return nil
}

func encodeLeaf(path Path, val codec.Value) (string, error) {
	buf := make([]byte, 0)
	for _, key := range path {
		raw, err := key.MarshalBinary()
		if err != nil {
			return "", err
		}
		buf = append(buf, raw...)
	}
	raw, err := val.MarshalBinary()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(append(buf, raw...)), nil
}
