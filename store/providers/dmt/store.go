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

package dmt

import (
	"encoding/hex"
	"errors"
	"hash"
	"sync"

	"github.com/providenetwork/merkletree"
	"github.com/provideplatform/matchledger/common"
)

// DMT is an in-memory dense merkle tree over an append-only list of values
type DMT struct {
	hashStrategy func() hash.Hash
	mutex        *sync.Mutex
	tree         *merkletree.MerkleTree
	values       []merkletree.Content
}

// InitDMT initializes an empty dense merkle tree; hashStrategy must return a fresh hash per call
func InitDMT(hashStrategy func() hash.Hash) *DMT {
	return &DMT{
		hashStrategy: hashStrategy,
		mutex:        &sync.Mutex{},
		values:       make([]merkletree.Content, 0),
	}
}

// Contains returns true if val is a leaf of the tree and its merkle path verifies
func (s *DMT) Contains(val string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tree == nil {
		return false
	}

	incl, err := s.tree.VerifyContent(s.content([]byte(val)))
	if err != nil {
		common.Log.Warningf("failed to verify dense merkle tree content; %s", err.Error())
		return false
	}
	return incl
}

// Insert appends val as a new leaf and returns the recalculated root
func (s *DMT) Insert(val string) (root []byte, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	values := append(s.values, s.content([]byte(val)))

	if s.tree == nil {
		s.tree, err = merkletree.NewTreeWithHashStrategy(values, s.hashStrategy)
	} else {
		err = s.tree.RebuildTreeWith(values)
	}
	if err != nil {
		return nil, err
	}

	s.values = values
	return s.tree.MerkleRoot(), nil
}

// Length returns the number of leaves
func (s *DMT) Length() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.values)
}

// Root returns the hex encoded root of the tree
func (s *DMT) Root() (root *string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tree == nil || len(s.tree.MerkleRoot()) == 0 {
		return nil, errors.New("tree does not contain a valid root")
	}
	return common.StringOrNil(hex.EncodeToString(s.tree.MerkleRoot())), nil
}

func (s *DMT) content(val []byte) *treeContent {
	return &treeContent{
		hash:  s.hashStrategy(),
		value: val,
	}
}
