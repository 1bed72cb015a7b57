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

package smt

import (
	"encoding/hex"
	"errors"
	"hash"
	"sync"

	"github.com/providenetwork/smt"
	"github.com/provideplatform/matchledger/common"
)

// SMT is an in-memory sparse merkle tree committing to a set of values; each value is
// keyed by its own digest so the root is independent of insertion order
type SMT struct {
	hash  hash.Hash
	mutex *sync.Mutex
	tree  *smt.SparseMerkleTree
	size  int
}

// InitSMT initializes an empty sparse merkle tree using the given hash
func InitSMT(h hash.Hash) *SMT {
	return &SMT{
		hash:  h,
		mutex: &sync.Mutex{},
		tree:  smt.NewSparseMerkleTree(smt.NewSimpleMap(), smt.NewSimpleMap(), h),
	}
}

func (s *SMT) digest(val []byte) []byte {
	s.hash.Reset()
	s.hash.Write(val)
	hash := s.hash.Sum(nil)
	s.hash.Reset()
	return hash
}

// Contains returns true if val is committed to by the current root
func (s *SMT) Contains(val string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_val := []byte(val)
	key := s.digest(_val)

	proof, err := s.tree.Prove(key)
	if err != nil {
		common.Log.Warningf("failed to generate merkle proof; %s", err.Error())
		return false
	}

	return smt.VerifyProof(proof, s.tree.Root(), key, _val, s.hash)
}

// Insert commits val and returns the new root
func (s *SMT) Insert(val string) (root []byte, err error) {
	if val == "" {
		return nil, errors.New("sparse merkle tree cannot commit an empty value")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	_val := []byte(val)
	key := s.digest(_val)
	prev, err := s.tree.Get(key)
	if err != nil {
		return nil, err
	}
	root, err = s.tree.Update(key, _val)
	if err != nil {
		return nil, err
	}
	if len(prev) == 0 {
		s.size++
	}
	common.Log.Tracef("inserted key %s; current root: %s", hex.EncodeToString(key), hex.EncodeToString(root))
	return root, nil
}

// Length returns the number of distinct committed values
func (s *SMT) Length() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.size
}

// Root returns the hex encoded root of the tree
func (s *SMT) Root() (root *string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tree.Root() == nil || len(s.tree.Root()) == 0 {
		return nil, errors.New("tree does not contain a valid root")
	}
	return common.StringOrNil(hex.EncodeToString(s.tree.Root())), nil
}
