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

package providers

import (
	"fmt"
	"hash"

	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/store/providers/dmt"
	"github.com/provideplatform/matchledger/store/providers/smt"
)

// StoreProviderDenseMerkleTree dense merkle tree storage provider
const StoreProviderDenseMerkleTree = "dmt"

// StoreProviderSparseMerkleTree sparse merkle tree storage provider
const StoreProviderSparseMerkleTree = "smt"

// StoreProvider provides a common interface to interact with commitment facilities
type StoreProvider interface {
	Contains(val string) bool
	Insert(val string) (root []byte, err error)
	Length() int
	Root() (root *string, err error)
}

// InitDenseMerkleTreeStoreProvider initializes an in-memory dense merkle tree
func InitDenseMerkleTreeStoreProvider(curve string) (*dmt.DMT, error) {
	if common.HashFactory(curve) == nil {
		return nil, fmt.Errorf("failed to initialize dense merkle tree; unsupported curve: %s", curve)
	}
	return dmt.InitDMT(func() hash.Hash {
		return common.HashFactory(curve)
	}), nil
}

// InitSparseMerkleTreeStoreProvider initializes an in-memory sparse merkle tree
func InitSparseMerkleTreeStoreProvider(curve string) (*smt.SMT, error) {
	h := common.HashFactory(curve)
	if h == nil {
		return nil, fmt.Errorf("failed to initialize sparse merkle tree; unsupported curve: %s", curve)
	}
	return smt.InitSMT(h), nil
}

// StoreProviderFactory initializes the named store provider
func StoreProviderFactory(provider, curve string) (StoreProvider, error) {
	switch provider {
	case StoreProviderDenseMerkleTree:
		tree, err := InitDenseMerkleTreeStoreProvider(curve)
		if err != nil {
			return nil, err
		}
		return tree, nil
	case StoreProviderSparseMerkleTree:
		tree, err := InitSparseMerkleTreeStoreProvider(curve)
		if err != nil {
			return nil, err
		}
		return tree, nil
	}
	return nil, fmt.Errorf("failed to initialize store provider; unknown provider: %s", provider)
}
