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

package witness

import (
	"encoding/binary"
	"fmt"

	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/store/providers"
)

// Entry is a single witness value consumed by an operation
type Entry struct {
	Kind   Kind        `json:"kind"`
	UserID uint32      `json:"user_id"`
	Value  codec.Value `json:"value"`
}

// MarshalBinary returns the canonical encoding of the entry
func (e Entry) MarshalBinary() ([]byte, error) {
	buf := append([]byte{byte(len(e.Kind))}, []byte(e.Kind)...)
	buf = binary.LittleEndian.AppendUint32(buf, e.UserID)
	raw, err := e.Value.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(buf, raw...), nil
}

// Transcript is the ordered record of witness values used by an operation; it is only
// ever handed to the party constructing a proof
type Transcript struct {
	Entries []Entry `json:"entries"`
}

// Values returns the recorded values of the given kind, in fetch order
func (t *Transcript) Values(kind Kind) []codec.Value {
	values := make([]codec.Value, 0)
	for _, entry := range t.Entries {
		if entry.Kind == kind {
			values = append(values, entry.Value)
		}
	}
	return values
}

// Commitment returns the hex root of a dense merkle tree over the encoded entries
func (t *Transcript) Commitment(curve string) (*string, error) {
	if len(t.Entries) == 0 {
		return nil, fmt.Errorf("failed to commit private transcript; no entries")
	}

	tree, err := providers.InitDenseMerkleTreeStoreProvider(curve)
	if err != nil {
		return nil, err
	}
	for i, entry := range t.Entries {
		raw, err := entry.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode private transcript entry %d; %w", i, err)
		}
		if _, err := tree.Insert(string(raw)); err != nil {
			return nil, fmt.Errorf("failed to commit private transcript entry %d; %w", i, err)
		}
	}
	return tree.Root()
}
