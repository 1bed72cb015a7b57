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

package query

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	uuid "github.com/kthomas/go.uuid"
	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/store/providers/merkletree"
)

// transcriptNamespace scopes deterministic transcript ids
var transcriptNamespace = uuid.NewV5(uuid.NamespaceOID, "matchledger.transcript")

// Entry is a single executed instruction; Read is set for recorded reads
type Entry struct {
	Instruction Instruction  `json:"instruction"`
	Read        *codec.Value `json:"read,omitempty"`
	DuplicateOf *int         `json:"duplicate_of,omitempty"`
}

// MarshalBinary returns the canonical encoding of the entry
func (e Entry) MarshalBinary() ([]byte, error) {
	buf, err := e.Instruction.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if e.Read == nil {
		return append(buf, 0), nil
	}
	raw, err := e.Read.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(append(buf, 1), raw...), nil
}

// Transcript is the public record of every instruction an operation executed
type Transcript struct {
	ID        uuid.UUID     `json:"id"`
	Operation string        `json:"operation"`
	Inputs    []codec.Value `json:"inputs"`
	Entries   []Entry       `json:"entries"`
}

// NewTranscript returns an empty transcript for operation; its id is derived from the
// operation, the ledger nonce it executes against and its public inputs
func NewTranscript(operation string, nonce uint64, inputs ...codec.Value) (*Transcript, error) {
	seed := []byte(operation)
	seed = binary.LittleEndian.AppendUint64(seed, nonce)
	for _, input := range inputs {
		raw, err := input.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode transcript input; %w", err)
		}
		seed = append(seed, raw...)
	}

	return &Transcript{
		ID:        uuid.NewV5(transcriptNamespace, hex.EncodeToString(seed)),
		Operation: operation,
		Inputs:    inputs,
		Entries:   make([]Entry, 0),
	}, nil
}

// Reads returns every recorded read, omitting cached reads which duplicate an earlier one
func (t *Transcript) Reads() []codec.Value {
	reads := make([]codec.Value, 0)
	for _, entry := range t.Entries {
		if entry.Read != nil && entry.DuplicateOf == nil {
			reads = append(reads, *entry.Read)
		}
	}
	return reads
}

// Len returns the number of executed instructions
func (t *Transcript) Len() int {
	return len(t.Entries)
}

// Root returns the hex merkle root over the encoded entries, hashed with MiMC over curve
func (t *Transcript) Root(curve string) (*string, error) {
	tree, err := t.tree(curve)
	if err != nil {
		return nil, err
	}
	return tree.Root()
}

// Proof returns the intermediary hashes proving the entry at index is part of the root
func (t *Transcript) Proof(curve string, index int) ([]string, error) {
	tree, err := t.tree(curve)
	if err != nil {
		return nil, err
	}
	return tree.IntermediaryHashesByIndex(index)
}

// VerifyEntry returns true if entry at index, together with hashes, reproduces the root
func (t *Transcript) VerifyEntry(curve string, index int, entry Entry, hashes []string) (bool, error) {
	tree, err := t.tree(curve)
	if err != nil {
		return false, err
	}
	raw, err := entry.MarshalBinary()
	if err != nil {
		return false, err
	}
	return tree.ValidateExistence(raw, index, hashes)
}

func (t *Transcript) tree(curve string) (*merkletree.MemoryMerkleTree, error) {
	if len(t.Entries) == 0 {
		return nil, errors.New("failed to commit transcript; no entries")
	}
	h := common.HashFactory(curve)
	if h == nil {
		return nil, fmt.Errorf("failed to commit transcript; unsupported curve: %s", curve)
	}

	tree := merkletree.NewMerkleTree(h)
	for i, entry := range t.Entries {
		raw, err := entry.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode transcript entry %d; %w", i, err)
		}
		tree.Add(raw)
	}
	return tree, nil
}

// findCached returns the position of the first cached read equal to val, searching the
// committed entries followed by pending
func (t *Transcript) findCached(pending []Entry, val codec.Value) *int {
	committed := len(t.Entries)
	for i := 0; i < committed+len(pending); i++ {
		entry := entryAt(t.Entries, pending, i)
		if entry.Read != nil && entry.Instruction.Cached && entry.DuplicateOf == nil && entry.Read.Equal(val) {
			pos := i
			return &pos
		}
	}
	return nil
}

func entryAt(committed, pending []Entry, i int) Entry {
	if i < len(committed) {
		return committed[i]
	}
	return pending[i-len(committed)]
}
