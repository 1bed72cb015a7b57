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
	"errors"
	"testing"

	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	transcript, err := NewTranscript("test", 0)
	require.NoError(t, err)
	return NewEngine(ledger.NewSnapshot().Store(), transcript)
}

func statusPath(id uint32) ledger.Path {
	return ledger.Path{ledger.SlotUserStatuses.Key(), ledger.UserKey(id)}
}

func TestWriteThenQueryCell(t *testing.T) {
	e := newEngine(t)
	active, err := ledger.StatusValue(ledger.StatusActive)
	require.NoError(t, err)

	reads, err := e.Run(WriteCell(statusPath(1), active))
	require.NoError(t, err)
	assert.Empty(t, reads)

	reads, err = e.Run(QueryCell(statusPath(1), false))
	require.NoError(t, err)
	require.Len(t, reads, 1)
	assert.True(t, reads[0].Equal(active))

	snapshot, err := ledger.FromStore(e.Store())
	require.NoError(t, err)
	status, ok, err := snapshot.UserStatus(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ledger.StatusActive, status)
}

func TestQueryMember(t *testing.T) {
	e := newEngine(t)
	active, err := ledger.StatusValue(ledger.StatusActive)
	require.NoError(t, err)
	_, err = e.Run(WriteCell(statusPath(3), active))
	require.NoError(t, err)

	statuses := ledger.Path{ledger.SlotUserStatuses.Key()}
	for id, expected := range map[uint32]bool{3: true, 4: false} {
		reads, err := e.Run(QueryMember(statuses, ledger.UserKey(id)))
		require.NoError(t, err)
		require.Len(t, reads, 1)
		got, err := codec.Decode[bool](codec.Bool, reads[0])
		require.NoError(t, err)
		assert.Equal(t, expected, got, "user %d", id)
	}
}

func TestIncrementCell(t *testing.T) {
	e := newEngine(t)
	nonce := ledger.Path{ledger.SlotNonce.Key()}

	for i := 0; i < 3; i++ {
		_, err := e.Run(IncrementCell(nonce, 1))
		require.NoError(t, err)
	}

	reads, err := e.Run(QueryCell(nonce, false))
	require.NoError(t, err)
	n, err := codec.Decode[uint64](codec.U64, reads[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestIncrementOverflowAborts(t *testing.T) {
	e := newEngine(t)
	nonce := ledger.Path{ledger.SlotNonce.Key()}
	_, err := e.Run(IncrementCell(nonce, ^uint64(0)))
	require.NoError(t, err)

	before := e.Store()
	_, err = e.Run(IncrementCell(nonce, 1))
	var codecErr *codec.Error
	require.True(t, errors.As(err, &codecErr))
	assert.Same(t, before.Root(), e.Store().Root())
}

func TestMissingKeyAbortsWithoutPushPath(t *testing.T) {
	e := newEngine(t)
	before := e.Store()
	entries := e.Transcript().Len()

	_, err := e.Run(QueryCell(statusPath(9), true))
	var pathErr *ledger.PathError
	require.True(t, errors.As(err, &pathErr))

	assert.Same(t, before.Root(), e.Store().Root())
	assert.Equal(t, entries, e.Transcript().Len(), "aborted programs must not reach the transcript")
}

func TestProgramMustLeaveRoot(t *testing.T) {
	e := newEngine(t)

	_, err := e.Run(Program{Dup(0)})
	require.Error(t, err)

	_, err = e.Run(Program{Dup(1)})
	require.Error(t, err)

	_, err = e.Run(Program{PopAndRecord(false)})
	require.Error(t, err, "recording a non-cell is a path error")
}

func TestIndexIntoCellFails(t *testing.T) {
	e := newEngine(t)
	_, err := e.Run(Program{Dup(0), Index(ledger.SlotNonce.Key(), false), Index(ledger.UserKey(1), false), PopAndRecord(false)})
	var pathErr *ledger.PathError
	require.True(t, errors.As(err, &pathErr))
}

func TestCachedReadsAreDeduplicated(t *testing.T) {
	e := newEngine(t)
	nonce := ledger.Path{ledger.SlotNonce.Key()}

	first, err := e.Run(QueryCell(nonce, true))
	require.NoError(t, err)
	second, err := e.Run(QueryCell(nonce, true))
	require.NoError(t, err)
	uncached, err := e.Run(QueryCell(nonce, false))
	require.NoError(t, err)

	assert.True(t, first[0].Equal(second[0]))
	assert.True(t, first[0].Equal(uncached[0]))

	var duplicates int
	for _, entry := range e.Transcript().Entries {
		if entry.DuplicateOf != nil {
			duplicates++
			assert.True(t, e.Transcript().Entries[*entry.DuplicateOf].Read.Equal(*entry.Read))
		}
	}
	assert.Equal(t, 1, duplicates)
	assert.Len(t, e.Transcript().Reads(), 2)
}

func TestTranscriptRootAndProofs(t *testing.T) {
	e := newEngine(t)
	_, err := e.Run(IncrementCell(ledger.Path{ledger.SlotTotalUsers.Key()}, 1))
	require.NoError(t, err)
	_, err = e.Run(QueryCell(ledger.Path{ledger.SlotTotalUsers.Key()}, false))
	require.NoError(t, err)

	transcript := e.Transcript()
	root, err := transcript.Root("bn254")
	require.NoError(t, err)
	require.NotNil(t, root)

	for i, entry := range transcript.Entries {
		hashes, err := transcript.Proof("bn254", i)
		require.NoError(t, err)
		ok, err := transcript.VerifyEntry("bn254", i, entry, hashes)
		require.NoError(t, err)
		assert.True(t, ok, "entry %d", i)
	}

	_, err = transcript.Root("secp256k1")
	require.Error(t, err)
}

func TestTranscriptIDIsDeterministic(t *testing.T) {
	a, err := NewTranscript("create_verified_profile", 4, ledger.UserKey(1))
	require.NoError(t, err)
	b, err := NewTranscript("create_verified_profile", 4, ledger.UserKey(1))
	require.NoError(t, err)
	c, err := NewTranscript("create_verified_profile", 5, ledger.UserKey(1))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)

	_, err = a.Root("bn254")
	require.Error(t, err, "an empty transcript has no root")
}

func TestInstructionEncoding(t *testing.T) {
	raw, err := Index(ledger.UserKey(1), true).MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(OpIndex), raw[0])
	assert.Equal(t, byte(1), raw[1])

	_, err = Instruction{Op: OpPush}.MarshalBinary()
	require.Error(t, err)

	assert.Equal(t, "add_immediate(2)", AddImmediate(2).String())
}
