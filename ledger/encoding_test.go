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
	"errors"
	"testing"

	"github.com/provideplatform/matchledger/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotBinaryRoundTrip(t *testing.T) {
	s := register(t, register(t, NewSnapshot(), 3, StatusActive), 4, StatusSuspended)
	raw, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(snapshotEncodingVersion), raw[0])

	decoded := &Snapshot{}
	require.NoError(t, decoded.UnmarshalBinary(raw))
	assert.True(t, s.Equal(decoded))

	again, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestUnmarshalRejectsMalformedInput(t *testing.T) {
	raw, err := NewSnapshot().MarshalBinary()
	require.NoError(t, err)

	var codecErr *codec.Error

	err = (&Snapshot{}).UnmarshalBinary(nil)
	require.True(t, errors.As(err, &codecErr))

	bad := append([]byte{}, raw...)
	bad[0] = 9
	err = (&Snapshot{}).UnmarshalBinary(bad)
	require.True(t, errors.As(err, &codecErr))

	err = (&Snapshot{}).UnmarshalBinary(append(append([]byte{}, raw...), 0))
	require.True(t, errors.As(err, &codecErr))

	err = (&Snapshot{}).UnmarshalBinary(raw[:len(raw)-3])
	require.Error(t, err)
}

func TestUnmarshalRejectsInvariantViolation(t *testing.T) {
	s := register(t, NewSnapshot(), 1, StatusActive)
	store, err := s.Store().Set(Path{SlotTotalUsers.Key()}, CounterValue(5))
	require.NoError(t, err)
	s, err = FromStore(store)
	require.NoError(t, err)

	raw, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Error(t, (&Snapshot{}).UnmarshalBinary(raw))
}

func TestReadNodeRejectsUnorderedKeys(t *testing.T) {
	buf := []byte{byte(KindMap), 2, 0, 0, 0, 0, 0, 0, 0}
	for _, id := range []uint64{2, 1} {
		raw, err := key(id).MarshalBinary()
		require.NoError(t, err)
		buf = append(buf, raw...)
		buf = append(buf, byte(KindNull))
	}

	_, _, err := readNode(buf, 0)
	var codecErr *codec.Error
	require.True(t, errors.As(err, &codecErr))
	assert.Contains(t, err.Error(), "canonical order")
}

func TestEncodeNodeIsCanonical(t *testing.T) {
	a, err := EmptyMap().Insert(key(1), Null())
	require.NoError(t, err)
	a, err = a.Insert(key(2), Null())
	require.NoError(t, err)

	b, err := EmptyMap().Insert(key(2), Null())
	require.NoError(t, err)
	b, err = b.Insert(key(1), Null())
	require.NoError(t, err)

	rawA, err := EncodeNode(a)
	require.NoError(t, err)
	rawB, err := EncodeNode(b)
	require.NoError(t, err)
	assert.Equal(t, rawA, rawB)
}
