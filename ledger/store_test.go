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

func key(n uint64) codec.Value {
	return codec.MustEncode[uint64](codec.U32, n)
}

func TestNodeInsertIsPersistent(t *testing.T) {
	m := EmptyMap()
	m1, err := m.Insert(key(1), Cell(CounterValue(10)))
	require.NoError(t, err)
	m2, err := m1.Insert(key(2), Cell(CounterValue(20)))
	require.NoError(t, err)

	size, _ := m.Size()
	assert.Equal(t, uint64(0), size)
	size, _ = m1.Size()
	assert.Equal(t, uint64(1), size)
	size, _ = m2.Size()
	assert.Equal(t, uint64(2), size)

	ok, err := m1.Contains(key(2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNullInsertBecomesMap(t *testing.T) {
	n, err := Null().Insert(key(7), Cell(CounterValue(1)))
	require.NoError(t, err)
	assert.Equal(t, KindMap, n.Kind())

	child, found, err := n.Child(key(7))
	require.NoError(t, err)
	require.True(t, found)
	val, err := child.Value()
	require.NoError(t, err)
	assert.True(t, val.Equal(CounterValue(1)))
}

func TestArrayIndexBounds(t *testing.T) {
	arr := Array(Cell(CounterValue(0)), Cell(CounterValue(1)))

	_, _, err := arr.Child(codec.MustEncode[uint64](codec.U8, 2))
	var pathErr *PathError
	require.True(t, errors.As(err, &pathErr))

	_, _, err = arr.Child(key(0))
	require.True(t, errors.As(err, &pathErr), "array indexes must be u8 encoded")

	_, _, err = Cell(CounterValue(0)).Child(key(0))
	require.True(t, errors.As(err, &pathErr))
}

func TestMapWalkIsOrdered(t *testing.T) {
	m := EmptyMap()
	for _, id := range []uint64{300, 2, 1} {
		var err error
		m, err = m.Insert(key(id), Cell(CounterValue(id)))
		require.NoError(t, err)
	}

	var seen []string
	err := m.Walk(func(k codec.Value, _ *Node) error {
		seen = append(seen, string(k.Bytes))
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 3)
	assert.True(t, seen[0] < seen[1] && seen[1] < seen[2])
}

func TestStoreSetCreatesMissingEntries(t *testing.T) {
	s := NewSnapshot().Store()
	path := Path{SlotAgeVerifications.Key(), UserKey(42)}

	_, err := s.Get(path)
	require.Error(t, err)

	val, err := ResultValue(InRange)
	require.NoError(t, err)
	updated, err := s.Set(path, val)
	require.NoError(t, err)

	got, err := updated.Get(path)
	require.NoError(t, err)
	assert.True(t, got.Equal(val))

	ok, err := updated.ContainsKey(Path{SlotAgeVerifications.Key()}, UserKey(42))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ContainsKey(Path{SlotAgeVerifications.Key()}, UserKey(42))
	require.NoError(t, err)
	assert.False(t, ok, "original store must be unchanged")
}

func TestStoreSetCannotOverwriteMap(t *testing.T) {
	s := NewSnapshot().Store()
	_, err := s.Set(Path{SlotUserStatuses.Key()}, CounterValue(1))
	var pathErr *PathError
	require.True(t, errors.As(err, &pathErr))
}

func TestStoreMapSize(t *testing.T) {
	s := NewSnapshot().Store()
	active, err := StatusValue(StatusActive)
	require.NoError(t, err)
	for _, id := range []uint32{1, 2, 3} {
		s, err = s.Set(Path{SlotUserStatuses.Key(), UserKey(id)}, active)
		require.NoError(t, err)
	}

	size, err := s.MapSize(Path{SlotUserStatuses.Key()})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), size)

	_, err = s.MapSize(Path{SlotNonce.Key()})
	require.Error(t, err)
}
