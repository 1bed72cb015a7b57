package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintEncoding(t *testing.T) {
	raw, err := U32.Encode(0x01020304)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, raw)

	val, err := U32.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x01020304), val)

	raw, err = U64.Encode(math.MaxUint64)
	require.NoError(t, err)
	assert.Len(t, raw, 8)
}

func TestUintBounds(t *testing.T) {
	percent := Uint(1, 100)

	_, err := percent.Encode(101)
	var codecErr *Error
	require.True(t, errors.As(err, &codecErr))

	_, err = percent.Decode([]byte{101})
	require.True(t, errors.As(err, &codecErr))

	_, err = U32.Decode([]byte{1, 2, 3})
	require.True(t, errors.As(err, &codecErr))
	assert.Contains(t, err.Error(), "expected 4 bytes, got 3")
}

func TestEnumRejectsTagAtCardinality(t *testing.T) {
	status := Enum(2)

	tag, err := status.Decode([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, uint8(1), tag)

	_, err = status.Decode([]byte{2})
	require.Error(t, err)

	_, err = status.Encode(2)
	require.Error(t, err)
}

func TestBoolRejectsInvalidTag(t *testing.T) {
	_, err := Bool.Decode([]byte{2})
	require.Error(t, err)

	_, err = Bool.Decode([]byte{})
	require.Error(t, err)
}

func TestBytesFixedLength(t *testing.T) {
	digest := Bytes(32)

	_, err := digest.Encode(make([]byte, 31))
	require.Error(t, err)

	in := make([]byte, 32)
	in[0] = 0xaa
	raw, err := digest.Encode(in)
	require.NoError(t, err)
	in[0] = 0xbb
	assert.Equal(t, byte(0xaa), raw[0], "encoding must not alias the caller's slice")
}

func TestPairAlignmentIsMemberConcatenation(t *testing.T) {
	key := Tuple2[uint64, uint64](U32, U32)
	assert.Equal(t, Alignment{{Length: 4}, {Length: 4}}, key.Alignment())

	v, err := Encode[Pair[uint64, uint64]](key, Pair[uint64, uint64]{First: 7, Second: 9})
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 0, 0, 9, 0, 0, 0}, v.Bytes)

	decoded, err := Decode[Pair[uint64, uint64]](key, v)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), decoded.First)
	assert.Equal(t, uint64(9), decoded.Second)
}

func TestTripleDecodeValidatesMembers(t *testing.T) {
	status := Tuple3[bool, bool, bool](Bool, Bool, Bool)

	val, err := status.Decode([]byte{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, Triple[bool, bool, bool]{First: true, Second: false, Third: true}, val)

	_, err = status.Decode([]byte{1, 3, 1})
	require.Error(t, err)

	_, err = status.Decode([]byte{1, 0})
	require.Error(t, err)
}

func TestDecodeChecksAlignment(t *testing.T) {
	v := MustEncode[uint64](U64, 5)
	_, err := Decode[uint64](U32, v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alignment mismatch")
}

func TestValueBinaryRoundTrip(t *testing.T) {
	v := MustEncode[Pair[uint64, bool]](Tuple2[uint64, bool](U32, Bool), Pair[uint64, bool]{First: 42, Second: true})

	raw, err := v.MarshalBinary()
	require.NoError(t, err)

	decoded, rest, err := ReadValue(append(raw, 0xee))
	require.NoError(t, err)
	assert.True(t, v.Equal(decoded))
	assert.Equal(t, []byte{0xee}, rest)

	_, _, err = ReadValue(raw[:len(raw)-1])
	require.Error(t, err)
}

func TestUintConstructorPanicsOnImpossibleBound(t *testing.T) {
	assert.Panics(t, func() { Uint(1, 256) })
	assert.Panics(t, func() { Uint(9, 1) })
	assert.NotPanics(t, func() { Uint(2, math.MaxUint16) })
}
