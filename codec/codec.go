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

// Package codec provides the fixed-width binary encodings of every value that crosses the
// ledger boundary. Each codec carries an Alignment, the type-only decomposition used for
// structural hashing and commitments.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Atom is a single fixed-width segment of an alignment
type Atom struct {
	Length uint32 `json:"length"`
}

// Alignment is the serialized shape of a value type
type Alignment []Atom

// Size returns the total byte width described by the alignment
func (a Alignment) Size() int {
	size := 0
	for _, atom := range a {
		size += int(atom.Length)
	}
	return size
}

// Equal returns true if both alignments describe the same shape
func (a Alignment) Equal(other Alignment) bool {
	if len(a) != len(other) {
		return false
	}
	for i := range a {
		if a[i] != other[i] {
			return false
		}
	}
	return true
}

// Concat returns the alignment of a composite whose members are a followed by others
func (a Alignment) Concat(others ...Alignment) Alignment {
	out := make(Alignment, 0, len(a))
	out = append(out, a...)
	for _, other := range others {
		out = append(out, other...)
	}
	return out
}

// MarshalBinary encodes the alignment as an atom count followed by little-endian atom lengths
func (a Alignment) MarshalBinary() ([]byte, error) {
	if len(a) > 0xff {
		return nil, &Error{Type: "alignment", Reason: fmt.Sprintf("%d atoms exceeds maximum of 255", len(a))}
	}
	buf := make([]byte, 1, 1+4*len(a))
	buf[0] = byte(len(a))
	for _, atom := range a {
		buf = binary.LittleEndian.AppendUint32(buf, atom.Length)
	}
	return buf, nil
}

// ReadAlignment decodes an alignment from the head of raw, returning the remaining bytes
func ReadAlignment(raw []byte) (Alignment, []byte, error) {
	if len(raw) < 1 {
		return nil, nil, &Error{Type: "alignment", Reason: "missing atom count"}
	}
	n := int(raw[0])
	raw = raw[1:]
	if len(raw) < 4*n {
		return nil, nil, &Error{Type: "alignment", Reason: fmt.Sprintf("truncated; expected %d atoms", n)}
	}
	a := make(Alignment, n)
	for i := 0; i < n; i++ {
		a[i] = Atom{Length: binary.LittleEndian.Uint32(raw[4*i:])}
	}
	return a, raw[4*n:], nil
}

// Value is an encoded value paired with the alignment of its type
type Value struct {
	Alignment Alignment `json:"alignment"`
	Bytes     []byte    `json:"bytes"`
}

// Equal returns true if both values have the same alignment and encoding
func (v Value) Equal(other Value) bool {
	return v.Alignment.Equal(other.Alignment) && bytes.Equal(v.Bytes, other.Bytes)
}

// MarshalBinary encodes the alignment followed by the value bytes
func (v Value) MarshalBinary() ([]byte, error) {
	if len(v.Bytes) != v.Alignment.Size() {
		return nil, &Error{Type: "value", Reason: fmt.Sprintf("%d bytes does not match alignment width %d", len(v.Bytes), v.Alignment.Size())}
	}
	buf, err := v.Alignment.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(buf, v.Bytes...), nil
}

// ReadValue decodes a value from the head of raw, returning the remaining bytes
func ReadValue(raw []byte) (Value, []byte, error) {
	alignment, rest, err := ReadAlignment(raw)
	if err != nil {
		return Value{}, nil, err
	}
	size := alignment.Size()
	if len(rest) < size {
		return Value{}, nil, &Error{Type: "value", Reason: fmt.Sprintf("truncated; expected %d bytes", size)}
	}
	val := make([]byte, size)
	copy(val, rest[:size])
	return Value{Alignment: alignment, Bytes: val}, rest[size:], nil
}

func (v Value) String() string {
	return fmt.Sprintf("%x", v.Bytes)
}

// Codec encodes and decodes values of type T with a fixed alignment
type Codec[T any] interface {
	Alignment() Alignment
	Encode(val T) ([]byte, error)
	Decode(raw []byte) (T, error)
}

// Encode encodes val and pairs it with the codec's alignment
func Encode[T any](c Codec[T], val T) (Value, error) {
	raw, err := c.Encode(val)
	if err != nil {
		return Value{}, err
	}
	return Value{Alignment: c.Alignment(), Bytes: raw}, nil
}

// MustEncode is Encode for values known to be in range; it panics otherwise
func MustEncode[T any](c Codec[T], val T) Value {
	v, err := Encode(c, val)
	if err != nil {
		panic(err)
	}
	return v
}

// Decode decodes v after checking it carries the codec's alignment
func Decode[T any](c Codec[T], v Value) (T, error) {
	if !v.Alignment.Equal(c.Alignment()) {
		var zero T
		return zero, &Error{Type: "value", Reason: fmt.Sprintf("alignment mismatch; expected %v, got %v", c.Alignment(), v.Alignment)}
	}
	return c.Decode(v.Bytes)
}
