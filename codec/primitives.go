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

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

var (
	// U8 encodes unsigned integers bounded by 2^8-1
	U8 = Uint(1, math.MaxUint8)

	// U32 encodes unsigned integers bounded by 2^32-1
	U32 = Uint(4, math.MaxUint32)

	// U64 encodes unsigned integers bounded by 2^64-1
	U64 = Uint(8, math.MaxUint64)

	// Bool encodes booleans as a single byte
	Bool = BoolCodec{}
)

// UintCodec encodes a bounded unsigned integer as little-endian fixed width bytes
type UintCodec struct {
	Width int
	Max   uint64
}

// Uint returns a codec for unsigned integers of the given byte width bounded by max
func Uint(width int, max uint64) UintCodec {
	if width < 1 || width > 8 {
		panic(fmt.Sprintf("invalid uint width %d", width))
	}
	if width < 8 && max >= uint64(1)<<(8*width) {
		panic(fmt.Sprintf("uint bound %d does not fit in %d bytes", max, width))
	}
	return UintCodec{Width: width, Max: max}
}

func (c UintCodec) Alignment() Alignment {
	return Alignment{{Length: uint32(c.Width)}}
}

func (c UintCodec) Encode(val uint64) ([]byte, error) {
	if val > c.Max {
		return nil, &Error{Type: c.typ(), Reason: fmt.Sprintf("value %d exceeds bound %d", val, c.Max)}
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], val)
	return bytes.Clone(buf[:c.Width]), nil
}

func (c UintCodec) Decode(raw []byte) (uint64, error) {
	if len(raw) != c.Width {
		return 0, widthError(c.typ(), c.Width, len(raw))
	}
	var buf [8]byte
	copy(buf[:], raw)
	val := binary.LittleEndian.Uint64(buf[:])
	if val > c.Max {
		return 0, &Error{Type: c.typ(), Reason: fmt.Sprintf("decoded value %d exceeds bound %d", val, c.Max)}
	}
	return val, nil
}

func (c UintCodec) typ() string {
	return fmt.Sprintf("uint<0..%d>", c.Max)
}

// BoolCodec encodes false as 0x00 and true as 0x01
type BoolCodec struct{}

func (BoolCodec) Alignment() Alignment {
	return Alignment{{Length: 1}}
}

func (BoolCodec) Encode(val bool) ([]byte, error) {
	if val {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (BoolCodec) Decode(raw []byte) (bool, error) {
	if len(raw) != 1 {
		return false, widthError("bool", 1, len(raw))
	}
	switch raw[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, &Error{Type: "bool", Reason: fmt.Sprintf("invalid tag %d", raw[0])}
}

// EnumCodec encodes an enum tag in a single byte; tags must be below Cardinality
type EnumCodec struct {
	Cardinality uint8
}

// Enum returns a codec for an enum with the given number of variants
func Enum(cardinality uint8) EnumCodec {
	if cardinality == 0 {
		panic("enum cardinality must be positive")
	}
	return EnumCodec{Cardinality: cardinality}
}

func (c EnumCodec) Alignment() Alignment {
	return Alignment{{Length: 1}}
}

func (c EnumCodec) Encode(tag uint8) ([]byte, error) {
	if tag >= c.Cardinality {
		return nil, &Error{Type: c.typ(), Reason: fmt.Sprintf("tag %d out of range", tag)}
	}
	return []byte{tag}, nil
}

func (c EnumCodec) Decode(raw []byte) (uint8, error) {
	if len(raw) != 1 {
		return 0, widthError(c.typ(), 1, len(raw))
	}
	if raw[0] >= c.Cardinality {
		return 0, &Error{Type: c.typ(), Reason: fmt.Sprintf("decoded tag %d out of range", raw[0])}
	}
	return raw[0], nil
}

func (c EnumCodec) typ() string {
	return fmt.Sprintf("enum<%d>", c.Cardinality)
}

// BytesCodec encodes opaque byte arrays of a fixed length
type BytesCodec struct {
	Length int
}

// Bytes returns a codec for byte arrays of exactly n bytes
func Bytes(n int) BytesCodec {
	if n < 0 {
		panic(fmt.Sprintf("invalid bytes length %d", n))
	}
	return BytesCodec{Length: n}
}

func (c BytesCodec) Alignment() Alignment {
	return Alignment{{Length: uint32(c.Length)}}
}

func (c BytesCodec) Encode(val []byte) ([]byte, error) {
	if len(val) != c.Length {
		return nil, widthError(c.typ(), c.Length, len(val))
	}
	return bytes.Clone(val), nil
}

func (c BytesCodec) Decode(raw []byte) ([]byte, error) {
	if len(raw) != c.Length {
		return nil, widthError(c.typ(), c.Length, len(raw))
	}
	return bytes.Clone(raw), nil
}

func (c BytesCodec) typ() string {
	return fmt.Sprintf("bytes<%d>", c.Length)
}
