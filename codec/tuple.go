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

// Pair is a two-member tuple
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairCodec encodes a Pair as the concatenation of its members in declared order
type PairCodec[A, B any] struct {
	First  Codec[A]
	Second Codec[B]
}

// Tuple2 returns a codec for pairs of the given member codecs
func Tuple2[A, B any](first Codec[A], second Codec[B]) PairCodec[A, B] {
	return PairCodec[A, B]{First: first, Second: second}
}

func (c PairCodec[A, B]) Alignment() Alignment {
	return c.First.Alignment().Concat(c.Second.Alignment())
}

func (c PairCodec[A, B]) Encode(val Pair[A, B]) ([]byte, error) {
	first, err := c.First.Encode(val.First)
	if err != nil {
		return nil, err
	}
	second, err := c.Second.Encode(val.Second)
	if err != nil {
		return nil, err
	}
	return append(first, second...), nil
}

func (c PairCodec[A, B]) Decode(raw []byte) (Pair[A, B], error) {
	var val Pair[A, B]
	parts, err := split(raw, c.First.Alignment(), c.Second.Alignment())
	if err != nil {
		return val, err
	}
	if val.First, err = c.First.Decode(parts[0]); err != nil {
		return val, err
	}
	if val.Second, err = c.Second.Decode(parts[1]); err != nil {
		return val, err
	}
	return val, nil
}

// Triple is a three-member tuple
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// TripleCodec encodes a Triple as the concatenation of its members in declared order
type TripleCodec[A, B, C any] struct {
	First  Codec[A]
	Second Codec[B]
	Third  Codec[C]
}

// Tuple3 returns a codec for triples of the given member codecs
func Tuple3[A, B, C any](first Codec[A], second Codec[B], third Codec[C]) TripleCodec[A, B, C] {
	return TripleCodec[A, B, C]{First: first, Second: second, Third: third}
}

func (c TripleCodec[A, B, C]) Alignment() Alignment {
	return c.First.Alignment().Concat(c.Second.Alignment(), c.Third.Alignment())
}

func (c TripleCodec[A, B, C]) Encode(val Triple[A, B, C]) ([]byte, error) {
	first, err := c.First.Encode(val.First)
	if err != nil {
		return nil, err
	}
	second, err := c.Second.Encode(val.Second)
	if err != nil {
		return nil, err
	}
	third, err := c.Third.Encode(val.Third)
	if err != nil {
		return nil, err
	}
	out := append(first, second...)
	return append(out, third...), nil
}

func (c TripleCodec[A, B, C]) Decode(raw []byte) (Triple[A, B, C], error) {
	var val Triple[A, B, C]
	parts, err := split(raw, c.First.Alignment(), c.Second.Alignment(), c.Third.Alignment())
	if err != nil {
		return val, err
	}
	if val.First, err = c.First.Decode(parts[0]); err != nil {
		return val, err
	}
	if val.Second, err = c.Second.Decode(parts[1]); err != nil {
		return val, err
	}
	if val.Third, err = c.Third.Decode(parts[2]); err != nil {
		return val, err
	}
	return val, nil
}

// split cuts raw into one slice per member alignment; the total width must match exactly
func split(raw []byte, members ...Alignment) ([][]byte, error) {
	total := 0
	for _, m := range members {
		total += m.Size()
	}
	if len(raw) != total {
		return nil, widthError("tuple", total, len(raw))
	}
	parts := make([][]byte, len(members))
	offset := 0
	for i, m := range members {
		parts[i] = raw[offset : offset+m.Size()]
		offset += m.Size()
	}
	return parts, nil
}
