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

package common

import (
	"encoding/binary"
	"hash"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	mimcbls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377/fr/mimc"
	mimcbls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	mimcbn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	mimcbw6761 "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
	"github.com/consensys/gnark/backend"
)

// StringOrNil returns the given string or nil when empty
func StringOrNil(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

// GnarkCurveIDFactory returns an ecc curve id corresponding to the input name
func GnarkCurveIDFactory(curveID *string) ecc.ID {
	if curveID == nil {
		return ecc.UNKNOWN
	}

	switch strings.ReplaceAll(strings.ToLower(*curveID), "-", "_") {
	case ecc.BLS12_377.String():
		return ecc.BLS12_377
	case ecc.BLS12_381.String():
		return ecc.BLS12_381
	case ecc.BN254.String():
		return ecc.BN254
	case ecc.BW6_761.String():
		return ecc.BW6_761
	default:
		return ecc.UNKNOWN
	}
}

const gnarkProvingSchemeGroth16 = "groth16"
const gnarkProvingSchemePlonk = "plonk"

// GnarkProvingSchemeFactory returns the gnark backend id corresponding to the input name
func GnarkProvingSchemeFactory(provingScheme *string) backend.ID {
	if provingScheme == nil {
		return backend.UNKNOWN
	}

	switch strings.ToLower(*provingScheme) {
	case gnarkProvingSchemeGroth16:
		return backend.GROTH16
	case gnarkProvingSchemePlonk:
		return backend.PLONK
	default:
		return backend.UNKNOWN
	}
}

// HashFactory returns a MiMC hash over the scalar field of the named curve which accepts
// arbitrary byte input; nil is returned for unknown or unsupported curves
func HashFactory(curve string) hash.Hash {
	var h hash.Hash

	switch GnarkCurveIDFactory(&curve) {
	case ecc.BLS12_377:
		h = mimcbls12377.NewMiMC()
	case ecc.BLS12_381:
		h = mimcbls12381.NewMiMC()
	case ecc.BN254:
		h = mimcbn254.NewMiMC()
	case ecc.BW6_761:
		h = mimcbw6761.NewMiMC()
	default:
		Log.Warningf("failed to resolve hash type string; unknown or unsupported curve: %s", curve)
		return nil
	}

	return &fieldHasher{h: h}
}

// fieldHasher buffers arbitrary bytes and feeds them to the underlying MiMC digest as
// canonical field elements: a length block followed by (BlockSize-1)-byte chunks,
// each left-padded to BlockSize
type fieldHasher struct {
	h   hash.Hash
	buf []byte
}

func (f *fieldHasher) Write(p []byte) (int, error) {
	f.buf = append(f.buf, p...)
	return len(p), nil
}

func (f *fieldHasher) Sum(b []byte) []byte {
	f.h.Reset()

	size := f.h.BlockSize()
	chunk := size - 1

	block := make([]byte, size)
	binary.BigEndian.PutUint64(block[size-8:], uint64(len(f.buf)))
	f.h.Write(block)

	for i := 0; i < len(f.buf); i += chunk {
		end := i + chunk
		if end > len(f.buf) {
			end = len(f.buf)
		}
		block := make([]byte, size)
		copy(block[size-(end-i):], f.buf[i:end])
		f.h.Write(block)
	}

	return f.h.Sum(b)
}

func (f *fieldHasher) Reset() {
	f.buf = f.buf[:0]
	f.h.Reset()
}

func (f *fieldHasher) Size() int {
	return f.h.Size()
}

func (f *fieldHasher) BlockSize() int {
	return f.h.BlockSize()
}
