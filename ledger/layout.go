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
	"fmt"

	"github.com/provideplatform/matchledger/codec"
)

// Slot addresses one of the seven root slots of the ledger
type Slot uint8

const (
	SlotTotalUsers Slot = iota
	SlotNonce
	SlotUserStatuses
	SlotAgeVerifications
	SlotLocationVerifications
	SlotIncomeVerifications
	SlotVerifiedMatches

	slotCount = int(SlotVerifiedMatches) + 1
)

var slotNames = [...]string{
	"total_users",
	"nonce",
	"user_statuses",
	"age_verifications",
	"location_verifications",
	"income_verifications",
	"verified_matches",
}

func (s Slot) String() string {
	if int(s) < slotCount {
		return slotNames[s]
	}
	return fmt.Sprintf("slot(%d)", uint8(s))
}

// Key returns the encoded root array index of the slot
func (s Slot) Key() codec.Value {
	return codec.MustEncode[uint64](codec.U8, uint64(s))
}

// IsVerificationSlot returns true for the three slots holding verification outcomes
func (s Slot) IsVerificationSlot() bool {
	return s == SlotAgeVerifications || s == SlotLocationVerifications || s == SlotIncomeVerifications
}

// Status is the registration state of a user
type Status uint8

const (
	StatusActive Status = iota
	StatusSuspended
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSuspended:
		return "suspended"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// VerificationResult is the disclosed outcome of a verification
type VerificationResult uint8

const (
	InRange VerificationResult = iota
	OutOfRange
)

func (r VerificationResult) String() string {
	switch r {
	case InRange:
		return "in_range"
	case OutOfRange:
		return "out_of_range"
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

var (
	// UserIDCodec encodes user ids (0..2^32-1)
	UserIDCodec = codec.U32

	// CounterCodec encodes the total_users and nonce counters
	CounterCodec = codec.U64

	// StatusCodec encodes Status
	StatusCodec = codec.Enum(2)

	// ResultCodec encodes VerificationResult
	ResultCodec = codec.Enum(2)

	// MatchKeyCodec encodes an ordered (user, user) pair
	MatchKeyCodec = codec.Tuple2[uint64, uint64](codec.U32, codec.U32)

	// MatchValueCodec encodes match flags
	MatchValueCodec = codec.Bool

	// CommitmentCodec encodes 32-byte profile commitments
	CommitmentCodec = codec.Bytes(32)
)

// UserKey returns the encoded map key for a user id
func UserKey(id uint32) codec.Value {
	return codec.MustEncode[uint64](UserIDCodec, uint64(id))
}

// MatchKey returns the encoded verified_matches key for the ordered pair (a, b)
func MatchKey(a, b uint32) codec.Value {
	return codec.MustEncode[codec.Pair[uint64, uint64]](MatchKeyCodec, codec.Pair[uint64, uint64]{First: uint64(a), Second: uint64(b)})
}

// StatusValue returns the encoded cell value of a status
func StatusValue(s Status) (codec.Value, error) {
	return codec.Encode[uint8](StatusCodec, uint8(s))
}

// ResultValue returns the encoded cell value of a verification result
func ResultValue(r VerificationResult) (codec.Value, error) {
	return codec.Encode[uint8](ResultCodec, uint8(r))
}

// CounterValue returns the encoded cell value of a counter
func CounterValue(n uint64) codec.Value {
	return codec.MustEncode[uint64](CounterCodec, n)
}

// slotKind is the node shape each slot must hold
func slotKind(s Slot) Kind {
	if s == SlotTotalUsers || s == SlotNonce {
		return KindCell
	}
	return KindMap
}
