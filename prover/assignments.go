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

package prover

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/provideplatform/matchledger/circuit"
	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/ledger"
	"github.com/provideplatform/matchledger/witness"
	"github.com/provideplatform/matchledger/zkp/lib/circuits/gnark"
	zkp "github.com/provideplatform/matchledger/zkp/providers"
)

// assignments returns the circuit identifier and the full and public-only assignments
// proving the outcome disclosed by result
func assignments(result *circuit.Result) (identifier string, full, public frontend.Circuit, err error) {
	if result == nil || result.Transcript == nil || result.PrivateTranscript == nil || result.Snapshot == nil {
		return "", nil, nil, fmt.Errorf("failed to build assignment; incomplete result")
	}

	inputs := result.Transcript.Inputs
	switch result.Operation {
	case circuit.OpVerifyAndDiscloseAgeRange:
		args, err := decodeInputs(inputs, ledger.UserIDCodec, codec.U8, codec.U8)
		if err != nil {
			return "", nil, nil, err
		}
		outcome, err := disclosed(result.Snapshot, ledger.SlotAgeVerifications, args[0])
		if err != nil {
			return "", nil, nil, err
		}
		age, err := private(result.PrivateTranscript, witness.KindAge, witness.AgeCodec)
		if err != nil {
			return "", nil, nil, err
		}

		full = &gnark.AgeRangeCircuit{UserID: args[0], MinAge: args[1], MaxAge: args[2], Outcome: outcome, Age: age}
		public = &gnark.AgeRangeCircuit{UserID: args[0], MinAge: args[1], MaxAge: args[2], Outcome: outcome}
		return zkp.GnarkCircuitIdentifierAgeRange, full, public, nil

	case circuit.OpVerifyAndDiscloseIncomeBracket:
		args, err := decodeInputs(inputs, ledger.UserIDCodec, codec.U64, codec.U64)
		if err != nil {
			return "", nil, nil, err
		}
		outcome, err := disclosed(result.Snapshot, ledger.SlotIncomeVerifications, args[0])
		if err != nil {
			return "", nil, nil, err
		}
		income, err := private(result.PrivateTranscript, witness.KindIncome, witness.IncomeCodec)
		if err != nil {
			return "", nil, nil, err
		}

		full = &gnark.IncomeBracketCircuit{UserID: args[0], MinIncome: args[1], MaxIncome: args[2], Outcome: outcome, Income: income}
		public = &gnark.IncomeBracketCircuit{UserID: args[0], MinIncome: args[1], MaxIncome: args[2], Outcome: outcome}
		return zkp.GnarkCircuitIdentifierIncomeBracket, full, public, nil

	case circuit.OpVerifyAndDiscloseLocationProximity:
		args, err := decodeInputs(inputs, ledger.UserIDCodec, codec.U32, codec.U32, codec.U64)
		if err != nil {
			return "", nil, nil, err
		}
		outcome, err := disclosed(result.Snapshot, ledger.SlotLocationVerifications, args[0])
		if err != nil {
			return "", nil, nil, err
		}
		loc, err := private(result.PrivateTranscript, witness.KindLocation, witness.LocationCodec)
		if err != nil {
			return "", nil, nil, err
		}

		full = &gnark.ProximityCircuit{
			UserID:      args[0],
			TargetLat:   args[1],
			TargetLng:   args[2],
			MaxDistance: args[3],
			Outcome:     outcome,
			Lat:         loc.First,
			Lng:         loc.Second,
		}
		public = &gnark.ProximityCircuit{
			UserID:      args[0],
			TargetLat:   args[1],
			TargetLng:   args[2],
			MaxDistance: args[3],
			Outcome:     outcome,
		}
		return zkp.GnarkCircuitIdentifierLocationProximity, full, public, nil
	}

	return "", nil, nil, fmt.Errorf("failed to build assignment; %s discloses no private value", result.Operation)
}

func decodeInputs(inputs []codec.Value, codecs ...codec.Codec[uint64]) ([]uint64, error) {
	if len(inputs) != len(codecs) {
		return nil, fmt.Errorf("failed to decode transcript inputs; expected %d, found %d", len(codecs), len(inputs))
	}
	args := make([]uint64, len(codecs))
	for i, c := range codecs {
		arg, err := codec.Decode(c, inputs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to decode transcript input %d; %w", i, err)
		}
		args[i] = arg
	}
	return args, nil
}

func disclosed(snapshot *ledger.Snapshot, slot ledger.Slot, userID uint64) (uint8, error) {
	result, ok, err := snapshot.Verification(slot, uint32(userID))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("failed to resolve disclosed outcome; no %s entry for user %d", slot, userID)
	}
	return uint8(result), nil
}

func private[T any](transcript *witness.Transcript, kind witness.Kind, c codec.Codec[T]) (T, error) {
	var zero T
	values := transcript.Values(kind)
	if len(values) != 1 {
		return zero, fmt.Errorf("failed to resolve %s witness; expected 1 value, found %d", kind, len(values))
	}
	return codec.Decode(c, values[0])
}
