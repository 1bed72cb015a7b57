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

package circuit

import (
	"context"

	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/ledger"
	"github.com/provideplatform/matchledger/witness"
)

// CreateVerifiedProfile registers userID as active; the profile commitment is carried in the
// transcript inputs and never interpreted
func (c *Contract) CreateVerifiedProfile(ctx context.Context, snapshot *ledger.Snapshot, userID uint32, commitment []byte) (*Result, error) {
	key := ledger.UserKey(userID)
	digest, err := codec.Encode[[]byte](ledger.CommitmentCodec, commitment)
	if err != nil {
		return nil, err
	}

	return c.run(ctx, snapshot, nil, OpCreateVerifiedProfile, []codec.Value{key, digest}, func(ctx context.Context, inv *invocation) (codec.Value, error) {
		exists, err := inv.contains(ledger.SlotUserStatuses, key)
		if err != nil {
			return codec.Value{}, err
		}
		if exists {
			return codec.Value{}, inv.precondition(reasonUserExists)
		}

		active, err := ledger.StatusValue(ledger.StatusActive)
		if err != nil {
			return codec.Value{}, err
		}
		if err := inv.write(ledger.SlotUserStatuses, key, active); err != nil {
			return codec.Value{}, err
		}
		if err := inv.increment(ledger.SlotTotalUsers); err != nil {
			return codec.Value{}, err
		}
		if err := inv.increment(ledger.SlotNonce); err != nil {
			return codec.Value{}, err
		}
		return codec.Encode[bool](codec.Bool, true)
	})
}

// VerifyAndDiscloseAgeRange discloses whether the private age of userID lies within
// [minAge, maxAge]
func (c *Contract) VerifyAndDiscloseAgeRange(ctx context.Context, snapshot *ledger.Snapshot, state witness.PrivateState, userID uint32, minAge, maxAge uint8) (*Result, error) {
	inputs := []codec.Value{
		ledger.UserKey(userID),
		codec.MustEncode[uint64](codec.U8, uint64(minAge)),
		codec.MustEncode[uint64](codec.U8, uint64(maxAge)),
	}

	return c.run(ctx, snapshot, state, OpVerifyAndDiscloseAgeRange, inputs, func(ctx context.Context, inv *invocation) (codec.Value, error) {
		if err := inv.requireActiveUser(userID, reasonUserNotFound, reasonUserNotActive); err != nil {
			return codec.Value{}, err
		}

		age, err := inv.session.Age(ctx, userID)
		if err != nil {
			return codec.Value{}, err
		}

		if err := inv.disclose(ledger.SlotAgeVerifications, userID, minAge <= age && age <= maxAge); err != nil {
			return codec.Value{}, err
		}
		return unit, nil
	})
}

// VerifyAndDiscloseLocationProximity discloses whether the manhattan distance between the
// private location of userID and the target is at most maxDistance
func (c *Contract) VerifyAndDiscloseLocationProximity(ctx context.Context, snapshot *ledger.Snapshot, state witness.PrivateState, userID, targetLat, targetLng uint32, maxDistance uint64) (*Result, error) {
	inputs := []codec.Value{
		ledger.UserKey(userID),
		codec.MustEncode[uint64](codec.U32, uint64(targetLat)),
		codec.MustEncode[uint64](codec.U32, uint64(targetLng)),
		codec.MustEncode[uint64](codec.U64, maxDistance),
	}

	return c.run(ctx, snapshot, state, OpVerifyAndDiscloseLocationProximity, inputs, func(ctx context.Context, inv *invocation) (codec.Value, error) {
		if err := inv.requireActiveUser(userID, reasonUserNotFound, reasonUserNotActive); err != nil {
			return codec.Value{}, err
		}

		loc, err := inv.session.Location(ctx, userID)
		if err != nil {
			return codec.Value{}, err
		}

		dLat, err := inv.distance(uint64(loc.Lat), uint64(targetLat))
		if err != nil {
			return codec.Value{}, err
		}
		dLng, err := inv.distance(uint64(loc.Lng), uint64(targetLng))
		if err != nil {
			return codec.Value{}, err
		}

		if err := inv.disclose(ledger.SlotLocationVerifications, userID, dLat+dLng <= maxDistance); err != nil {
			return codec.Value{}, err
		}
		return unit, nil
	})
}

// VerifyAndDiscloseIncomeBracket discloses whether the private income of userID lies within
// [minIncome, maxIncome]
func (c *Contract) VerifyAndDiscloseIncomeBracket(ctx context.Context, snapshot *ledger.Snapshot, state witness.PrivateState, userID uint32, minIncome, maxIncome uint64) (*Result, error) {
	inputs := []codec.Value{
		ledger.UserKey(userID),
		codec.MustEncode[uint64](codec.U64, minIncome),
		codec.MustEncode[uint64](codec.U64, maxIncome),
	}

	return c.run(ctx, snapshot, state, OpVerifyAndDiscloseIncomeBracket, inputs, func(ctx context.Context, inv *invocation) (codec.Value, error) {
		if err := inv.requireActiveUser(userID, reasonUserNotFound, reasonUserNotActive); err != nil {
			return codec.Value{}, err
		}

		income, err := inv.session.Income(ctx, userID)
		if err != nil {
			return codec.Value{}, err
		}

		if err := inv.disclose(ledger.SlotIncomeVerifications, userID, minIncome <= income && income <= maxIncome); err != nil {
			return codec.Value{}, err
		}
		return unit, nil
	})
}

// CreateVerifiedMatch records a symmetric match between two active users if both are in
// range for age and location; income does not gate a match. An incompatible pair is not
// an error: the operation commits without writes and returns false.
func (c *Contract) CreateVerifiedMatch(ctx context.Context, snapshot *ledger.Snapshot, user1ID, user2ID uint32) (*Result, error) {
	inputs := []codec.Value{ledger.UserKey(user1ID), ledger.UserKey(user2ID)}

	return c.run(ctx, snapshot, nil, OpCreateVerifiedMatch, inputs, func(ctx context.Context, inv *invocation) (codec.Value, error) {
		if err := inv.requireUser(user1ID, reasonUser1NotFound); err != nil {
			return codec.Value{}, err
		}
		if err := inv.requireUser(user2ID, reasonUser2NotFound); err != nil {
			return codec.Value{}, err
		}
		if err := inv.requireActiveUser(user1ID, reasonUser1NotFound, reasonUser1NotActive); err != nil {
			return codec.Value{}, err
		}
		if err := inv.requireActiveUser(user2ID, reasonUser2NotFound, reasonUser2NotActive); err != nil {
			return codec.Value{}, err
		}

		compatible := true
		for _, slot := range []ledger.Slot{ledger.SlotAgeVerifications, ledger.SlotLocationVerifications} {
			for _, id := range []uint32{user1ID, user2ID} {
				ok, err := inv.inRange(slot, id)
				if err != nil {
					return codec.Value{}, err
				}
				compatible = compatible && ok
			}
		}

		if compatible {
			matched, err := codec.Encode[bool](ledger.MatchValueCodec, true)
			if err != nil {
				return codec.Value{}, err
			}
			if err := inv.write(ledger.SlotVerifiedMatches, ledger.MatchKey(user1ID, user2ID), matched); err != nil {
				return codec.Value{}, err
			}
			if err := inv.write(ledger.SlotVerifiedMatches, ledger.MatchKey(user2ID, user1ID), matched); err != nil {
				return codec.Value{}, err
			}
			if err := inv.increment(ledger.SlotNonce); err != nil {
				return codec.Value{}, err
			}
		}

		return codec.Encode[bool](codec.Bool, compatible)
	})
}

// CheckVerifiedMatch returns whether (user1ID, user2ID) is a verified match
func (c *Contract) CheckVerifiedMatch(ctx context.Context, snapshot *ledger.Snapshot, user1ID, user2ID uint32) (*Result, error) {
	inputs := []codec.Value{ledger.UserKey(user1ID), ledger.UserKey(user2ID)}

	return c.run(ctx, snapshot, nil, OpCheckVerifiedMatch, inputs, func(ctx context.Context, inv *invocation) (codec.Value, error) {
		if err := inv.requireUser(user1ID, reasonUser1NotFound); err != nil {
			return codec.Value{}, err
		}
		if err := inv.requireUser(user2ID, reasonUser2NotFound); err != nil {
			return codec.Value{}, err
		}

		matched, err := inv.contains(ledger.SlotVerifiedMatches, ledger.MatchKey(user1ID, user2ID))
		if err != nil {
			return codec.Value{}, err
		}
		return codec.Encode[bool](codec.Bool, matched)
	})
}

// GetVerificationStatus returns whether each of the age, location and income verifications
// of userID is recorded as InRange
func (c *Contract) GetVerificationStatus(ctx context.Context, snapshot *ledger.Snapshot, userID uint32) (*Result, error) {
	inputs := []codec.Value{ledger.UserKey(userID)}

	return c.run(ctx, snapshot, nil, OpGetVerificationStatus, inputs, func(ctx context.Context, inv *invocation) (codec.Value, error) {
		if err := inv.requireUser(userID, reasonUserNotFound); err != nil {
			return codec.Value{}, err
		}

		flags := make([]bool, 0, 3)
		for _, slot := range []ledger.Slot{ledger.SlotAgeVerifications, ledger.SlotLocationVerifications, ledger.SlotIncomeVerifications} {
			ok, err := inv.inRange(slot, userID)
			if err != nil {
				return codec.Value{}, err
			}
			flags = append(flags, ok)
		}

		return codec.Encode[codec.Triple[bool, bool, bool]](VerificationStatusCodec, codec.Triple[bool, bool, bool]{
			First:  flags[0],
			Second: flags[1],
			Third:  flags[2],
		})
	})
}

// distance returns |a - b| using checked subtraction
func (inv *invocation) distance(a, b uint64) (uint64, error) {
	if a >= b {
		return inv.sub(a, b)
	}
	return inv.sub(b, a)
}
