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

	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/ledger"
	"github.com/provideplatform/matchledger/witness"
)

// Invocation is a single queued circuit operation with its public arguments
type Invocation interface {
	Operation() string
	invoke(ctx context.Context, c *Contract, snapshot *ledger.Snapshot) (*Result, error)
}

// CreateVerifiedProfileInvocation invokes create_verified_profile
type CreateVerifiedProfileInvocation struct {
	UserID     uint32
	Commitment []byte
}

func (i *CreateVerifiedProfileInvocation) Operation() string { return OpCreateVerifiedProfile }

func (i *CreateVerifiedProfileInvocation) invoke(ctx context.Context, c *Contract, s *ledger.Snapshot) (*Result, error) {
	return c.CreateVerifiedProfile(ctx, s, i.UserID, i.Commitment)
}

// VerifyAgeRangeInvocation invokes verify_and_disclose_age_range
type VerifyAgeRangeInvocation struct {
	UserID       uint32
	MinAge       uint8
	MaxAge       uint8
	PrivateState witness.PrivateState
}

func (i *VerifyAgeRangeInvocation) Operation() string { return OpVerifyAndDiscloseAgeRange }

func (i *VerifyAgeRangeInvocation) invoke(ctx context.Context, c *Contract, s *ledger.Snapshot) (*Result, error) {
	return c.VerifyAndDiscloseAgeRange(ctx, s, i.PrivateState, i.UserID, i.MinAge, i.MaxAge)
}

// VerifyLocationProximityInvocation invokes verify_and_disclose_location_proximity
type VerifyLocationProximityInvocation struct {
	UserID       uint32
	TargetLat    uint32
	TargetLng    uint32
	MaxDistance  uint64
	PrivateState witness.PrivateState
}

func (i *VerifyLocationProximityInvocation) Operation() string {
	return OpVerifyAndDiscloseLocationProximity
}

func (i *VerifyLocationProximityInvocation) invoke(ctx context.Context, c *Contract, s *ledger.Snapshot) (*Result, error) {
	return c.VerifyAndDiscloseLocationProximity(ctx, s, i.PrivateState, i.UserID, i.TargetLat, i.TargetLng, i.MaxDistance)
}

// VerifyIncomeBracketInvocation invokes verify_and_disclose_income_bracket
type VerifyIncomeBracketInvocation struct {
	UserID       uint32
	MinIncome    uint64
	MaxIncome    uint64
	PrivateState witness.PrivateState
}

func (i *VerifyIncomeBracketInvocation) Operation() string { return OpVerifyAndDiscloseIncomeBracket }

func (i *VerifyIncomeBracketInvocation) invoke(ctx context.Context, c *Contract, s *ledger.Snapshot) (*Result, error) {
	return c.VerifyAndDiscloseIncomeBracket(ctx, s, i.PrivateState, i.UserID, i.MinIncome, i.MaxIncome)
}

// CreateVerifiedMatchInvocation invokes create_verified_match
type CreateVerifiedMatchInvocation struct {
	User1ID uint32
	User2ID uint32
}

func (i *CreateVerifiedMatchInvocation) Operation() string { return OpCreateVerifiedMatch }

func (i *CreateVerifiedMatchInvocation) invoke(ctx context.Context, c *Contract, s *ledger.Snapshot) (*Result, error) {
	return c.CreateVerifiedMatch(ctx, s, i.User1ID, i.User2ID)
}

// CheckVerifiedMatchInvocation invokes check_verified_match
type CheckVerifiedMatchInvocation struct {
	User1ID uint32
	User2ID uint32
}

func (i *CheckVerifiedMatchInvocation) Operation() string { return OpCheckVerifiedMatch }

func (i *CheckVerifiedMatchInvocation) invoke(ctx context.Context, c *Contract, s *ledger.Snapshot) (*Result, error) {
	return c.CheckVerifiedMatch(ctx, s, i.User1ID, i.User2ID)
}

// GetVerificationStatusInvocation invokes get_verification_status
type GetVerificationStatusInvocation struct {
	UserID uint32
}

func (i *GetVerificationStatusInvocation) Operation() string { return OpGetVerificationStatus }

func (i *GetVerificationStatusInvocation) invoke(ctx context.Context, c *Contract, s *ledger.Snapshot) (*Result, error) {
	return c.GetVerificationStatus(ctx, s, i.UserID)
}

// Outcome is the result of one invocation of a batch; exactly one of Result and Err is set
type Outcome struct {
	Operation string
	Result    *Result
	Err       error
}

// Execute applies invocations in order starting from snapshot. An aborted invocation leaves
// the running snapshot unchanged and execution continues with the next one; the final
// snapshot and one outcome per invocation are returned.
func (c *Contract) Execute(ctx context.Context, snapshot *ledger.Snapshot, invocations []Invocation) (*ledger.Snapshot, []*Outcome) {
	outcomes := make([]*Outcome, 0, len(invocations))

	for i, invocation := range invocations {
		outcome := &Outcome{Operation: invocation.Operation()}
		if err := ctx.Err(); err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		result, err := invocation.invoke(ctx, c, snapshot)
		if err != nil {
			outcome.Err = err
		} else {
			outcome.Result = result
			snapshot = result.Snapshot
		}
		outcomes = append(outcomes, outcome)
		common.Log.Tracef("executed invocation %d of %d (%s)", i+1, len(invocations), outcome.Operation)
	}

	return snapshot, outcomes
}
