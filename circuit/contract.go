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

// Package circuit implements the seven public operations of the verification ledger. Each
// operation is a pure function of an input snapshot, its public arguments and the private
// witness values it fetches; it either returns a new snapshot with its transcripts or aborts
// leaving the input snapshot untouched.
package circuit

import (
	"context"
	"errors"
	"fmt"

	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/ledger"
	"github.com/provideplatform/matchledger/query"
	"github.com/provideplatform/matchledger/witness"
)

const (
	OpCreateVerifiedProfile              = "create_verified_profile"
	OpVerifyAndDiscloseAgeRange          = "verify_and_disclose_age_range"
	OpVerifyAndDiscloseLocationProximity = "verify_and_disclose_location_proximity"
	OpVerifyAndDiscloseIncomeBracket     = "verify_and_disclose_income_bracket"
	OpCreateVerifiedMatch                = "create_verified_match"
	OpCheckVerifiedMatch                 = "check_verified_match"
	OpGetVerificationStatus              = "get_verification_status"
)

// VerificationStatusCodec encodes the (age, location, income) flags returned by
// get_verification_status
var VerificationStatusCodec = codec.Tuple3[bool, bool, bool](codec.Bool, codec.Bool, codec.Bool)

// unit is the public result of operations which return nothing
var unit = codec.Value{Alignment: codec.Alignment{}, Bytes: []byte{}}

// Contract executes circuit operations; it holds no ledger state of its own
type Contract struct {
	provider   witness.Provider
	dispatcher Dispatcher
	curve      string
}

// Option configures a Contract
type Option func(*Contract)

// WithDispatcher publishes a summary of every committed operation to d; a nil d, or a nil
// *NatsDispatcher, disables dispatch
func WithDispatcher(d Dispatcher) Option {
	return func(c *Contract) {
		if nd, ok := d.(*NatsDispatcher); ok && nd == nil {
			d = nil
		}
		c.dispatcher = d
	}
}

// WithCurve sets the curve used to commit transcripts and ledger state
func WithCurve(curve string) Option {
	return func(c *Contract) {
		c.curve = curve
	}
}

// NewContract returns a contract which fetches private values from provider
func NewContract(provider witness.Provider, opts ...Option) *Contract {
	c := &Contract{
		provider: provider,
		curve:    common.LedgerCommitmentCurve,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of a committed operation
type Result struct {
	Operation         string               `json:"operation"`
	Snapshot          *ledger.Snapshot     `json:"-"`
	Output            codec.Value          `json:"output"`
	Transcript        *query.Transcript    `json:"transcript"`
	PrivateTranscript *witness.Transcript  `json:"-"`
	PrivateState      witness.PrivateState `json:"-"`
}

// Bool decodes a boolean public result
func (r *Result) Bool() (bool, error) {
	return codec.Decode[bool](codec.Bool, r.Output)
}

// VerificationStatus is the public result of get_verification_status
type VerificationStatus struct {
	Age      bool `json:"age"`
	Location bool `json:"location"`
	Income   bool `json:"income"`
}

// VerificationStatus decodes the public result of get_verification_status
func (r *Result) VerificationStatus() (*VerificationStatus, error) {
	flags, err := codec.Decode[codec.Triple[bool, bool, bool]](VerificationStatusCodec, r.Output)
	if err != nil {
		return nil, err
	}
	return &VerificationStatus{
		Age:      flags.First,
		Location: flags.Second,
		Income:   flags.Third,
	}, nil
}

// invocation is the working state of a single operation
type invocation struct {
	name    string
	engine  *query.Engine
	session *witness.Session
}

// run executes body against snapshot and commits its effects only if body succeeds
func (c *Contract) run(
	ctx context.Context,
	snapshot *ledger.Snapshot,
	state witness.PrivateState,
	name string,
	inputs []codec.Value,
	body func(ctx context.Context, inv *invocation) (codec.Value, error),
) (*Result, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("failed to execute %s; nil snapshot", name)
	}

	nonce, err := snapshot.Nonce()
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s; %w", name, err)
	}
	transcript, err := query.NewTranscript(name, nonce, inputs...)
	if err != nil {
		return nil, err
	}

	inv := &invocation{
		name:    name,
		engine:  query.NewEngine(snapshot.Store(), transcript),
		session: witness.NewSession(c.provider, state),
	}

	output, err := body(ctx, inv)
	if err != nil {
		common.Log.Warningf("aborted %s at nonce %d; %s", name, nonce, err.Error())
		return nil, err
	}

	next, err := ledger.FromStore(inv.engine.Store())
	if err != nil {
		return nil, fmt.Errorf("failed to commit %s; %w", name, err)
	}

	result := &Result{
		Operation:         name,
		Snapshot:          next,
		Output:            output,
		Transcript:        transcript,
		PrivateTranscript: inv.session.Transcript(),
		PrivateState:      inv.session.State(),
	}

	common.Log.Debugf("committed %s; transcript %s recorded %d instruction(s)", name, transcript.ID, transcript.Len())
	c.dispatch(result)
	return result, nil
}

func (inv *invocation) run(program query.Program) ([]codec.Value, error) {
	return inv.engine.Run(program)
}

// contains returns true if key is bound in the map held by slot
func (inv *invocation) contains(slot ledger.Slot, key codec.Value) (bool, error) {
	reads, err := inv.run(query.QueryMember(ledger.Path{slot.Key()}, key))
	if err != nil {
		return false, err
	}
	return codec.Decode[bool](codec.Bool, reads[0])
}

// read returns the cell bound to key in the map held by slot
func (inv *invocation) read(slot ledger.Slot, key codec.Value) (codec.Value, error) {
	reads, err := inv.run(query.QueryCell(ledger.Path{slot.Key(), key}, true))
	if err != nil {
		return codec.Value{}, err
	}
	return reads[0], nil
}

// write binds key to val in the map held by slot
func (inv *invocation) write(slot ledger.Slot, key, val codec.Value) error {
	_, err := inv.run(query.WriteCell(ledger.Path{slot.Key(), key}, val))
	return err
}

// increment adds one to the counter held by slot
func (inv *invocation) increment(slot ledger.Slot) error {
	_, err := inv.run(query.IncrementCell(ledger.Path{slot.Key()}, 1))
	return err
}

// requireActiveUser asserts id is registered and active
func (inv *invocation) requireActiveUser(id uint32, notFound, notActive string) error {
	key := ledger.UserKey(id)
	exists, err := inv.contains(ledger.SlotUserStatuses, key)
	if err != nil {
		return err
	}
	if !exists {
		return inv.precondition(notFound)
	}

	val, err := inv.read(ledger.SlotUserStatuses, key)
	if err != nil {
		return err
	}
	active, err := ledger.StatusValue(ledger.StatusActive)
	if err != nil {
		return err
	}
	if !val.Equal(active) {
		return inv.precondition(notActive)
	}
	return nil
}

// requireUser asserts id is registered
func (inv *invocation) requireUser(id uint32, notFound string) error {
	exists, err := inv.contains(ledger.SlotUserStatuses, ledger.UserKey(id))
	if err != nil {
		return err
	}
	if !exists {
		return inv.precondition(notFound)
	}
	return nil
}

// inRange returns true if slot holds InRange for id
func (inv *invocation) inRange(slot ledger.Slot, id uint32) (bool, error) {
	key := ledger.UserKey(id)
	present, err := inv.contains(slot, key)
	if err != nil || !present {
		return false, err
	}

	val, err := inv.read(slot, key)
	if err != nil {
		return false, err
	}
	expected, err := ledger.ResultValue(ledger.InRange)
	if err != nil {
		return false, err
	}
	return val.Equal(expected), nil
}

// disclose records the outcome of a verification and advances the nonce
func (inv *invocation) disclose(slot ledger.Slot, id uint32, ok bool) error {
	result := ledger.OutOfRange
	if ok {
		result = ledger.InRange
	}
	val, err := ledger.ResultValue(result)
	if err != nil {
		return err
	}
	if err := inv.write(slot, ledger.UserKey(id), val); err != nil {
		return err
	}
	return inv.increment(ledger.SlotNonce)
}

func (inv *invocation) precondition(reason string) error {
	return &PreconditionError{Operation: inv.name, Reason: reason}
}

// sub returns a - b, failing if the result would be negative
func (inv *invocation) sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, &UnderflowError{Operation: inv.name}
	}
	return a - b, nil
}

// IsAbort returns true if err is one of the named operation aborts
func IsAbort(err error) bool {
	var preconditionErr *PreconditionError
	var underflowErr *UnderflowError
	return errors.As(err, &preconditionErr) || errors.As(err, &underflowErr) || errors.Is(err, witness.ErrUnavailable)
}
