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
	"errors"
	"sync"
	"testing"

	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/ledger"
	"github.com/provideplatform/matchledger/witness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mutex     sync.Mutex
	summaries []*TranscriptSummary
	err       error
}

func (d *recordingDispatcher) Dispatch(summary *TranscriptSummary) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.summaries = append(d.summaries, summary)
	return d.err
}

func TestExecuteBatch(t *testing.T) {
	c := NewContract(matchProvider())

	final, outcomes := c.Execute(context.Background(), ledger.NewSnapshot(), []Invocation{
		&CreateVerifiedProfileInvocation{UserID: 1, Commitment: commitment},
		&CreateVerifiedProfileInvocation{UserID: 2, Commitment: commitment},
		&CreateVerifiedProfileInvocation{UserID: 2, Commitment: commitment},
		&VerifyAgeRangeInvocation{UserID: 1, MinAge: 18, MaxAge: 40},
		&VerifyAgeRangeInvocation{UserID: 2, MinAge: 18, MaxAge: 40},
		&VerifyLocationProximityInvocation{UserID: 1, MaxDistance: 10},
		&VerifyLocationProximityInvocation{UserID: 2, MaxDistance: 10},
		&VerifyIncomeBracketInvocation{UserID: 3, MinIncome: 0, MaxIncome: 10},
		&CreateVerifiedMatchInvocation{User1ID: 1, User2ID: 2},
		&CheckVerifiedMatchInvocation{User1ID: 2, User2ID: 1},
		&GetVerificationStatusInvocation{UserID: 1},
	})
	require.Len(t, outcomes, 11)

	requirePrecondition(t, outcomes[2].Err, "User ID already exists")
	requirePrecondition(t, outcomes[7].Err, "User does not exist")
	for i, outcome := range outcomes {
		if i == 2 || i == 7 {
			assert.Nil(t, outcome.Result)
			continue
		}
		require.NoError(t, outcome.Err, "invocation %d (%s)", i, outcome.Operation)
		require.NotNil(t, outcome.Result)
		assert.Equal(t, outcome.Operation, outcome.Result.Operation)
	}

	matched, err := outcomes[9].Result.Bool()
	require.NoError(t, err)
	assert.True(t, matched)

	assert.Equal(t, uint64(2), totalUsers(t, final))
	assert.Equal(t, uint64(7), nonce(t, final))
	require.NoError(t, final.Validate())
	assert.True(t, final.Equal(outcomes[10].Result.Snapshot))
}

func TestExecuteCancelled(t *testing.T) {
	c := NewContract(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	genesis := ledger.NewSnapshot()
	final, outcomes := c.Execute(ctx, genesis, []Invocation{
		&CreateVerifiedProfileInvocation{UserID: 1, Commitment: commitment},
	})
	require.Len(t, outcomes, 1)
	assert.True(t, errors.Is(outcomes[0].Err, context.Canceled))
	assert.Same(t, genesis, final)
}

func TestDispatchCommittedTranscripts(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	c := NewContract(witness.NewStaticProvider().SetAge(1, 30), WithDispatcher(dispatcher), WithCurve("bn254"))

	s := createProfiles(t, c, ledger.NewSnapshot(), 1)
	_, err := c.CreateVerifiedProfile(context.Background(), s, 1, commitment)
	require.Error(t, err)
	res, err := c.VerifyAndDiscloseAgeRange(context.Background(), s, nil, 1, 18, 30)
	require.NoError(t, err)

	require.Len(t, dispatcher.summaries, 2, "aborted operations are not dispatched")
	summary := dispatcher.summaries[1]
	assert.Equal(t, OpVerifyAndDiscloseAgeRange, summary.Operation)
	assert.Equal(t, res.Transcript.ID, summary.TranscriptID)
	assert.Equal(t, uint64(2), summary.Nonce)
	assert.Equal(t, res.Transcript.Len(), summary.Instructions)

	root, err := res.Transcript.Root("bn254")
	require.NoError(t, err)
	assert.Equal(t, *root, *summary.TranscriptRoot)

	state, err := res.Snapshot.Commit("bn254")
	require.NoError(t, err)
	assert.Equal(t, *state.Root, *summary.LedgerRoot)
}

func TestDispatchFailureDoesNotAbort(t *testing.T) {
	dispatcher := &recordingDispatcher{err: errors.New("broker unavailable")}
	c := NewContract(nil, WithDispatcher(dispatcher))

	res, err := c.CreateVerifiedProfile(context.Background(), ledger.NewSnapshot(), 1, commitment)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce(t, res.Snapshot))
	assert.Len(t, dispatcher.summaries, 1)
}

func TestNatsDispatcherFactoryWithoutNatsURL(t *testing.T) {
	url := common.NatsURL
	common.NatsURL = nil
	defer func() { common.NatsURL = url }()

	d := NatsDispatcherFactory()
	assert.Nil(t, d)

	c := NewContract(witness.NewStaticProvider(), WithDispatcher(d))
	res, err := c.CreateVerifiedProfile(context.Background(), ledger.NewSnapshot(), 1, commitment)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce(t, res.Snapshot))
}

func TestNilNatsDispatcherDisablesDispatch(t *testing.T) {
	var d *NatsDispatcher
	require.Error(t, d.Dispatch(&TranscriptSummary{Operation: OpCreateVerifiedProfile}))

	c := NewContract(witness.NewStaticProvider(), WithDispatcher(d))
	assert.Nil(t, c.dispatcher)

	res, err := c.CreateVerifiedProfile(context.Background(), ledger.NewSnapshot(), 1, commitment)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), totalUsers(t, res.Snapshot))
}

func TestNatsDispatcherSubject(t *testing.T) {
	d := &NatsDispatcher{prefix: "matchledger.transcript"}
	assert.Equal(t, "matchledger.transcript.create_verified_match", d.Subject(OpCreateVerifiedMatch))
	require.Error(t, d.Dispatch(&TranscriptSummary{}))
}
