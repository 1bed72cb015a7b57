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

package witness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/provideplatform/matchledger/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowProvider struct {
	*StaticProvider
	delay time.Duration
}

func (p *slowProvider) FetchAge(ctx context.Context, state PrivateState, userID uint32) (PrivateState, uint8, error) {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
	return p.StaticProvider.FetchAge(ctx, state, userID)
}

func TestSessionRecordsPrivateTranscript(t *testing.T) {
	provider := NewStaticProvider().SetAge(1, 30).SetLocation(1, 10, 12).SetIncome(1, 85000)
	session := NewSession(provider, PrivateState("seed"))

	age, err := session.Age(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(30), age)

	loc, err := session.Location(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Location{Lat: 10, Lng: 12}, loc)

	income, err := session.Income(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(85000), income)

	transcript := session.Transcript()
	require.Len(t, transcript.Entries, 3)
	assert.Equal(t, KindAge, transcript.Entries[0].Kind)

	ages := transcript.Values(KindAge)
	require.Len(t, ages, 1)
	decoded, err := codec.Decode[uint64](AgeCodec, ages[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(30), decoded)

	assert.Len(t, session.State(), len("seed")+3*5, "each fetch advances the private state")
	assert.Equal(t, PrivateState("seed"), session.State()[:4])
}

func TestUnavailableWitness(t *testing.T) {
	session := NewSession(NewStaticProvider(), nil)

	_, err := session.Income(context.Background(), 4)
	require.True(t, errors.Is(err, ErrUnavailable))

	var unavailableErr *UnavailableError
	require.True(t, errors.As(err, &unavailableErr))
	assert.Equal(t, KindIncome, unavailableErr.Kind)
	assert.Equal(t, uint32(4), unavailableErr.UserID)

	assert.Empty(t, session.Transcript().Entries, "failed fetches are not recorded")
}

func TestNilProviderIsUnavailable(t *testing.T) {
	_, err := NewSession(nil, nil).Age(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestProviderErrorsAreWrapped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSession(NewStaticProvider().SetAge(1, 20), nil).Age(ctx, 1)
	require.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWithTimeout(t *testing.T) {
	slow := &slowProvider{StaticProvider: NewStaticProvider().SetAge(1, 40), delay: time.Second}

	_, _, err := WithTimeout(slow, 10*time.Millisecond).FetchAge(context.Background(), nil, 1)
	require.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	_, age, err := WithTimeout(slow, 5*time.Second).FetchAge(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(40), age)

	_, loc, err := WithTimeout(NewStaticProvider().SetLocation(2, 1, 2), 0).FetchLocation(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Equal(t, Location{Lat: 1, Lng: 2}, loc)
}

func TestPrivateTranscriptCommitment(t *testing.T) {
	a := NewSession(NewStaticProvider().SetAge(1, 30).SetAge(2, 31), nil)
	_, err := a.Age(context.Background(), 1)
	require.NoError(t, err)
	_, err = a.Age(context.Background(), 2)
	require.NoError(t, err)

	b := NewSession(NewStaticProvider().SetAge(1, 30).SetAge(2, 32), nil)
	_, err = b.Age(context.Background(), 1)
	require.NoError(t, err)
	_, err = b.Age(context.Background(), 2)
	require.NoError(t, err)

	rootA, err := a.Transcript().Commitment("bn254")
	require.NoError(t, err)
	rootA2, err := a.Transcript().Commitment("bn254")
	require.NoError(t, err)
	rootB, err := b.Transcript().Commitment("bn254")
	require.NoError(t, err)

	assert.Equal(t, *rootA, *rootA2)
	assert.NotEqual(t, *rootA, *rootB)

	_, err = (&Transcript{}).Commitment("bn254")
	require.Error(t, err)
}
