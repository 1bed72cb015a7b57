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

// Package witness defines the boundary through which private attribute values enter a
// circuit operation. Values fetched here are recorded only in the private transcript.
package witness

import (
	"context"
	"errors"
	"fmt"

	"github.com/provideplatform/matchledger/codec"
)

// Kind identifies a witness
type Kind string

const (
	KindAge      Kind = "age"
	KindLocation Kind = "location"
	KindIncome   Kind = "income"
)

// PrivateState is the opaque private-state handle threaded through every fetch
type PrivateState []byte

// Location is a pair of bounded coordinates
type Location struct {
	Lat uint32
	Lng uint32
}

// Provider supplies private attribute values for a user; each fetch returns the updated
// private state alongside the value
type Provider interface {
	FetchAge(ctx context.Context, state PrivateState, userID uint32) (PrivateState, uint8, error)
	FetchLocation(ctx context.Context, state PrivateState, userID uint32) (PrivateState, Location, error)
	FetchIncome(ctx context.Context, state PrivateState, userID uint32) (PrivateState, uint64, error)
}

// ErrUnavailable is matched by every witness fetch failure
var ErrUnavailable = errors.New("witness unavailable")

// UnavailableError is returned when a witness could not be supplied
type UnavailableError struct {
	Kind   Kind
	UserID uint32
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s for user %d; %s", ErrUnavailable.Error(), e.Kind, e.UserID, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s for user %d", ErrUnavailable.Error(), e.Kind, e.UserID)
}

// Is matches ErrUnavailable
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

var (
	// AgeCodec encodes age witnesses
	AgeCodec = codec.U8

	// LocationCodec encodes (lat, lng) witnesses
	LocationCodec = codec.Tuple2[uint64, uint64](codec.U32, codec.U32)

	// IncomeCodec encodes income witnesses
	IncomeCodec = codec.U64
)

// Session scopes a provider and private state to a single operation; fetched values are
// appended to the session's private transcript
type Session struct {
	provider   Provider
	state      PrivateState
	transcript *Transcript
}

// NewSession returns a session starting from state
func NewSession(provider Provider, state PrivateState) *Session {
	return &Session{
		provider:   provider,
		state:      state,
		transcript: &Transcript{Entries: make([]Entry, 0)},
	}
}

// State returns the private state after the last successful fetch
func (s *Session) State() PrivateState {
	return s.state
}

// Transcript returns the private transcript recorded by the session
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Age fetches the age witness of userID
func (s *Session) Age(ctx context.Context, userID uint32) (uint8, error) {
	if s.provider == nil {
		return 0, unavailable(KindAge, userID, errors.New("no witness provider configured"))
	}
	state, age, err := s.provider.FetchAge(ctx, s.state, userID)
	if err != nil {
		return 0, unavailable(KindAge, userID, err)
	}
	val, err := codec.Encode[uint64](AgeCodec, uint64(age))
	if err != nil {
		return 0, err
	}
	s.record(state, KindAge, userID, val)
	return age, nil
}

// Location fetches the location witness of userID
func (s *Session) Location(ctx context.Context, userID uint32) (Location, error) {
	if s.provider == nil {
		return Location{}, unavailable(KindLocation, userID, errors.New("no witness provider configured"))
	}
	state, loc, err := s.provider.FetchLocation(ctx, s.state, userID)
	if err != nil {
		return Location{}, unavailable(KindLocation, userID, err)
	}
	val, err := codec.Encode[codec.Pair[uint64, uint64]](LocationCodec, codec.Pair[uint64, uint64]{First: uint64(loc.Lat), Second: uint64(loc.Lng)})
	if err != nil {
		return Location{}, err
	}
	s.record(state, KindLocation, userID, val)
	return loc, nil
}

// Income fetches the income witness of userID
func (s *Session) Income(ctx context.Context, userID uint32) (uint64, error) {
	if s.provider == nil {
		return 0, unavailable(KindIncome, userID, errors.New("no witness provider configured"))
	}
	state, income, err := s.provider.FetchIncome(ctx, s.state, userID)
	if err != nil {
		return 0, unavailable(KindIncome, userID, err)
	}
	val, err := codec.Encode[uint64](IncomeCodec, income)
	if err != nil {
		return 0, err
	}
	s.record(state, KindIncome, userID, val)
	return income, nil
}

func (s *Session) record(state PrivateState, kind Kind, userID uint32, val codec.Value) {
	s.state = state
	s.transcript.Entries = append(s.transcript.Entries, Entry{Kind: kind, UserID: userID, Value: val})
}

// unavailable wraps err as an UnavailableError unless it already is one
func unavailable(kind Kind, userID uint32, err error) error {
	var unavailableErr *UnavailableError
	if errors.As(err, &unavailableErr) {
		return err
	}
	return &UnavailableError{Kind: kind, UserID: userID, Err: err}
}
