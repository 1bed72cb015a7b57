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
	"encoding/binary"
	"sync"
)

// StaticProvider answers fetches from fixed tables; the private state it returns is the
// input state extended with a record of the fetch
type StaticProvider struct {
	Ages      map[uint32]uint8
	Locations map[uint32]Location
	Incomes   map[uint32]uint64

	mutex sync.RWMutex
}

// NewStaticProvider returns an empty static provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		Ages:      map[uint32]uint8{},
		Locations: map[uint32]Location{},
		Incomes:   map[uint32]uint64{},
	}
}

// SetAge sets the age answered for userID
func (p *StaticProvider) SetAge(userID uint32, age uint8) *StaticProvider {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.Ages[userID] = age
	return p
}

// SetLocation sets the location answered for userID
func (p *StaticProvider) SetLocation(userID uint32, lat, lng uint32) *StaticProvider {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.Locations[userID] = Location{Lat: lat, Lng: lng}
	return p
}

// SetIncome sets the income answered for userID
func (p *StaticProvider) SetIncome(userID uint32, income uint64) *StaticProvider {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.Incomes[userID] = income
	return p
}

// FetchAge implements Provider
func (p *StaticProvider) FetchAge(ctx context.Context, state PrivateState, userID uint32) (PrivateState, uint8, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, unavailable(KindAge, userID, err)
	}
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	age, ok := p.Ages[userID]
	if !ok {
		return nil, 0, &UnavailableError{Kind: KindAge, UserID: userID}
	}
	return advance(state, KindAge, userID), age, nil
}

// FetchLocation implements Provider
func (p *StaticProvider) FetchLocation(ctx context.Context, state PrivateState, userID uint32) (PrivateState, Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, Location{}, unavailable(KindLocation, userID, err)
	}
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	loc, ok := p.Locations[userID]
	if !ok {
		return nil, Location{}, &UnavailableError{Kind: KindLocation, UserID: userID}
	}
	return advance(state, KindLocation, userID), loc, nil
}

// FetchIncome implements Provider
func (p *StaticProvider) FetchIncome(ctx context.Context, state PrivateState, userID uint32) (PrivateState, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, unavailable(KindIncome, userID, err)
	}
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	income, ok := p.Incomes[userID]
	if !ok {
		return nil, 0, &UnavailableError{Kind: KindIncome, UserID: userID}
	}
	return advance(state, KindIncome, userID), income, nil
}

func advance(state PrivateState, kind Kind, userID uint32) PrivateState {
	next := make(PrivateState, len(state), len(state)+5)
	copy(next, state)
	next = append(next, kind[0])
	return binary.LittleEndian.AppendUint32(next, userID)
}
