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
	"time"

	"github.com/provideplatform/matchledger/common"
)

type timeoutProvider struct {
	provider Provider
	timeout  time.Duration
}

// WithTimeout bounds every fetch of provider by timeout; a fetch which does not complete in
// time fails with ErrUnavailable. A non-positive timeout uses the configured default.
func WithTimeout(provider Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		timeout = common.WitnessFetchTimeout
	}
	return &timeoutProvider{
		provider: provider,
		timeout:  timeout,
	}
}

func (p *timeoutProvider) FetchAge(ctx context.Context, state PrivateState, userID uint32) (PrivateState, uint8, error) {
	return bounded(ctx, p.timeout, KindAge, userID, func(ctx context.Context) (PrivateState, uint8, error) {
		return p.provider.FetchAge(ctx, state, userID)
	})
}

func (p *timeoutProvider) FetchLocation(ctx context.Context, state PrivateState, userID uint32) (PrivateState, Location, error) {
	return bounded(ctx, p.timeout, KindLocation, userID, func(ctx context.Context) (PrivateState, Location, error) {
		return p.provider.FetchLocation(ctx, state, userID)
	})
}

func (p *timeoutProvider) FetchIncome(ctx context.Context, state PrivateState, userID uint32) (PrivateState, uint64, error) {
	return bounded(ctx, p.timeout, KindIncome, userID, func(ctx context.Context) (PrivateState, uint64, error) {
		return p.provider.FetchIncome(ctx, state, userID)
	})
}

func bounded[T any](ctx context.Context, timeout time.Duration, kind Kind, userID uint32, fetch func(context.Context) (PrivateState, T, error)) (PrivateState, T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		state PrivateState
		val   T
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		state, val, err := fetch(ctx)
		ch <- result{state: state, val: val, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			var zero T
			return nil, zero, unavailable(kind, userID, r.err)
		}
		return r.state, r.val, nil
	case <-ctx.Done():
		common.Log.Warningf("%s witness fetch for user %d did not complete within %s", kind, userID, timeout)
		var zero T
		return nil, zero, &UnavailableError{Kind: kind, UserID: userID, Err: ctx.Err()}
	}
}
