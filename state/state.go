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

package state

// State is the committed ledger state which can only be changed as a result of a
// successfully completed circuit operation
type State struct {
	Curve       string        `json:"curve"`
	Nonce       uint64        `json:"nonce"`
	TotalUsers  uint64        `json:"total_users"`
	Root        *string       `json:"root"`
	StateClaims []*StateClaim `json:"state_claims"`
}

// StateClaim is the commitment to a single ledger slot
type StateClaim struct {
	Cardinality uint64   `json:"cardinality"`
	Path        []string `json:"path"`
	Root        *string  `json:"root"`
	Values      []string `json:"values"` // hex encoded cell values; empty for map slots
}

// Claim returns the claim for the slot with the given name, or nil
func (s *State) Claim(slot string) *StateClaim {
	for _, claim := range s.StateClaims {
		if len(claim.Path) > 0 && claim.Path[0] == slot {
			return claim
		}
	}
	return nil
}
