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

package ledger

import (
	"fmt"

	"github.com/provideplatform/matchledger/codec"
)

// Snapshot is the typed view of a complete ledger state; it is never mutated in place
type Snapshot struct {
	store Store
}

// NewSnapshot returns the initial ledger state: zero counters and empty maps
func NewSnapshot() *Snapshot {
	items := make([]*Node, slotCount)
	for i := 0; i < slotCount; i++ {
		if slotKind(Slot(i)) == KindCell {
			items[i] = Cell(CounterValue(0))
		} else {
			items[i] = EmptyMap()
		}
	}
	return &Snapshot{store: NewStore(Array(items...))}
}

// FromStore wraps store as a snapshot after checking the root holds the seven slots
func FromStore(store Store) (*Snapshot, error) {
	root := store.Root()
	if root == nil || root.Kind() != KindArray {
		return nil, &PathError{Op: "snapshot", Reason: "root must be an array"}
	}
	if size, _ := root.Size(); int(size) != slotCount {
		return nil, &PathError{Op: "snapshot", Reason: fmt.Sprintf("root must hold %d slots, found %d", slotCount, size)}
	}
	for i := 0; i < slotCount; i++ {
		slot := Slot(i)
		node, _, err := root.Child(slot.Key())
		if err != nil {
			return nil, err
		}
		if node.Kind() != slotKind(slot) {
			return nil, &PathError{Op: "snapshot", Key: slot.String(), Reason: fmt.Sprintf("expected %s, found %s", slotKind(slot), node.Kind())}
		}
	}
	return &Snapshot{store: store}, nil
}

// Store returns the underlying ledger store
func (s *Snapshot) Store() Store {
	return s.store
}

// TotalUsers returns the count of registered identities
func (s *Snapshot) TotalUsers() (uint64, error) {
	return s.counter(SlotTotalUsers)
}

// Nonce returns the count of committed state transitions
func (s *Snapshot) Nonce() (uint64, error) {
	return s.counter(SlotNonce)
}

// UserStatus returns the status of the given user; ok is false if the user is not registered
func (s *Snapshot) UserStatus(id uint32) (status Status, ok bool, err error) {
	val, ok, err := s.lookup(SlotUserStatuses, UserKey(id))
	if err != nil || !ok {
		return 0, ok, err
	}
	tag, err := codec.Decode[uint8](StatusCodec, val)
	if err != nil {
		return 0, false, err
	}
	return Status(tag), true, nil
}

// Verification returns the last outcome recorded in a verification slot for the given user
func (s *Snapshot) Verification(slot Slot, id uint32) (result VerificationResult, ok bool, err error) {
	if !slot.IsVerificationSlot() {
		return 0, false, &PathError{Op: "verification", Key: slot.String(), Reason: "not a verification slot"}
	}
	val, ok, err := s.lookup(slot, UserKey(id))
	if err != nil || !ok {
		return 0, ok, err
	}
	tag, err := codec.Decode[uint8](ResultCodec, val)
	if err != nil {
		return 0, false, err
	}
	return VerificationResult(tag), true, nil
}

// Matched returns true if the ordered pair (a, b) is a verified match
func (s *Snapshot) Matched(a, b uint32) (bool, error) {
	val, ok, err := s.lookup(SlotVerifiedMatches, MatchKey(a, b))
	if err != nil || !ok {
		return false, err
	}
	return codec.Decode[bool](MatchValueCodec, val)
}

// Equal returns true if both snapshots encode to identical bytes
func (s *Snapshot) Equal(other *Snapshot) bool {
	a, errA := s.MarshalBinary()
	b, errB := other.MarshalBinary()
	return errA == nil && errB == nil && string(a) == string(b)
}

// Validate checks the data-model invariants over the whole snapshot
func (s *Snapshot) Validate() error {
	if _, err := FromStore(s.store); err != nil {
		return err
	}

	total, err := s.TotalUsers()
	if err != nil {
		return err
	}
	if _, err := s.Nonce(); err != nil {
		return err
	}

	statuses := s.slot(SlotUserStatuses)
	users, _ := statuses.Size()
	if total != users {
		return fmt.Errorf("invalid snapshot; total_users %d does not match %d registered users", total, users)
	}

	err = statuses.Walk(func(key codec.Value, child *Node) error {
		if _, err := codec.Decode[uint64](UserIDCodec, key); err != nil {
			return err
		}
		val, err := child.Value()
		if err != nil {
			return err
		}
		_, err = codec.Decode[uint8](StatusCodec, val)
		return err
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot; %s; %w", SlotUserStatuses, err)
	}

	for _, slot := range []Slot{SlotAgeVerifications, SlotLocationVerifications, SlotIncomeVerifications} {
		err := s.slot(slot).Walk(func(key codec.Value, child *Node) error {
			registered, err := statuses.Contains(key)
			if err != nil {
				return err
			}
			if !registered {
				return fmt.Errorf("verification recorded for unregistered user %s", key)
			}
			val, err := child.Value()
			if err != nil {
				return err
			}
			_, err = codec.Decode[uint8](ResultCodec, val)
			return err
		})
		if err != nil {
			return fmt.Errorf("invalid snapshot; %s; %w", slot, err)
		}
	}

	matches := s.slot(SlotVerifiedMatches)
	err = matches.Walk(func(key codec.Value, child *Node) error {
		pair, err := codec.Decode[codec.Pair[uint64, uint64]](MatchKeyCodec, key)
		if err != nil {
			return err
		}
		val, err := child.Value()
		if err != nil {
			return err
		}
		matched, err := codec.Decode[bool](MatchValueCodec, val)
		if err != nil {
			return err
		}
		if !matched {
			return fmt.Errorf("false match entry stored for (%d,%d)", pair.First, pair.Second)
		}
		reverse, err := matches.Contains(MatchKey(uint32(pair.Second), uint32(pair.First)))
		if err != nil {
			return err
		}
		if !reverse {
			return fmt.Errorf("match (%d,%d) has no symmetric entry", pair.First, pair.Second)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot; %s; %w", SlotVerifiedMatches, err)
	}

	return nil
}

func (s *Snapshot) slot(slot Slot) *Node {
	node, _, _ := s.store.Root().Child(slot.Key())
	return node
}

func (s *Snapshot) counter(slot Slot) (uint64, error) {
	val, err := s.store.Get(Path{slot.Key()})
	if err != nil {
		return 0, err
	}
	return codec.Decode[uint64](CounterCodec, val)
}

func (s *Snapshot) lookup(slot Slot, key codec.Value) (codec.Value, bool, error) {
	node, found, err := s.slot(slot).Child(key)
	if err != nil || !found {
		return codec.Value{}, false, err
	}
	val, err := node.Value()
	if err != nil {
		return codec.Value{}, false, err
	}
	return val, true, nil
}
