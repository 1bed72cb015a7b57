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
	"encoding/binary"
	"fmt"

	"github.com/provideplatform/matchledger/codec"
)

const snapshotEncodingVersion = 1

// maxNodeDepth bounds decoder recursion; the ledger layout never nests deeper than 3
const maxNodeDepth = 16

// MarshalBinary encodes the snapshot as a version byte followed by the root node
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	buf := []byte{snapshotEncodingVersion}
	return appendNode(buf, s.store.Root())
}

// UnmarshalBinary decodes a snapshot and checks it satisfies every ledger invariant
func (s *Snapshot) UnmarshalBinary(raw []byte) error {
	if len(raw) < 1 {
		return &codec.Error{Type: "snapshot", Reason: "empty input"}
	}
	if raw[0] != snapshotEncodingVersion {
		return &codec.Error{Type: "snapshot", Reason: fmt.Sprintf("unsupported encoding version %d", raw[0])}
	}

	root, rest, err := readNode(raw[1:], 0)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return &codec.Error{Type: "snapshot", Reason: fmt.Sprintf("%d trailing bytes", len(rest))}
	}

	decoded, err := FromStore(NewStore(root))
	if err != nil {
		return err
	}
	if err := decoded.Validate(); err != nil {
		return err
	}

	s.store = decoded.store
	return nil
}

// EncodeNode returns the canonical encoding of a node and its subtree
func EncodeNode(n *Node) ([]byte, error) {
	return appendNode(nil, n)
}

func appendNode(buf []byte, n *Node) ([]byte, error) {
	buf = append(buf, byte(n.kind))

	switch n.kind {
	case KindNull:
		return buf, nil
	case KindCell:
		raw, err := n.cell.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return append(buf, raw...), nil
	case KindMap:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.entries.Len()))
	case KindArray:
		buf = append(buf, byte(len(n.items)))
	default:
		return nil, &codec.Error{Type: "node", Reason: fmt.Sprintf("unknown kind %d", n.kind)}
	}

	err := n.Walk(func(key codec.Value, child *Node) error {
		var err error
		if n.kind == KindMap {
			var raw []byte
			raw, err = key.MarshalBinary()
			if err != nil {
				return err
			}
			buf = append(buf, raw...)
		}
		buf, err = appendNode(buf, child)
		return err
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func readNode(raw []byte, depth int) (*Node, []byte, error) {
	if depth > maxNodeDepth {
		return nil, nil, &codec.Error{Type: "node", Reason: "maximum nesting depth exceeded"}
	}
	if len(raw) < 1 {
		return nil, nil, &codec.Error{Type: "node", Reason: "missing kind tag"}
	}
	kind := Kind(raw[0])
	raw = raw[1:]

	switch kind {
	case KindNull:
		return Null(), raw, nil
	case KindCell:
		val, rest, err := codec.ReadValue(raw)
		if err != nil {
			return nil, nil, err
		}
		return Cell(val), rest, nil
	case KindMap:
		if len(raw) < 8 {
			return nil, nil, &codec.Error{Type: "node", Reason: "truncated map length"}
		}
		count := binary.LittleEndian.Uint64(raw)
		raw = raw[8:]

		node := EmptyMap()
		var prev *codec.Value
		for i := uint64(0); i < count; i++ {
			key, rest, err := codec.ReadValue(raw)
			if err != nil {
				return nil, nil, err
			}
			if prev != nil && string(prev.Bytes) >= string(key.Bytes) {
				return nil, nil, &codec.Error{Type: "node", Reason: "map keys not in canonical order"}
			}
			child, rest, err := readNode(rest, depth+1)
			if err != nil {
				return nil, nil, err
			}
			if node, err = node.Insert(key, child); err != nil {
				return nil, nil, err
			}
			prev = &key
			raw = rest
		}
		return node, raw, nil
	case KindArray:
		if len(raw) < 1 {
			return nil, nil, &codec.Error{Type: "node", Reason: "truncated array length"}
		}
		count := int(raw[0])
		raw = raw[1:]

		items := make([]*Node, count)
		for i := 0; i < count; i++ {
			child, rest, err := readNode(raw, depth+1)
			if err != nil {
				return nil, nil, err
			}
			items[i] = child
			raw = rest
		}
		return Array(items...), raw, nil
	}

	return nil, nil, &codec.Error{Type: "node", Reason: fmt.Sprintf("unknown kind %d", kind)}
}
