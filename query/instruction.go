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

// Package query implements the stack-based instruction set which reads and mutates a
// ledger store, recording every executed instruction in a public transcript.
package query

import (
	"encoding/binary"
	"fmt"

	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/ledger"
)

// Opcode identifies an instruction
type Opcode uint8

const (
	OpDup Opcode = iota
	OpIndex
	OpPush
	OpMember
	OpInsert
	OpPopAndRecord
	OpAddImmediate
)

var opcodeNames = [...]string{
	"dup",
	"index",
	"push_literal",
	"member",
	"insert",
	"pop_and_record",
	"add_immediate",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// MarshalText encodes the opcode by name
func (o Opcode) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Instruction is a single engine instruction; only the operands relevant to Op are set
type Instruction struct {
	Op        Opcode       `json:"op"`
	N         uint8        `json:"n,omitempty"`
	Operand   *codec.Value `json:"operand,omitempty"`
	PushPath  bool         `json:"push_path,omitempty"`
	Cached    bool         `json:"cached,omitempty"`
	Immediate uint64       `json:"immediate,omitempty"`
}

// Dup duplicates the frame n positions below the top of the stack
func Dup(n uint8) Instruction {
	return Instruction{Op: OpDup, N: n}
}

// Index descends into the top of the stack at key; with pushPath the container and key
// stay on the stack beneath the child so a later Insert can write back along the path,
// and a missing key yields a null placeholder instead of an error
func Index(key codec.Value, pushPath bool) Instruction {
	return Instruction{Op: OpIndex, Operand: &key, PushPath: pushPath}
}

// Push pushes a literal cell
func Push(val codec.Value) Instruction {
	return Instruction{Op: OpPush, Operand: &val}
}

// Member pops a key and a map and pushes whether the key is bound
func Member() Instruction {
	return Instruction{Op: OpMember}
}

// Insert pops a value and then n key/container pairs, binding each key in turn, and pushes
// the rebuilt outermost container
func Insert(n uint8) Instruction {
	return Instruction{Op: OpInsert, N: n}
}

// PopAndRecord pops the top cell and records it as a read
func PopAndRecord(cached bool) Instruction {
	return Instruction{Op: OpPopAndRecord, Cached: cached}
}

// AddImmediate adds k to the u64 counter cell on top of the stack
func AddImmediate(k uint64) Instruction {
	return Instruction{Op: OpAddImmediate, Immediate: k}
}

func (i Instruction) String() string {
	switch i.Op {
	case OpDup, OpInsert:
		return fmt.Sprintf("%s(%d)", i.Op, i.N)
	case OpIndex:
		return fmt.Sprintf("%s(%s, %t)", i.Op, i.Operand, i.PushPath)
	case OpPush:
		return fmt.Sprintf("%s(%s)", i.Op, i.Operand)
	case OpPopAndRecord:
		return fmt.Sprintf("%s(%t)", i.Op, i.Cached)
	case OpAddImmediate:
		return fmt.Sprintf("%s(%d)", i.Op, i.Immediate)
	}
	return i.Op.String()
}

// MarshalBinary returns the canonical encoding of the instruction
func (i Instruction) MarshalBinary() ([]byte, error) {
	buf := []byte{byte(i.Op)}

	switch i.Op {
	case OpDup, OpInsert:
		buf = append(buf, i.N)
	case OpIndex, OpPush:
		if i.Operand == nil {
			return nil, &codec.Error{Type: "instruction", Reason: fmt.Sprintf("%s requires an operand", i.Op)}
		}
		if i.Op == OpIndex {
			buf = append(buf, boolByte(i.PushPath))
		}
		raw, err := i.Operand.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = append(buf, raw...)
	case OpPopAndRecord:
		buf = append(buf, boolByte(i.Cached))
	case OpAddImmediate:
		buf = binary.LittleEndian.AppendUint64(buf, i.Immediate)
	case OpMember:
	default:
		return nil, &codec.Error{Type: "instruction", Reason: fmt.Sprintf("unknown opcode %d", i.Op)}
	}

	return buf, nil
}

// Program is an ordered list of instructions executed atomically
type Program []Instruction

// QueryCell reads the cell at path and records it, leaving the stack unchanged
func QueryCell(path ledger.Path, cached bool) Program {
	p := Program{Dup(0)}
	for _, key := range path {
		p = append(p, Index(key, false))
	}
	return append(p, PopAndRecord(cached))
}

// QueryMember records whether key is bound in the map at mapPath
func QueryMember(mapPath ledger.Path, key codec.Value) Program {
	p := Program{Dup(0)}
	for _, k := range mapPath {
		p = append(p, Index(k, false))
	}
	return append(p, Push(key), Member(), PopAndRecord(false))
}

// WriteCell binds the cell at path to val, creating missing map entries along the way
func WriteCell(path ledger.Path, val codec.Value) Program {
	if len(path) == 0 || len(path) > 0xff {
		panic(fmt.Sprintf("invalid write path length %d", len(path)))
	}
	p := Program{}
	for _, key := range path[:len(path)-1] {
		p = append(p, Index(key, true))
	}
	return append(p, Push(path[len(path)-1]), Push(val), Insert(uint8(len(path))))
}

// IncrementCell adds k to the counter cell at path
func IncrementCell(path ledger.Path, k uint64) Program {
	if len(path) == 0 || len(path) > 0xff {
		panic(fmt.Sprintf("invalid increment path length %d", len(path)))
	}
	p := Program{}
	for _, key := range path {
		p = append(p, Index(key, true))
	}
	return append(p, AddImmediate(k), Insert(uint8(len(path))))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
