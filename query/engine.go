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

package query

import (
	"fmt"
	"math"

	"github.com/provideplatform/matchledger/codec"
	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/ledger"
)

// Engine executes programs against a ledger store; each successful program replaces the
// engine's store and appends its instructions to the transcript
type Engine struct {
	store      ledger.Store
	transcript *Transcript
}

// NewEngine returns an engine over store which records into transcript
func NewEngine(store ledger.Store, transcript *Transcript) *Engine {
	return &Engine{
		store:      store,
		transcript: transcript,
	}
}

// Store returns the store produced by the last successful program
func (e *Engine) Store() ledger.Store {
	return e.store
}

// Transcript returns the public transcript recorded so far
func (e *Engine) Transcript() *Transcript {
	return e.transcript
}

// Run executes program and returns the values it recorded; on error neither the store nor
// the transcript are changed
func (e *Engine) Run(program Program) ([]codec.Value, error) {
	stack := []*ledger.Node{e.store.Root()}
	entries := make([]Entry, 0, len(program))
	reads := make([]codec.Value, 0)

	for pc, instruction := range program {
		entry := Entry{Instruction: instruction}

		var err error
		switch instruction.Op {
		case OpDup:
			err = dup(&stack, instruction.N)
		case OpIndex:
			err = index(&stack, instruction.Operand, instruction.PushPath)
		case OpPush:
			if instruction.Operand == nil {
				err = &ledger.PathError{Op: instruction.Op.String(), Reason: "missing literal"}
				break
			}
			stack = append(stack, ledger.Cell(*instruction.Operand))
		case OpMember:
			err = member(&stack)
		case OpInsert:
			err = insert(&stack, instruction.N)
		case OpPopAndRecord:
			var val codec.Value
			val, err = popCell(&stack, instruction.Op)
			if err == nil {
				entry.Read = &val
				if instruction.Cached {
					entry.DuplicateOf = e.transcript.findCached(entries, val)
				}
				reads = append(reads, val)
			}
		case OpAddImmediate:
			err = addImmediate(&stack, instruction.Immediate)
		default:
			err = &ledger.PathError{Op: instruction.Op.String(), Reason: "unknown instruction"}
		}

		if err != nil {
			return nil, fmt.Errorf("failed to execute instruction %d (%s); %w", pc, instruction, err)
		}
		entries = append(entries, entry)
	}

	if len(stack) != 1 || stack[0].Kind() != ledger.KindArray {
		return nil, &ledger.PathError{Op: "run", Reason: fmt.Sprintf("program must leave only the root array on the stack; found %d frames", len(stack))}
	}

	e.store = ledger.NewStore(stack[0])
	e.transcript.Entries = append(e.transcript.Entries, entries...)
	common.Log.Tracef("executed %d instruction(s); %d read(s) recorded", len(program), len(reads))
	return reads, nil
}

func peek(stack []*ledger.Node, n int, op Opcode) (*ledger.Node, error) {
	if n < 0 || n >= len(stack) {
		return nil, &ledger.PathError{Op: op.String(), Reason: "stack underflow"}
	}
	return stack[len(stack)-1-n], nil
}

func pop(stack *[]*ledger.Node, op Opcode) (*ledger.Node, error) {
	node, err := peek(*stack, 0, op)
	if err != nil {
		return nil, err
	}
	*stack = (*stack)[:len(*stack)-1]
	return node, nil
}

func popCell(stack *[]*ledger.Node, op Opcode) (codec.Value, error) {
	node, err := pop(stack, op)
	if err != nil {
		return codec.Value{}, err
	}
	return node.Value()
}

func dup(stack *[]*ledger.Node, n uint8) error {
	node, err := peek(*stack, int(n), OpDup)
	if err != nil {
		return err
	}
	*stack = append(*stack, node)
	return nil
}

func index(stack *[]*ledger.Node, key *codec.Value, pushPath bool) error {
	if key == nil {
		return &ledger.PathError{Op: OpIndex.String(), Reason: "missing key"}
	}

	container, err := peek(*stack, 0, OpIndex)
	if err != nil {
		return err
	}

	child := ledger.Null()
	found := false
	if container.Kind() != ledger.KindNull || !pushPath {
		child, found, err = container.Child(*key)
		if err != nil {
			return err
		}
	}

	if !found {
		if !pushPath {
			return &ledger.PathError{Op: OpIndex.String(), Key: key.String(), Reason: "key not found"}
		}
		child = ledger.Null()
	}

	if pushPath {
		*stack = append(*stack, ledger.Cell(*key), child)
	} else {
		(*stack)[len(*stack)-1] = child
	}
	return nil
}

func member(stack *[]*ledger.Node) error {
	key, err := popCell(stack, OpMember)
	if err != nil {
		return err
	}
	container, err := pop(stack, OpMember)
	if err != nil {
		return err
	}
	ok, err := container.Contains(key)
	if err != nil {
		return err
	}
	*stack = append(*stack, ledger.Cell(codec.MustEncode[bool](codec.Bool, ok)))
	return nil
}

func insert(stack *[]*ledger.Node, n uint8) error {
	val, err := pop(stack, OpInsert)
	if err != nil {
		return err
	}

	for i := uint8(0); i < n; i++ {
		key, err := popCell(stack, OpInsert)
		if err != nil {
			return err
		}
		container, err := pop(stack, OpInsert)
		if err != nil {
			return err
		}
		if val, err = container.Insert(key, val); err != nil {
			return err
		}
	}

	*stack = append(*stack, val)
	return nil
}

func addImmediate(stack *[]*ledger.Node, k uint64) error {
	val, err := popCell(stack, OpAddImmediate)
	if err != nil {
		return err
	}
	n, err := codec.Decode[uint64](codec.U64, val)
	if err != nil {
		return err
	}
	if n > math.MaxUint64-k {
		return &codec.Error{Type: "u64", Reason: fmt.Sprintf("%d + %d overflows", n, k)}
	}
	*stack = append(*stack, ledger.Cell(codec.MustEncode[uint64](codec.U64, n+k)))
	return nil
}
