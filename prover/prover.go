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

package prover

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	uuid "github.com/kthomas/go.uuid"
	"github.com/provideplatform/matchledger/circuit"
	"github.com/provideplatform/matchledger/common"
	zkp "github.com/provideplatform/matchledger/zkp/providers"
)

const proverProvingSchemeGroth16 = "groth16"

const proverStatusInit = "init"
const proverStatusFailed = "failed"
const proverStatusCompiled = "compiled"
const proverStatusProvisioned = "provisioned"

// Prover holds the compiled constraint system and groth16 keys of a single verification
// circuit; setup runs once, on first use
type Prover struct {
	ID         uuid.UUID `json:"id"`
	Identifier string    `json:"identifier"`
	Status     string    `json:"status"`

	provider *zkp.GnarkCircuitProvider
	cs       constraint.ConstraintSystem
	pk       groth16.ProvingKey
	vk       groth16.VerifyingKey
	mutex    sync.Mutex
}

// Proof is a groth16 proof of the disclosed outcome of a verification operation
type Proof struct {
	Identifier     string           `json:"identifier"`
	Operation      string           `json:"operation"`
	TranscriptID   uuid.UUID        `json:"transcript_id"`
	TranscriptRoot *string          `json:"transcript_root"`
	Public         frontend.Circuit `json:"public"`
	Proof          []byte           `json:"proof"`
}

// Artifacts are the encoded constraint system and groth16 keys of a provisioned prover
type Artifacts struct {
	ConstraintSystem []byte `json:"constraint_system"`
	ProvingKey       []byte `json:"proving_key"`
	VerifyingKey     []byte `json:"verifying_key"`
}

func newProver(provider *zkp.GnarkCircuitProvider, identifier string) *Prover {
	return &Prover{
		ID:         uuid.NewV5(uuid.NamespaceOID, fmt.Sprintf("%s.%s", provider.CurveID().String(), identifier)),
		Identifier: identifier,
		Status:     proverStatusInit,
		provider:   provider,
	}
}

// setup compiles the circuit and runs the groth16 setup if that has not happened yet
func (p *Prover) setup() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.Status == proverStatusProvisioned {
		return nil
	}

	cs, err := p.provider.Compile(p.Identifier)
	if err != nil {
		p.Status = proverStatusFailed
		return fmt.Errorf("failed to compile %s prover; %w", p.Identifier, err)
	}
	p.cs = cs
	p.Status = proverStatusCompiled

	pk, vk, err := p.provider.Setup(cs)
	if err != nil {
		p.Status = proverStatusFailed
		return fmt.Errorf("failed to setup %s prover; %w", p.Identifier, err)
	}
	p.pk = pk
	p.vk = vk
	p.Status = proverStatusProvisioned

	common.Log.Debugf("provisioned %s prover %s", p.Identifier, p.ID)
	return nil
}

// Prove generates a proof for the full assignment
func (p *Prover) Prove(assignment frontend.Circuit) ([]byte, error) {
	if err := p.setup(); err != nil {
		return nil, err
	}
	proof, err := p.provider.Prove(p.cs, p.pk, assignment)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s proof; %w", p.Identifier, err)
	}
	return zkp.Marshal(proof)
}

// Verify checks the encoded proof against the public assignment
func (p *Prover) Verify(raw []byte, public frontend.Circuit) error {
	if err := p.setup(); err != nil {
		return err
	}
	proof, err := p.provider.DecodeProof(raw)
	if err != nil {
		return err
	}
	return p.provider.Verify(proof, p.vk, public)
}

// VerifyingKey returns the encoded verifying key
func (p *Prover) VerifyingKey() ([]byte, error) {
	if err := p.setup(); err != nil {
		return nil, err
	}
	return zkp.Marshal(p.vk)
}

// Export returns the encoded artifacts of the prover, running setup first if needed
func (p *Prover) Export() (*Artifacts, error) {
	if err := p.setup(); err != nil {
		return nil, err
	}

	cs, err := zkp.Marshal(p.cs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s constraint system; %w", p.Identifier, err)
	}
	pk, err := zkp.Marshal(p.pk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s proving key; %w", p.Identifier, err)
	}
	vk, err := zkp.Marshal(p.vk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s verifying key; %w", p.Identifier, err)
	}

	return &Artifacts{
		ConstraintSystem: cs,
		ProvingKey:       pk,
		VerifyingKey:     vk,
	}, nil
}

// restore provisions the prover from artifacts, skipping compilation and setup; the prover
// is left untouched if any artifact fails to decode
func (p *Prover) restore(artifacts *Artifacts) error {
	if artifacts == nil {
		return fmt.Errorf("failed to restore %s prover; nil artifacts", p.Identifier)
	}

	cs, err := p.provider.DecodeConstraintSystem(artifacts.ConstraintSystem)
	if err != nil {
		return fmt.Errorf("failed to restore %s constraint system; %w", p.Identifier, err)
	}
	pk, err := p.provider.DecodeProvingKey(artifacts.ProvingKey)
	if err != nil {
		return fmt.Errorf("failed to restore %s proving key; %w", p.Identifier, err)
	}
	vk, err := p.provider.DecodeVerifyingKey(artifacts.VerifyingKey)
	if err != nil {
		return fmt.Errorf("failed to restore %s verifying key; %w", p.Identifier, err)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.cs = cs
	p.pk = pk
	p.vk = vk
	p.Status = proverStatusProvisioned

	common.Log.Debugf("restored %s prover %s", p.Identifier, p.ID)
	return nil
}

// Registry provisions one prover per verification circuit
type Registry struct {
	curve    string
	provider *zkp.GnarkCircuitProvider
	provers  map[string]*Prover
	mutex    sync.Mutex
}

// NewRegistry returns a registry of groth16 provers over curve
func NewRegistry(curve string) (*Registry, error) {
	provider, err := zkp.InitGnarkCircuitProvider(common.StringOrNil(curve), common.StringOrNil(proverProvingSchemeGroth16))
	if err != nil {
		return nil, err
	}
	return &Registry{
		curve:    curve,
		provider: provider,
		provers:  map[string]*Prover{},
	}, nil
}

// Prover returns the prover for the named circuit
func (r *Registry) Prover(identifier string) (*Prover, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if prover, ok := r.provers[identifier]; ok {
		return prover, nil
	}
	if r.provider.CircuitFactory(identifier) == nil {
		return nil, fmt.Errorf("failed to resolve prover; unknown circuit: %s", identifier)
	}
	prover := newProver(r.provider, identifier)
	r.provers[identifier] = prover
	return prover, nil
}

// Restore provisions the prover for the named circuit from previously exported artifacts
func (r *Registry) Restore(identifier string, artifacts *Artifacts) (*Prover, error) {
	prover, err := r.Prover(identifier)
	if err != nil {
		return nil, err
	}
	if err := prover.restore(artifacts); err != nil {
		return nil, err
	}
	return prover, nil
}

// ProveResult proves the outcome a verification operation disclosed, using its private
// transcript as witness
func (r *Registry) ProveResult(result *circuit.Result) (*Proof, error) {
	identifier, full, public, err := assignments(result)
	if err != nil {
		return nil, err
	}
	prover, err := r.Prover(identifier)
	if err != nil {
		return nil, err
	}

	raw, err := prover.Prove(full)
	if err != nil {
		return nil, err
	}
	root, err := result.Transcript.Root(r.curve)
	if err != nil {
		return nil, err
	}

	common.Log.Debugf("generated %s proof for transcript %s", identifier, result.Transcript.ID)
	return &Proof{
		Identifier:     identifier,
		Operation:      result.Operation,
		TranscriptID:   result.Transcript.ID,
		TranscriptRoot: root,
		Public:         public,
		Proof:          raw,
	}, nil
}

// Verify checks proof against its public assignment
func (r *Registry) Verify(proof *Proof) error {
	if proof == nil || proof.Public == nil {
		return fmt.Errorf("failed to verify proof; no public assignment")
	}
	prover, err := r.Prover(proof.Identifier)
	if err != nil {
		return err
	}
	return prover.Verify(proof.Proof, proof.Public)
}
