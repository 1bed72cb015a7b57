package providers

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/zkp/lib/circuits/gnark"
)

// GnarkCircuitProvider interacts with the go-native gnark package
type GnarkCircuitProvider struct {
	curveID         ecc.ID
	provingSchemeID backend.ID
	circuitLibrary  map[string]func() frontend.Circuit
}

var _ ZKSnarkCircuitProvider = (*GnarkCircuitProvider)(nil)

// InitGnarkCircuitProvider initializes and configures a new GnarkCircuitProvider instance;
// only the groth16 proving scheme is supported
func InitGnarkCircuitProvider(curveID *string, provingScheme *string) (*GnarkCircuitProvider, error) {
	p := &GnarkCircuitProvider{
		curveID:         common.GnarkCurveIDFactory(curveID),
		provingSchemeID: common.GnarkProvingSchemeFactory(provingScheme),
		circuitLibrary: map[string]func() frontend.Circuit{
			GnarkCircuitIdentifierAgeRange:          func() frontend.Circuit { return &gnark.AgeRangeCircuit{} },
			GnarkCircuitIdentifierIncomeBracket:     func() frontend.Circuit { return &gnark.IncomeBracketCircuit{} },
			GnarkCircuitIdentifierLocationProximity: func() frontend.Circuit { return &gnark.ProximityCircuit{} },
		},
	}

	if p.curveID == ecc.UNKNOWN {
		return nil, fmt.Errorf("failed to initialize gnark circuit provider; unsupported curve")
	}
	if p.provingSchemeID != backend.GROTH16 {
		return nil, fmt.Errorf("failed to initialize gnark circuit provider; unsupported proving scheme")
	}
	return p, nil
}

// CurveID returns the curve the provider compiles circuits over
func (p *GnarkCircuitProvider) CurveID() ecc.ID {
	return p.curveID
}

func (p *GnarkCircuitProvider) field() *big.Int {
	return p.curveID.ScalarField()
}

// CircuitFactory returns a new, unassigned library circuit by name
func (p *GnarkCircuitProvider) CircuitFactory(identifier string) frontend.Circuit {
	factory, ok := p.circuitLibrary[strings.ToLower(identifier)]
	if ok {
		return factory()
	}
	return nil
}

// AddCircuit adds a gnark circuit to the library
func (p *GnarkCircuitProvider) AddCircuit(identifier string, factory func() frontend.Circuit) error {
	if factory == nil || factory() == nil {
		return fmt.Errorf("invalid gnark circuit factory for %s", identifier)
	}
	p.circuitLibrary[strings.ToLower(identifier)] = factory
	return nil
}

// Compile the named library circuit to r1cs
func (p *GnarkCircuitProvider) Compile(identifier string) (constraint.ConstraintSystem, error) {
	circuit := p.CircuitFactory(identifier)
	if circuit == nil {
		return nil, fmt.Errorf("failed to compile circuit; %s circuit not resolved", identifier)
	}

	cs, err := frontend.Compile(p.field(), r1cs.NewBuilder, circuit)
	if err != nil {
		common.Log.Warningf("failed to compile %s circuit to r1cs using gnark; %s", identifier, err.Error())
		return nil, err
	}

	common.Log.Debugf("compiled %s circuit; %d constraints", identifier, cs.GetNbConstraints())
	return cs, nil
}

// Setup runs the groth16 setup of the compiled circuit
func (p *GnarkCircuitProvider) Setup(cs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run groth16 setup; %w", err)
	}
	return pk, vk, nil
}

// Prove generates a proof for the fully assigned circuit
func (p *GnarkCircuitProvider) Prove(cs constraint.ConstraintSystem, pk groth16.ProvingKey, assignment frontend.Circuit) (groth16.Proof, error) {
	witness, err := frontend.NewWitness(assignment, p.field())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize witness; %w", err)
	}

	proof, err := groth16.Prove(cs, pk, witness)
	if err != nil {
		common.Log.Warningf("failed to generate groth16 proof; %s", err.Error())
		return nil, err
	}
	return proof, nil
}

// Verify the given proof against the public part of the assignment
func (p *GnarkCircuitProvider) Verify(proof groth16.Proof, vk groth16.VerifyingKey, publicAssignment frontend.Circuit) error {
	witness, err := frontend.NewWitness(publicAssignment, p.field(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to serialize public witness; %w", err)
	}
	return groth16.Verify(proof, vk, witness)
}

// ExportVerifier exports the solidity verifier contract for the given verifying key
func (p *GnarkCircuitProvider) ExportVerifier(vk groth16.VerifyingKey) ([]byte, error) {
	if p.curveID != ecc.BN254 {
		return nil, fmt.Errorf("export verifier not supported for curve %s", p.curveID.String())
	}

	buf := new(bytes.Buffer)
	err := vk.ExportSolidity(buf)
	if err != nil {
		common.Log.Warningf("failed to export verifier contract using gnark; %s", err.Error())
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal returns the binary encoding of a proof, key or constraint system
func Marshal(artifact io.WriterTo) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := artifact.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeProof decodes a groth16 proof
func (p *GnarkCircuitProvider) DecodeProof(raw []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(p.curveID)
	if _, err := proof.ReadFrom(bytes.NewReader(raw)); err != nil {
		common.Log.Warningf("unable to decode proof; %s", err.Error())
		return nil, err
	}
	return proof, nil
}

// DecodeVerifyingKey decodes a groth16 verifying key
func (p *GnarkCircuitProvider) DecodeVerifyingKey(raw []byte) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(p.curveID)
	n, err := vk.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unable to decode verifying key; %w", err)
	}
	common.Log.Debugf("read %d bytes during attempted verifying key deserialization", n)
	return vk, nil
}

// DecodeProvingKey decodes a groth16 proving key
func (p *GnarkCircuitProvider) DecodeProvingKey(raw []byte) (groth16.ProvingKey, error) {
	pk := groth16.NewProvingKey(p.curveID)
	n, err := pk.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unable to decode proving key; %w", err)
	}
	common.Log.Debugf("read %d bytes during attempted proving key deserialization", n)
	return pk, nil
}

// DecodeConstraintSystem decodes a compiled r1cs
func (p *GnarkCircuitProvider) DecodeConstraintSystem(raw []byte) (constraint.ConstraintSystem, error) {
	cs := groth16.NewCS(p.curveID)
	if _, err := cs.ReadFrom(bytes.NewReader(raw)); err != nil {
		common.Log.Warningf("unable to decode R1CS; %s", err.Error())
		return nil, err
	}
	return cs, nil
}
