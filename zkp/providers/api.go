package providers

import (
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
)

// GnarkCircuitIdentifierAgeRange gnark age range circuit
const GnarkCircuitIdentifierAgeRange = "age_range"

// GnarkCircuitIdentifierIncomeBracket gnark income bracket circuit
const GnarkCircuitIdentifierIncomeBracket = "income_bracket"

// GnarkCircuitIdentifierLocationProximity gnark location proximity circuit
const GnarkCircuitIdentifierLocationProximity = "location_proximity"

// ZKSnarkCircuitProviderGnark gnark zksnark circuit provider
const ZKSnarkCircuitProviderGnark = "gnark"

// ZKSnarkCircuitProvider provides a common interface to interact with zksnark circuits
type ZKSnarkCircuitProvider interface {
	CircuitFactory(identifier string) frontend.Circuit
	Compile(identifier string) (constraint.ConstraintSystem, error)
	Setup(cs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error)
	Prove(cs constraint.ConstraintSystem, pk groth16.ProvingKey, assignment frontend.Circuit) (groth16.Proof, error)
	Verify(proof groth16.Proof, vk groth16.VerifyingKey, publicAssignment frontend.Circuit) error
}
