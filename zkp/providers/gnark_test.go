package providers

import (
	"testing"

	"github.com/provideplatform/matchledger/common"
	"github.com/provideplatform/matchledger/zkp/lib/circuits/gnark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gnarkProvider(t *testing.T) *GnarkCircuitProvider {
	t.Helper()
	p, err := InitGnarkCircuitProvider(common.StringOrNil("bn254"), common.StringOrNil("groth16"))
	require.NoError(t, err)
	return p
}

func TestInitGnarkCircuitProviderRejectsUnsupported(t *testing.T) {
	_, err := InitGnarkCircuitProvider(common.StringOrNil("secp256k1"), common.StringOrNil("groth16"))
	require.Error(t, err)

	_, err = InitGnarkCircuitProvider(common.StringOrNil("bn254"), common.StringOrNil("plonk"))
	require.Error(t, err)
}

func TestCircuitFactory(t *testing.T) {
	p := gnarkProvider(t)
	assert.IsType(t, &gnark.AgeRangeCircuit{}, p.CircuitFactory("AGE_RANGE"))
	assert.IsType(t, &gnark.ProximityCircuit{}, p.CircuitFactory(GnarkCircuitIdentifierLocationProximity))
	assert.Nil(t, p.CircuitFactory("cubic"))

	_, err := p.Compile("cubic")
	require.Error(t, err)
	require.Error(t, p.AddCircuit("cubic", nil))
}

func TestGroth16RoundTrip(t *testing.T) {
	p := gnarkProvider(t)

	cs, err := p.Compile(GnarkCircuitIdentifierAgeRange)
	require.NoError(t, err)
	pk, vk, err := p.Setup(cs)
	require.NoError(t, err)

	assignment := &gnark.AgeRangeCircuit{UserID: 1, MinAge: 18, MaxAge: 30, Outcome: 0, Age: 30}
	proof, err := p.Prove(cs, pk, assignment)
	require.NoError(t, err)

	public := &gnark.AgeRangeCircuit{UserID: 1, MinAge: 18, MaxAge: 30, Outcome: 0}
	require.NoError(t, p.Verify(proof, vk, public))

	forged := &gnark.AgeRangeCircuit{UserID: 1, MinAge: 18, MaxAge: 30, Outcome: 1}
	require.Error(t, p.Verify(proof, vk, forged))

	_, err = p.Prove(cs, pk, &gnark.AgeRangeCircuit{UserID: 1, MinAge: 18, MaxAge: 29, Outcome: 0, Age: 30})
	require.Error(t, err, "a false disclosure has no valid witness")

	rawProof, err := Marshal(proof)
	require.NoError(t, err)
	rawVK, err := Marshal(vk)
	require.NoError(t, err)

	decodedProof, err := p.DecodeProof(rawProof)
	require.NoError(t, err)
	decodedVK, err := p.DecodeVerifyingKey(rawVK)
	require.NoError(t, err)
	require.NoError(t, p.Verify(decodedProof, decodedVK, public))

	contract, err := p.ExportVerifier(vk)
	require.NoError(t, err)
	assert.Contains(t, string(contract), "pragma solidity")
}
