package gnark

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/assert"
)

const inRange = 0
const outOfRange = 1

func TestAgeRangeCircuit(t *testing.T) {
	field := ecc.BN254.ScalarField()

	assert.NoError(t, test.IsSolved(&AgeRangeCircuit{}, &AgeRangeCircuit{
		UserID: 1, MinAge: 18, MaxAge: 30, Outcome: inRange, Age: 30,
	}, field))
	assert.NoError(t, test.IsSolved(&AgeRangeCircuit{}, &AgeRangeCircuit{
		UserID: 1, MinAge: 18, MaxAge: 29, Outcome: outOfRange, Age: 30,
	}, field))
	assert.NoError(t, test.IsSolved(&AgeRangeCircuit{}, &AgeRangeCircuit{
		UserID: 1, MinAge: 31, MaxAge: 40, Outcome: outOfRange, Age: 30,
	}, field))

	assert.Error(t, test.IsSolved(&AgeRangeCircuit{}, &AgeRangeCircuit{
		UserID: 1, MinAge: 18, MaxAge: 29, Outcome: inRange, Age: 30,
	}, field), "a false disclosure must not be provable")
	assert.Error(t, test.IsSolved(&AgeRangeCircuit{}, &AgeRangeCircuit{
		UserID: 1, MinAge: 18, MaxAge: 255, Outcome: inRange, Age: 256,
	}, field), "age is bounded to a single byte")
}

func TestIncomeBracketCircuit(t *testing.T) {
	field := ecc.BN254.ScalarField()

	assert.NoError(t, test.IsSolved(&IncomeBracketCircuit{}, &IncomeBracketCircuit{
		UserID: 2, MinIncome: 50000, MaxIncome: 100000, Outcome: inRange, Income: 85000,
	}, field))
	assert.NoError(t, test.IsSolved(&IncomeBracketCircuit{}, &IncomeBracketCircuit{
		UserID: 2, MinIncome: 90000, MaxIncome: 100000, Outcome: outOfRange, Income: 85000,
	}, field))
	assert.Error(t, test.IsSolved(&IncomeBracketCircuit{}, &IncomeBracketCircuit{
		UserID: 2, MinIncome: 90000, MaxIncome: 100000, Outcome: inRange, Income: 85000,
	}, field))
}

func TestProximityCircuit(t *testing.T) {
	field := ecc.BN254.ScalarField()

	assert.NoError(t, test.IsSolved(&ProximityCircuit{}, &ProximityCircuit{
		UserID: 3, TargetLat: 12, TargetLng: 12, MaxDistance: 4, Outcome: inRange, Lat: 10, Lng: 10,
	}, field))
	assert.NoError(t, test.IsSolved(&ProximityCircuit{}, &ProximityCircuit{
		UserID: 3, TargetLat: 12, TargetLng: 12, MaxDistance: 3, Outcome: outOfRange, Lat: 10, Lng: 10,
	}, field))
	assert.NoError(t, test.IsSolved(&ProximityCircuit{}, &ProximityCircuit{
		UserID: 3, TargetLat: 8, TargetLng: 13, MaxDistance: 5, Outcome: inRange, Lat: 10, Lng: 10,
	}, field))
	assert.Error(t, test.IsSolved(&ProximityCircuit{}, &ProximityCircuit{
		UserID: 3, TargetLat: 12, TargetLng: 12, MaxDistance: 3, Outcome: inRange, Lat: 10, Lng: 10,
	}, field))
}
