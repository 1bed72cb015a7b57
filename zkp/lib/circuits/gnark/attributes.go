package gnark

import (
	"github.com/consensys/gnark/frontend"
)

// AgeRangeCircuit proves the disclosed outcome of an age range verification without
// revealing the age
type AgeRangeCircuit struct {
	UserID  frontend.Variable `gnark:",public"`
	MinAge  frontend.Variable `gnark:",public"`
	MaxAge  frontend.Variable `gnark:",public"`
	Outcome frontend.Variable `gnark:",public"`

	Age frontend.Variable
}

// Define declares the circuit constraints
func (circuit *AgeRangeCircuit) Define(api frontend.API) error {
	assertWidth(api, circuit.UserID, 32)
	assertWidth(api, circuit.MinAge, 8)
	assertWidth(api, circuit.MaxAge, 8)
	assertWidth(api, circuit.Age, 8)

	assertOutcome(api, circuit.Outcome, isWithin(api, circuit.Age, circuit.MinAge, circuit.MaxAge))
	return nil
}

// IncomeBracketCircuit proves the disclosed outcome of an income bracket verification
// without revealing the income
type IncomeBracketCircuit struct {
	UserID    frontend.Variable `gnark:",public"`
	MinIncome frontend.Variable `gnark:",public"`
	MaxIncome frontend.Variable `gnark:",public"`
	Outcome   frontend.Variable `gnark:",public"`

	Income frontend.Variable
}

// Define declares the circuit constraints
func (circuit *IncomeBracketCircuit) Define(api frontend.API) error {
	assertWidth(api, circuit.UserID, 32)
	assertWidth(api, circuit.MinIncome, 64)
	assertWidth(api, circuit.MaxIncome, 64)
	assertWidth(api, circuit.Income, 64)

	assertOutcome(api, circuit.Outcome, isWithin(api, circuit.Income, circuit.MinIncome, circuit.MaxIncome))
	return nil
}

// ProximityCircuit proves the disclosed outcome of a location proximity verification
// without revealing the location; distance is manhattan
type ProximityCircuit struct {
	UserID      frontend.Variable `gnark:",public"`
	TargetLat   frontend.Variable `gnark:",public"`
	TargetLng   frontend.Variable `gnark:",public"`
	MaxDistance frontend.Variable `gnark:",public"`
	Outcome     frontend.Variable `gnark:",public"`

	Lat frontend.Variable
	Lng frontend.Variable
}

// Define declares the circuit constraints
func (circuit *ProximityCircuit) Define(api frontend.API) error {
	assertWidth(api, circuit.UserID, 32)
	assertWidth(api, circuit.TargetLat, 32)
	assertWidth(api, circuit.TargetLng, 32)
	assertWidth(api, circuit.MaxDistance, 64)
	assertWidth(api, circuit.Lat, 32)
	assertWidth(api, circuit.Lng, 32)

	distance := api.Add(absDiff(api, circuit.Lat, circuit.TargetLat), absDiff(api, circuit.Lng, circuit.TargetLng))
	assertOutcome(api, circuit.Outcome, isLessOrEqual(api, distance, circuit.MaxDistance))
	return nil
}
