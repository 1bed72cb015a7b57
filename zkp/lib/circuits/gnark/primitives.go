package gnark

import (
	"github.com/consensys/gnark/frontend"
)

// isLessOrEqual returns 1 if a <= b and 0 otherwise
func isLessOrEqual(api frontend.API, a, b frontend.Variable) frontend.Variable {
	greater := api.IsZero(api.Sub(api.Cmp(a, b), 1))
	return api.Sub(1, greater)
}

// isWithin returns 1 if lower <= v <= upper and 0 otherwise
func isWithin(api frontend.API, v, lower, upper frontend.Variable) frontend.Variable {
	return api.And(isLessOrEqual(api, lower, v), isLessOrEqual(api, v, upper))
}

// absDiff returns |a - b|
func absDiff(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.Select(isLessOrEqual(api, b, a), api.Sub(a, b), api.Sub(b, a))
}

// assertWidth constrains v to fit in the given number of bits
func assertWidth(api frontend.API, v frontend.Variable, bits int) {
	api.ToBinary(v, bits)
}

// assertOutcome constrains the disclosed outcome to match inRange; outcomes are encoded as
// the ledger result tag (0 in range, 1 out of range)
func assertOutcome(api frontend.API, outcome, inRange frontend.Variable) {
	api.AssertIsBoolean(outcome)
	api.AssertIsEqual(outcome, api.Sub(1, inRange))
}
