package core

import "math"

// MassEpsilon is the tolerance used when comparing rounded masses.
const MassEpsilon = 2.220446049250313e-16

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// MassMatches reports whether mass and target are equal once both are
// rounded to decimals places.
func MassMatches(mass, target float64, decimals int) bool {
	return math.Abs(RoundFloat(mass, decimals)-RoundFloat(target, decimals)) <= MassEpsilon
}
