package checkout

import "math"

// ToMinorUnits converts a major-unit amount to minor currency units.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts minor currency units back to a major-unit amount.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// Round2 rounds a major-unit amount to the cent.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
