package service

import "fmt"

// Numeric bounds for logged sets. Inputs outside these ranges are rejected
// before they reach the progression engine, which does no validation of its
// own.
const (
	MaxWeightKg = 1000.0
	MaxReps     = 100
	MaxDuration = 24 * 60 * 60
)

// ValidateWeight checks a weight input in kilograms. Zero is allowed
// (bodyweight movements).
func ValidateWeight(weight float64) error {
	if weight < 0 {
		return fmt.Errorf("weight cannot be negative")
	}
	if weight > MaxWeightKg {
		return fmt.Errorf("weight %.1f exceeds %v kg", weight, MaxWeightKg)
	}
	return nil
}

// ValidateReps checks a rep-count input.
func ValidateReps(reps int) error {
	if reps < 1 {
		return fmt.Errorf("reps must be at least 1")
	}
	if reps > MaxReps {
		return fmt.Errorf("reps %d exceeds %d", reps, MaxReps)
	}
	return nil
}

// ValidateDuration checks a duration input in seconds.
func ValidateDuration(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if seconds > MaxDuration {
		return fmt.Errorf("duration %d exceeds %d seconds", seconds, MaxDuration)
	}
	return nil
}
