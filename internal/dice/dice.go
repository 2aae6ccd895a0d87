// Package dice implements the d20 check resolver for encounter actions.
package dice

import "math/rand"

// Sides is the number of faces on the check die.
const Sides = 20

// CheckRequest describes a single d20 check.
type CheckRequest struct {
	// Modifier is the action modifier added to the rolled value.
	Modifier int
	// Difficulty is the total the check must meet or exceed to succeed.
	Difficulty int
	// Penalty is the stress-derived roll penalty (zero or negative under
	// strain, +1 when calm).
	Penalty int
	// Seed drives the random draw when resolving without an external RNG.
	Seed int64
}

// CheckResult captures the outcome of a resolved check.
type CheckResult struct {
	Rolled     int
	Total      int
	Success    bool
	IsCritical bool
	IsFumble   bool
}

// ResolveCheck resolves a check using a source seeded from the request.
//
// ResolveCheck is deterministic with respect to the Seed field: the same
// Seed always produces the same CheckResult for the same request.
func ResolveCheck(request CheckRequest) CheckResult {
	rng := rand.New(rand.NewSource(request.Seed))
	return ResolveCheckWithRng(rng, request)
}

// ResolveCheckWithRng resolves a check drawing from the provided source.
//
// A natural 20 is a critical and succeeds regardless of the total; a
// natural 1 is a fumble and fails regardless of the total. Callers branch
// on IsCritical and IsFumble before the ordinary success/failure paths.
func ResolveCheckWithRng(rng *rand.Rand, request CheckRequest) CheckResult {
	rolled := rng.Intn(Sides) + 1
	total := rolled + request.Modifier + request.Penalty

	result := CheckResult{
		Rolled:     rolled,
		Total:      total,
		Success:    total >= request.Difficulty,
		IsCritical: rolled == Sides,
		IsFumble:   rolled == 1,
	}
	if result.IsCritical {
		result.Success = true
	}
	if result.IsFumble {
		result.Success = false
	}
	return result
}
