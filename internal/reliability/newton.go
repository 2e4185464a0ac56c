package reliability

import "math"

const (
	maxIterations = 1000
	stepTolerance = 1e-6
	// residualTolerance rejects steps that stall away from a root.
	residualTolerance = 1e-4
	initialSeed       = 0.1
	maxAttempts       = 6
	// expm1 overflows past this point; 1/(e^x - 1) is 0 there.
	overflowExp = 700
)

// equation is an implicit equation M(b) = r together with dM/db.
type equation struct {
	m  func(b float64) float64
	dm func(b float64) float64
	r  float64
}

// newton runs Newton iterations from b0. It reports false when an iterate
// is not finite, the iteration budget runs out or the converged point does
// not satisfy the equation.
func newton(eq equation, b0 float64) (float64, bool) {
	b := b0
	for range maxIterations {
		step := (eq.m(b) - eq.r) / eq.dm(b)
		b -= step
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return 0, false
		}
		if math.Abs(step) < stepTolerance {
			return b, math.Abs(eq.m(b)-eq.r) < residualTolerance
		}
	}
	return 0, false
}

// solve retries newton with the seed raised to the tenth power after each
// failed attempt. It returns the root and the number of attempts made.
func solve(eq equation) (float64, int, error) {
	seed := initialSeed
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if b, ok := newton(eq, seed); ok {
			return b, attempt, nil
		}
		next := math.Pow(seed, 10)
		if next == 0 || next == seed {
			return 0, attempt, ErrNoConvergence
		}
		seed = next
	}
	return 0, maxAttempts, ErrNoConvergence
}

// invExpm1 is 1/(e^x - 1), taken as 0 once e^x overflows.
func invExpm1(x float64) float64 {
	if x > overflowExp {
		return 0
	}
	return 1 / math.Expm1(x)
}

// expRatio is e^x/(e^x - 1)^2 written so that it tends to 0 for large |x|.
func expRatio(x float64) float64 {
	return 1 / (math.Expm1(x) * -math.Expm1(-x))
}

// h is 1/u - 1/(e^u - 1), with its series near 0.
func h(u float64) float64 {
	if math.Abs(u) < 1e-4 {
		return 0.5 - u/12 + u*u*u/720
	}
	return 1/u - invExpm1(u)
}

// dh is the derivative of h.
func dh(u float64) float64 {
	if math.Abs(u) < 1e-4 {
		return -1.0/12 + u*u/240
	}
	return -1/(u*u) + expRatio(u)
}
