package constraint

import "math"

const (
	// DefaultFrequency is the target spring frequency (Hz) of stiff constraints
	DefaultFrequency = 74.6
	// DefaultDampingRatio is the target damping ratio of stiff constraints
	DefaultDampingRatio = 2.53
)

// TauAndDamping returns the soft factors that make iterations Gauss-Seidel
// passes of a stiff constraint behave like one implicit Euler step of a damped
// spring of the given frequency and damping ratio.
//
// A single pass removes damping*v of the velocity error and tau*C/dt of the
// position error. With a = 1-damping, n passes leave a^n of the velocity error,
// so the single-pass factor x is spread as a = (1-x)^(1/n).
func TauAndDamping(frequency, dampingRatio, dt float64, iterations int) (tau, damping float64) {
	if iterations < 1 {
		iterations = 1
	}

	omega := frequency * 2 * math.Pi
	hw := dt * omega
	hhww := hw * hw

	// aExp = (1-damping)^iterations
	aExp := 1 / (1 + hhww + 2*hw*dampingRatio)
	a := math.Pow(aExp, 1/float64(iterations))

	// aSum = sum(a^i) for i in [0, iterations)
	aSum := 1.0
	for range iterations - 1 {
		aSum = a*aSum + 1
	}

	damping = 1 - a
	tau = hhww * aExp / aSum
	return tau, damping
}
