package constraint

import (
	"math"
	"testing"
)

func TestTauAndDamping_Range(t *testing.T) {
	for _, iterations := range []int{1, 2, 4, 8, 16} {
		tau, damping := TauAndDamping(DefaultFrequency, DefaultDampingRatio, 1.0/60.0, iterations)
		if tau <= 0 || tau >= 1 {
			t.Errorf("iterations=%d: tau = %v, want in (0, 1)", iterations, tau)
		}
		if damping <= 0 || damping >= 1 {
			t.Errorf("iterations=%d: damping = %v, want in (0, 1)", iterations, damping)
		}
	}
}

func TestTauAndDamping_IndependentOfIterations(t *testing.T) {
	dt := 1.0 / 60.0
	_, single := TauAndDamping(DefaultFrequency, DefaultDampingRatio, dt, 1)

	// n passes must remove the same share of the velocity error as one pass
	for _, iterations := range []int{2, 3, 4, 10} {
		_, damping := TauAndDamping(DefaultFrequency, DefaultDampingRatio, dt, iterations)
		remaining := math.Pow(1-damping, float64(iterations))
		if !almostEqual(remaining, 1-single, 1e-12) {
			t.Errorf("iterations=%d: (1-d)^n = %v, want %v", iterations, remaining, 1-single)
		}
	}
}

func TestTauAndDamping_PositionCorrection(t *testing.T) {
	dt := 1.0 / 60.0
	tau1, _ := TauAndDamping(DefaultFrequency, DefaultDampingRatio, dt, 1)

	// With a = 1-d, n passes remove sum(a^i) * tau of the error: the same as one pass
	for _, iterations := range []int{2, 4, 8} {
		tau, damping := TauAndDamping(DefaultFrequency, DefaultDampingRatio, dt, iterations)
		a := 1 - damping
		sum := 0.0
		for i := range iterations {
			sum += math.Pow(a, float64(i))
		}
		if !almostEqual(sum*tau, tau1, 1e-12) {
			t.Errorf("iterations=%d: total correction %v, want %v", iterations, sum*tau, tau1)
		}
	}
}

func TestTauAndDamping_ZeroIterations(t *testing.T) {
	tau0, damping0 := TauAndDamping(DefaultFrequency, DefaultDampingRatio, 1.0/60.0, 0)
	tau1, damping1 := TauAndDamping(DefaultFrequency, DefaultDampingRatio, 1.0/60.0, 1)
	if tau0 != tau1 || damping0 != damping1 {
		t.Error("zero iterations should behave as one")
	}
}

func TestNewStep(t *testing.T) {
	step := NewStep(0.02, 4, DefaultFrequency, DefaultDampingRatio)
	if step.Dt != 0.02 || !almostEqual(step.InvDt, 50, 1e-12) {
		t.Errorf("NewStep dt = %v, invDt = %v", step.Dt, step.InvDt)
	}
	tau, damping := TauAndDamping(DefaultFrequency, DefaultDampingRatio, 0.02, 4)
	if step.Tau != tau || step.Damping != damping {
		t.Error("NewStep does not use TauAndDamping")
	}
}
