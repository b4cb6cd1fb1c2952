package anna

import (
	"math"
	"testing"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// prepareRecords runs one frame of w up to the merged stream and returns the world to idle
func prepareRecords(t *testing.T, w *World) (*Frame, []constraint.Record) {
	t.Helper()
	frame, records := w.prepare(1.0/60, 1.0/60)
	w.setPhase(PhaseIdle)
	return frame, records
}

func countKind(records []constraint.Record, kind constraint.SolveKind) int {
	n := 0
	for i := range records {
		if records[i].Kind == kind {
			n++
		}
	}
	return n
}

// ============================================================================
// Dedup
// ============================================================================

func TestContactWriter_OneRecordPerPair(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		buckets int
	}{
		{"single bucket", 1, 1},
		{"default buckets", 1, DefaultBuckets},
		{"parallel", 4, DefaultBuckets},
		{"more buckets than bodies", 4, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, func(s *Settings) {
				zeroGravity(s)
				s.Workers = tt.workers
				s.Buckets = tt.buckets
			})
			// Three spheres overlapping each other
			w.AddBody(createSphere(mgl64.Vec3{0, 0, 0}, 0.5, actor.BodyTypeDynamic))
			w.AddBody(createSphere(mgl64.Vec3{0.8, 0, 0}, 0.5, actor.BodyTypeDynamic))
			w.AddBody(createSphere(mgl64.Vec3{0.4, 0.6, 0}, 0.5, actor.BodyTypeDynamic))

			_, records := prepareRecords(t, w)

			if n := countKind(records, constraint.KindContactBody); n != 3 {
				t.Fatalf("got %d body contacts, want 3", n)
			}
			seen := make(map[pairKey]bool)
			for i := range records {
				key := makePairKey(records[i].HandleA, records[i].HandleB)
				if seen[key] {
					t.Errorf("pair %v emitted twice", key)
				}
				seen[key] = true
				if records[i].Pair.A >= records[i].Pair.B {
					t.Errorf("record %d owned by the higher index: %+v", i, records[i].Pair)
				}
			}
		})
	}
}

func TestContactWriter_Kinds(t *testing.T) {
	w := newTestWorld(t, zeroGravity)
	w.AddBody(createPlane(mgl64.Vec3{0, 1, 0}, 0))
	w.AddBody(createBox(mgl64.Vec3{2, 0.5, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, actor.BodyTypeKinematic))
	w.AddBody(createSphere(mgl64.Vec3{1.1, 0.45, 0}, 0.5, actor.BodyTypeDynamic))

	frame, records := prepareRecords(t, w)

	if n := countKind(records, constraint.KindContactEnvironment); n != 1 {
		t.Errorf("got %d environment contacts, want 1", n)
	}
	if n := countKind(records, constraint.KindContactKinematic); n != 1 {
		t.Errorf("got %d kinematic contacts, want 1", n)
	}
	for i := range records {
		if err := frame.verifyPair(&records[i]); err != nil {
			t.Errorf("record %d: %v", i, err)
		}
	}
}

func TestContactWriter_NoBodies(t *testing.T) {
	w := newTestWorld(t, nil)
	w.AddBody(createPlane(mgl64.Vec3{0, 1, 0}, 0))
	w.AddBody(createBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeKinematic))

	if _, records := prepareRecords(t, w); len(records) != 0 {
		t.Errorf("got %d records without dynamic bodies", len(records))
	}
}

// ============================================================================
// Material combination
// ============================================================================

func TestContactWriter_CombinationIsOrderIndependent(t *testing.T) {
	build := func(swap bool) *constraint.Contact {
		w := newTestWorld(t, zeroGravity)
		a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, actor.BodyTypeDynamic)
		a.Material.Friction, a.Material.Restitution = 0.04, 0.9
		b := createBox(mgl64.Vec3{0, 0.95, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, actor.BodyTypeDynamic)
		b.Material.Friction, b.Material.Restitution = 0.25, 0.1
		if swap {
			a, b = b, a
		}
		w.AddBody(a)
		w.AddBody(b)

		_, records := prepareRecords(t, w)
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		return records[0].Contact()
	}

	for _, c := range []*constraint.Contact{build(false), build(true)} {
		if !almostEqual(c.FrictionCoefficient, 0.1, 1e-12) {
			t.Errorf("friction = %v, want 0.1", c.FrictionCoefficient)
		}
		if !almostEqual(c.Restitution, 0.3, 1e-12) {
			t.Errorf("restitution = %v, want 0.3", c.Restitution)
		}
	}
}

// ============================================================================
// Exclusion
// ============================================================================

func TestContactWriter_Exclusion(t *testing.T) {
	tests := []struct {
		name        string
		rule        ExclusionRule
		wantBody    int
		wantStatics int
	}{
		{"no rule", ExclusionRule{}, 1, 2},
		{
			name:        "layers",
			rule:        ExclusionRule{A: Selector{Layers: []uint16{1}}, B: Selector{Layers: []uint16{2}}},
			wantBody:    0,
			wantStatics: 1,
		},
		{
			name:        "same layer",
			rule:        ExclusionRule{A: Selector{Layers: []uint16{1}}, B: Selector{Layers: []uint16{1}}},
			wantBody:    1,
			wantStatics: 1,
		},
		{
			name:        "dynamic against static",
			rule:        ExclusionRule{A: Selector{Motions: actor.MaskDynamic}, B: Selector{Motions: actor.MaskStatic}},
			wantBody:    1,
			wantStatics: 0,
		},
		{
			name:        "reversed selectors",
			rule:        ExclusionRule{A: Selector{Motions: actor.MaskStatic}, B: Selector{Layers: []uint16{2}, Motions: actor.MaskDynamic}},
			wantBody:    1,
			wantStatics: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, nil)
			ground := createPlane(mgl64.Vec3{0, 1, 0}, 0)
			ground.Layer = 1
			w.AddBody(ground)

			a := createBox(mgl64.Vec3{0, 0.45, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, actor.BodyTypeDynamic)
			a.Layer = 1
			b := createBox(mgl64.Vec3{0.9, 0.45, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, actor.BodyTypeDynamic)
			b.Layer = 2
			w.AddBody(a)
			w.AddBody(b)
			if tt.rule.A.Layers != nil || tt.rule.A.Motions != 0 {
				w.Exclude(tt.rule)
			}

			// Rules hold on every frame
			for range 3 {
				_, records := prepareRecords(t, w)
				if n := countKind(records, constraint.KindContactBody); n != tt.wantBody {
					t.Errorf("got %d body contacts, want %d", n, tt.wantBody)
				}
				if n := countKind(records, constraint.KindContactEnvironment); n != tt.wantStatics {
					t.Errorf("got %d environment contacts, want %d", n, tt.wantStatics)
				}
			}
		})
	}
}

// ============================================================================
// Solver properties
// ============================================================================

func TestWorld_AxisLockHolds(t *testing.T) {
	w := newTestWorld(t, zeroGravity)
	body := createSphere(mgl64.Vec3{}, 0.5, actor.BodyTypeDynamic)
	body.SetMass(1)
	body.LockAxes = actor.LockPositionX
	w.AddBody(body)

	body.AddImpulse(mgl64.Vec3{2, 1, 0})
	w.Step(1.0 / 60)

	if math.Abs(body.Velocity.X()) > 0.05 {
		t.Errorf("locked velocity.x = %v", body.Velocity.X())
	}
	if !almostEqual(body.Velocity.Y(), 1, 1e-9) {
		t.Errorf("free velocity.y = %v, want 1", body.Velocity.Y())
	}
}

func TestWorld_ElasticCollision(t *testing.T) {
	w := newTestWorld(t, zeroGravity)
	a := createSphere(mgl64.Vec3{-0.5, 0, 0}, 0.5, actor.BodyTypeDynamic)
	b := createSphere(mgl64.Vec3{0.51, 0, 0}, 0.5, actor.BodyTypeDynamic)
	for _, body := range []*actor.RigidBody{a, b} {
		body.SetMass(1)
		body.Material.Restitution = 1
	}
	a.Velocity = mgl64.Vec3{2, 0, 0}
	b.Velocity = mgl64.Vec3{-2, 0, 0}
	w.AddBody(a)
	w.AddBody(b)

	w.Step(1.0 / 60)

	if !almostEqual(a.Velocity.X(), -2, 1e-6) || !almostEqual(b.Velocity.X(), 2, 1e-6) {
		t.Errorf("velocities = %v, %v, want exchanged", a.Velocity, b.Velocity)
	}
	momentum := a.Velocity.Add(b.Velocity)
	if momentum.Len() > 1e-9 {
		t.Errorf("momentum = %v, want zero", momentum)
	}
}

func TestSolver_MonotonicConvergence(t *testing.T) {
	residualAfter := func(iterations int) float64 {
		w := newTestWorld(t, zeroGravity)
		w.AddBody(createPlane(mgl64.Vec3{0, 1, 0}, 0))
		w.AddBody(createSphere(mgl64.Vec3{0, 0.45, 0}, 0.5, actor.BodyTypeDynamic))
		w.AddBody(createSphere(mgl64.Vec3{0, 1.35, 0}, 0.5, actor.BodyTypeDynamic))

		frame, records := w.prepare(1.0/60, 1.0/60)
		defer w.setPhase(PhaseIdle)
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}

		w.setPhase(PhaseSolving)
		solver{workers: 1, iterations: iterations, clippingFactor: DefaultClippingFactor}.solve(frame, records)
		return residual(frame, records)
	}

	previous := math.Inf(1)
	for n := 1; n <= 10; n++ {
		r := residualAfter(n)
		if r > previous+1e-9 {
			t.Errorf("residual after %d iterations = %v, was %v", n, r, previous)
		}
		previous = r
	}
	if first := residualAfter(1); previous >= first {
		t.Errorf("residual did not decrease: %v after 1 iteration, %v after 10", first, previous)
	}
}
