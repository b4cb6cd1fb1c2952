package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func defaultParams() ContactParams {
	return ContactParams{
		MaxDepenetration:     DefaultMaxDepenetrationStatic,
		RestitutionThreshold: DefaultRestitutionThreshold,
		InvDt:                60,
	}
}

// singlePoint returns a one point manifold at the origin
func singlePoint(normal mgl64.Vec3, distance float64) Manifold {
	return Manifold{Normal: normal, Points: []ContactPoint{{Position: mgl64.Vec3{}, Distance: distance}}}
}

// =============================================================================
// Build Tests
// =============================================================================

func TestBuildContact_Targets(t *testing.T) {
	tests := []struct {
		name        string
		distance    float64
		velocityA   mgl64.Vec3
		restitution float64
		want        float64
	}{
		{"speculative gap", 0.05, mgl64.Vec3{}, 0, -3},
		{"resting", 0, mgl64.Vec3{}, 0, 0},
		{"shallow penetration", -0.01, mgl64.Vec3{}, 0, 0.6},
		{"deep penetration capped", -1, mgl64.Vec3{}, 0, DefaultMaxDepenetrationStatic},
		{"bounce", 0, mgl64.Vec3{4, 0, 0}, 0.5, 2},
		{"slow approach does not bounce", 0, mgl64.Vec3{0.3, 0, 0}, 1, 0},
		// Closing at 1 m/s over a 0.5 m gap does not reach contact within the step
		{"no bounce when the gap stays open", 0.5, mgl64.Vec3{1, 0, 0}, 1, -30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := createBodyRecord(mgl64.Vec3{-1, 0, 0}, tt.velocityA, 1)
			params := defaultParams()
			params.Restitution = tt.restitution

			c := BuildContact(KindContactEnvironment, singlePoint(mgl64.Vec3{1, 0, 0}, tt.distance), DynamicSide(&a), StaticSide(actor.NewTransform()), params)
			if len(c.Points) != 1 {
				t.Fatalf("got %d rows, want 1", len(c.Points))
			}
			if !almostEqual(c.Points[0].Target, tt.want, 1e-9) {
				t.Errorf("Target = %v, want %v", c.Points[0].Target, tt.want)
			}
			if c.Points[0].Impulse != 0 {
				t.Error("accumulated impulse must start at zero")
			}
		})
	}
}

func TestBuildContact_EffectiveMass(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 2)
	b := createBodyRecord(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{}, 2)

	// A point on the line of centres has no angular contribution
	c := BuildContact(KindContactBody, singlePoint(mgl64.Vec3{0, -1, 0}, 0), DynamicSide(&a), DynamicSide(&b), defaultParams())
	if !almostEqual(c.Points[0].EffectiveMass, 1, 1e-12) {
		t.Errorf("EffectiveMass = %v, want 1", c.Points[0].EffectiveMass)
	}

	// Against a static side only A moves
	c = BuildContact(KindContactEnvironment, singlePoint(mgl64.Vec3{0, -1, 0}, 0), DynamicSide(&a), StaticSide(actor.NewTransform()), defaultParams())
	if !almostEqual(c.Points[0].EffectiveMass, 2, 1e-12) {
		t.Errorf("one-sided EffectiveMass = %v, want 2", c.Points[0].EffectiveMass)
	}
}

// =============================================================================
// Solve Tests
// =============================================================================

func TestContact_ElasticHeadOn(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{2, 0, 0}, 1)
	b := createBodyRecord(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-2, 0, 0}, 1)
	params := defaultParams()
	params.Restitution = 1

	c := BuildContact(KindContactBody, singlePoint(mgl64.Vec3{1, 0, 0}, 0), DynamicSide(&a), DynamicSide(&b), params)
	for range 4 {
		c.Solve(&a, &b)
	}

	// Equal masses exchange their velocities
	if !vec3AlmostEqual(a.Velocity, mgl64.Vec3{-2, 0, 0}, 1e-9) || !vec3AlmostEqual(b.Velocity, mgl64.Vec3{2, 0, 0}, 1e-9) {
		t.Errorf("velocities after elastic collision = %v, %v", a.Velocity, b.Velocity)
	}
	if c.Residual(&a, &b) > 1e-9 {
		t.Errorf("Residual = %v, want 0", c.Residual(&a, &b))
	}
}

func TestContact_SeparatingBodiesUntouched(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{-1, 0, 0}, 1)
	b := createBodyRecord(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, 1)

	c := BuildContact(KindContactBody, singlePoint(mgl64.Vec3{1, 0, 0}, 0), DynamicSide(&a), DynamicSide(&b), defaultParams())
	c.Solve(&a, &b)

	if c.Points[0].Impulse != 0 {
		t.Errorf("Impulse = %v, contacts must never pull", c.Points[0].Impulse)
	}
	if a.Velocity != (mgl64.Vec3{-1, 0, 0}) || b.Velocity != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("velocities changed: %v, %v", a.Velocity, b.Velocity)
	}
}

func TestContact_SpeculativeClosesGap(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{6, 0, 0}, 1)

	c := BuildContact(KindContactEnvironment, singlePoint(mgl64.Vec3{1, 0, 0}, 0.05), DynamicSide(&a), StaticSide(actor.NewTransform()), defaultParams())
	c.Solve(&a, nil)

	// 0.05 m at 60 Hz allows 3 m/s of approach
	if !almostEqual(a.Velocity.X(), 3, 1e-9) {
		t.Errorf("v.x = %v, want 3", a.Velocity.X())
	}
}

func TestContact_KinematicPushes(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{}, 1)
	kinematic := actor.KinematicRecord{
		Velocity: mgl64.Vec3{-2, 0, 0},
		Pose:     actor.NewTransformAt(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent()),
	}

	c := BuildContact(KindContactKinematic, singlePoint(mgl64.Vec3{1, 0, 0}, 0), DynamicSide(&a), KinematicSide(&kinematic), defaultParams())
	c.Solve(&a, nil)

	if !almostEqual(a.Velocity.X(), -2, 1e-9) {
		t.Errorf("v.x = %v, want -2", a.Velocity.X())
	}
	if c.Other.Velocity != (mgl64.Vec3{-2, 0, 0}) {
		t.Error("the kinematic side must not be pushed back")
	}
}

func TestContact_FrictionClampedToCone(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{5, -1, 0}, 1)
	params := defaultParams()
	params.Friction = 0.5

	c := BuildContact(KindContactEnvironment, singlePoint(mgl64.Vec3{0, -1, 0}, 0), DynamicSide(&a), StaticSide(actor.NewTransform()), params)
	for range 4 {
		c.Solve(&a, nil)
	}

	f := mgl64.Vec2{c.Friction[0].Impulse, c.Friction[1].Impulse}
	if f.Len() > params.Friction*c.NormalImpulse()+1e-9 {
		t.Errorf("friction impulse %v exceeds mu*normal %v", f.Len(), params.Friction*c.NormalImpulse())
	}
	if f.Len() == 0 {
		t.Error("sliding body should get a friction impulse")
	}
	if a.Velocity.X() >= 5 {
		t.Errorf("friction should slow the slide, v.x = %v", a.Velocity.X())
	}
	if !almostEqual(a.Velocity.Y(), 0, 1e-9) {
		t.Errorf("v.y = %v, want 0", a.Velocity.Y())
	}
}

func TestContact_ManifoldCentroidArms(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 1)
	manifold := Manifold{
		Normal: mgl64.Vec3{0, -1, 0},
		Points: []ContactPoint{
			{Position: mgl64.Vec3{-1, 0, -1}},
			{Position: mgl64.Vec3{1, 0, -1}},
			{Position: mgl64.Vec3{1, 0, 1}},
			{Position: mgl64.Vec3{-1, 0, 1}},
		},
	}

	c := BuildContact(KindContactEnvironment, manifold, DynamicSide(&a), StaticSide(actor.NewTransform()), defaultParams())
	if !vec3AlmostEqual(c.RA, mgl64.Vec3{0, -1, 0}, 1e-12) {
		t.Errorf("RA = %v, want the centroid arm", c.RA)
	}
	for _, row := range c.Friction {
		if math.Abs(row.Tangent.Dot(manifold.Normal)) > 1e-9 {
			t.Errorf("tangent %v is not orthogonal to the normal", row.Tangent)
		}
	}
}

func TestContact_Touching(t *testing.T) {
	a := createBodyRecord(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{}, 1)

	apart := BuildContact(KindContactEnvironment, singlePoint(mgl64.Vec3{1, 0, 0}, 0.1), DynamicSide(&a), StaticSide(actor.NewTransform()), defaultParams())
	apart.Solve(&a, nil)
	if apart.Touching() {
		t.Error("a resting speculative contact is not touching")
	}

	touching := BuildContact(KindContactEnvironment, singlePoint(mgl64.Vec3{1, 0, 0}, -0.01), DynamicSide(&a), StaticSide(actor.NewTransform()), defaultParams())
	if !touching.Touching() {
		t.Error("a penetrating contact is touching")
	}
}
