package actor

import "github.com/go-gl/mathgl/mgl64"

// Impulse is a queued velocity change applied once at the start of the next step
type Impulse interface {
	// Apply changes the given velocities of a body with the given mass properties
	Apply(velocity, angularVelocity *mgl64.Vec3, inverseMass float64, inverseInertia mgl64.Mat3, centerOfMass mgl64.Vec3)
}

// FieldImpulse is a linear impulse (N·s) applied at the centre of mass,
// like the push of a uniform field
type FieldImpulse struct {
	Linear mgl64.Vec3
}

func (i FieldImpulse) Apply(velocity, angularVelocity *mgl64.Vec3, inverseMass float64, inverseInertia mgl64.Mat3, centerOfMass mgl64.Vec3) {
	*velocity = velocity.Add(i.Linear.Mul(inverseMass))
}

// PointImpulse is a linear impulse applied at a world point, producing a torque
// when the point is away from the centre of mass
type PointImpulse struct {
	Impulse mgl64.Vec3
	Point   mgl64.Vec3
}

func (i PointImpulse) Apply(velocity, angularVelocity *mgl64.Vec3, inverseMass float64, inverseInertia mgl64.Mat3, centerOfMass mgl64.Vec3) {
	*velocity = velocity.Add(i.Impulse.Mul(inverseMass))
	r := i.Point.Sub(centerOfMass)
	*angularVelocity = angularVelocity.Add(inverseInertia.Mul3x1(r.Cross(i.Impulse)))
}

// AngularImpulse is a pure angular impulse of Magnitude about Axis
type AngularImpulse struct {
	Axis      mgl64.Vec3
	Magnitude float64
}

func (i AngularImpulse) Apply(velocity, angularVelocity *mgl64.Vec3, inverseMass float64, inverseInertia mgl64.Mat3, centerOfMass mgl64.Vec3) {
	if i.Axis.LenSqr() < 1e-16 {
		return
	}
	*angularVelocity = angularVelocity.Add(inverseInertia.Mul3x1(i.Axis.Normalize().Mul(i.Magnitude)))
}
