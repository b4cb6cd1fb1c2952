package anna

import (
	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Integrator advances a dynamic body from its solved velocities
type Integrator interface {
	Integrate(body *actor.RigidBody, dt float64)
}

// SemiImplicitEuler moves the body with the velocities of the end of the substep
type SemiImplicitEuler struct{}

func (SemiImplicitEuler) Integrate(body *actor.RigidBody, dt float64) {
	if body.BodyType != actor.BodyTypeDynamic {
		return
	}

	body.Transform.Position = body.Transform.Position.Add(body.Velocity.Mul(dt))

	omegaQuat := mgl64.Quat{V: body.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(body.Transform.Rotation).Scale(0.5)
	body.Transform.Rotation = body.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
	body.Transform.InverseRotation = body.Transform.Rotation.Inverse()
}
