package anna

import (
	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// stabilize removes the jitter the solver leaves on a body resting under gravity.
//
// The first call of a step only seeds the state. Later calls average the
// along-gravity velocity when its sign flips between iterations. A body in
// contact moving slower than clippingFactor times its gravity step loses its
// along-gravity velocity, and on the last iteration its spin too when the
// surface speed is also below that threshold.
func stabilize(body *actor.BodyRecord, last bool, clippingFactor float64) {
	s := &body.Stabilizer
	if s.Contacts == 0 || s.GravityStep == 0 {
		return
	}

	direction := s.GravityDirection
	along := body.Velocity.Dot(direction)
	if !s.Seeded {
		s.Seeded = true
		s.PreviousAlong = along
		return
	}

	if along*s.PreviousAlong < 0 {
		average := (along + s.PreviousAlong) * 0.5
		body.Velocity = body.Velocity.Add(direction.Mul(average - along))
		along = average
	}

	threshold := clippingFactor * s.GravityStep
	slow := body.Velocity.Len() < threshold
	if slow {
		body.Velocity = body.Velocity.Sub(direction.Mul(along))
		along = 0
	}
	s.PreviousAlong = along

	if last && slow && body.AngularVelocity.Len()*body.AngularExpansion < threshold {
		body.AngularVelocity = mgl64.Vec3{}
	}
}
