package anna

import (
	"math"

	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// capture fills the frame arrays from the world bodies, in slot order.
// stepDt is the full step used to derive kinematic velocities.
func (w *World) capture(frame *Frame, stepDt float64) {
	h := frame.Constants.Dt

	var dynamics []*actor.RigidBody
	for index, s := range w.slots {
		if s.body == nil {
			continue
		}
		handle := actor.Handle{Index: uint32(index), Generation: s.generation}

		switch s.body.BodyType {
		case actor.BodyTypeDynamic:
			frame.BodyIndex[handle] = len(frame.Bodies)
			frame.Bodies = append(frame.Bodies, actor.BodyRecord{Handle: handle})
			dynamics = append(dynamics, s.body)
		case actor.BodyTypeKinematic:
			frame.KinematicIndex[handle] = len(frame.Kinematics)
			frame.Kinematics = append(frame.Kinematics, captureKinematic(frame, handle, s.body, h, stepDt))
		case actor.BodyTypeStatic:
			frame.StaticIndex[handle] = len(frame.Statics)
			frame.Statics = append(frame.Statics, captureStatic(frame, handle, s.body))
		}
	}

	task(w.settings.Workers, frame.Bodies, func(i int, record *actor.BodyRecord) {
		w.captureDynamic(frame, record, dynamics[i], h)
	})
}

// captureDynamic integrates gravity and the queued impulses of a dynamic body
// into its record
func (w *World) captureDynamic(frame *Frame, record *actor.BodyRecord, body *actor.RigidBody, h float64) {
	pose := body.Transform.Normalized()

	record.InverseMass = body.InverseMass()
	record.InverseInertia = body.GetInverseInertiaWorld()
	record.Pose = pose
	record.Friction = body.Material.Friction
	record.Restitution = body.Material.Restitution
	record.Lock = body.LockAxes
	record.Shape = body.Shape
	record.Group = actor.GroupOf(body.Layer, actor.BodyTypeDynamic)

	gravity := frame.Constants.Gravity.Mul(body.GravityScale)
	if body.GravityOverride != nil {
		gravity = *body.GravityOverride
	}
	record.Gravity = gravity

	velocity := body.Velocity.Add(gravity.Mul(h))
	angularVelocity := body.AngularVelocity
	body.DrainImpulses(func(impulse actor.Impulse) {
		impulse.Apply(&velocity, &angularVelocity, record.InverseMass, record.InverseInertia, pose.Position)
	})

	velocity = velocity.Mul(dampingFactor(w.settings.LinearDamping, h))
	angularVelocity = angularVelocity.Mul(dampingFactor(w.settings.AngularDamping, h))
	record.Velocity = velocity
	record.AngularVelocity = angularVelocity

	record.AngularExpansion = body.Shape.AngularExpansion()
	record.Expansion = actor.NewMotionExpansion(velocity, angularVelocity, record.AngularExpansion, h)
	record.AABB = record.Expansion.ExpandAABB(body.Shape.ComputeAABB(pose))
	record.Bucket = frame.Grid.Bucket(record.AABB)

	record.Stabilizer = actor.Stabilizer{}
	if g := gravity.Len(); g > 0 {
		record.Stabilizer.GravityDirection = gravity.Mul(1 / g)
		record.Stabilizer.GravityStep = g * h
	}
}

func dampingFactor(damping, h float64) float64 {
	return math.Max(0, math.Min(1, 1-damping*h))
}

// captureKinematic derives the velocity of a kinematic body from its motion
// since the previous step
func captureKinematic(frame *Frame, handle actor.Handle, body *actor.RigidBody, h, stepDt float64) actor.KinematicRecord {
	pose := body.Transform.Normalized()
	previous := body.PreviousTransform.Normalized()

	velocity := pose.Position.Sub(previous.Position).Mul(1 / stepDt)
	angularVelocity := rotationVelocity(previous.Rotation, pose.Rotation, stepDt)

	expansion := actor.NewMotionExpansion(velocity, angularVelocity, body.Shape.AngularExpansion(), h)
	aabb := expansion.ExpandAABB(body.Shape.ComputeAABB(pose))

	return actor.KinematicRecord{
		Handle:          handle,
		Velocity:        velocity,
		AngularVelocity: angularVelocity,
		Pose:            pose,
		Expansion:       expansion,
		Bucket:          frame.Grid.Bucket(aabb),
		AABB:            aabb,
		Group:           actor.GroupOf(body.Layer, actor.BodyTypeKinematic),
		Shape:           body.Shape,
	}
}

// rotationVelocity is the angular velocity turning from into to over dt:
// the axis of the delta rotation scaled by angle/dt
func rotationVelocity(from, to mgl64.Quat, dt float64) mgl64.Vec3 {
	delta := to.Mul(from.Inverse()).Normalize()
	if delta.W < 0 {
		delta = delta.Scale(-1)
	}

	sinHalf := delta.V.Len()
	if sinHalf < 1e-12 {
		return mgl64.Vec3{}
	}
	angle := 2 * math.Atan2(sinHalf, delta.W)
	return delta.V.Mul(angle / (sinHalf * dt))
}

func captureStatic(frame *Frame, handle actor.Handle, body *actor.RigidBody) actor.StaticRecord {
	pose := body.Transform.Normalized()
	aabb := body.Shape.ComputeAABB(pose)

	return actor.StaticRecord{
		Handle: handle,
		Pose:   pose,
		Bucket: frame.Grid.Bucket(aabb),
		AABB:   aabb,
		Group:  actor.GroupOf(body.Layer, actor.BodyTypeStatic),
		Shape:  body.Shape,
	}
}
