package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Group identifies a broadphase group: a collision layer combined with a body type
type Group uint16

// MaxLayer is the highest collision layer a group can hold
const MaxLayer = 0x3fff

// GroupOf packs a layer and a body type into a group.
// Layers above MaxLayer keep only their low 14 bits.
func GroupOf(layer uint16, bodyType BodyType) Group {
	return Group(layer&MaxLayer)<<2 | Group(bodyType&0x3)
}

func (g Group) Layer() uint16 {
	return uint16(g >> 2)
}

func (g Group) BodyType() BodyType {
	return BodyType(g & 0x3)
}

// MotionExpansion is how far a body may travel during one step.
// Linear is the velocity-based sweep, Uniform the radial growth due to rotation.
type MotionExpansion struct {
	Linear  mgl64.Vec3
	Uniform float64
}

// NewMotionExpansion computes the expansion for the given velocities over dt
func NewMotionExpansion(velocity, angularVelocity mgl64.Vec3, angularExpansion, dt float64) MotionExpansion {
	return MotionExpansion{
		Linear:  velocity.Mul(dt),
		Uniform: angularExpansion * angularVelocity.Len() * dt,
	}
}

// ExpandAABB sweeps the box along the linear expansion and inflates it by the uniform one
func (m MotionExpansion) ExpandAABB(aabb AABB) AABB {
	for i := range 3 {
		aabb.Min[i] += math.Min(m.Linear[i], 0) - m.Uniform
		aabb.Max[i] += math.Max(m.Linear[i], 0) + m.Uniform
	}
	return aabb
}

// MaxDistance is the speculative contact distance budget of the expansion
func (m MotionExpansion) MaxDistance() float64 {
	return m.Linear.Len() + m.Uniform
}

// Stabilizer is the per-body state of the solver stabilization pass
type Stabilizer struct {
	// GravityDirection is the normalized gravity in effect, zero without gravity
	GravityDirection mgl64.Vec3
	// GravityStep is the speed gained from gravity in one step
	GravityStep float64
	// Contacts counts the contact constraints touching the body this step
	Contacts int
	// PreviousAlong is the velocity along gravity after the previous iteration
	PreviousAlong float64
	Seeded        bool
}

// BodyRecord is the per-step solver state of a dynamic body
type BodyRecord struct {
	Handle Handle

	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	InverseMass    float64
	InverseInertia mgl64.Mat3 // world space
	// Pose is the world inertial pose: centre of mass and orientation
	Pose Transform

	Friction    float64
	Restitution float64
	Gravity     mgl64.Vec3

	AngularExpansion float64
	Expansion        MotionExpansion
	Stabilizer       Stabilizer

	Bucket int
	// AABB is the shape bounds swept by the motion expansion
	AABB  AABB
	Group Group
	Lock  LockAxes
	Shape Shape
}

// Collider returns the body shape at its pose
func (r *BodyRecord) Collider() Collider {
	return Collider{Shape: r.Shape, Transform: r.Pose}
}

// KinematicRecord is the per-step state of a kinematic body, read-only while solving
type KinematicRecord struct {
	Handle Handle

	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Pose            Transform
	Expansion       MotionExpansion

	Bucket int
	AABB   AABB
	Group  Group
	Shape  Shape
}

func (r *KinematicRecord) Collider() Collider {
	return Collider{Shape: r.Shape, Transform: r.Pose}
}

// StaticRecord is environment geometry taking part in the current step
type StaticRecord struct {
	Handle Handle

	Pose   Transform
	Bucket int
	AABB   AABB
	Group  Group
	Shape  Shape
}

func (r *StaticRecord) Collider() Collider {
	return Collider{Shape: r.Shape, Transform: r.Pose}
}
