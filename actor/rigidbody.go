package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents how a body takes part in the simulation
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeKinematic bodies are moved by the caller through their transform.
	// Their velocity is derived from the motion between two steps and they
	// push dynamic bodies without being pushed back
	BodyTypeKinematic

	// BodyTypeStatic bodies are immovable environment geometry (e.g., ground, walls)
	BodyTypeStatic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeKinematic:
		return "kinematic"
	case BodyTypeStatic:
		return "static"
	}
	return "unknown"
}

// BodyTypeMask is a set of body types, used by group selectors
type BodyTypeMask uint8

const (
	MaskDynamic BodyTypeMask = 1 << iota
	MaskKinematic
	MaskStatic
)

// Mask returns the single-type mask of t
func (t BodyType) Mask() BodyTypeMask {
	return BodyTypeMask(1) << uint(t)
}

// Contains reports whether t is in the mask. The empty mask contains every type.
func (m BodyTypeMask) Contains(t BodyType) bool {
	return m == 0 || m&t.Mask() != 0
}

type Material struct {
	Density     float64
	mass        float64
	Restitution float64 // 0= no rebound, 1= perfect restitution
	Friction    float64
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody is the caller-owned description of a body. The world reads it at
// the start of every step and writes the solved velocities back at the end.
type RigidBody struct {
	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion (m/s)
	Velocity mgl64.Vec3
	// Angular motion (rad/s)
	AngularVelocity mgl64.Vec3

	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	Material Material
	BodyType BodyType

	// Layer is the collision layer used to form broadphase groups, in [0, MaxLayer]
	Layer uint16
	// LockAxes pins world axes of a dynamic body
	LockAxes LockAxes
	// GravityScale multiplies the world gravity, 1 by default
	GravityScale float64
	// GravityOverride replaces the world gravity when set
	GravityOverride *mgl64.Vec3

	// Collision shape
	Shape Shape

	impulses []Impulse
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored otherwise)
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, density float64) *RigidBody {
	transform = transform.Normalized()
	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		GravityScale:      1.0,
	}

	if bodyType == BodyTypeDynamic {
		rb.Material = Material{
			Density: density,
			mass:    shape.ComputeMass(density),
		}
		rb.InertiaLocal = shape.ComputeInertia(rb.Material.mass)
		rb.InverseInertiaLocal = invertInertia(rb.InertiaLocal)
	} else {
		// Kinematic and static bodies have infinite mass
		rb.Material = Material{mass: math.Inf(1)}
	}

	return rb
}

// SetMass overrides the mass computed from the density, scaling the inertia accordingly
func (rb *RigidBody) SetMass(mass float64) {
	if rb.BodyType != BodyTypeDynamic || mass <= 0 {
		return
	}
	rb.Material.mass = mass
	rb.InertiaLocal = rb.Shape.ComputeInertia(mass)
	rb.InverseInertiaLocal = invertInertia(rb.InertiaLocal)
}

// InverseMass returns 1/m for dynamic bodies and 0 for the others
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic || rb.Material.mass <= 0 || math.IsInf(rb.Material.mass, 1) {
		return 0
	}
	return 1.0 / rb.Material.mass
}

// GetInertiaWorld returns the inertia tensor in world space
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := rb.Transform.RotationMatrix()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns the inverse inertia tensor in world space
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Mat3{}
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.RotationMatrix()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// AddImpulse queues a linear impulse at the centre of mass
func (rb *RigidBody) AddImpulse(impulse mgl64.Vec3) {
	rb.queue(FieldImpulse{Linear: impulse})
}

// AddImpulseAtPoint queues a linear impulse applied at a world point
func (rb *RigidBody) AddImpulseAtPoint(impulse mgl64.Vec3, point mgl64.Vec3) {
	rb.queue(PointImpulse{Impulse: impulse, Point: point})
}

// AddAngularImpulse queues an angular impulse of magnitude about axis
func (rb *RigidBody) AddAngularImpulse(axis mgl64.Vec3, magnitude float64) {
	rb.queue(AngularImpulse{Axis: axis, Magnitude: magnitude})
}

func (rb *RigidBody) queue(impulse Impulse) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.impulses = append(rb.impulses, impulse)
}

// PendingImpulses returns the number of queued impulses
func (rb *RigidBody) PendingImpulses() int {
	return len(rb.impulses)
}

// DrainImpulses calls fn for every queued impulse in queue order, then clears the queue
func (rb *RigidBody) DrainImpulses(fn func(Impulse)) {
	for _, impulse := range rb.impulses {
		fn(impulse)
	}
	clear(rb.impulses)
	rb.impulses = rb.impulses[:0]
}

// SupportWorld returns the furthest world point of the body's shape in direction
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	return Collider{Shape: rb.Shape, Transform: rb.Transform}.SupportWorld(direction)
}

// AABB returns the world bounding box of the body at its current transform
func (rb *RigidBody) AABB() AABB {
	return rb.Shape.ComputeAABB(rb.Transform)
}

func invertInertia(inertia mgl64.Mat3) mgl64.Mat3 {
	if math.Abs(inertia.Det()) < 1e-300 {
		return mgl64.Mat3{}
	}
	return inertia.Inv()
}
