package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a position and an orientation in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates a transform at position with the given rotation
func NewTransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	rotation = normalizeRotation(rotation)
	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
	}
}

// Normalized returns the transform with a unit rotation and a matching inverse.
// A zero quaternion (the zero value of Transform) is treated as identity.
func (t Transform) Normalized() Transform {
	return NewTransformAt(t.Position, t.Rotation)
}

// Apply transforms a local point into world space
func (t Transform) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}

// ToLocal transforms a world point into local space
func (t Transform) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world.Sub(t.Position))
}

// RotationMatrix returns the 3x3 rotation matrix of the transform
func (t Transform) RotationMatrix() mgl64.Mat3 {
	return t.Rotation.Mat4().Mat3()
}

func normalizeRotation(q mgl64.Quat) mgl64.Quat {
	if q.W == 0 && q.V.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
