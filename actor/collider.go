package actor

import "github.com/go-gl/mathgl/mgl64"

// Collider is a shape placed in the world
type Collider struct {
	Shape     Shape
	Transform Transform
}

// SupportWorld returns the furthest world point of the collider in direction
func (c Collider) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	// Direction into local space, support there, back to world space
	localDirection := c.Transform.Rotation.Conjugate().Rotate(direction)
	localSupport := c.Shape.Support(localDirection)
	return c.Transform.Apply(localSupport)
}

// Center returns the world origin of the collider
func (c Collider) Center() mgl64.Vec3 {
	return c.Transform.Position
}
