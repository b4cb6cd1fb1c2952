package actor

import (
	"math/bits"

	"github.com/go-gl/mathgl/mgl64"
)

// LockAxes is a packed set of world axes a body may not move along or rotate about.
// Bits 0..2 lock translation along X, Y, Z; bits 3..5 lock rotation about X, Y, Z.
type LockAxes uint8

const (
	LockPositionX LockAxes = 1 << iota
	LockPositionY
	LockPositionZ
	LockRotationX
	LockRotationY
	LockRotationZ

	LockPosition = LockPositionX | LockPositionY | LockPositionZ
	LockRotation = LockRotationX | LockRotationY | LockRotationZ
	LockAll      = LockPosition | LockRotation
)

var worldAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Has reports whether every axis of flags is locked
func (l LockAxes) Has(flags LockAxes) bool {
	return l&flags == flags
}

// IsZero reports whether no axis is locked
func (l LockAxes) IsZero() bool {
	return l&LockAll == 0
}

// PositionMask returns the 3-bit mask of locked position axes
func (l LockAxes) PositionMask() uint8 {
	return uint8(l & LockPosition)
}

// RotationMask returns the 3-bit mask of locked rotation axes
func (l LockAxes) RotationMask() uint8 {
	return uint8(l&LockRotation) >> 3
}

func (l LockAxes) PositionCount() int {
	return bits.OnesCount8(l.PositionMask())
}

func (l LockAxes) RotationCount() int {
	return bits.OnesCount8(l.RotationMask())
}

// PositionAxes returns the unit world axes locked for translation, in X, Y, Z order
func (l LockAxes) PositionAxes() []mgl64.Vec3 {
	return maskAxes(l.PositionMask())
}

// RotationAxes returns the unit world axes locked for rotation, in X, Y, Z order
func (l LockAxes) RotationAxes() []mgl64.Vec3 {
	return maskAxes(l.RotationMask())
}

func maskAxes(mask uint8) []mgl64.Vec3 {
	axes := make([]mgl64.Vec3, 0, 3)
	for i := range 3 {
		if mask&(1<<i) != 0 {
			axes = append(axes, worldAxes[i])
		}
	}
	return axes
}
