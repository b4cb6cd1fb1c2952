package constraint

import (
	"math"

	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const degenerateMass = 1e-12

// LinearLock pins 1 to 3 world axes of a body position to a target.
// The axes are orthogonal so every row has the same effective mass.
type LinearLock struct {
	Axes  [3]mgl64.Vec3
	Count int
	// Error is the position deviation along each axis when the lock was built
	Error         [3]float64
	EffectiveMass float64
	Impulse       [3]float64
}

func (l *LinearLock) kind() SolveKind { return KindLinearLock }

// BuildLinearLock builds the lock of the locked position axes of the body
// against target. It returns nil when no position axis is locked.
func BuildLinearLock(body *actor.BodyRecord, target actor.Transform) *LinearLock {
	axes := body.Lock.PositionAxes()
	if len(axes) == 0 {
		return nil
	}

	l := &LinearLock{Count: len(axes)}
	if body.InverseMass > degenerateMass {
		l.EffectiveMass = 1 / body.InverseMass
	}

	deviation := body.Pose.Position.Sub(target.Position)
	for i, axis := range axes {
		l.Axes[i] = axis
		l.Error[i] = deviation.Dot(axis)
	}
	return l
}

func (l *LinearLock) Solve(body *actor.BodyRecord, step Step) {
	for i := range l.Count {
		axis := l.Axes[i]
		cdot := body.Velocity.Dot(axis)
		lambda := -l.EffectiveMass * (step.Damping*cdot + step.Tau*l.Error[i]*step.InvDt)

		l.Impulse[i] += lambda
		body.Velocity = body.Velocity.Add(axis.Mul(lambda * body.InverseMass))
	}
}

// AngularLock1 pins the rotation of a body about one world axis
type AngularLock1 struct {
	Axis          mgl64.Vec3
	Error         float64
	EffectiveMass float64
	Impulse       float64
}

func (l *AngularLock1) kind() SolveKind { return KindAngularLock1 }

func BuildAngularLock1(body *actor.BodyRecord, target actor.Transform) *AngularLock1 {
	axes := body.Lock.RotationAxes()
	if len(axes) != 1 {
		return nil
	}

	axis := axes[0]
	l := &AngularLock1{
		Axis:  axis,
		Error: RotationError(body.Pose.Rotation, target.Rotation).Dot(axis),
	}
	if k := body.InverseInertia.Mul3x1(axis).Dot(axis); k > degenerateMass {
		l.EffectiveMass = 1 / k
	}
	return l
}

func (l *AngularLock1) Solve(body *actor.BodyRecord, step Step) {
	cdot := body.AngularVelocity.Dot(l.Axis)
	lambda := -l.EffectiveMass * (step.Damping*cdot + step.Tau*l.Error*step.InvDt)

	l.Impulse += lambda
	body.AngularVelocity = body.AngularVelocity.Add(body.InverseInertia.Mul3x1(l.Axis.Mul(lambda)))
}

// AngularLock2 pins the rotation of a body about two world axes, leaving it
// free to spin about the third one
type AngularLock2 struct {
	Axes          [2]mgl64.Vec3
	Error         mgl64.Vec2
	EffectiveMass mgl64.Mat2
	Impulse       mgl64.Vec2
}

func (l *AngularLock2) kind() SolveKind { return KindAngularLock2 }

func BuildAngularLock2(body *actor.BodyRecord, target actor.Transform) *AngularLock2 {
	axes := body.Lock.RotationAxes()
	if len(axes) != 2 {
		return nil
	}

	a0, a1 := axes[0], axes[1]
	rotationError := RotationError(body.Pose.Rotation, target.Rotation)
	l := &AngularLock2{
		Axes:  [2]mgl64.Vec3{a0, a1},
		Error: mgl64.Vec2{rotationError.Dot(a0), rotationError.Dot(a1)},
	}

	i0 := body.InverseInertia.Mul3x1(a0)
	i1 := body.InverseInertia.Mul3x1(a1)
	k := mgl64.Mat2{
		a0.Dot(i0), a1.Dot(i0),
		a0.Dot(i1), a1.Dot(i1),
	}
	if math.Abs(k.Det()) > degenerateMass {
		l.EffectiveMass = k.Inv()
	}
	return l
}

func (l *AngularLock2) Solve(body *actor.BodyRecord, step Step) {
	w := body.AngularVelocity
	cdot := mgl64.Vec2{w.Dot(l.Axes[0]), w.Dot(l.Axes[1])}
	bias := cdot.Mul(step.Damping).Add(l.Error.Mul(step.Tau * step.InvDt))
	lambda := l.EffectiveMass.Mul2x1(bias).Mul(-1)

	l.Impulse = l.Impulse.Add(lambda)
	impulse := l.Axes[0].Mul(lambda[0]).Add(l.Axes[1].Mul(lambda[1]))
	body.AngularVelocity = w.Add(body.InverseInertia.Mul3x1(impulse))
}

// AngularLock3 pins the full orientation of a body
type AngularLock3 struct {
	Error         mgl64.Vec3
	EffectiveMass mgl64.Mat3
	Impulse       mgl64.Vec3
}

func (l *AngularLock3) kind() SolveKind { return KindAngularLock3 }

func BuildAngularLock3(body *actor.BodyRecord, target actor.Transform) *AngularLock3 {
	if body.Lock.RotationCount() != 3 {
		return nil
	}

	l := &AngularLock3{Error: RotationError(body.Pose.Rotation, target.Rotation)}
	if math.Abs(body.InverseInertia.Det()) > degenerateMass {
		l.EffectiveMass = body.InverseInertia.Inv()
	}
	return l
}

func (l *AngularLock3) Solve(body *actor.BodyRecord, step Step) {
	bias := body.AngularVelocity.Mul(step.Damping).Add(l.Error.Mul(step.Tau * step.InvDt))
	lambda := l.EffectiveMass.Mul3x1(bias).Mul(-1)

	l.Impulse = l.Impulse.Add(lambda)
	body.AngularVelocity = body.AngularVelocity.Add(body.InverseInertia.Mul3x1(lambda))
}

// BuildAngularLock builds the rotation lock sized by the number of locked
// rotation axes. It returns nil when no rotation axis is locked.
func BuildAngularLock(body *actor.BodyRecord, target actor.Transform) (SolveKind, Jacobian) {
	switch body.Lock.RotationCount() {
	case 1:
		return KindAngularLock1, BuildAngularLock1(body, target)
	case 2:
		return KindAngularLock2, BuildAngularLock2(body, target)
	case 3:
		return KindAngularLock3, BuildAngularLock3(body, target)
	}
	return 0, nil
}

// RotationError returns the world rotation vector taking target to current,
// as angle times axis for small angles
func RotationError(current, target mgl64.Quat) mgl64.Vec3 {
	q := current.Mul(target.Inverse())
	if q.W < 0 {
		q = q.Scale(-1)
	}
	return q.V.Mul(2)
}
