package anna

import (
	"github.com/akmonengine/anna/constraint"
)

// AxisLockWriter emits the position and rotation locks of the dynamic bodies.
// Targets are the pose of the body at the start of the substep.
type AxisLockWriter struct{}

func (AxisLockWriter) Name() string { return "axisLock" }

func (AxisLockWriter) Write(ctx *WriteContext, stream *constraint.Stream) {
	bodies := ctx.Frame().Bodies
	for i := range bodies {
		body := &bodies[i]
		if body.Lock.IsZero() {
			continue
		}

		if body.Lock.PositionCount() > 0 {
			stream.Append(body.Bucket, constraint.Record{
				Kind:     constraint.KindLinearLock,
				Pair:     constraint.BodyPair{A: i, B: constraint.NoBody},
				HandleA:  body.Handle,
				Jacobian: constraint.BuildLinearLock(body, body.Pose),
			})
		}

		if body.Lock.RotationCount() > 0 {
			kind, jacobian := constraint.BuildAngularLock(body, body.Pose)
			stream.Append(body.Bucket, constraint.Record{
				Kind:     kind,
				Pair:     constraint.BodyPair{A: i, B: constraint.NoBody},
				HandleA:  body.Handle,
				Jacobian: jacobian,
			})
		}
	}
}
