//go:build anna_debug

package anna

import (
	"errors"
	"testing"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic = %v, want %v", r, target)
		}
	}()
	fn()
}

func debugWorld(t *testing.T) (*World, *Frame) {
	t.Helper()
	w := newTestWorld(t, nil)
	w.AddBody(createSphere(mgl64.Vec3{}, 0.5, actor.BodyTypeDynamic))
	w.AddBody(createSphere(mgl64.Vec3{0.9, 0, 0}, 0.5, actor.BodyTypeDynamic))
	frame, _ := prepareRecords(t, w)
	return w, frame
}

func TestDebug_StaleStream(t *testing.T) {
	stream := constraint.NewStream(constraint.Tag{Writer: "old", Frame: 3}, 1)
	expectPanic(t, ErrStaleStream, func() {
		merge(4, []*constraint.Stream{stream})
	})
}

func TestDebug_LookupOutsideWriting(t *testing.T) {
	w, frame := debugWorld(t)
	ctx := &WriteContext{world: w, frame: frame}

	expectPanic(t, ErrInvalidPhase, func() { ctx.BodyIndex(frame.Bodies[0].Handle) })
	expectPanic(t, ErrInvalidPhase, func() { ctx.StaticIndex(frame.Bodies[0].Handle) })

	w.setPhase(PhaseWriting)
	defer w.setPhase(PhaseIdle)
	if i, ok := ctx.BodyIndex(frame.Bodies[1].Handle); !ok || i != 1 {
		t.Errorf("BodyIndex() = %d, %v, want 1, true", i, ok)
	}
}

func TestDebug_VerifyPairPanics(t *testing.T) {
	w, frame := debugWorld(t)
	ctx := &WriteContext{world: w, frame: frame}
	w.setPhase(PhaseWriting)
	defer w.setPhase(PhaseIdle)

	swapped := constraint.Record{
		Kind:    constraint.KindContactBody,
		Pair:    constraint.BodyPair{A: 0, B: 1},
		HandleA: frame.Bodies[1].Handle,
		HandleB: frame.Bodies[0].Handle,
	}
	expectPanic(t, ErrHandleMismatch, func() { _ = ctx.VerifyPair(&swapped) })

	valid := swapped
	valid.HandleA, valid.HandleB = frame.Bodies[0].Handle, frame.Bodies[1].Handle
	if err := ctx.VerifyPair(&valid); err != nil {
		t.Errorf("VerifyPair() error = %v", err)
	}
}

func TestDebug_StepRunsChecks(t *testing.T) {
	w, _ := debugWorld(t)
	w.AddBody(createPlane(mgl64.Vec3{0, 1, 0}, -0.45))

	// Every built-in writer and the batch verification pass in a full step
	for range 10 {
		w.Step(1.0 / 60)
	}
}
