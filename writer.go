package anna

import (
	"fmt"
	"log/slog"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
	"github.com/akmonengine/anna/narrowphase"
)

const (
	// PriorityAxisLock is the merge priority of the built-in axis-lock writer
	PriorityAxisLock = 100
	// PriorityContact is the merge priority of the built-in contact writer
	PriorityContact = 200
)

// ConstraintWriter appends the constraints of one concern to its own stream.
// Writers run in parallel and never see each other's streams.
type ConstraintWriter interface {
	Name() string
	Write(ctx *WriteContext, stream *constraint.Stream)
}

type registration struct {
	writer   ConstraintWriter
	priority int
	order    int
}

// WriteContext is the read-only view of the frame given to writers.
// Its lookups are only valid while the world is writing.
type WriteContext struct {
	world *World
	frame *Frame

	exclusions ExclusionSet
	classes    map[actor.Group]GroupClass
}

func (ctx *WriteContext) Frame() *Frame {
	return ctx.frame
}

func (ctx *WriteContext) Constants() FrameConstants {
	return ctx.frame.Constants
}

// Narrowphase returns the contact query of the world
func (ctx *WriteContext) Narrowphase() narrowphase.Query {
	return ctx.world.query
}

func (ctx *WriteContext) Exclusions() ExclusionSet {
	return ctx.exclusions
}

// Class returns the contact role of a group
func (ctx *WriteContext) Class(g actor.Group) GroupClass {
	return ctx.classes[g]
}

// Workers returns the goroutine budget a writer may use
func (ctx *WriteContext) Workers() int {
	return ctx.world.settings.Workers
}

func (ctx *WriteContext) Logger() *slog.Logger {
	return ctx.world.logger
}

// BodyIndex returns the frame index of a dynamic body
func (ctx *WriteContext) BodyIndex(h actor.Handle) (int, bool) {
	ctx.world.mustBePhase(PhaseWriting, "BodyIndex")
	i, ok := ctx.frame.BodyIndex[h]
	return i, ok
}

// KinematicIndex returns the frame index of a kinematic body
func (ctx *WriteContext) KinematicIndex(h actor.Handle) (int, bool) {
	ctx.world.mustBePhase(PhaseWriting, "KinematicIndex")
	i, ok := ctx.frame.KinematicIndex[h]
	return i, ok
}

// StaticIndex returns the frame index of a static body
func (ctx *WriteContext) StaticIndex(h actor.Handle) (int, bool) {
	ctx.world.mustBePhase(PhaseWriting, "StaticIndex")
	i, ok := ctx.frame.StaticIndex[h]
	return i, ok
}

// VerifyPair checks that the handles of r are the bodies its pair indexes.
// In debug builds a mismatch panics with ErrHandleMismatch.
func (ctx *WriteContext) VerifyPair(r *constraint.Record) error {
	ctx.world.mustBePhase(PhaseWriting, "VerifyPair")

	err := ctx.frame.verifyPair(r)
	if err != nil && debugChecks {
		panic(err)
	}
	return err
}

func (f *Frame) verifyPair(r *constraint.Record) error {
	if r.Pair.A < 0 || r.Pair.A >= len(f.Bodies) || f.Bodies[r.Pair.A].Handle != r.HandleA {
		return fmt.Errorf("%w: body A %v at index %d", ErrHandleMismatch, r.HandleA, r.Pair.A)
	}

	var handle actor.Handle
	var found bool
	switch r.Kind {
	case constraint.KindContactBody:
		if found = r.Pair.B >= 0 && r.Pair.B < len(f.Bodies); found {
			handle = f.Bodies[r.Pair.B].Handle
		}
	case constraint.KindContactKinematic:
		if found = r.Pair.B >= 0 && r.Pair.B < len(f.Kinematics); found {
			handle = f.Kinematics[r.Pair.B].Handle
		}
	case constraint.KindContactEnvironment:
		if found = r.Pair.B >= 0 && r.Pair.B < len(f.Statics); found {
			handle = f.Statics[r.Pair.B].Handle
		}
	default:
		if r.Pair.B != constraint.NoBody {
			return fmt.Errorf("%w: %v record with body B index %d", ErrHandleMismatch, r.Kind, r.Pair.B)
		}
		return nil
	}

	if !found || handle != r.HandleB {
		return fmt.Errorf("%w: body B %v at index %d", ErrHandleMismatch, r.HandleB, r.Pair.B)
	}
	return nil
}

// write runs every registered writer in parallel, each into a fresh stream
func (w *World) write(frame *Frame) []*constraint.Stream {
	ctx := &WriteContext{
		world:      w,
		frame:      frame,
		exclusions: NewExclusionSet(w.exclusions, frame.Groups),
		classes:    Classify(frame.Groups),
	}

	streams := make([]*constraint.Stream, len(w.writers))
	jobs := make([]func(), len(w.writers))
	for i, reg := range w.writers {
		streams[i] = constraint.NewStream(constraint.Tag{
			Writer:   reg.writer.Name(),
			Priority: reg.priority,
			Order:    reg.order,
			Frame:    frame.ID,
		}, frame.Grid.Buckets())
		jobs[i] = func() { reg.writer.Write(ctx, streams[i]) }
	}
	parallel(w.settings.Workers, jobs)
	return streams
}
