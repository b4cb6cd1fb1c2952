package anna

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
	"github.com/akmonengine/anna/narrowphase"
)

type slot struct {
	body       *actor.RigidBody
	generation uint32
}

// World owns the bodies and runs the fixed-step pipeline over them
type World struct {
	settings Settings
	logger   *slog.Logger

	slots []slot
	free  []uint32

	writers    []registration
	exclusions []ExclusionRule
	query      narrowphase.Query
	integrator Integrator

	frame   *Frame
	frameID uint64
	phase   atomic.Uint32

	// index is the world spatial index, rebuilt at the end of every step
	index       *SpatialGrid
	indexHandle []actor.Handle

	Events Events
}

// StepStats summarizes the last substep of a step
type StepStats struct {
	Frame       uint64
	Bodies      int
	Kinematics  int
	Statics     int
	Constraints int
	Batches     int
}

// NewWorld creates an empty world with the built-in axis-lock and contact
// writers registered
func NewWorld(settings Settings) (*World, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger := settings.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &World{
		settings: settings,
		logger:   logger,
		query:    narrowphase.New(logger),
		frame:    newFrame(settings),
		index:    NewSpatialGrid(settings.CellSize, settings.Cells, settings.Buckets),
		Events:   NewEvents(),
	}
	_ = w.RegisterWriter(AxisLockWriter{}, PriorityAxisLock)
	_ = w.RegisterWriter(ContactWriter{}, PriorityContact)
	return w, nil
}

func (w *World) Settings() Settings {
	return w.settings
}

// Phase returns the stage the world is running
func (w *World) Phase() Phase {
	return Phase(w.phase.Load())
}

func (w *World) setPhase(p Phase) {
	w.phase.Store(uint32(p))
}

// SetNarrowphase replaces the contact query
func (w *World) SetNarrowphase(query narrowphase.Query) {
	w.query = query
}

// SetIntegrator sets the integrator run after every substep. Without one the
// world only solves velocities.
func (w *World) SetIntegrator(integrator Integrator) {
	w.integrator = integrator
}

// RegisterWriter adds a constraint writer. Streams are merged by ascending
// priority, ties in registration order.
func (w *World) RegisterWriter(writer ConstraintWriter, priority int) error {
	if p := w.Phase(); p != PhaseIdle {
		return fmt.Errorf("%w: RegisterWriter during %v", ErrInvalidPhase, p)
	}
	w.writers = append(w.writers, registration{writer: writer, priority: priority, order: len(w.writers)})
	return nil
}

// Exclude forbids contacts between the groups selected by rule
func (w *World) Exclude(rule ExclusionRule) {
	w.exclusions = append(w.exclusions, rule)
}

// AddBody adds a rigid body to the world and returns its handle
func (w *World) AddBody(body *actor.RigidBody) actor.Handle {
	var index uint32
	if n := len(w.free); n > 0 {
		index = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		index = uint32(len(w.slots))
		w.slots = append(w.slots, slot{})
	}

	s := &w.slots[index]
	s.body = body
	s.generation++
	return actor.Handle{Index: index, Generation: s.generation}
}

// RemoveBody removes a rigid body. The handle and every copy of it stop resolving.
func (w *World) RemoveBody(h actor.Handle) error {
	if _, ok := w.Body(h); !ok {
		return fmt.Errorf("%w: %v", ErrUnknownHandle, h)
	}

	w.slots[h.Index].body = nil
	w.free = append(w.free, h.Index)
	w.Events.forget(h)
	return nil
}

// Body resolves a handle
func (w *World) Body(h actor.Handle) (*actor.RigidBody, bool) {
	if !h.IsValid() || int(h.Index) >= len(w.slots) {
		return nil, false
	}
	s := w.slots[h.Index]
	if s.body == nil || s.generation != h.Generation {
		return nil, false
	}
	return s.body, true
}

// Len returns the number of bodies
func (w *World) Len() int {
	return len(w.slots) - len(w.free)
}

// Step advances the world by dt in Substeps substeps, then sends the
// collision events of the step
func (w *World) Step(dt float64) StepStats {
	if dt <= 0 {
		return StepStats{}
	}
	h := dt / float64(w.settings.Substeps)

	var stats StepStats
	for range w.settings.Substeps {
		stats = w.substep(h, dt)
	}

	for _, s := range w.slots {
		if s.body != nil && s.body.BodyType == actor.BodyTypeKinematic {
			s.body.PreviousTransform = s.body.Transform
		}
	}
	w.rebuildIndex()
	w.Events.flush()
	return stats
}

func (w *World) substep(h, dt float64) StepStats {
	frame, records := w.prepare(h, dt)

	w.setPhase(PhaseSolving)
	batches := w.solver().solve(frame, records)
	w.writeBack(frame)
	w.Events.recordContacts(records)

	if w.integrator != nil {
		for _, s := range w.slots {
			if s.body != nil && s.body.BodyType == actor.BodyTypeDynamic {
				w.integrator.Integrate(s.body, h)
			}
		}
	}
	w.setPhase(PhaseDone)

	stats := StepStats{
		Frame:       frame.ID,
		Bodies:      len(frame.Bodies),
		Kinematics:  len(frame.Kinematics),
		Statics:     len(frame.Statics),
		Constraints: len(records),
		Batches:     batches.Len(),
	}
	if w.logger.Enabled(context.Background(), slog.LevelDebug) {
		w.logger.Debug("substep",
			slog.Uint64("frame", stats.Frame),
			slog.Int("bodies", stats.Bodies),
			slog.Int("kinematics", stats.Kinematics),
			slog.Int("statics", stats.Statics),
			slog.Int("constraints", stats.Constraints),
			slog.Int("batches", stats.Batches))
	}

	w.setPhase(PhaseIdle)
	return stats
}

func (w *World) solver() solver {
	return solver{
		workers:        w.settings.Workers,
		iterations:     w.settings.Iterations,
		clippingFactor: w.settings.ClippingFactor,
	}
}

// writeBack copies the solved velocities to the bodies
func (w *World) writeBack(frame *Frame) {
	for i := range frame.Bodies {
		record := &frame.Bodies[i]
		body := w.slots[record.Handle.Index].body
		body.Velocity = record.Velocity
		body.AngularVelocity = record.AngularVelocity
	}
}

// rebuildIndex indexes the bounds of every body at the end of the step
func (w *World) rebuildIndex() {
	w.index.Clear()
	w.indexHandle = w.indexHandle[:0]
	for index, s := range w.slots {
		if s.body == nil {
			continue
		}
		w.index.Insert(len(w.indexHandle), s.body.AABB())
		w.indexHandle = append(w.indexHandle, actor.Handle{Index: uint32(index), Generation: s.generation})
	}
	w.index.SortCells()
}

// QueryAABB returns the handles of the bodies overlapping aabb at the end of
// the last step, in handle order
func (w *World) QueryAABB(aabb actor.AABB) []actor.Handle {
	var handles []actor.Handle
	w.index.Cursor().Query(aabb, func(id int) {
		handles = append(handles, w.indexHandle[id])
	})
	slices.SortFunc(handles, func(a, b actor.Handle) int {
		if a == b {
			return 0
		}
		if a.Less(b) {
			return -1
		}
		return 1
	})
	return handles
}

// QueryPairs calls fn for every pair of bodies whose bounds overlapped at the
// end of the last step
func (w *World) QueryPairs(fn func(a, b actor.Handle)) {
	w.index.Pairs(func(idA, idB int) {
		fn(w.indexHandle[idA], w.indexHandle[idB])
	})
}

// prepare runs the stages of a substep up to the merged stream
func (w *World) prepare(h, dt float64) (*Frame, []constraint.Record) {
	w.frameID++
	frame := w.frame
	frame.reset(w.frameID, w.settings.frameConstants(h))

	w.setPhase(PhaseCapturing)
	w.capture(frame, dt)
	frame.buildBroadphase()

	w.setPhase(PhaseWriting)
	streams := w.write(frame)

	w.setPhase(PhaseMerging)
	return frame, merge(frame.ID, streams)
}
