package anna

import (
	"slices"

	"github.com/akmonengine/anna/actor"
)

// ObjectKind tells which frame array a broadphase id refers to
type ObjectKind uint8

const (
	ObjectDynamic ObjectKind = iota
	ObjectKinematic
	ObjectStatic
)

// Frame is the arena of one substep. Every index it hands out is only valid
// until the next substep resets it.
type Frame struct {
	ID        uint64
	Constants FrameConstants

	Bodies     []actor.BodyRecord
	Kinematics []actor.KinematicRecord
	Statics    []actor.StaticRecord

	BodyIndex      map[actor.Handle]int
	KinematicIndex map[actor.Handle]int
	StaticIndex    map[actor.Handle]int

	// Grid indexes every object: dynamic ids first, then kinematic, then static
	Grid *SpatialGrid
	// Groups are the distinct broadphase groups of the frame, sorted
	Groups []actor.Group
}

func newFrame(s Settings) *Frame {
	return &Frame{
		BodyIndex:      make(map[actor.Handle]int),
		KinematicIndex: make(map[actor.Handle]int),
		StaticIndex:    make(map[actor.Handle]int),
		Grid:           NewSpatialGrid(s.CellSize, s.Cells, s.Buckets),
	}
}

// reset empties the arena for frame id, keeping its buffers
func (f *Frame) reset(id uint64, constants FrameConstants) {
	f.ID = id
	f.Constants = constants
	f.Bodies = f.Bodies[:0]
	f.Kinematics = f.Kinematics[:0]
	f.Statics = f.Statics[:0]
	clear(f.BodyIndex)
	clear(f.KinematicIndex)
	clear(f.StaticIndex)
	f.Grid.Clear()
	f.Groups = f.Groups[:0]
}

// ObjectID returns the broadphase id of the index-th object of kind
func (f *Frame) ObjectID(kind ObjectKind, index int) int {
	switch kind {
	case ObjectKinematic:
		return len(f.Bodies) + index
	case ObjectStatic:
		return len(f.Bodies) + len(f.Kinematics) + index
	}
	return index
}

// Object resolves a broadphase id into its kind and array index
func (f *Frame) Object(id int) (ObjectKind, int) {
	if id < len(f.Bodies) {
		return ObjectDynamic, id
	}
	id -= len(f.Bodies)
	if id < len(f.Kinematics) {
		return ObjectKinematic, id
	}
	return ObjectStatic, id - len(f.Kinematics)
}

// GroupOf returns the broadphase group of an object
func (f *Frame) GroupOf(id int) actor.Group {
	kind, index := f.Object(id)
	switch kind {
	case ObjectKinematic:
		return f.Kinematics[index].Group
	case ObjectStatic:
		return f.Statics[index].Group
	}
	return f.Bodies[index].Group
}

// buildBroadphase indexes every object of the frame and collects the groups
func (f *Frame) buildBroadphase() {
	for i := range f.Bodies {
		f.Grid.Insert(f.ObjectID(ObjectDynamic, i), f.Bodies[i].AABB)
		f.Groups = append(f.Groups, f.Bodies[i].Group)
	}
	for i := range f.Kinematics {
		f.Grid.Insert(f.ObjectID(ObjectKinematic, i), f.Kinematics[i].AABB)
		f.Groups = append(f.Groups, f.Kinematics[i].Group)
	}
	for i := range f.Statics {
		f.Grid.Insert(f.ObjectID(ObjectStatic, i), f.Statics[i].AABB)
		f.Groups = append(f.Groups, f.Statics[i].Group)
	}
	f.Grid.SortCells()

	slices.Sort(f.Groups)
	f.Groups = slices.Compact(f.Groups)
}
