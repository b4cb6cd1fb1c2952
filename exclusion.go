package anna

import (
	"slices"

	"github.com/akmonengine/anna/actor"
)

// Selector matches broadphase groups by layer and motion type.
// Empty Layers match every layer, an empty Motions mask every motion type.
type Selector struct {
	Layers  []uint16
	Motions actor.BodyTypeMask
}

// Matches reports whether group g is selected
func (s Selector) Matches(g actor.Group) bool {
	if !s.Motions.Contains(g.BodyType()) {
		return false
	}
	return len(s.Layers) == 0 || slices.Contains(s.Layers, g.Layer())
}

// ExclusionRule forbids contacts between any group matching A and any group matching B
type ExclusionRule struct {
	A, B Selector
}

// ExclusionSet is the symmetric set of group pairs that never collide
type ExclusionSet struct {
	keys map[uint32]struct{}
}

func exclusionKey(a, b actor.Group) uint32 {
	return uint32(a)<<16 | uint32(b)
}

// NewExclusionSet expands the rules over the groups present in a frame.
// Both orderings of every matching pair are inserted.
func NewExclusionSet(rules []ExclusionRule, groups []actor.Group) ExclusionSet {
	set := ExclusionSet{keys: make(map[uint32]struct{})}
	for _, rule := range rules {
		for _, a := range groups {
			if !rule.A.Matches(a) {
				continue
			}
			for _, b := range groups {
				if rule.B.Matches(b) {
					set.keys[exclusionKey(a, b)] = struct{}{}
					set.keys[exclusionKey(b, a)] = struct{}{}
				}
			}
		}
	}
	return set
}

// Excluded reports whether groups a and b must not collide
func (s ExclusionSet) Excluded(a, b actor.Group) bool {
	_, ok := s.keys[exclusionKey(a, b)]
	return ok
}

// Len returns the number of packed keys, both orderings counted
func (s ExclusionSet) Len() int {
	return len(s.keys)
}

// GroupClass is the role of a broadphase group in contact generation
type GroupClass uint8

const (
	ClassRigidBody GroupClass = iota
	ClassKinematic
	ClassEnvironment
)

func (c GroupClass) String() string {
	switch c {
	case ClassRigidBody:
		return "rigidBody"
	case ClassKinematic:
		return "kinematic"
	case ClassEnvironment:
		return "environment"
	}
	return "unknown"
}

var (
	rigidBodySelector   = Selector{Motions: actor.MaskDynamic}
	kinematicSelector   = Selector{Motions: actor.MaskKinematic}
	environmentSelector = Selector{Motions: actor.MaskStatic}
)

// Classify assigns a class to every group
func Classify(groups []actor.Group) map[actor.Group]GroupClass {
	classes := make(map[actor.Group]GroupClass, len(groups))
	for _, g := range groups {
		switch {
		case rigidBodySelector.Matches(g):
			classes[g] = ClassRigidBody
		case kinematicSelector.Matches(g):
			classes[g] = ClassKinematic
		case environmentSelector.Matches(g):
			classes[g] = ClassEnvironment
		}
	}
	return classes
}
