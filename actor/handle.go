package actor

import "fmt"

// Handle is a stable generational reference to a body owned by a world.
// The index addresses a slot, the generation tells apart successive
// occupants of the same slot. The zero Handle is never valid.
type Handle struct {
	Index      uint32
	Generation uint32
}

// IsValid reports whether the handle was ever issued
func (h Handle) IsValid() bool {
	return h.Generation != 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Generation)
}

// Less orders handles by slot then generation
func (h Handle) Less(other Handle) bool {
	if h.Index != other.Index {
		return h.Index < other.Index
	}
	return h.Generation < other.Generation
}
