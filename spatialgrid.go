package anna

import (
	"math"
	"slices"

	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// maxCellsPerObject is the cell span above which an object is kept in the
// oversized list instead of the cells
const maxCellsPerObject = 64

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the ids of the objects overlapping it
type Cell struct {
	ids []int
}

// SpatialGrid is a uniform grid hashed into a fixed number of cells.
// Objects are identified by a caller-chosen dense id.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
	buckets  int

	aabbs []actor.AABB
	// oversized objects span too many cells and are tested against every query
	oversized []int
}

// NewSpatialGrid creates a grid of cellSize cells, hashed into numCells slots
// (rounded up to a power of two), with buckets partitions
func NewSpatialGrid(cellSize float64, numCells, buckets int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].ids = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
		buckets:  max(buckets, 1),
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Buckets returns the number of partitions of the grid
func (sg *SpatialGrid) Buckets() int {
	return sg.buckets
}

// Bucket is the partition of an AABB: the hashed cell of its minimum corner
func (sg *SpatialGrid) Bucket(aabb actor.AABB) int {
	return sg.hashCell(sg.worldToCell(aabb.Min)) % sg.buckets
}

// Len returns the number of inserted objects
func (sg *SpatialGrid) Len() int {
	return len(sg.aabbs)
}

// AABB returns the box an object was inserted with
func (sg *SpatialGrid) AABB(id int) actor.AABB {
	return sg.aabbs[id]
}

// Insert adds an object to every cell its AABB overlaps.
// Ids must be inserted densely from 0.
func (sg *SpatialGrid) Insert(id int, aabb actor.AABB) {
	if id >= len(sg.aabbs) {
		sg.aabbs = slices.Grow(sg.aabbs, id+1-len(sg.aabbs))[:id+1]
	}
	sg.aabbs[id] = aabb

	if sg.spansTooManyCells(aabb) {
		sg.oversized = append(sg.oversized, id)
		return
	}

	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].ids = append(sg.cells[cellIdx].ids, id)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].ids = sg.cells[i].ids[:0]
	}
	sg.aabbs = sg.aabbs[:0]
	sg.oversized = sg.oversized[:0]
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].ids) > 1 {
			slices.Sort(sg.cells[i].ids)
		}
	}
}

// Cursor returns a query state for one goroutine. Cursors of the same grid
// may query concurrently once the grid is built.
func (sg *SpatialGrid) Cursor() *Cursor {
	return &Cursor{grid: sg, stamps: make([]uint32, len(sg.aabbs))}
}

// Cursor deduplicates the objects found in several cells
type Cursor struct {
	grid   *SpatialGrid
	stamps []uint32
	stamp  uint32
}

// Query calls fn once for every object whose AABB overlaps aabb, in no
// particular order
func (c *Cursor) Query(aabb actor.AABB, fn func(id int)) {
	sg := c.grid
	c.stamp++
	if c.stamp == 0 {
		clear(c.stamps)
		c.stamp = 1
	}

	visit := func(id int) {
		if c.stamps[id] == c.stamp {
			return
		}
		c.stamps[id] = c.stamp
		if sg.aabbs[id].Overlaps(aabb) {
			fn(id)
		}
	}

	for _, id := range sg.oversized {
		visit(id)
	}

	if sg.spansTooManyCells(aabb) {
		for id := range sg.aabbs {
			visit(id)
		}
		return
	}

	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				for _, id := range sg.cells[sg.hashCell(CellKey{x, y, z})].ids {
					visit(id)
				}
			}
		}
	}
}

// Pairs calls fn for every pair of overlapping objects with idA < idB,
// ordered by idA then idB
func (sg *SpatialGrid) Pairs(fn func(idA, idB int)) {
	cursor := sg.Cursor()
	found := make([]int, 0, 16)
	for idA := range sg.aabbs {
		found = found[:0]
		cursor.Query(sg.aabbs[idA], func(idB int) {
			if idB > idA {
				found = append(found, idB)
			}
		})
		slices.Sort(found)
		for _, idB := range found {
			fn(idA, idB)
		}
	}
}

func (sg *SpatialGrid) spansTooManyCells(aabb actor.AABB) bool {
	cells := 1.0
	for i := range 3 {
		cells *= math.Floor(aabb.Max[i]/sg.cellSize) - math.Floor(aabb.Min[i]/sg.cellSize) + 1
	}
	return cells > maxCellsPerObject
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
