package epa

import (
	"fmt"
	"slices"
	"sync"

	"github.com/akmonengine/anna/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// PolytopeBuilder holds the faces of the expanding polytope and the scratch
// buffers of the expansion. Builders are pooled and reused.
type PolytopeBuilder struct {
	faces []Face

	points  []mgl64.Vec3
	edges   []edgeCount
	visible []int
}

// edgeCount is a boundary candidate: an edge seen once by the visible faces
// lies on the horizon, an edge seen twice is interior
type edgeCount struct {
	edge  Edge
	count int
}

var polytopeBuilderPool = sync.Pool{
	New: func() interface{} {
		return &PolytopeBuilder{
			faces:   make([]Face, 0, polytopeInitialCapacity),
			points:  make([]mgl64.Vec3, 0, polytopeInitialCapacity),
			edges:   make([]edgeCount, 0, polytopeInitialCapacity),
			visible: make([]int, 0, polytopeInitialCapacity),
		}
	},
}

func (b *PolytopeBuilder) Reset() {
	b.faces = b.faces[:0]
	b.points = b.points[:0]
	b.edges = b.edges[:0]
	b.visible = b.visible[:0]
}

// BuildInitialFaces creates the four faces of the GJK tetrahedron
func (b *PolytopeBuilder) BuildInitialFaces(simplex *gjk.Simplex) error {
	if simplex.Count != 4 {
		return fmt.Errorf("epa: invalid simplex count %d, want 4", simplex.Count)
	}

	p := simplex.Points
	candidates := [4]Face{
		newFaceOutward(p[0], p[1], p[2], p[3]),
		newFaceOutward(p[0], p[2], p[3], p[1]),
		newFaceOutward(p[0], p[3], p[1], p[2]),
		newFaceOutward(p[1], p[3], p[2], p[0]),
	}

	for _, face := range candidates {
		if face.Distance >= MinFaceDistance {
			b.faces = append(b.faces, face)
		}
	}
	// Too degenerate to filter: keep the whole tetrahedron
	if len(b.faces) < 3 {
		b.faces = append(b.faces[:0], candidates[:]...)
	}
	return nil
}

// newFaceOutward builds the face p0 p1 p2 with its normal pointing away from
// the opposite point and away from the origin
func newFaceOutward(p0, p1, p2, opposite mgl64.Vec3) Face {
	face := Face{Points: [3]mgl64.Vec3{p0, p1, p2}}

	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	length := normal.Len()
	if length < 1e-8 {
		face.Normal = mgl64.Vec3{0, 1, 0}
		face.Distance = MinFaceDistance
		return face
	}
	normal = normal.Mul(1 / length)

	if normal.Dot(opposite.Sub(p0)) > 0 {
		normal = normal.Mul(-1)
	}

	distance := p0.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}

	face.Normal = snapNormalToAxis(normal)
	face.Distance = max(distance, MinFaceDistance)
	return face
}

// FindClosestFaceIndex returns the index of the face closest to the origin,
// or -1 without faces. Ties go to the lowest index.
func (b *PolytopeBuilder) FindClosestFaceIndex() int {
	if len(b.faces) == 0 {
		return -1
	}

	closest := 0
	for i := 1; i < len(b.faces); i++ {
		if b.faces[i].Distance < b.faces[closest].Distance {
			closest = i
		}
	}
	return closest
}

func (b *PolytopeBuilder) removeFace(index int) {
	b.faces = slices.Delete(b.faces, index, index+1)
}

// centroid is the mean of the distinct polytope vertices
func (b *PolytopeBuilder) centroid() mgl64.Vec3 {
	b.points = b.points[:0]
	for i := range b.faces {
		for _, point := range b.faces[i].Points {
			index, found := slices.BinarySearchFunc(b.points, point, compareVec3)
			if !found {
				b.points = slices.Insert(b.points, index, point)
			}
		}
	}

	if len(b.points) == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for _, point := range b.points {
		sum = sum.Add(point)
	}
	return sum.Mul(1 / float64(len(b.points)))
}

// AddPoint expands the polytope with support: the faces that see it are
// removed and the horizon edges are joined to it
func (b *PolytopeBuilder) AddPoint(support mgl64.Vec3, closestIndex int) {
	centroid := b.centroid()

	b.visible = b.visible[:0]
	for i := range b.faces {
		if support.Sub(b.faces[i].Points[0]).Dot(b.faces[i].Normal) > 0 {
			b.visible = append(b.visible, i)
		}
	}
	// Never remove every face
	if len(b.visible) == 0 || len(b.visible) >= len(b.faces) {
		b.visible = append(b.visible[:0], closestIndex)
	}

	b.collectHorizon()

	// Remove from the back so earlier indices stay valid
	for i := len(b.visible) - 1; i >= 0; i-- {
		b.removeFace(b.visible[i])
	}

	for _, e := range b.edges {
		if e.count == 1 {
			b.faces = append(b.faces, newFaceOutward(e.edge.A, e.edge.B, support, centroid))
		}
	}

	if len(b.faces) == 0 {
		b.faces = append(b.faces, Face{
			Points:   [3]mgl64.Vec3{support, support, support},
			Normal:   mgl64.Vec3{0, 1, 0},
			Distance: MinFaceDistance,
		})
	}
}

// collectHorizon counts the edges of the visible faces, in face order
func (b *PolytopeBuilder) collectHorizon() {
	b.edges = b.edges[:0]
	for _, index := range b.visible {
		face := &b.faces[index]
		for j := range 3 {
			edge := newEdge(face.Points[j], face.Points[(j+1)%3])

			found := slices.IndexFunc(b.edges, func(e edgeCount) bool { return e.edge == edge })
			if found >= 0 {
				b.edges[found].count++
			} else {
				b.edges = append(b.edges, edgeCount{edge: edge, count: 1})
			}
		}
	}
}
