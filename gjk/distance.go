package gjk

import (
	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	distanceMaxIterations = 64
	// distanceTolerance is the relative progress below which the query stops
	distanceTolerance = 1e-9
	overlapEpsilon    = 1e-12
)

// ClosestPoints is the result of a distance query between separated colliders
type ClosestPoints struct {
	// PointA and PointB are the witness points on each surface
	PointA mgl64.Vec3
	PointB mgl64.Vec3
	// Normal points from A to B
	Normal   mgl64.Vec3
	Distance float64
}

// vertex is a Minkowski difference point with the support points it came from
type vertex struct {
	w, a, b mgl64.Vec3
}

type distanceSimplex struct {
	vertices [4]vertex
	weights  [4]float64
	count    int
}

func (s *distanceSimplex) keep(indices ...int) {
	var vertices [4]vertex
	var weights [4]float64
	for i, index := range indices {
		vertices[i] = s.vertices[index]
		weights[i] = s.weights[index]
	}
	s.vertices, s.weights, s.count = vertices, weights, len(indices)
}

// closest returns the point of the simplex closest to the origin
func (s *distanceSimplex) closest() mgl64.Vec3 {
	var v mgl64.Vec3
	for i := range s.count {
		v = v.Add(s.vertices[i].w.Mul(s.weights[i]))
	}
	return v
}

func (s *distanceSimplex) witnesses() (mgl64.Vec3, mgl64.Vec3) {
	var a, b mgl64.Vec3
	for i := range s.count {
		a = a.Add(s.vertices[i].a.Mul(s.weights[i]))
		b = b.Add(s.vertices[i].b.Mul(s.weights[i]))
	}
	return a, b
}

func support(a, b actor.Collider, direction mgl64.Vec3) vertex {
	pa := a.SupportWorld(direction)
	pb := b.SupportWorld(direction.Mul(-1))
	return vertex{w: pa.Sub(pb), a: pa, b: pb}
}

// Distance computes the closest points of two convex colliders.
// It returns false when the colliders overlap, in which case the penetration
// has to be resolved with Intersect and EPA.
func Distance(a, b actor.Collider) (ClosestPoints, bool) {
	direction := a.Center().Sub(b.Center())
	if direction.LenSqr() < overlapEpsilon {
		direction = mgl64.Vec3{1, 0, 0}
	}

	var s distanceSimplex
	s.vertices[0] = support(a, b, direction.Mul(-1))
	s.weights[0] = 1
	s.count = 1
	v := s.vertices[0].w

	for range distanceMaxIterations {
		vv := v.Dot(v)
		if vv < overlapEpsilon {
			return ClosestPoints{}, false
		}

		next := support(a, b, v.Mul(-1))
		// No more progress toward the origin
		if vv-v.Dot(next.w) <= distanceTolerance*vv || s.contains(next.w) {
			break
		}

		s.vertices[s.count] = next
		s.count++

		if !s.solve() {
			// Origin enclosed by the tetrahedron
			return ClosestPoints{}, false
		}
		v = s.closest()
	}

	pointA, pointB := s.witnesses()
	distance := v.Len()
	if distance < 1e-6 {
		return ClosestPoints{}, false
	}

	return ClosestPoints{
		PointA:   pointA,
		PointB:   pointB,
		Normal:   v.Mul(-1 / distance),
		Distance: distance,
	}, true
}

func (s *distanceSimplex) contains(w mgl64.Vec3) bool {
	for i := range s.count {
		if s.vertices[i].w.Sub(w).LenSqr() < overlapEpsilon {
			return true
		}
	}
	return false
}

// solve reduces the simplex to the feature closest to the origin and sets the
// barycentric weights of that point. It returns false when the origin lies
// inside a full tetrahedron.
func (s *distanceSimplex) solve() bool {
	switch s.count {
	case 2:
		s.solveSegment(0, 1)
	case 3:
		s.solveTriangle(0, 1, 2)
	case 4:
		return s.solveTetrahedron()
	}
	return true
}

func (s *distanceSimplex) solveSegment(i, j int) {
	a, b := s.vertices[i].w, s.vertices[j].w
	ab := b.Sub(a)

	denominator := ab.Dot(ab)
	t := 0.0
	if denominator > overlapEpsilon {
		t = -a.Dot(ab) / denominator
	}

	switch {
	case t <= 0:
		s.weights[i] = 1
		s.keep(i)
	case t >= 1:
		s.weights[j] = 1
		s.keep(j)
	default:
		s.weights[i], s.weights[j] = 1-t, t
		s.keep(i, j)
	}
}

// solveTriangle is the closest point of a triangle to the origin, by Voronoi regions
func (s *distanceSimplex) solveTriangle(i, j, k int) {
	a, b, c := s.vertices[i].w, s.vertices[j].w, s.vertices[k].w
	ab := b.Sub(a)
	ac := c.Sub(a)

	ap := a.Mul(-1)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		s.weights[i] = 1
		s.keep(i)
		return
	}

	bp := b.Mul(-1)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		s.weights[j] = 1
		s.keep(j)
		return
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		t := d1 / (d1 - d3)
		s.weights[i], s.weights[j] = 1-t, t
		s.keep(i, j)
		return
	}

	cp := c.Mul(-1)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		s.weights[k] = 1
		s.keep(k)
		return
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		s.weights[i], s.weights[k] = 1-t, t
		s.keep(i, k)
		return
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		t := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		s.weights[j], s.weights[k] = 1-t, t
		s.keep(j, k)
		return
	}

	sum := va + vb + vc
	if sum == 0 {
		// Degenerate triangle, fall back to its longest edge
		s.solveSegment(i, j)
		return
	}
	v, w := vb/sum, vc/sum
	s.weights[i], s.weights[j], s.weights[k] = 1-v-w, v, w
	s.keep(i, j, k)
}

func (s *distanceSimplex) solveTetrahedron() bool {
	faces := [4][4]int{
		{0, 1, 2, 3},
		{0, 2, 3, 1},
		{0, 3, 1, 2},
		{1, 3, 2, 0},
	}

	best := s
	bestDistance := -1.0
	for _, face := range faces {
		if !originOutside(s.vertices[face[0]].w, s.vertices[face[1]].w, s.vertices[face[2]].w, s.vertices[face[3]].w) {
			continue
		}

		candidate := *s
		candidate.solveTriangle(face[0], face[1], face[2])
		distance := candidate.closest().LenSqr()
		if bestDistance < 0 || distance < bestDistance {
			copied := candidate
			best, bestDistance = &copied, distance
		}
	}

	if bestDistance < 0 {
		return false
	}
	*s = *best
	return true
}

// originOutside reports whether the origin and d lie on opposite sides of the plane abc
func originOutside(a, b, c, d mgl64.Vec3) bool {
	normal := b.Sub(a).Cross(c.Sub(a))
	signOrigin := a.Mul(-1).Dot(normal)
	signD := d.Sub(a).Dot(normal)
	if signD*signD < 1e-18 {
		// Flat tetrahedron: every face is a candidate
		return true
	}
	return signOrigin*signD < 0
}
