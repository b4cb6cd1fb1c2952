package epa

import (
	"cmp"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope with its outward normal and its distance to the origin
type Face struct {
	Points   [3]mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Edge is an undirected polytope edge, stored with A < B
type Edge struct {
	A, B mgl64.Vec3
}

func newEdge(a, b mgl64.Vec3) Edge {
	if compareVec3(a, b) > 0 {
		return Edge{A: b, B: a}
	}
	return Edge{A: a, B: b}
}

// compareVec3 orders vectors lexicographically on x, y, then z
func compareVec3(a, b mgl64.Vec3) int {
	if c := cmp.Compare(a[0], b[0]); c != 0 {
		return c
	}
	if c := cmp.Compare(a[1], b[1]); c != 0 {
		return c
	}
	return cmp.Compare(a[2], b[2])
}
