// Package epa implements the Expanding Polytope Algorithm and contact
// manifold generation for overlapping convex colliders.
//
// EPA starts from the tetrahedron left by gjk.Intersect and expands it toward
// the boundary of the Minkowski difference A - B. The face closest to the
// origin gives the minimum translation: its normal points from A to B and its
// distance is the penetration depth.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxIterations limits the polytope expansion
	MaxIterations = 32

	// ConvergenceTolerance is the distance gain below which the closest face is final
	ConvergenceTolerance = 0.001

	// MinFaceDistance is the smallest face distance kept; closer faces are degenerate
	MinFaceDistance = 0.0001

	// NormalSnapThreshold clamps nearly-zero normal components to zero
	NormalSnapThreshold = 1e-8

	// DegeneratePenetrationEstimate is the depth used when the simplex is too
	// small to measure one
	DegeneratePenetrationEstimate = 0.01

	polytopeInitialCapacity = 8
)

// ErrNoConvergence is returned when the polytope does not converge
var ErrNoConvergence = errors.New("epa: no convergence")

// Penetration is the minimum translation separating B from A
type Penetration struct {
	// Normal points from A to B
	Normal mgl64.Vec3
	Depth  float64
}

// EPA computes the penetration of two overlapping colliders from the simplex
// produced by gjk.Intersect.
func EPA(a, b actor.Collider, simplex *gjk.Simplex) (Penetration, error) {
	if simplex.Count < 4 {
		return degeneratePenetration(a, b, simplex), nil
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(simplex); err != nil {
		return Penetration{}, err
	}

	for range MaxIterations {
		if len(builder.faces) == 0 {
			break
		}

		index := builder.FindClosestFaceIndex()
		closest := builder.faces[index]

		if closest.Distance < MinFaceDistance {
			builder.removeFace(index)
			continue
		}

		support := gjk.MinkowskiSupport(a, b, closest.Normal)
		if support.Dot(closest.Normal)-closest.Distance < ConvergenceTolerance {
			return Penetration{Normal: closest.Normal, Depth: closest.Distance}, nil
		}

		builder.AddPoint(support, index)
	}

	return Penetration{}, fmt.Errorf("%w after %d iterations", ErrNoConvergence, MaxIterations)
}

// degeneratePenetration estimates the penetration when the shapes only touch
// and GJK could not build a tetrahedron
func degeneratePenetration(a, b actor.Collider, simplex *gjk.Simplex) Penetration {
	if simplex.Count >= 2 {
		closest := simplex.Points[0]
		if p := simplex.Points[1]; p.LenSqr() < closest.LenSqr() {
			closest = p
		}
		if length := closest.Len(); length > NormalSnapThreshold {
			return Penetration{Normal: closest.Mul(1 / length), Depth: length}
		}
	}

	normal := b.Center().Sub(a.Center())
	if length := normal.Len(); length < NormalSnapThreshold {
		normal = mgl64.Vec3{0, 1, 0}
	} else {
		normal = normal.Mul(1 / length)
	}

	return Penetration{Normal: normal, Depth: DegeneratePenetrationEstimate}
}

// snapNormalToAxis zeroes the components of normal below NormalSnapThreshold
// and renormalizes it
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := range 3 {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	length := normal.Len()
	if length < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Mul(1 / length)
}
