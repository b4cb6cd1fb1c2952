package epa

import (
	"math"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	maxManifoldPoints = 4
	clipTolerance     = 1e-6
	// largeFeatureSize tells apart plane features, which need no side clipping
	largeFeatureSize = 100.0
)

// GenerateManifold builds the contact points of two colliders along normal
// (pointing from A to B) using Sutherland-Hodgman clipping of their contact
// features.
//
// Every point carries its signed distance along the normal, negative when
// penetrating. Points farther apart than maxDistance are dropped. depth is the
// penetration estimate used when clipping leaves nothing: -depth becomes the
// distance of the single fallback point.
func GenerateManifold(a, b actor.Collider, normal mgl64.Vec3, depth, maxDistance float64) []constraint.ContactPoint {
	featureA := worldFeature(a, normal)
	featureB := worldFeature(b, normal.Mul(-1))

	// The feature with more vertices is the reference face
	referenceIsA := len(featureA) >= len(featureB)
	reference, incident := featureA, featureB
	if !referenceIsA {
		reference, incident = featureB, featureA
	}

	var points []constraint.ContactPoint
	if len(incident) > 1 && len(reference) >= 3 {
		clipped := clipIncidentAgainstReference(incident, reference, normal)
		referencePoint := reference[0]

		for _, p := range clipped {
			var distance float64
			var position mgl64.Vec3
			if referenceIsA {
				// B vertex measured from the face of A
				distance = p.Sub(referencePoint).Dot(normal)
				position = p.Sub(normal.Mul(distance * 0.5))
			} else {
				// A vertex measured from the face of B
				distance = referencePoint.Sub(p).Dot(normal)
				position = p.Add(normal.Mul(distance * 0.5))
			}

			if distance <= maxDistance {
				points = append(points, constraint.ContactPoint{Position: position, Distance: distance})
			}
		}
	}

	if len(points) == 0 {
		points = supportPoint(a, b, normal, depth, maxDistance)
	}

	if len(points) > maxManifoldPoints {
		points = reduceTo4Points(points, normal)
	}
	return points
}

// supportPoint is the single contact of the deepest points of both shapes.
// It is used for curved shapes and when clipping leaves nothing.
func supportPoint(a, b actor.Collider, normal mgl64.Vec3, depth, maxDistance float64) []constraint.ContactPoint {
	pointA := a.SupportWorld(normal)
	pointB := b.SupportWorld(normal.Mul(-1))

	distance := pointB.Sub(pointA).Dot(normal)
	if depth > 0 {
		distance = min(distance, -depth)
	}
	if distance > maxDistance {
		return nil
	}

	return []constraint.ContactPoint{{
		Position: pointA.Add(normal.Mul(distance * 0.5)),
		Distance: distance,
	}}
}

// worldFeature returns the world vertices of the feature of c facing direction
func worldFeature(c actor.Collider, direction mgl64.Vec3) []mgl64.Vec3 {
	local := c.Shape.ContactFeature(c.Transform.Rotation.Conjugate().Rotate(direction))
	world := make([]mgl64.Vec3, len(local))
	for i, point := range local {
		world[i] = c.Transform.Apply(point)
	}
	return world
}

// clipIncidentAgainstReference clips the incident polygon against the side
// planes of the reference polygon
func clipIncidentAgainstReference(incident, reference []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec3 {
	if isLargePlane(reference) || len(reference) < 2 {
		return incident
	}

	center := computeCenter(reference)
	output := incident
	for i := range reference {
		if len(output) == 0 {
			break
		}

		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		// Side plane through the edge, normal pointing toward the face centre
		sideNormal := v2.Sub(v1).Cross(normal).Normalize()
		if center.Sub(v1).Dot(sideNormal) < 0 {
			sideNormal = sideNormal.Mul(-1)
		}

		output = clipPolygonAgainstPlane(output, v1, sideNormal)
	}
	return output
}

// clipPolygonAgainstPlane keeps the part of polygon on the positive side of the plane
func clipPolygonAgainstPlane(polygon []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3) []mgl64.Vec3 {
	if len(polygon) == 0 {
		return polygon
	}

	output := make([]mgl64.Vec3, 0, len(polygon)+2)
	for i, current := range polygon {
		next := polygon[(i+1)%len(polygon)]

		currentInside := current.Sub(planePoint).Dot(planeNormal) >= -clipTolerance
		nextInside := next.Sub(planePoint).Dot(planeNormal) >= -clipTolerance

		if currentInside {
			output = append(output, current)
		}
		if currentInside != nextInside {
			output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
		}
	}
	return output
}

// lineIntersectPlane returns the point of segment p1 p2 on the plane
func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	direction := p2.Sub(p1)
	denominator := direction.Dot(planeNormal)
	if math.Abs(denominator) < 1e-10 {
		return p1
	}

	t := -p1.Sub(planePoint).Dot(planeNormal) / denominator
	t = math.Max(0, math.Min(1, t))
	return p1.Add(direction.Mul(t))
}

func computeCenter(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}

	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// isLargePlane detects the 4 point square returned by plane features
func isLargePlane(feature []mgl64.Vec3) bool {
	if len(feature) != 4 {
		return false
	}

	for i := range feature {
		for j := i + 1; j < len(feature); j++ {
			if feature[i].Sub(feature[j]).Len() > largeFeatureSize {
				return true
			}
		}
	}
	return false
}

// reduceTo4Points keeps the extreme points along the two tangent directions,
// in input order, so the result only depends on the input
func reduceTo4Points(points []constraint.ContactPoint, normal mgl64.Vec3) []constraint.ContactPoint {
	tangent1, tangent2 := actor.TangentBasis(normal)

	var extremes [4]int
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		x := p.Position.Dot(tangent1)
		y := p.Position.Dot(tangent2)

		if x < minX {
			minX, extremes[0] = x, i
		}
		if x > maxX {
			maxX, extremes[1] = x, i
		}
		if y < minY {
			minY, extremes[2] = y, i
		}
		if y > maxY {
			maxY, extremes[3] = y, i
		}
	}

	result := make([]constraint.ContactPoint, 0, maxManifoldPoints)
	for i, p := range points {
		for _, extreme := range extremes {
			if extreme == i {
				result = append(result, p)
				break
			}
		}
	}
	return result
}
