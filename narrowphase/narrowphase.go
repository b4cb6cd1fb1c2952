// Package narrowphase computes the contact manifolds of two placed shapes.
//
// Sphere, box and plane pairs with a closed form are solved analytically.
// Other convex pairs use GJK distance while separated, and GJK with EPA once
// they overlap. Every manifold normal points from A to B and every point
// carries its signed distance, negative when penetrating.
package narrowphase

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
	"github.com/akmonengine/anna/epa"
	"github.com/akmonengine/anna/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const maxPlanePoints = 4

// Query returns the contact manifolds of shape a at poseA and shape b at
// poseB, keeping only points closer than maxDistance
type Query interface {
	Contacts(a actor.Shape, poseA actor.Transform, b actor.Shape, poseB actor.Transform, maxDistance float64) []constraint.Manifold
}

// Default is the built-in Query. It is safe for concurrent use.
type Default struct {
	logger *slog.Logger
}

// New returns the default query. Dropped manifolds are reported to logger
// at warning level; a nil logger discards them.
func New(logger *slog.Logger) *Default {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Default{logger: logger}
}

func (d *Default) Contacts(a actor.Shape, poseA actor.Transform, b actor.Shape, poseB actor.Transform, maxDistance float64) []constraint.Manifold {
	ca := actor.Collider{Shape: a, Transform: poseA}
	cb := actor.Collider{Shape: b, Transform: poseB}

	var manifold constraint.Manifold
	switch {
	case a.Type() == actor.ShapeTypePlane && b.Type() == actor.ShapeTypePlane:
		return nil
	case a.Type() == actor.ShapeTypePlane:
		manifold = flip(d.pair(cb, ca, maxDistance))
	case b.Type() == actor.ShapeTypePlane:
		manifold = d.pair(ca, cb, maxDistance)
	case a.Type() == actor.ShapeTypeBox && b.Type() == actor.ShapeTypeSphere:
		manifold = flip(d.pair(cb, ca, maxDistance))
	default:
		manifold = d.pair(ca, cb, maxDistance)
	}

	if len(manifold.Points) == 0 {
		return nil
	}
	return []constraint.Manifold{manifold}
}

// pair dispatches an ordered pair: planes are always B, spheres come before boxes
func (d *Default) pair(a, b actor.Collider, maxDistance float64) constraint.Manifold {
	sphereA, aIsSphere := a.Shape.(*actor.Sphere)

	switch shapeB := b.Shape.(type) {
	case *actor.Plane:
		if aIsSphere {
			return spherePlane(a.Transform.Position, sphereA.Radius, shapeB, b.Transform, maxDistance)
		}
		if boxA, ok := a.Shape.(*actor.Box); ok {
			return boxPlane(boxA, a.Transform, shapeB, b.Transform, maxDistance)
		}
	case *actor.Sphere:
		if aIsSphere {
			return sphereSphere(a.Transform.Position, sphereA.Radius, b.Transform.Position, shapeB.Radius, maxDistance)
		}
	case *actor.Box:
		if aIsSphere {
			return sphereBox(a.Transform.Position, sphereA.Radius, shapeB, b.Transform, maxDistance)
		}
	}
	return d.convex(a, b, maxDistance)
}

// convex handles any pair of support-mapped shapes
func (d *Default) convex(a, b actor.Collider, maxDistance float64) constraint.Manifold {
	if closest, separated := gjk.Distance(a, b); separated {
		if closest.Distance > maxDistance {
			return constraint.Manifold{}
		}
		return constraint.Manifold{
			Normal: closest.Normal,
			Points: epa.GenerateManifold(a, b, closest.Normal, 0, maxDistance),
		}
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.Intersect(a, b, simplex) {
		return constraint.Manifold{}
	}

	penetration, err := epa.EPA(a, b, simplex)
	if err != nil {
		d.logger.Warn("contact manifold dropped",
			slog.String("shapeA", a.Shape.Type().String()),
			slog.String("shapeB", b.Shape.Type().String()),
			slog.Any("error", err))
		return constraint.Manifold{}
	}

	return constraint.Manifold{
		Normal: penetration.Normal,
		Points: epa.GenerateManifold(a, b, penetration.Normal, penetration.Depth, maxDistance),
	}
}

func flip(m constraint.Manifold) constraint.Manifold {
	m.Normal = m.Normal.Mul(-1)
	return m
}

func sphereSphere(centerA mgl64.Vec3, radiusA float64, centerB mgl64.Vec3, radiusB float64, maxDistance float64) constraint.Manifold {
	delta := centerB.Sub(centerA)
	length := delta.Len()

	normal := mgl64.Vec3{0, 1, 0}
	if length > 1e-9 {
		normal = delta.Mul(1 / length)
	}

	distance := length - radiusA - radiusB
	if distance > maxDistance {
		return constraint.Manifold{}
	}

	return constraint.Manifold{
		Normal: normal,
		Points: []constraint.ContactPoint{{
			Position: centerA.Add(normal.Mul(radiusA + distance*0.5)),
			Distance: distance,
		}},
	}
}

func spherePlane(center mgl64.Vec3, radius float64, plane *actor.Plane, pose actor.Transform, maxDistance float64) constraint.Manifold {
	planeNormal, planePoint := plane.WorldPlane(pose)

	distance := center.Sub(planePoint).Dot(planeNormal) - radius
	if distance > maxDistance {
		return constraint.Manifold{}
	}

	return constraint.Manifold{
		Normal: planeNormal.Mul(-1),
		Points: []constraint.ContactPoint{{
			Position: center.Sub(planeNormal.Mul(radius + distance*0.5)),
			Distance: distance,
		}},
	}
}

// boxPlane keeps the deepest corners, at most four
func boxPlane(box *actor.Box, boxPose actor.Transform, plane *actor.Plane, pose actor.Transform, maxDistance float64) constraint.Manifold {
	planeNormal, planePoint := plane.WorldPlane(pose)

	points := make([]constraint.ContactPoint, 0, 8)
	for _, corner := range box.Corners() {
		world := boxPose.Apply(corner)
		distance := world.Sub(planePoint).Dot(planeNormal)
		if distance > maxDistance {
			continue
		}
		points = append(points, constraint.ContactPoint{
			Position: world.Sub(planeNormal.Mul(distance * 0.5)),
			Distance: distance,
		})
	}

	if len(points) > maxPlanePoints {
		slices.SortStableFunc(points, func(a, b constraint.ContactPoint) int {
			return cmp.Compare(a.Distance, b.Distance)
		})
		points = points[:maxPlanePoints]
	}

	return constraint.Manifold{Normal: planeNormal.Mul(-1), Points: points}
}

// sphereBox measures the sphere centre against the closest point of the box
func sphereBox(center mgl64.Vec3, radius float64, box *actor.Box, boxPose actor.Transform, maxDistance float64) constraint.Manifold {
	local := boxPose.ToLocal(center)
	half := box.HalfExtents

	closest := mgl64.Vec3{
		math.Max(-half[0], math.Min(half[0], local[0])),
		math.Max(-half[1], math.Min(half[1], local[1])),
		math.Max(-half[2], math.Min(half[2], local[2])),
	}

	// outward points from the box toward the sphere centre
	var outward mgl64.Vec3
	var distance float64
	if delta := local.Sub(closest); delta.LenSqr() > 1e-18 {
		length := delta.Len()
		outward = delta.Mul(1 / length)
		distance = length - radius
	} else {
		// Centre inside the box: leave through the nearest face
		axis, depth := 0, math.Inf(1)
		for i := range 3 {
			if d := half[i] - math.Abs(local[i]); d < depth {
				axis, depth = i, d
			}
		}
		outward[axis] = 1
		if local[axis] < 0 {
			outward[axis] = -1
		}
		closest[axis] = half[axis] * outward[axis]
		distance = -depth - radius
	}

	if distance > maxDistance {
		return constraint.Manifold{}
	}

	worldOutward := boxPose.Rotation.Rotate(outward)
	boxPoint := boxPose.Apply(closest)
	return constraint.Manifold{
		Normal: worldOutward.Mul(-1),
		Points: []constraint.ContactPoint{{
			Position: boxPoint.Add(worldOutward.Mul(distance * 0.5)),
			Distance: distance,
		}},
	}
}
