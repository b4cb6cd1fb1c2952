package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypePlane
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypePlane:
		return "plane"
	}
	return "unknown"
}

const (
	// planeExtent bounds the half-size used for plane support points and features
	planeExtent = 1000.0
	// planeThickness is the depth of the plane slab below its surface
	planeThickness = 1.0
	// planeInfinity is the AABB extent of a plane along its tangent axes
	planeInfinity = 1e10
)

// Shape is the interface that all collision shapes must implement.
// Shapes are immutable once attached to a body and may be shared between bodies.
type Shape interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform) AABB
	// ComputeMass calculates the mass of the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// Support returns the furthest local point in the local direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	// ContactFeature returns the local vertices of the feature facing direction
	ContactFeature(direction mgl64.Vec3) []mgl64.Vec3
	// AngularExpansion is the largest distance a surface point moves per radian
	// of rotation about the centre of mass
	AngularExpansion() float64
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

// Corners returns the 8 local corners of the box
func (b *Box) Corners() [8]mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	return [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

func (b *Box) ComputeAABB(transform Transform) AABB {
	corners := b.Corners()

	worldCorner := transform.Apply(corners[0])
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = transform.Apply(corners[i])

		min[0] = math.Min(min[0], worldCorner[0])
		min[1] = math.Min(min[1], worldCorner[1])
		min[2] = math.Min(min[2], worldCorner[2])

		max[0] = math.Max(max[0], worldCorner[0])
		max[1] = math.Max(max[1], worldCorner[1])
		max[2] = math.Max(max[2], worldCorner[2])
	}

	return AABB{Min: min, Max: max}
}

// ComputeMass calculates the mass of the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// boxFace is a face of a box with its outward normal and CCW vertices
type boxFace struct {
	normal   mgl64.Vec3
	vertices [4]mgl64.Vec3
}

func (b *Box) faces() [6]boxFace {
	hx := b.HalfExtents.X()
	hy := b.HalfExtents.Y()
	hz := b.HalfExtents.Z()

	return [6]boxFace{
		{normal: mgl64.Vec3{1, 0, 0}, vertices: [4]mgl64.Vec3{{hx, -hy, -hz}, {hx, -hy, hz}, {hx, hy, hz}, {hx, hy, -hz}}},
		{normal: mgl64.Vec3{-1, 0, 0}, vertices: [4]mgl64.Vec3{{-hx, -hy, hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {-hx, hy, hz}}},
		{normal: mgl64.Vec3{0, 1, 0}, vertices: [4]mgl64.Vec3{{-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}}},
		{normal: mgl64.Vec3{0, -1, 0}, vertices: [4]mgl64.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, -hy, -hz}, {-hx, -hy, -hz}}},
		{normal: mgl64.Vec3{0, 0, 1}, vertices: [4]mgl64.Vec3{{-hx, -hy, hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, -hy, hz}}},
		{normal: mgl64.Vec3{0, 0, -1}, vertices: [4]mgl64.Vec3{{hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz}, {-hx, -hy, -hz}}},
	}
}

// ContactFeature returns the face whose normal is the most aligned with direction
func (b *Box) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := direction.Normalize()

	bestDot := -math.MaxFloat64
	var best [4]mgl64.Vec3
	for _, face := range b.faces() {
		dot := dir.Dot(face.normal)
		if dot > bestDot {
			bestDot = dot
			best = face.vertices
		}
	}

	return best[:]
}

// AngularExpansion of a box is its half diagonal
func (b *Box) AngularExpansion() float64 {
	return b.HalfExtents.Len()
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) AABB {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	return AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

// ComputeMass calculates the mass of the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-16 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(direction)}
}

// AngularExpansion of a centred sphere is zero: rotation never moves its surface
func (s *Sphere) AngularExpansion() float64 {
	return 0
}

// Plane represents an infinite plane collision shape, used for static environment geometry.
// The plane is defined by the equation: Normal · p + Distance = 0
// where Normal is the plane's normal vector (must be normalized)
// and Distance is the signed distance from the origin along the normal
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
}

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

// Origin returns the local point of the plane closest to the local origin
func (p *Plane) Origin() mgl64.Vec3 {
	return p.Normal.Mul(-p.Distance)
}

// WorldPlane returns the world normal and a world point of the plane
func (p *Plane) WorldPlane(transform Transform) (normal mgl64.Vec3, point mgl64.Vec3) {
	return transform.Rotation.Rotate(p.Normal).Normalize(), transform.Apply(p.Origin())
}

func (p *Plane) ComputeAABB(transform Transform) AABB {
	normal, point := p.WorldPlane(transform)

	// Base bounds with thickness along the normal
	a := point.Sub(normal.Mul(planeThickness))
	min := mgl64.Vec3{math.Min(a[0], point[0]), math.Min(a[1], point[1]), math.Min(a[2], point[2])}
	max := mgl64.Vec3{math.Max(a[0], point[0]), math.Max(a[1], point[1]), math.Max(a[2], point[2])}

	// Extend the AABB to infinity on every axis the plane is not aligned with
	for i := range 3 {
		if math.Abs(normal[i]) < 1.0-1e-9 {
			min[i] = -planeInfinity
			max[i] = planeInfinity
		}
	}

	return AABB{Min: min, Max: max}
}

// ComputeMass returns an infinite mass: planes cannot be moved by collisions
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// Support treats the plane as a large thin slab below its surface
func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	tangent1, tangent2 := TangentBasis(p.Normal)

	s1 := planeExtent
	if direction.Dot(tangent1) < 0 {
		s1 = -planeExtent
	}
	s2 := planeExtent
	if direction.Dot(tangent2) < 0 {
		s2 = -planeExtent
	}
	depth := 0.0
	if direction.Dot(p.Normal) <= 0 {
		depth = planeThickness
	}

	return p.Origin().Add(tangent1.Mul(s1)).Add(tangent2.Mul(s2)).Sub(p.Normal.Mul(depth))
}

// ContactFeature returns 4 points forming a large square on the plane surface
func (p *Plane) ContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	tangent1, tangent2 := TangentBasis(p.Normal)
	center := p.Origin()

	return []mgl64.Vec3{
		center.Add(tangent1.Mul(-planeExtent)).Add(tangent2.Mul(-planeExtent)),
		center.Add(tangent1.Mul(-planeExtent)).Add(tangent2.Mul(planeExtent)),
		center.Add(tangent1.Mul(planeExtent)).Add(tangent2.Mul(planeExtent)),
		center.Add(tangent1.Mul(planeExtent)).Add(tangent2.Mul(-planeExtent)),
	}
}

func (p *Plane) AngularExpansion() float64 {
	return 0
}

// TangentBasis returns two unit vectors orthogonal to normal and to each other
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
