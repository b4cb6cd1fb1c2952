package epa

import (
	"math"
	"testing"

	"github.com/akmonengine/anna/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

func TestGenerateManifold(t *testing.T) {
	tests := []struct {
		name         string
		manifold     func() []constraint.ContactPoint
		wantPoints   int
		wantDistance float64
		wantY        float64
	}{
		{
			name: "box resting in a box",
			manifold: func() []constraint.ContactPoint {
				return GenerateManifold(boxAt(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}), boxAt(mgl64.Vec3{0, 1.9, 0}, mgl64.Vec3{1, 1, 1}), mgl64.Vec3{0, 1, 0}, 0.1, 0.5)
			},
			wantPoints:   4,
			wantDistance: -0.1,
			wantY:        0.95,
		},
		{
			name: "speculative box above a box",
			manifold: func() []constraint.ContactPoint {
				return GenerateManifold(boxAt(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}), boxAt(mgl64.Vec3{0, 2.2, 0}, mgl64.Vec3{1, 1, 1}), mgl64.Vec3{0, 1, 0}, 0, 0.5)
			},
			wantPoints:   4,
			wantDistance: 0.2,
			wantY:        1.1,
		},
		{
			name: "box on a plane",
			manifold: func() []constraint.ContactPoint {
				return GenerateManifold(boxAt(mgl64.Vec3{2, 0.5, 0}, mgl64.Vec3{0.5, 0.5, 0.5}), groundPlane(), mgl64.Vec3{0, -1, 0}, 0, 0.1)
			},
			wantPoints:   4,
			wantDistance: 0,
			wantY:        0,
		},
		{
			name: "sphere in a plane",
			manifold: func() []constraint.ContactPoint {
				return GenerateManifold(sphereAt(mgl64.Vec3{3, 0.9, -2}, 1), groundPlane(), mgl64.Vec3{0, -1, 0}, 0.1, 0.1)
			},
			wantPoints:   1,
			wantDistance: -0.1,
			wantY:        -0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := tt.manifold()
			if len(points) != tt.wantPoints {
				t.Fatalf("got %d points, want %d", len(points), tt.wantPoints)
			}
			for _, p := range points {
				if math.Abs(p.Distance-tt.wantDistance) > 1e-9 {
					t.Errorf("Distance = %v, want %v", p.Distance, tt.wantDistance)
				}
				if math.Abs(p.Position.Y()-tt.wantY) > 1e-9 {
					t.Errorf("Position.Y = %v, want %v", p.Position.Y(), tt.wantY)
				}
			}
		})
	}
}

func TestGenerateManifold_BeyondMaxDistance(t *testing.T) {
	points := GenerateManifold(boxAt(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}), boxAt(mgl64.Vec3{0, 2.2, 0}, mgl64.Vec3{1, 1, 1}), mgl64.Vec3{0, 1, 0}, 0, 0.1)
	if len(points) != 0 {
		t.Errorf("got %v, want no points beyond the speculative distance", points)
	}
}

func TestGenerateManifold_SphereCentreline(t *testing.T) {
	points := GenerateManifold(sphereAt(mgl64.Vec3{3, 0.9, -2}, 1), groundPlane(), mgl64.Vec3{0, -1, 0}, 0.1, 0.1)
	if len(points) != 1 {
		t.Fatalf("got %d points", len(points))
	}
	if math.Abs(points[0].Position.X()-3) > 1e-9 || math.Abs(points[0].Position.Z()+2) > 1e-9 {
		t.Errorf("contact %v is not below the sphere centre", points[0].Position)
	}
}

func TestClipPolygonAgainstPlane(t *testing.T) {
	square := []mgl64.Vec3{{-1, 0, -1}, {1, 0, -1}, {1, 0, 1}, {-1, 0, 1}}

	clipped := clipPolygonAgainstPlane(square, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	if len(clipped) != 4 {
		t.Fatalf("got %d points, want 4", len(clipped))
	}
	for _, p := range clipped {
		if p.X() < -1e-9 {
			t.Errorf("point %v is on the clipped side", p)
		}
	}

	if len(clipPolygonAgainstPlane(square, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 0, 0})) != 0 {
		t.Error("polygon fully behind the plane should vanish")
	}
}

func TestReduceTo4Points(t *testing.T) {
	var points []constraint.ContactPoint
	for i := range 8 {
		angle := float64(i) * math.Pi / 4
		points = append(points, constraint.ContactPoint{Position: mgl64.Vec3{math.Cos(angle), 0, math.Sin(angle)}})
	}

	first := reduceTo4Points(points, mgl64.Vec3{0, 1, 0})
	if len(first) != 4 {
		t.Fatalf("got %d points, want 4", len(first))
	}
	for range 10 {
		again := reduceTo4Points(points, mgl64.Vec3{0, 1, 0})
		for i := range first {
			if again[i] != first[i] {
				t.Fatal("reduction is not deterministic")
			}
		}
	}
}

func TestIsLargePlane(t *testing.T) {
	if !isLargePlane(groundPlane().Shape.ContactFeature(mgl64.Vec3{0, 1, 0})) {
		t.Error("plane feature should be detected")
	}
	if isLargePlane(boxAt(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}).Shape.ContactFeature(mgl64.Vec3{0, 1, 0})) {
		t.Error("box face is not a plane")
	}
}
