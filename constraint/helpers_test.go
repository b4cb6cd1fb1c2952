package constraint

import (
	"math"

	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Helper function to create the frame record of a dynamic unit sphere
func createBodyRecord(position, velocity mgl64.Vec3, mass float64) actor.BodyRecord {
	sphere := &actor.Sphere{Radius: 1.0}
	inertia := sphere.ComputeInertia(mass)

	return actor.BodyRecord{
		Velocity:       velocity,
		InverseMass:    1 / mass,
		InverseInertia: inertia.Inv(),
		Pose:           actor.NewTransformAt(position, mgl64.QuatIdent()),
		Shape:          sphere,
	}
}

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}
