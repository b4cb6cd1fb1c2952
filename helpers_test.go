package anna

import (
	"math"
	"testing"

	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func createBox(position mgl64.Vec3, halfExtents mgl64.Vec3, bodyType actor.BodyType) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: halfExtents},
		bodyType,
		1.0,
	)
}

func createSphere(position mgl64.Vec3, radius float64, bodyType actor.BodyType) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(position, mgl64.QuatIdent()),
		&actor.Sphere{Radius: radius},
		bodyType,
		1.0,
	)
}

func createPlane(normal mgl64.Vec3, distance float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransform(),
		&actor.Plane{Normal: normal, Distance: distance},
		actor.BodyTypeStatic,
		0.0,
	)
}

// newTestWorld creates a world from the default settings changed by configure
func newTestWorld(t testing.TB, configure func(*Settings)) *World {
	t.Helper()
	settings := DefaultSettings()
	if configure != nil {
		configure(&settings)
	}
	w, err := NewWorld(settings)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	return w
}

func zeroGravity(s *Settings) {
	s.Gravity = mgl64.Vec3{}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
