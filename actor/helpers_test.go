package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// Helper function to compare Vec3 with epsilon tolerance
func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}

func mat3AlmostEqual(a, b mgl64.Mat3, epsilon float64) bool {
	for i := range 9 {
		if !almostEqual(a[i], b[i], epsilon) {
			return false
		}
	}
	return true
}
