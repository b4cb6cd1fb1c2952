package constraint

import (
	"math"

	"github.com/akmonengine/anna/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxDepenetrationBody caps the push-out speed between two dynamic bodies
	DefaultMaxDepenetrationBody = 3.0
	// DefaultMaxDepenetrationStatic caps the push-out speed against kinematic and static geometry
	DefaultMaxDepenetrationStatic = 10.0
	// DefaultRestitutionThreshold is the approach speed below which contacts do not bounce
	DefaultRestitutionThreshold = 0.5
)

// ContactPoint is a point of a contact manifold.
// Distance is the signed separation along the normal, negative when penetrating.
type ContactPoint struct {
	Position mgl64.Vec3
	Distance float64
}

// Manifold is a set of contact points sharing a normal pointing from A to B
type Manifold struct {
	Normal mgl64.Vec3
	Points []ContactPoint
}

// Side is the motion state of one side of a contact
type Side struct {
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Center          mgl64.Vec3
	InverseMass     float64
	InverseInertia  mgl64.Mat3
}

func DynamicSide(r *actor.BodyRecord) Side {
	return Side{
		Velocity:        r.Velocity,
		AngularVelocity: r.AngularVelocity,
		Center:          r.Pose.Position,
		InverseMass:     r.InverseMass,
		InverseInertia:  r.InverseInertia,
	}
}

// KinematicSide pushes with its own velocity but cannot be pushed back
func KinematicSide(r *actor.KinematicRecord) Side {
	return Side{
		Velocity:        r.Velocity,
		AngularVelocity: r.AngularVelocity,
		Center:          r.Pose.Position,
	}
}

func StaticSide(pose actor.Transform) Side {
	return Side{Center: pose.Position}
}

func (s Side) pointVelocity(r mgl64.Vec3) mgl64.Vec3 {
	return s.Velocity.Add(s.AngularVelocity.Cross(r))
}

// ContactParams are the material and velocity limits of one contact
type ContactParams struct {
	Friction             float64
	Restitution          float64
	MaxDepenetration     float64
	RestitutionThreshold float64
	InvDt                float64
}

// ContactRow is the normal row of one contact point
type ContactRow struct {
	RA mgl64.Vec3
	RB mgl64.Vec3
	// Distance is the separation when the contact was built
	Distance      float64
	EffectiveMass float64
	// Target is the minimum separating velocity along the normal
	Target  float64
	Impulse float64
}

// FrictionRow is a tangent row applied at the manifold centroid
type FrictionRow struct {
	Tangent       mgl64.Vec3
	EffectiveMass float64
	Impulse       float64
}

// Contact is the Jacobian of a manifold between a dynamic body A and a side B.
// B is either another dynamic body, solved in place, or a fixed Side.
type Contact struct {
	Kind   SolveKind
	Normal mgl64.Vec3
	Points []ContactRow

	Friction [2]FrictionRow
	// RA and RB are the arms of the manifold centroid
	RA mgl64.Vec3
	RB mgl64.Vec3

	FrictionCoefficient float64
	Restitution         float64

	// Other is the motion of a kinematic or static B side
	Other Side
}

func (c *Contact) kind() SolveKind { return c.Kind }

// BuildContact builds the contact Jacobian of the manifold between a and b.
// For KindContactBody b is only read for its mass properties and arms, the
// solver reads the velocities from the body records.
func BuildContact(kind SolveKind, manifold Manifold, a, b Side, params ContactParams) *Contact {
	n := manifold.Normal
	c := &Contact{
		Kind:                kind,
		Normal:              n,
		Points:              make([]ContactRow, 0, len(manifold.Points)),
		FrictionCoefficient: params.Friction,
		Restitution:         params.Restitution,
	}
	if kind != KindContactBody {
		c.Other = b
	}

	var centroid mgl64.Vec3
	for _, point := range manifold.Points {
		rA := point.Position.Sub(a.Center)
		rB := point.Position.Sub(b.Center)
		centroid = centroid.Add(point.Position)

		row := ContactRow{
			RA:            rA,
			RB:            rB,
			Distance:      point.Distance,
			EffectiveMass: effectiveMass(a, b, rA, rB, n),
		}

		// Velocity along the normal before solving, negative when approaching
		v0 := b.pointVelocity(rB).Sub(a.pointVelocity(rA)).Dot(n)
		if point.Distance > 0 {
			// Speculative: allowed to close the gap within the step but no more
			row.Target = -point.Distance * params.InvDt
		} else {
			row.Target = math.Min(-point.Distance*params.InvDt, params.MaxDepenetration)
		}
		closes := v0 < 0 && point.Distance+v0/params.InvDt < 0
		if params.Restitution > 0 && v0 < -params.RestitutionThreshold && closes {
			row.Target = math.Max(row.Target, -params.Restitution*v0)
		}

		c.Points = append(c.Points, row)
	}

	if len(manifold.Points) > 0 {
		centroid = centroid.Mul(1 / float64(len(manifold.Points)))
		c.RA = centroid.Sub(a.Center)
		c.RB = centroid.Sub(b.Center)

		t1, t2 := actor.TangentBasis(n)
		c.Friction[0] = FrictionRow{Tangent: t1, EffectiveMass: effectiveMass(a, b, c.RA, c.RB, t1)}
		c.Friction[1] = FrictionRow{Tangent: t2, EffectiveMass: effectiveMass(a, b, c.RA, c.RB, t2)}
	}

	return c
}

func effectiveMass(a, b Side, rA, rB, direction mgl64.Vec3) float64 {
	rAxD := rA.Cross(direction)
	rBxD := rB.Cross(direction)
	k := a.InverseMass + b.InverseMass +
		a.InverseInertia.Mul3x1(rAxD).Dot(rAxD) +
		b.InverseInertia.Mul3x1(rBxD).Dot(rBxD)
	if k < degenerateMass {
		return 0
	}
	return 1 / k
}

// Solve applies one pass of the contact to a and, for body contacts, to b.
// b is nil when B is the fixed Other side.
func (c *Contact) Solve(a, b *actor.BodyRecord) {
	if len(c.Points) == 0 {
		return
	}

	vA, wA := a.Velocity, a.AngularVelocity
	vB, wB := c.Other.Velocity, c.Other.AngularVelocity
	var invMassB float64
	var invInertiaB mgl64.Mat3
	if b != nil {
		vB, wB = b.Velocity, b.AngularVelocity
		invMassB, invInertiaB = b.InverseMass, b.InverseInertia
	}

	apply := func(impulse, rA, rB mgl64.Vec3) {
		vA = vA.Sub(impulse.Mul(a.InverseMass))
		wA = wA.Sub(a.InverseInertia.Mul3x1(rA.Cross(impulse)))
		if b != nil {
			vB = vB.Add(impulse.Mul(invMassB))
			wB = wB.Add(invInertiaB.Mul3x1(rB.Cross(impulse)))
		}
	}

	// Friction first, bounded by the normal impulses of the previous pass
	var totalNormal float64
	for i := range c.Points {
		totalNormal += c.Points[i].Impulse
	}
	maxFriction := c.FrictionCoefficient * totalNormal
	if maxFriction > 0 {
		relative := vB.Add(wB.Cross(c.RB)).Sub(vA.Add(wA.Cross(c.RA)))
		f0, f1 := &c.Friction[0], &c.Friction[1]

		old := mgl64.Vec2{f0.Impulse, f1.Impulse}
		accumulated := mgl64.Vec2{
			f0.Impulse - f0.EffectiveMass*relative.Dot(f0.Tangent),
			f1.Impulse - f1.EffectiveMass*relative.Dot(f1.Tangent),
		}
		if length := accumulated.Len(); length > maxFriction {
			accumulated = accumulated.Mul(maxFriction / length)
		}
		f0.Impulse, f1.Impulse = accumulated[0], accumulated[1]

		delta := accumulated.Sub(old)
		apply(f0.Tangent.Mul(delta[0]).Add(f1.Tangent.Mul(delta[1])), c.RA, c.RB)
	}

	for i := range c.Points {
		row := &c.Points[i]
		relative := vB.Add(wB.Cross(row.RB)).Sub(vA.Add(wA.Cross(row.RA))).Dot(c.Normal)

		lambda := row.EffectiveMass * (row.Target - relative)
		accumulated := math.Max(row.Impulse+lambda, 0)
		lambda = accumulated - row.Impulse
		row.Impulse = accumulated

		apply(c.Normal.Mul(lambda), row.RA, row.RB)
	}

	a.Velocity, a.AngularVelocity = vA, wA
	if b != nil {
		b.Velocity, b.AngularVelocity = vB, wB
	}
}

// Residual sums, over the contact points, how far the normal velocity is
// below its target. It is zero once every point is satisfied.
func (c *Contact) Residual(a, b *actor.BodyRecord) float64 {
	vB, wB := c.Other.Velocity, c.Other.AngularVelocity
	if b != nil {
		vB, wB = b.Velocity, b.AngularVelocity
	}

	var residual float64
	for _, row := range c.Points {
		relative := vB.Add(wB.Cross(row.RB)).Sub(a.Velocity.Add(a.AngularVelocity.Cross(row.RA))).Dot(c.Normal)
		residual += math.Max(0, row.Target-relative)
	}
	return residual
}

// NormalImpulse returns the accumulated normal impulse over all points
func (c *Contact) NormalImpulse() float64 {
	var total float64
	for _, row := range c.Points {
		total += row.Impulse
	}
	return total
}

// Touching reports whether the contact pushed or started in contact
func (c *Contact) Touching() bool {
	for _, row := range c.Points {
		if row.Distance <= 0 || row.Impulse > 0 {
			return true
		}
	}
	return false
}
