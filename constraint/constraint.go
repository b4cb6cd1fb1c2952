package constraint

import (
	"fmt"
	"math"

	"github.com/akmonengine/anna/actor"
)

// SolveKind selects the update routine applied to a Record
type SolveKind uint8

const (
	KindLinearLock SolveKind = iota
	KindAngularLock1
	KindAngularLock2
	KindAngularLock3
	KindContactBody
	KindContactKinematic
	KindContactEnvironment
)

func (k SolveKind) String() string {
	switch k {
	case KindLinearLock:
		return "linearLock"
	case KindAngularLock1:
		return "angularLock1"
	case KindAngularLock2:
		return "angularLock2"
	case KindAngularLock3:
		return "angularLock3"
	case KindContactBody:
		return "contactBody"
	case KindContactKinematic:
		return "contactKinematic"
	case KindContactEnvironment:
		return "contactEnvironment"
	}
	return fmt.Sprintf("SolveKind(%d)", uint8(k))
}

// IsContact reports whether the kind is one of the contact kinds
func (k SolveKind) IsContact() bool {
	return k >= KindContactBody && k <= KindContactEnvironment
}

// NoBody marks the unused side of a single-body record
const NoBody = -1

// BodyPair references the bodies of a record by their index in the current frame.
// A is always a dynamic body. B is a dynamic index for KindContactBody, a
// kinematic index for KindContactKinematic, a static index for
// KindContactEnvironment and NoBody for locks.
type BodyPair struct {
	A int
	B int
}

// Jacobian is the payload of a Record. It is implemented by *LinearLock,
// *AngularLock1, *AngularLock2, *AngularLock3 and *Contact only.
type Jacobian interface {
	kind() SolveKind
}

// Record is one constraint of the aggregate stream
type Record struct {
	Kind SolveKind
	Pair BodyPair
	// HandleA and HandleB are the stable handles behind Pair, used for events
	// and pair verification
	HandleA  actor.Handle
	HandleB  actor.Handle
	Jacobian Jacobian
}

// Dynamic returns the dynamic body indices written by the record.
// b is NoBody when only one dynamic body is involved.
func (r *Record) Dynamic() (a, b int) {
	if r.Kind == KindContactBody {
		return r.Pair.A, r.Pair.B
	}
	return r.Pair.A, NoBody
}

// Contact returns the contact payload, or nil for locks
func (r *Record) Contact() *Contact {
	c, _ := r.Jacobian.(*Contact)
	return c
}

// Step holds the per-substep constants used by the solve routines
type Step struct {
	Dt    float64
	InvDt float64
	// Tau and Damping are the soft factors of the stiff (non-contact) constraints
	Tau     float64
	Damping float64
}

// NewStep derives the step constants for the given stiffness target
func NewStep(dt float64, iterations int, frequency, dampingRatio float64) Step {
	tau, damping := TauAndDamping(frequency, dampingRatio, dt, iterations)
	return Step{Dt: dt, InvDt: 1 / dt, Tau: tau, Damping: damping}
}

// Solve applies one impulse update of the record to the dynamic body records
func Solve(r *Record, bodies []actor.BodyRecord, step Step) {
	switch r.Kind {
	case KindLinearLock:
		r.Jacobian.(*LinearLock).Solve(&bodies[r.Pair.A], step)
	case KindAngularLock1:
		r.Jacobian.(*AngularLock1).Solve(&bodies[r.Pair.A], step)
	case KindAngularLock2:
		r.Jacobian.(*AngularLock2).Solve(&bodies[r.Pair.A], step)
	case KindAngularLock3:
		r.Jacobian.(*AngularLock3).Solve(&bodies[r.Pair.A], step)
	case KindContactBody:
		r.Jacobian.(*Contact).Solve(&bodies[r.Pair.A], &bodies[r.Pair.B])
	case KindContactKinematic, KindContactEnvironment:
		r.Jacobian.(*Contact).Solve(&bodies[r.Pair.A], nil)
	default:
		panic(fmt.Sprintf("constraint: no solve routine for %v", r.Kind))
	}
}

// CombineFriction mixes two friction coefficients with the geometric mean
func CombineFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}

// CombineRestitution mixes two restitution coefficients with the geometric mean
func CombineRestitution(a, b float64) float64 {
	return math.Sqrt(a * b)
}
