package anna

import (
	"math"
	"slices"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
)

// ContactWriter finds the colliding pairs of the frame and emits their contacts.
// Buckets are processed in parallel; a bucket is only ever appended to by the
// worker that owns it.
type ContactWriter struct{}

func (ContactWriter) Name() string { return "contacts" }

func (ContactWriter) Write(ctx *WriteContext, stream *constraint.Stream) {
	frame := ctx.Frame()
	if len(frame.Bodies) == 0 {
		return
	}

	owned := make([][]int, stream.Buckets())
	for i := range frame.Bodies {
		bucket := frame.Bodies[i].Bucket % len(owned)
		owned[bucket] = append(owned[bucket], i)
	}

	jobs := make([]func(), 0, len(owned))
	for bucket, indices := range owned {
		if len(indices) == 0 {
			continue
		}
		jobs = append(jobs, func() {
			cursor := frame.Grid.Cursor()
			candidates := make([]int, 0, 16)
			for _, i := range indices {
				candidates = candidatePairs(frame, cursor, i, candidates[:0])
				for _, id := range candidates {
					writeContacts(ctx, stream, bucket, i, id)
				}
			}
		})
	}
	parallel(ctx.Workers(), jobs)
}

// candidatePairs returns the sorted ids overlapping dynamic body i, without
// itself and without the dynamic bodies that own the pair (index <= i)
func candidatePairs(frame *Frame, cursor *Cursor, i int, candidates []int) []int {
	self := frame.ObjectID(ObjectDynamic, i)
	cursor.Query(frame.Bodies[i].AABB, func(id int) {
		if kind, j := frame.Object(id); kind == ObjectDynamic && j <= i {
			return
		}
		if id != self {
			candidates = append(candidates, id)
		}
	})
	slices.Sort(candidates)
	return candidates
}

// writeContacts dispatches the pair of dynamic body i and object id by class
func writeContacts(ctx *WriteContext, stream *constraint.Stream, bucket, i, id int) {
	frame := ctx.Frame()
	a := &frame.Bodies[i]
	groupB := frame.GroupOf(id)
	if ctx.Exclusions().Excluded(a.Group, groupB) {
		return
	}

	constants := ctx.Constants()
	params := constraint.ContactParams{
		Friction:             a.Friction,
		Restitution:          a.Restitution,
		MaxDepenetration:     constants.MaxDepenetrationStatic,
		RestitutionThreshold: constants.RestitutionThreshold,
		InvDt:                constants.InvDt,
	}

	_, j := frame.Object(id)
	var kind constraint.SolveKind
	var side constraint.Side
	var handleB actor.Handle
	var collider actor.Collider
	maxDistance := a.Expansion.MaxDistance()

	switch ctx.Class(groupB) {
	case ClassRigidBody:
		b := &frame.Bodies[j]
		kind, side, handleB, collider = constraint.KindContactBody, constraint.DynamicSide(b), b.Handle, b.Collider()
		params.Friction = constraint.CombineFriction(a.Friction, b.Friction)
		params.Restitution = constraint.CombineRestitution(a.Restitution, b.Restitution)
		params.MaxDepenetration = constants.MaxDepenetrationBody
		maxDistance = math.Max(maxDistance, b.Expansion.MaxDistance())
	case ClassKinematic:
		k := &frame.Kinematics[j]
		kind, side, handleB, collider = constraint.KindContactKinematic, constraint.KinematicSide(k), k.Handle, k.Collider()
		maxDistance = math.Max(maxDistance, k.Expansion.MaxDistance())
	case ClassEnvironment:
		s := &frame.Statics[j]
		kind, side, handleB, collider = constraint.KindContactEnvironment, constraint.StaticSide(s.Pose), s.Handle, s.Collider()
	}

	manifolds := ctx.Narrowphase().Contacts(a.Shape, a.Pose, collider.Shape, collider.Transform, maxDistance)
	for _, manifold := range manifolds {
		record := constraint.Record{
			Kind:     kind,
			Pair:     constraint.BodyPair{A: i, B: j},
			HandleA:  a.Handle,
			HandleB:  handleB,
			Jacobian: constraint.BuildContact(kind, manifold, constraint.DynamicSide(a), side, params),
		}
		if debugChecks {
			_ = ctx.VerifyPair(&record)
		}
		stream.Append(bucket, record)
	}
}
