package anna

import (
	"fmt"

	"github.com/akmonengine/anna/actor"
	"github.com/akmonengine/anna/constraint"
)

// minParallelBatch is the batch size below which a batch is solved inline
const minParallelBatch = 32

// merge validates the streams of the frame and concatenates them by priority
func merge(frameID uint64, streams []*constraint.Stream) []constraint.Record {
	if debugChecks {
		for _, s := range streams {
			if s != nil && s.Tag().Frame != frameID {
				panic(fmt.Errorf("%w: %q made for frame %d during frame %d", ErrStaleStream, s.Tag().Writer, s.Tag().Frame, frameID))
			}
		}
	}
	return constraint.Merge(streams)
}

// Batches partitions the aggregate stream into groups of records writing
// disjoint dynamic bodies. Records touching the same body keep their order.
type Batches struct {
	// Indices holds, per batch, the positions of its records in the stream
	Indices [][]int
}

// NewBatches colours the records greedily: a record goes in the first batch
// after the last one used by any of its bodies
func NewBatches(records []constraint.Record, bodies int) Batches {
	next := make([]int, bodies)
	var batches Batches
	for i := range records {
		a, b := records[i].Dynamic()
		batch := next[a]
		if b != constraint.NoBody {
			batch = max(batch, next[b])
		}

		if batch == len(batches.Indices) {
			batches.Indices = append(batches.Indices, nil)
		}
		batches.Indices[batch] = append(batches.Indices[batch], i)

		next[a] = batch + 1
		if b != constraint.NoBody {
			next[b] = batch + 1
		}
	}
	return batches
}

// Verify checks that no batch writes a body twice
func (b Batches) Verify(records []constraint.Record) error {
	owner := make(map[int]int)
	for batch, indices := range b.Indices {
		clear(owner)
		for _, i := range indices {
			a, other := records[i].Dynamic()
			for _, body := range [2]int{a, other} {
				if body == constraint.NoBody {
					continue
				}
				if previous, ok := owner[body]; ok {
					return fmt.Errorf("%w: batch %d, records %d and %d write body %d", ErrBatchOverlap, batch, previous, i, body)
				}
				owner[body] = i
			}
		}
	}
	return nil
}

// Len returns the number of batches
func (b Batches) Len() int {
	return len(b.Indices)
}

// solver runs the iterations over the aggregate stream of one frame
type solver struct {
	workers        int
	iterations     int
	clippingFactor float64
}

// solve applies every record once per iteration, batch after batch, each
// iteration followed by the stabilization pass
func (s solver) solve(frame *Frame, records []constraint.Record) Batches {
	if len(records) == 0 {
		return Batches{}
	}

	for i := range records {
		if !records[i].Kind.IsContact() {
			continue
		}
		a, b := records[i].Dynamic()
		frame.Bodies[a].Stabilizer.Contacts++
		if b != constraint.NoBody {
			frame.Bodies[b].Stabilizer.Contacts++
		}
	}

	batches := NewBatches(records, len(frame.Bodies))
	if debugChecks {
		if err := batches.Verify(records); err != nil {
			panic(err)
		}
	}

	step := frame.Constants.Step()
	for iteration := range s.iterations {
		for _, indices := range batches.Indices {
			s.solveBatch(frame.Bodies, records, indices, step)
		}

		last := iteration == s.iterations-1
		task(s.workers, frame.Bodies, func(_ int, body *actor.BodyRecord) {
			stabilize(body, last, s.clippingFactor)
		})
	}
	return batches
}

func (s solver) solveBatch(bodies []actor.BodyRecord, records []constraint.Record, indices []int, step constraint.Step) {
	if len(indices) < minParallelBatch {
		for _, i := range indices {
			constraint.Solve(&records[i], bodies, step)
		}
		return
	}

	task(s.workers, indices, func(_ int, i *int) {
		constraint.Solve(&records[*i], bodies, step)
	})
}

// residual is the summed normal velocity error of the contacts
func residual(frame *Frame, records []constraint.Record) float64 {
	var total float64
	for i := range records {
		c := records[i].Contact()
		if c == nil {
			continue
		}
		a, b := records[i].Dynamic()
		var bodyB *actor.BodyRecord
		if b != constraint.NoBody {
			bodyB = &frame.Bodies[b]
		}
		total += c.Residual(&frame.Bodies[a], bodyB)
	}
	return total
}
