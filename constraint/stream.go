package constraint

import (
	"cmp"
	"slices"
	"sync"
)

// Tag identifies the writer that produced a stream
type Tag struct {
	Writer   string
	Priority int
	// Order is the registration order of the writer, breaking priority ties
	Order int
	Frame uint64
}

// Stream is the append-only, bucket-partitioned output of one writer for one frame.
// Appends to different buckets never contend. Reading while writing is not supported.
type Stream struct {
	tag     Tag
	buckets []streamBucket
}

type streamBucket struct {
	mu      sync.Mutex
	records []Record
}

// NewStream creates an empty stream with the given number of buckets (at least one)
func NewStream(tag Tag, buckets int) *Stream {
	return &Stream{
		tag:     tag,
		buckets: make([]streamBucket, max(buckets, 1)),
	}
}

func (s *Stream) Tag() Tag {
	return s.tag
}

// Buckets returns the number of buckets of the stream
func (s *Stream) Buckets() int {
	return len(s.buckets)
}

// Append adds a record to a bucket. It is safe for concurrent use.
func (s *Stream) Append(bucket int, r Record) {
	b := &s.buckets[s.bucketIndex(bucket)]
	b.mu.Lock()
	b.records = append(b.records, r)
	b.mu.Unlock()
}

func (s *Stream) bucketIndex(bucket int) int {
	n := len(s.buckets)
	return ((bucket % n) + n) % n
}

// Bucket returns the records appended to bucket
func (s *Stream) Bucket(bucket int) []Record {
	return s.buckets[s.bucketIndex(bucket)].records
}

// Len returns the number of records of the stream
func (s *Stream) Len() int {
	n := 0
	for i := range s.buckets {
		n += len(s.buckets[i].records)
	}
	return n
}

// Records returns every record, buckets concatenated in bucket order
func (s *Stream) Records() []Record {
	records := make([]Record, 0, s.Len())
	for i := range s.buckets {
		records = append(records, s.buckets[i].records...)
	}
	return records
}

// Merge concatenates the non-empty streams in ascending priority, ties broken
// by registration order
func Merge(streams []*Stream) []Record {
	active := make([]*Stream, 0, len(streams))
	total := 0
	for _, s := range streams {
		if s != nil && s.Len() > 0 {
			active = append(active, s)
			total += s.Len()
		}
	}
	if total == 0 {
		return nil
	}

	slices.SortStableFunc(active, func(a, b *Stream) int {
		if c := cmp.Compare(a.tag.Priority, b.tag.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.tag.Order, b.tag.Order)
	})

	merged := make([]Record, 0, total)
	for _, s := range active {
		for i := range s.buckets {
			merged = append(merged, s.buckets[i].records...)
		}
	}
	return merged
}
