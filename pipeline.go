package anna

import "golang.org/x/sync/errgroup"

// task calls fn on every item, split in at most workers contiguous chunks.
// It returns once every call is done.
func task[T any](workers int, data []T, fn func(index int, item *T)) {
	if len(data) == 0 {
		return
	}
	if workers <= 1 || len(data) == 1 {
		for i := range data {
			fn(i, &data[i])
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	chunkSize := (len(data) + workers - 1) / workers
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i, &data[i])
			}
			return nil
		})
	}
	_ = g.Wait()
}

// parallel runs the jobs, at most workers at a time, and waits for all of them
func parallel(workers int, jobs []func()) {
	if workers <= 1 || len(jobs) <= 1 {
		for _, job := range jobs {
			job()
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, job := range jobs {
		g.Go(func() error {
			job()
			return nil
		})
	}
	_ = g.Wait()
}
