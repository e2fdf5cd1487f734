// Package parallel runs index-addressed work on a bounded number of goroutines.
//
// Callers write results into slots owned by their index, so the output never
// depends on scheduling.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// workers is the goroutine limit for n items.
func workers(n int) int {
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	return w
}

// Chunks splits [0, items) into at most GOMAXPROCS contiguous ranges and
// calls fn on each concurrently. With items <= minItems fn is called once
// on the whole range in the calling goroutine.
func Chunks(items, minItems int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= minItems {
		fn(0, items)
		return
	}

	n := workers(items)
	size := (items + n - 1) / n
	var g errgroup.Group
	for start := 0; start < items; start += size {
		end := min(start+size, items)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEach calls fn for every index in [0, items), at most GOMAXPROCS at a
// time. Every index runs even after a failure; the error returned is that of
// the lowest failing index, the same one a sequential loop would report.
func ForEach(items int, fn func(i int) error) error {
	if items <= 0 {
		return nil
	}
	errs := make([]error, items)
	var g errgroup.Group
	g.SetLimit(workers(items))
	for i := 0; i < items; i++ {
		g.Go(func() error {
			errs[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
