package batchlm

import (
	"runtime"
	"sync"
)

// parallelFor fans out n independent work items across a small goroutine
// pool and blocks until every item has run — the Go rendering of a single
// bulk-synchronous kernel launch-and-wait (spec §5: "each launch completes
// globally before the next begins"). fn must not share mutable state across
// indices; every kernel in kernels.go writes only to the scratch/state
// slot owned by its own fit index, so no further locking is needed.
func parallelFor(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	indices := make(chan int)
	go func() {
		for i := 0; i < n; i++ {
			indices <- i
		}
		close(indices)
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}
	wg.Wait()
}
