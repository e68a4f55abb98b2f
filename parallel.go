package hdcd

import "sync"

// forEachChunk splits [0, n) into contiguous chunks and runs fn on each,
// using one goroutine per chunk when numWorkers > 1. Chunks never overlap,
// so fn may write to disjoint index ranges without synchronization, and the
// combined result is bitwise identical to the sequential fn(0, n).
func forEachChunk(n, numWorkers int, fn func(start, end int)) {
	if numWorkers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	perWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		if start >= n {
			break
		}
		end := min(start+perWorker, n)

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}

	wg.Wait()
}
