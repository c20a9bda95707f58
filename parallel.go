package upgma

import "sync"

// parallelRows runs fn over contiguous chunks of the row range [start, end)
// using numWorkers goroutines, then waits for all of them. Row ranges do not
// overlap, so fn may write to per-row output slots without synchronization.
// With numWorkers <= 1 (or a trivially small range) fn runs inline on the
// caller's goroutine.
//
// Both the row-minima scan and row hashing are embarrassingly parallel
// across rows; this is the only concurrency in the package, and the Wait
// acts as the barrier before each sequential reduction step.
func parallelRows(numWorkers, start, end int, fn func(lo, hi int)) {
	if end <= start {
		return
	}
	if numWorkers <= 1 || end-start <= 1 {
		fn(start, end)
		return
	}

	var wg sync.WaitGroup
	total := end - start
	rowsPerWorker := (total + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		lo := start + w*rowsPerWorker
		hi := lo + rowsPerWorker
		if hi > end {
			hi = end
		}
		if lo >= end {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}

	wg.Wait()
}
