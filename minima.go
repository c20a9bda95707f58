package upgma

// getRowMinima fills e.minima with, for every active row r >= 1, the column
// c < r minimizing D[r][c], as a Position carrying the pair's imbalance.
// Row 0 has no admissible column and gets the infinite sentinel (with
// Row == Column, which the reduction in getMinimumEntry skips). The slice
// is reused across invocations; entries at or beyond the active rank are
// stale and must not be read.
//
// Rows are scanned independently, in parallel across e.cfg.Workers
// goroutines; parallelRows waits for all of them before returning, so the
// caller's sequential reduction always sees a complete scan.
func (e *engine) getRowMinima() {
	n := e.m.n
	if cap(e.minima) < n {
		e.minima = make([]Position, n)
	}
	e.minima = e.minima[:n]
	e.minima[0] = Position{Row: 0, Column: 0, Value: infiniteDistance}
	parallelRows(e.cfg.Workers, 1, n, e.scan)
}

// scanRowsScalar is the scalar row-minima implementation: one running
// minimum per row, stable scan order (the earliest column wins a
// within-row tie).
func (e *engine) scanRowsScalar(lo, hi int) {
	for row := lo; row < hi; row++ {
		rowData := e.m.rows[row]
		bestValue := float64(infiniteDistance)
		bestColumn := 0
		for col := 0; col < row; col++ {
			if v := rowData[col]; v < bestValue {
				bestColumn = col
				bestValue = v
			}
		}
		e.minima[row] = Position{
			Row:       row,
			Column:    bestColumn,
			Value:     bestValue,
			Imbalance: e.imbalance(row, bestColumn),
		}
	}
}

// imbalance returns the absolute difference between the exterior-node
// counts of the clusters occupying rows a and b.
func (e *engine) imbalance(a, b int) int {
	sizeA := e.tree.clusters[e.rowToCluster[a]].ExteriorNodes
	sizeB := e.tree.clusters[e.rowToCluster[b]].ExteriorNodes
	if sizeA < sizeB {
		return sizeB - sizeA
	}
	return sizeA - sizeB
}
