package upgma

// infiniteDistance is the sentinel used for matrix positions that must never
// win a nearest-pair search (row 0 of the minima output, and the initial
// best when reducing). Large enough to dominate any real distance without
// the NaN-propagation hazards of math.Inf in vector lanes.
const infiniteDistance = 1e36

// Position identifies a candidate join: a (row, column) pair in the active
// distance matrix, the distance between the two clusters occupying those
// rows, and the imbalance of their sizes. Column is always strictly less
// than Row, so each unordered pair has one canonical representation.
type Position struct {
	Row       int
	Column    int
	Value     float64
	Imbalance int
}

// less orders candidate joins by ascending distance, with ties broken by
// ascending imbalance. Preferring the pair whose cluster sizes differ least
// avoids degenerate comb-shaped trees when many taxa are identical.
func (p Position) less(q Position) bool {
	return p.Value < q.Value || (p.Value == q.Value && p.Imbalance < q.Imbalance)
}
