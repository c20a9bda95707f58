package upgma

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"
)

// BuildTree runs UPGMA over a pairwise distance matrix and returns the
// resulting cluster tree. distances is flat row-major with
// distances[i*len(names)+j] holding the distance between taxa i and j; it
// must be symmetric with a zero diagonal and non-negative entries. names
// must be distinct and number at least three. The input slices are not
// modified.
func BuildTree(names []string, distances []float64, cfg Config) (*Tree, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	n := len(names)
	if n < 3 {
		return nil, fmt.Errorf("upgma: need at least 3 taxa, got %d", n)
	}
	if len(distances) != n*n {
		return nil, fmt.Errorf("upgma: distance matrix length %d is not square for %d taxa (want %d)", len(distances), n, n*n)
	}
	seen := make(map[string]struct{}, n)
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("upgma: duplicate taxon name %q", name)
		}
		seen[name] = struct{}{}
	}

	e := newEngine(names, distances, cfg)
	return e.run(), nil
}

// engine drives one clustering run. It exclusively owns the working matrix
// and the row-to-cluster mapping for the run's duration and is single-use:
// after run returns, the matrix is empty and the engine is spent.
type engine struct {
	cfg  Config
	m    *squareMatrix
	tree *Tree

	// rowToCluster maps each active matrix row to the id of the unmerged
	// cluster occupying it. Row indexes are recycled by the swap-with-last
	// removal; cluster ids are permanent.
	rowToCluster []int

	// minima is the row-minima output, overwritten on every scan.
	minima []Position

	// columnNumbers is the blocked scanner's materialized column-index
	// buffer: columnNumbers[c] == float64(c).
	columnNumbers []float64

	// scan is the injected row-minima implementation, fixed at
	// construction. Keeping it as a bound function avoids any dispatch
	// decision inside the per-row hot loop.
	scan func(lo, hi int)

	// degreeOfRoot is the active-row count at which the main loop stops
	// and the final join takes over: 2 for a rooted tree, 3 for unrooted.
	degreeOfRoot int
}

func newEngine(names []string, distances []float64, cfg Config) *engine {
	n := len(names)
	e := &engine{
		cfg:          cfg,
		m:            newSquareMatrix(n),
		tree:         &Tree{subtreeOnly: cfg.SubtreeOnly},
		rowToCluster: make([]int, n),
		degreeOfRoot: 3,
	}
	e.m.loadFlat(distances)
	for i, name := range names {
		e.rowToCluster[i] = e.tree.addLeaf(name)
	}
	if cfg.Rooted {
		e.degreeOfRoot = 2
	}

	switch resolveStrategy(cfg.Strategy) {
	case StrategyBlocked:
		e.columnNumbers = make([]float64, n)
		for c := range e.columnNumbers {
			e.columnNumbers[c] = float64(c)
		}
		e.scan = e.scanRowsBlocked
	default:
		e.scan = e.scanRowsScalar
	}
	return e
}

// run executes the whole state machine: duplicate pre-clustering, the
// nearest-pair loop, and the final join.
func (e *engine) run() *Tree {
	if dupes := e.clusterDuplicates(); dupes > 0 && !e.cfg.Silent {
		log.Printf("upgma: clustered %d identical (or near-identical) taxa", dupes)
	}

	// Merging the pair found in an n-row matrix retires n row visits, so
	// the remaining workload is triangular in the active row count.
	progress := e.cfg.Progress
	n := e.m.n
	progress.Begin("Constructing UPGMA tree", float64(n)*float64(n+1)*0.5)

	for e.degreeOfRoot < e.m.n {
		best := e.getMinimumEntry()
		e.cluster(best.Column, best.Row)
		progress.Add(float64(e.m.n))
	}
	e.finishClustering()
	progress.Done()
	return e.tree
}

// getMinimumEntry scans the row minima and returns the global best
// candidate join, ordered by (distance, imbalance). Row 0's sentinel has
// Row == Column and is skipped.
func (e *engine) getMinimumEntry() Position {
	e.getRowMinima()
	best := Position{Value: infiniteDistance}
	for r := 0; r < e.m.n; r++ {
		if here := e.minima[r]; here.Row != here.Column && here.less(best) {
			best = here
		}
	}
	return best
}

// cluster joins the clusters occupying rows a and b (a < b). Each child's
// branch length is half the joined distance; the merged cluster's distance
// to every other row i is the size-weighted average
// lambda·D[a][i] + (1−lambda)·D[b][i], written over row a and its mirror
// column. Row b is then removed by overwrite-with-last, and the cluster
// that lived in the last row inherits b's row index.
func (e *engine) cluster(a, b int) {
	aLength := e.m.rows[b][a] * 0.5
	bLength := aLength
	aCount := e.tree.clusters[e.rowToCluster[a]].ExteriorNodes
	bCount := e.tree.clusters[e.rowToCluster[b]].ExteriorNodes
	lambda := float64(aCount) / float64(aCount+bCount)
	mu := 1.0 - lambda

	rowA := e.m.rows[a]
	rowB := e.m.rows[b]
	for i := 0; i < e.m.n; i++ {
		if i != a && i != b {
			dCI := lambda*rowA[i] + mu*rowB[i]
			rowA[i] = dCI
			e.m.rows[i][a] = dCI
		}
	}

	merged := e.tree.join(
		Child{ID: e.rowToCluster[a], Length: aLength},
		Child{ID: e.rowToCluster[b], Length: bLength},
	)
	e.rowToCluster[a] = merged
	e.rowToCluster[b] = e.rowToCluster[e.m.n-1]
	e.m.removeRowAndColumn(b)
}

// finishClustering joins the last degreeOfRoot clusters into the root and
// empties the matrix. Being called with any other active-row count means
// the loop's termination condition is broken, which is a programming fault,
// not an input condition.
//
// Each remaining cluster is weighted by its exterior-node count, normalized
// so all weights sum to one half. For the unrooted three-way join, each
// branch combines the two distances not involving that cluster under the
// pairwise weights. That formula is a known approximation: Felsenstein
// (2004, ch. 11) derives UPGMA branch lengths only for rooted trees, and no
// rigorous unrooted counterpart is established. It is preserved as
// documented rather than replaced.
func (e *engine) finishClustering() {
	if e.m.n != e.degreeOfRoot {
		panic(fmt.Sprintf("upgma: final join invoked with %d active rows, want %d", e.m.n, e.degreeOfRoot))
	}

	weights := make([]float64, e.m.n)
	for i := range weights {
		weights[i] = float64(e.tree.clusters[e.rowToCluster[i]].ExteriorNodes)
	}
	denominator := floats.Sum(weights)
	floats.Scale(1.0/(2.0*denominator), weights)

	rows := e.m.rows
	if e.m.n == 3 {
		// Unrooted tree: the root has degree 3.
		e.tree.join(
			Child{ID: e.rowToCluster[0], Length: weights[1]*rows[0][1] + weights[2]*rows[0][2]},
			Child{ID: e.rowToCluster[1], Length: weights[0]*rows[0][1] + weights[2]*rows[1][2]},
			Child{ID: e.rowToCluster[2], Length: weights[0]*rows[0][2] + weights[1]*rows[1][2]},
		)
	} else {
		// Rooted tree: the root has degree 2.
		e.tree.join(
			Child{ID: e.rowToCluster[0], Length: weights[1] * rows[0][1]},
			Child{ID: e.rowToCluster[1], Length: weights[0] * rows[0][1]},
		)
	}
	e.m.n = 0
}
