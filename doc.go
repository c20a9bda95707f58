// Package upgma builds hierarchical trees (dendrograms) from pairwise
// distance matrices with the Unweighted Pair Group Method with Arithmetic
// mean (UPGMA) of Sokal and Michener (1958).
//
// The algorithm repeatedly joins the two closest clusters, replacing them
// with a merged cluster whose distance to every other cluster is the
// size-weighted average of its children's distances, until only the root
// remains. The result is a rooted or unrooted phylogenetic tree with branch
// lengths, renderable as Newick text.
//
// Basic usage:
//
//	names := []string{"A", "B", "C", "D"}
//	dist := []float64{ /* 4×4 row-major symmetric distances */ }
//	tree, err := upgma.BuildTree(names, dist, upgma.DefaultConfig())
//	// tree.Newick(6) is the Newick serialization
//
// For distance matrices in tabular (PHYLIP square or lower-triangular)
// form, use [ReadDistanceMatrix] to obtain the names and flat distances.
//
// # Performance
//
// Each nearest-pair search is O(n²) and the whole run O(n³), but the inner
// row scans are branch-predictable streams over dense rows: merged rows are
// physically removed by overwriting them with the last row and column, so no
// liveness checks appear in the hot loop. Row scans run in parallel across
// worker goroutines ([Config.Workers]), and a lane-blocked scan variant is
// selected automatically on CPUs with wide vector units
// ([Config.Strategy]). Identical taxa (equal distance rows) are detected up
// front by content hashing and merged in a balanced batch before the general
// loop begins.
package upgma
