package upgma

import (
	"math"
	"strings"
	"testing"
)

// fourTaxa is the worked ultrametric example: A and B are closest, C joins
// their group, D is equidistant from everything else.
func fourTaxa() ([]string, []float64) {
	names := []string{"A", "B", "C", "D"}
	dist := []float64{
		0, 2, 4, 6,
		2, 0, 4, 6,
		4, 4, 0, 6,
		6, 6, 6, 0,
	}
	return names, dist
}

func silentConfig() Config {
	cfg := DefaultConfig()
	cfg.Silent = true
	return cfg
}

func TestBuildTreeValidation(t *testing.T) {
	names, dist := fourTaxa()

	tests := []struct {
		name      string
		names     []string
		distances []float64
		mutate    func(*Config)
	}{
		{"too few taxa", []string{"A", "B"}, []float64{0, 1, 1, 0}, nil},
		{"not square", names, dist[:15], nil},
		{"duplicate names", []string{"A", "B", "B", "D"}, dist, nil},
		{"negative workers", names, dist, func(c *Config) { c.Workers = -1 }},
		{"invalid strategy", names, dist, func(c *Config) { c.Strategy = "simd" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := silentConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			if _, err := BuildTree(tt.names, tt.distances, cfg); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestBuildTreeUnrootedWorkedExample(t *testing.T) {
	names, dist := fourTaxa()
	tree, err := BuildTree(names, dist, silentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 leaves + 1 pair merge + 1 three-way root = 2N-2.
	if tree.Len() != 6 {
		t.Fatalf("cluster count: got %d, want 6", tree.Len())
	}
	if tree.LeafCount() != 4 {
		t.Fatalf("leaf count: got %d, want 4", tree.LeafCount())
	}

	// A,B join first at distance 2, branch 1 each.
	ab := tree.Cluster(4)
	if len(ab.Children) != 2 || ab.Children[0].ID != 0 || ab.Children[1].ID != 1 {
		t.Fatalf("first merge children: got %+v, want leaves 0 and 1", ab.Children)
	}
	if ab.Children[0].Length != 1 || ab.Children[1].Length != 1 {
		t.Errorf("first merge branch lengths: got %g,%g, want 1,1", ab.Children[0].Length, ab.Children[1].Length)
	}
	if ab.ExteriorNodes != 2 {
		t.Errorf("first merge exterior nodes: got %d, want 2", ab.ExteriorNodes)
	}

	// The unrooted root joins {AB, D, C} with the weighted final-join
	// formula: weights (2,1,1)/8 give branches 1.25, 2.25, 1.75.
	root := tree.Cluster(tree.Root())
	if len(root.Children) != 3 {
		t.Fatalf("root degree: got %d, want 3", len(root.Children))
	}
	if got := tree.Newick(6); got != "((A:1,B:1):1.25,D:2.25,C:1.75);\n" {
		t.Errorf("newick: got %q", got)
	}
}

func TestBuildTreeRootedWorkedExample(t *testing.T) {
	names, dist := fourTaxa()
	cfg := silentConfig()
	cfg.Rooted = true
	tree, err := BuildTree(names, dist, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 leaves + 2 pair merges + 1 two-way root = 2N-1.
	if tree.Len() != 7 {
		t.Fatalf("cluster count: got %d, want 7", tree.Len())
	}
	root := tree.Cluster(tree.Root())
	if len(root.Children) != 2 {
		t.Fatalf("root degree: got %d, want 2", len(root.Children))
	}
	// Merges: (A,B)@2 → branches 1; (AB,C)@4 → branches 2; final
	// two-way join of ABC (weight 3/8) and D (weight 1/8) over distance 6.
	if got := tree.Newick(6); got != "(((A:1,B:1):2,C:2):0.75,D:2.25);\n" {
		t.Errorf("newick: got %q", got)
	}
}

func TestClusterCounts(t *testing.T) {
	for _, n := range []int{3, 5, 8, 21} {
		names, dist := randomTieFreeMatrix(n, int64(100+n))

		unrooted, err := BuildTree(names, dist, silentConfig())
		if err != nil {
			t.Fatalf("n=%d unrooted: %v", n, err)
		}
		if unrooted.Len() != 2*n-2 {
			t.Errorf("n=%d unrooted cluster count: got %d, want %d", n, unrooted.Len(), 2*n-2)
		}

		cfg := silentConfig()
		cfg.Rooted = true
		rooted, err := BuildTree(names, dist, cfg)
		if err != nil {
			t.Fatalf("n=%d rooted: %v", n, err)
		}
		if rooted.Len() != 2*n-1 {
			t.Errorf("n=%d rooted cluster count: got %d, want %d", n, rooted.Len(), 2*n-1)
		}
	}
}

func TestBranchLengthsNonNegative(t *testing.T) {
	names, dist := randomTieFreeMatrix(17, 3)
	tree, err := BuildTree(names, dist, silentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for id := 0; id < tree.Len(); id++ {
		for _, child := range tree.Cluster(id).Children {
			if child.Length < 0 {
				t.Errorf("cluster %d child %d: negative branch length %g", id, child.ID, child.Length)
			}
		}
	}
}

func TestImbalanceTieBreak(t *testing.T) {
	// After A,B merge at distance 1, two candidates tie at distance 2:
	// joining C to AB (sizes 1 and 2, imbalance 1) and joining D to E
	// (sizes 1 and 1, imbalance 0). The balanced pair must win.
	names := []string{"A", "B", "C", "D", "E"}
	const far = 10.0
	dist := []float64{
		0, 1, 2, far, far,
		1, 0, 2, far, far,
		2, 2, 0, far, far,
		far, far, far, 0, 2,
		far, far, far, 2, 0,
	}
	tree, err := BuildTree(names, dist, silentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cluster 5 is the A,B merge; cluster 6 must be the D,E merge, not
	// the (AB,C) join the row scan finds first.
	second := tree.Cluster(6)
	if len(second.Children) != 2 {
		t.Fatalf("second merge: got %d children", len(second.Children))
	}
	got := map[int]bool{second.Children[0].ID: true, second.Children[1].ID: true}
	if !got[3] || !got[4] {
		t.Errorf("second merge children: got %+v, want leaves D(3) and E(4)", second.Children)
	}
}

func TestExactTopologyIsDeterministic(t *testing.T) {
	names, dist := randomTieFreeMatrix(25, 11)

	first, err := BuildTree(names, dist, silentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := BuildTree(names, dist, silentConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Newick(10) != again.Newick(10) {
			t.Fatalf("run %d produced a different tree", i)
		}
	}
}

func TestStrategiesAgreeOnTieFreeInput(t *testing.T) {
	names, dist := randomTieFreeMatrix(30, 13)

	newick := make(map[Strategy]string)
	for _, s := range []Strategy{StrategyScalar, StrategyBlocked} {
		cfg := silentConfig()
		cfg.Strategy = s
		tree, err := BuildTree(names, dist, cfg)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		newick[s] = tree.Newick(10)
	}
	if newick[StrategyScalar] != newick[StrategyBlocked] {
		t.Errorf("scalar and blocked trees differ:\n%s\n%s",
			newick[StrategyScalar], newick[StrategyBlocked])
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	names, dist := randomTieFreeMatrix(30, 17)

	var trees []string
	for _, workers := range []int{1, 4} {
		cfg := silentConfig()
		cfg.Workers = workers
		tree, err := BuildTree(names, dist, cfg)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		trees = append(trees, tree.Newick(10))
	}
	if trees[0] != trees[1] {
		t.Errorf("worker counts produced different trees:\n%s\n%s", trees[0], trees[1])
	}
}

func TestInputDistancesNotModified(t *testing.T) {
	names, dist := fourTaxa()
	orig := make([]float64, len(dist))
	copy(orig, dist)

	if _, err := BuildTree(names, dist, silentConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range dist {
		if dist[i] != orig[i] {
			t.Fatalf("input distances modified at %d: %g -> %g", i, orig[i], dist[i])
		}
	}
}

func TestFinalJoinPanicsOnBrokenInvariant(t *testing.T) {
	names, dist := fourTaxa()
	e := testEngine(t, names, dist, nil)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic from final join with 4 active rows")
		}
		if !strings.Contains(r.(string), "final join") {
			t.Errorf("unexpected panic value: %v", r)
		}
	}()
	e.finishClustering()
}

func TestThreeTaxaUnrootedIsSingleJoin(t *testing.T) {
	names := []string{"A", "B", "C"}
	dist := []float64{
		0, 2, 3,
		2, 0, 4,
		3, 4, 0,
	}
	tree, err := BuildTree(names, dist, silentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Len() != 4 {
		t.Fatalf("cluster count: got %d, want 4", tree.Len())
	}
	root := tree.Cluster(tree.Root())
	if len(root.Children) != 3 {
		t.Fatalf("root degree: got %d, want 3", len(root.Children))
	}
	for _, c := range root.Children {
		if c.Length < 0 {
			t.Errorf("child %d: negative branch %g", c.ID, c.Length)
		}
	}
}

func TestUltrametricSiblingCopheneticMatchesInput(t *testing.T) {
	// For taxa merged directly as siblings, the implied leaf-to-leaf
	// distance equals the input distance exactly.
	names, dist := fourTaxa()
	tree, err := BuildTree(names, dist, silentConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coph := tree.CopheneticDistances()
	if got := coph[0*4+1]; math.Abs(got-2) > 1e-12 {
		t.Errorf("cophenetic A-B: got %g, want 2", got)
	}
}
