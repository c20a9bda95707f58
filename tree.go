package upgma

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Child is a link from a cluster to one of its children: the child's cluster
// id and the length of the branch between them.
type Child struct {
	ID     int
	Length float64
}

// Cluster is one node of the tree: an original taxon (leaf, no children) or
// a merge of previously created clusters. Clusters are immutable once
// created; a merge creates a new cluster referencing its children, it never
// modifies an existing one.
type Cluster struct {
	// Name is the taxon name for leaves, empty for merged clusters.
	Name string
	// ExteriorNodes is the number of original taxa this cluster subsumes.
	ExteriorNodes int
	// Children holds the merged child clusters: empty for a leaf, two for
	// an ordinary merge, two or three for the final join.
	Children []Child
}

// Tree accumulates the full merge history of a clustering run as an arena of
// Cluster records referenced by dense integer ids. Leaves occupy ids
// 0..LeafCount()-1 in taxon order; merged clusters follow in creation order,
// so every child id is smaller than its parent's and the last cluster is the
// root.
type Tree struct {
	clusters    []Cluster
	leafCount   int
	subtreeOnly bool
}

// addLeaf appends a leaf cluster and returns its id.
func (t *Tree) addLeaf(name string) int {
	t.clusters = append(t.clusters, Cluster{Name: name, ExteriorNodes: 1})
	t.leafCount++
	return len(t.clusters) - 1
}

// join appends a merged cluster with the given children and returns its id.
func (t *Tree) join(children ...Child) int {
	exterior := 0
	for _, c := range children {
		exterior += t.clusters[c.ID].ExteriorNodes
	}
	t.clusters = append(t.clusters, Cluster{
		ExteriorNodes: exterior,
		Children:      children,
	})
	return len(t.clusters) - 1
}

// Len returns the total number of clusters (leaves plus merges).
func (t *Tree) Len() int { return len(t.clusters) }

// LeafCount returns the number of leaf clusters (original taxa).
func (t *Tree) LeafCount() int { return t.leafCount }

// Root returns the id of the root cluster, the last one created.
func (t *Tree) Root() int { return len(t.clusters) - 1 }

// Cluster returns a copy of the cluster record with the given id.
func (t *Tree) Cluster(id int) Cluster { return t.clusters[id] }

// Newick returns the Newick serialization of the tree. Branch lengths are
// formatted with the given number of significant digits.
func (t *Tree) Newick(precision int) string {
	var sb strings.Builder
	t.writeNewick(&sb, precision)
	return sb.String()
}

// WriteNewick writes the Newick serialization of the tree to w.
func (t *Tree) WriteNewick(w io.Writer, precision int) error {
	if sw, ok := w.(io.StringWriter); ok {
		var sb strings.Builder
		t.writeNewick(&sb, precision)
		_, err := sw.WriteString(sb.String())
		return err
	}
	_, err := io.WriteString(w, t.Newick(precision))
	return err
}

func (t *Tree) writeNewick(sb *strings.Builder, precision int) {
	t.writeCluster(sb, t.Root(), precision)
	if !t.subtreeOnly {
		sb.WriteByte(';')
	}
	sb.WriteByte('\n')
}

func (t *Tree) writeCluster(sb *strings.Builder, id, precision int) {
	c := &t.clusters[id]
	if len(c.Children) == 0 {
		sb.WriteString(c.Name)
		return
	}
	sb.WriteByte('(')
	for i, child := range c.Children {
		if i > 0 {
			sb.WriteByte(',')
		}
		t.writeCluster(sb, child.ID, precision)
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(child.Length, 'g', precision, 64))
	}
	sb.WriteByte(')')
}

// leafPath pairs a leaf id with the summed branch length from that leaf up
// to the cluster currently under consideration.
type leafPath struct {
	leaf  int
	depth float64
}

// CopheneticDistances returns the n×n flat row-major matrix of leaf-to-leaf
// distances implied by the tree: for each pair of leaves, the sum of branch
// lengths along the path through their lowest common ancestor. Leaf indexes
// follow taxon order.
func (t *Tree) CopheneticDistances() []float64 {
	n := t.leafCount
	out := make([]float64, n*n)
	paths := make([][]leafPath, len(t.clusters))

	for id, c := range t.clusters {
		if len(c.Children) == 0 {
			paths[id] = []leafPath{{leaf: id, depth: 0}}
			continue
		}
		// Distances between leaves in different child subtrees pass
		// through this cluster.
		for i := 0; i < len(c.Children); i++ {
			for j := i + 1; j < len(c.Children); j++ {
				ci, cj := c.Children[i], c.Children[j]
				for _, a := range paths[ci.ID] {
					for _, b := range paths[cj.ID] {
						d := a.depth + ci.Length + b.depth + cj.Length
						out[a.leaf*n+b.leaf] = d
						out[b.leaf*n+a.leaf] = d
					}
				}
			}
		}
		merged := make([]leafPath, 0, c.ExteriorNodes)
		for _, child := range c.Children {
			for _, a := range paths[child.ID] {
				merged = append(merged, leafPath{leaf: a.leaf, depth: a.depth + child.Length})
			}
			paths[child.ID] = nil
		}
		paths[id] = merged
	}

	return out
}

// RMSOfTreeMinusMatrix returns the root-mean-square residual between the
// tree's cophenetic distances and a reference distance matrix (flat
// row-major, n×n, in the same taxon order the tree was built from). It
// measures how faithfully the tree reproduces the input distances.
func (t *Tree) RMSOfTreeMinusMatrix(ref []float64, n int) (float64, error) {
	if n != t.leafCount {
		return 0, fmt.Errorf("upgma: reference matrix rank %d does not match tree leaf count %d", n, t.leafCount)
	}
	if len(ref) != n*n {
		return 0, fmt.Errorf("upgma: reference matrix length %d does not match n*n = %d (n=%d)", len(ref), n*n, n)
	}
	if n < 2 {
		return 0, nil
	}

	diff := t.CopheneticDistances()
	floats.Sub(diff, ref)
	// Diagonals are zero on both sides and each pair appears twice; the
	// double counting cancels in the mean over the n(n-1) off-diagonals.
	sumSq := floats.Dot(diff, diff)
	return math.Sqrt(sumSq / float64(n*(n-1))), nil
}
