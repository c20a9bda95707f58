package upgma

// clusterDuplicates eagerly merges groups of rows whose distance profiles
// hash identically, before the general nearest-pair loop begins. Identical
// taxa would otherwise be rediscovered one distance-zero pair at a time,
// each costing a full O(n²) scan. Returns the number of rows eliminated.
//
// Within a group, members are paired off by halves (element i with element
// i+⌈size/2⌉) rather than sequentially, so a group of size g is flattened
// in O(log g) rounds. Each merge costs O(active rows), and the halved
// pairing also keeps the resulting subtree balanced, which the imbalance
// tie-break alone cannot guarantee for distance-zero groups.
func (e *engine) clusterDuplicates() int {
	n := e.m.n
	progress := e.cfg.Progress
	progress.Begin("Identifying identical (and nearly identical) taxa", float64(2*n))

	hashed := e.calculateRowHashes()
	progress.Add(float64(n))
	groups := identifyDuplicateClusters(hashed)
	if len(groups) == 0 {
		progress.Add(float64(n))
		progress.Done()
		return 0
	}

	// Map cluster ids back to their current rows; maintained below as
	// merges reshuffle rows.
	clusterToRow := make([]int, e.tree.Len())
	for i := range clusterToRow {
		clusterToRow[i] = -1
	}
	for row := 0; row < e.m.n; row++ {
		clusterToRow[e.rowToCluster[row]] = row
	}

	members := 0
	for _, g := range groups {
		members += len(g)
	}
	workPerDupe := float64(n) / float64(members)

	removed := 0
	for _, group := range groups {
		removed += len(group) - 1
		progress.Add(float64(len(group)) * workPerDupe)
		for len(group) > 1 && e.m.n > 3 {
			firstHalf := len(group) / 2 // rounded down
			secondHalf := len(group) - firstHalf
			for i := 0; i < firstHalf && e.m.n > 3; i++ {
				rowA := clusterToRow[group[i]]
				rowB := clusterToRow[group[i+secondHalf]]
				if rowB < rowA {
					rowA, rowB = rowB, rowA
				}
				merged := e.tree.Len() // id the merge is about to get
				displaced := e.rowToCluster[e.m.n-1]
				e.cluster(rowA, rowB)
				group[i] = merged
				clusterToRow = append(clusterToRow, rowA)
				clusterToRow[displaced] = rowB
			}
			// Keep the rounded-up half: an odd member out must stay
			// in play for the next round.
			group = group[:secondHalf]
		}
	}

	progress.Done()
	return removed
}
