package upgma

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"
)

// hashedRow pairs a row's content hash with the cluster currently occupying
// it. Sorting by (hash, cluster) groups duplicate rows deterministically.
type hashedRow struct {
	hash    uint64
	cluster int
}

// hashRowData returns an FNV-1a hash over the bit patterns of a distance
// row. Rows with byte-identical distance profiles hash identically; a
// collision between distinct rows only causes a harmless extra merge
// attempt (the merge itself always uses actual matrix values), never an
// incorrect tree.
func hashRowData(rowData []float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range rowData {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// calculateRowHashes hashes every active row in parallel and returns the
// results sorted by (hash, cluster).
func (e *engine) calculateRowHashes() []hashedRow {
	n := e.m.n
	hashed := make([]hashedRow, n)
	parallelRows(e.cfg.Workers, 0, n, func(lo, hi int) {
		for row := lo; row < hi; row++ {
			hashed[row] = hashedRow{
				hash:    hashRowData(e.m.rows[row][:n]),
				cluster: e.rowToCluster[row],
			}
		}
	})
	sort.Slice(hashed, func(i, j int) bool {
		if hashed[i].hash != hashed[j].hash {
			return hashed[i].hash < hashed[j].hash
		}
		return hashed[i].cluster < hashed[j].cluster
	})
	return hashed
}

// identifyDuplicateClusters walks the sorted hashes and returns the groups
// of cluster ids whose rows hashed identically, keeping only groups with
// more than one member. Group members are in ascending cluster order.
func identifyDuplicateClusters(hashed []hashedRow) [][]int {
	var groups [][]int
	for i := 0; i < len(hashed); {
		j := i + 1
		for j < len(hashed) && hashed[j].hash == hashed[i].hash {
			j++
		}
		if j-i > 1 {
			group := make([]int, 0, j-i)
			for k := i; k < j; k++ {
				group = append(group, hashed[k].cluster)
			}
			groups = append(groups, group)
		}
		i = j
	}
	return groups
}
