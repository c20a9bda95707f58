package upgma

// squareMatrix is the working distance matrix for a clustering run. Storage
// is a single flat row-major allocation; rows holds one sub-slice per row so
// that row removal can swap slice headers instead of moving data.
//
// Removal of a row/column overwrites the removed column with the last column
// and the removed row with the last row, then shrinks the logical rank.
// Every row below the rank is therefore always in use; the hot loops never
// need an "is this row active" check, which would be mispredicted heavily as
// the matrix shrinks.
type squareMatrix struct {
	data []float64
	rows [][]float64
	n    int // active rank; rows and columns >= n are dead
}

// newSquareMatrix allocates an n×n matrix of zeros.
func newSquareMatrix(n int) *squareMatrix {
	m := &squareMatrix{
		data: make([]float64, n*n),
		rows: make([][]float64, n),
		n:    n,
	}
	for r := 0; r < n; r++ {
		m.rows[r] = m.data[r*n : (r+1)*n]
	}
	return m
}

// loadFlat copies an n×n row-major distance array into the matrix.
func (m *squareMatrix) loadFlat(distances []float64) {
	copy(m.data, distances[:m.n*m.n])
}

// at returns D[r][c]. Both indexes must be below the active rank.
func (m *squareMatrix) at(r, c int) float64 {
	return m.rows[r][c]
}

// removeRowAndColumn deletes row/column b in O(n): column b is overwritten
// with the last column in every remaining row, row b's slice header is
// overwritten with the last row's, and the rank shrinks by one. Data in the
// vacated last row/column is left in place and never read again.
func (m *squareMatrix) removeRowAndColumn(b int) {
	last := m.n - 1
	for r := 0; r <= last; r++ {
		row := m.rows[r]
		row[b] = row[last]
	}
	m.rows[b] = m.rows[last]
	m.rows[last] = nil
	m.n = last
}
