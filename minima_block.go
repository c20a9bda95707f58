package upgma

import "golang.org/x/sys/cpu"

// blockWidth is the lane count of the blocked row-minima scan. Eight
// float64 lanes span two AVX2 (or four NEON) vector registers, wide enough
// to keep the loads streaming without spilling the lane accumulators.
const blockWidth = 8

// resolveStrategy maps StrategyAuto to a concrete scan implementation based
// on CPU capabilities. The blocked scan only pays off when the target has
// vector units wide enough to carry its lane accumulators in registers.
func resolveStrategy(s Strategy) Strategy {
	if s != StrategyAuto {
		return s
	}
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		return StrategyBlocked
	}
	return StrategyScalar
}

// scanRowsBlocked is the lane-blocked row-minima implementation. Each row
// scan is partitioned into blockWidth-wide lanes; every lane tracks its own
// running minimum and the column that produced it, with column numbers
// materialized from the e.columnNumbers buffer so the lane state is pure
// float data. After the blocked pass the lane minima are reduced to a
// single best value/column, and the remainder columns are scanned scalarly.
//
// When a row's minimum is unique this selects the same column as
// scanRowsScalar. When several columns tie exactly, the two paths may pick
// different (equally minimal) columns.
func (e *engine) scanRowsBlocked(lo, hi int) {
	var minLane, ixLane [blockWidth]float64
	for row := lo; row < hi; row++ {
		rowData := e.m.rows[row]
		pos := Position{Row: row, Column: 0, Value: infiniteDistance}

		for lane := 0; lane < blockWidth; lane++ {
			minLane[lane] = infiniteDistance
			ixLane[lane] = -1
		}
		col := 0
		for ; col+blockWidth < row; col += blockWidth {
			for lane := 0; lane < blockWidth; lane++ {
				if v := rowData[col+lane]; v < minLane[lane] {
					minLane[lane] = v
					ixLane[lane] = e.columnNumbers[col+lane]
				}
			}
		}
		for lane := 0; lane < blockWidth; lane++ {
			if minLane[lane] < pos.Value {
				pos.Value = minLane[lane]
				pos.Column = int(ixLane[lane])
			}
		}
		for ; col < row; col++ {
			if v := rowData[col]; v < pos.Value {
				pos.Column = col
				pos.Value = v
			}
		}

		pos.Imbalance = e.imbalance(pos.Row, pos.Column)
		e.minima[row] = pos
	}
}
