package similarity

import (
	"math"
	"sort"
)

// sparseRows is a CSR matrix widened to int indices and float64 values.
type sparseRows struct {
	nCols int
	ptr   []int
	cols  []int
	// vals is nil for pattern-only matrices.
	vals []float64
}

func (s *sparseRows) nRows() int {
	if len(s.ptr) == 0 {
		return 0
	}
	return len(s.ptr) - 1
}

func widenPattern[I Index](indptr, indices []I, nCols int) *sparseRows {
	s := &sparseRows{
		nCols: nCols,
		ptr:   make([]int, len(indptr)),
		cols:  make([]int, len(indices)),
	}
	for i, v := range indptr {
		s.ptr[i] = int(v)
	}
	for i, v := range indices {
		s.cols[i] = int(v)
	}
	return s
}

func (p SparsityPattern[I]) widen() *sparseRows {
	return widenPattern(p.indptr, p.indices, p.nCols)
}

func (m CSR[I, F]) widenValues() *sparseRows {
	s := widenPattern(m.indptr, m.indices, m.nCols)
	s.vals = make([]float64, len(m.values))
	for i, v := range m.values {
		s.vals[i] = float64(v)
	}
	return s
}

// mass returns the weighted size of row r for patterns, and the weighted L2
// norm of row r for valued matrices.
func (s *sparseRows) mass(r int, weights []float64) float64 {
	var sum float64
	if s.vals == nil {
		for _, c := range s.cols[s.ptr[r]:s.ptr[r+1]] {
			sum += weightOf(weights, c)
		}
		return sum
	}
	for k := s.ptr[r]; k < s.ptr[r+1]; k++ {
		v := s.vals[k] * weightOf(weights, s.cols[k])
		sum += v * v
	}
	return math.Sqrt(sum)
}

// columnIndex is the transpose of a sparseRows: the rows occupying column c
// are rows[colPtr[c]:colPtr[c+1]], in increasing order.
type columnIndex struct {
	colPtr []int
	rows   []int
	// values holds the weighted cell values parallel to rows; nil for
	// pattern-only matrices.
	values  []float64
	rowMass []float64
}

func (s *sparseRows) columns(weights []float64) *columnIndex {
	nRows := s.nRows()
	ci := &columnIndex{
		colPtr:  make([]int, s.nCols+1),
		rows:    make([]int, len(s.cols)),
		rowMass: make([]float64, nRows),
	}
	if s.vals != nil {
		ci.values = make([]float64, len(s.vals))
	}
	for _, c := range s.cols {
		ci.colPtr[c+1]++
	}
	for c := 1; c < len(ci.colPtr); c++ {
		ci.colPtr[c] += ci.colPtr[c-1]
	}
	next := append([]int(nil), ci.colPtr[:s.nCols]...)
	for r := 0; r < nRows; r++ {
		for k := s.ptr[r]; k < s.ptr[r+1]; k++ {
			c := s.cols[k]
			ci.rows[next[c]] = r
			if s.vals != nil {
				ci.values[next[c]] = s.vals[k] * weightOf(weights, c)
			}
			next[c]++
		}
		ci.rowMass[r] = s.mass(r, weights)
	}
	return ci
}

// span returns the positions in column c whose row is at least minRow.
func (ci *columnIndex) span(c, minRow int) (lo, hi int) {
	lo, hi = ci.colPtr[c], ci.colPtr[c+1]
	if minRow > 0 {
		lo += sort.SearchInts(ci.rows[lo:hi], minRow)
	}
	return lo, hi
}
