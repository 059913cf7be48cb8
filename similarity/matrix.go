package similarity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/mat"
)

// Index is the set of integer types accepted for CSR row pointers and
// column indices.
type Index interface {
	~int32 | ~int64 | ~uint32 | ~uint64
}

// Float is the set of value types accepted for matrix storage.
type Float interface {
	~float32 | ~float64
}

// SparsityPattern is the shape of a compressed-sparse-row matrix: the
// occupied columns of row r are indices[indptr[r]:indptr[r+1]].
//
// Columns within a row are expected to be sorted and unique.  That is not
// checked; a row violating it yields meaningless similarities but never a
// panic.
type SparsityPattern[I Index] struct {
	indptr, indices []I
	nCols           int
}

// NewSparsityPattern validates and wraps CSR index arrays.  It checks that
// indptr starts at 0, never decreases and ends at len(indices), and that
// every column is in [0, nCols).  The slices are retained, not copied.
func NewSparsityPattern[I Index](indptr, indices []I, nCols int) (SparsityPattern[I], error) {
	if nCols < 0 {
		return SparsityPattern[I]{}, errors.E(errors.Invalid, fmt.Sprintf("similarity: negative column count %d", nCols))
	}
	if len(indptr) == 0 {
		return SparsityPattern[I]{}, errors.E(errors.Invalid, "similarity: empty row pointer array")
	}
	if indptr[0] != 0 {
		return SparsityPattern[I]{}, errors.E(errors.Invalid, fmt.Sprintf("similarity: row pointer starts at %d", indptr[0]))
	}
	for r := 1; r < len(indptr); r++ {
		if indptr[r] < indptr[r-1] {
			return SparsityPattern[I]{}, errors.E(errors.Invalid, fmt.Sprintf("similarity: row pointer decreases at row %d", r-1))
		}
	}
	if last := indptr[len(indptr)-1]; uint64(last) != uint64(len(indices)) {
		return SparsityPattern[I]{}, errors.E(errors.Invalid,
			fmt.Sprintf("similarity: row pointer ends at %d, but there are %d column indices", last, len(indices)))
	}
	for k, c := range indices {
		if c < 0 || uint64(c) >= uint64(nCols) {
			return SparsityPattern[I]{}, errors.E(errors.Invalid,
				fmt.Sprintf("similarity: column index %d at position %d outside [0, %d)", c, k, nCols))
		}
	}
	return SparsityPattern[I]{indptr: indptr, indices: indices, nCols: nCols}, nil
}

// NRows returns the number of rows.
func (p SparsityPattern[I]) NRows() int {
	if len(p.indptr) == 0 {
		return 0
	}
	return len(p.indptr) - 1
}

// NCols returns the number of columns.
func (p SparsityPattern[I]) NCols() int { return p.nCols }

// NNZ returns the number of occupied cells.
func (p SparsityPattern[I]) NNZ() int { return len(p.indices) }

// Row returns the occupied columns of row r.
func (p SparsityPattern[I]) Row(r int) []I {
	return p.indices[int(p.indptr[r]):int(p.indptr[r+1])]
}

// CSR is a compressed-sparse-row matrix with values.
type CSR[I Index, F Float] struct {
	SparsityPattern[I]
	values []F
}

// NewCSR validates and wraps CSR arrays.
func NewCSR[I Index, F Float](indptr, indices []I, values []F, nCols int) (CSR[I, F], error) {
	p, err := NewSparsityPattern(indptr, indices, nCols)
	if err != nil {
		return CSR[I, F]{}, err
	}
	return NewCSRFromPattern(p, values)
}

// NewCSRFromPattern attaches values to an already validated pattern.
func NewCSRFromPattern[I Index, F Float](p SparsityPattern[I], values []F) (CSR[I, F], error) {
	if len(values) != p.NNZ() {
		return CSR[I, F]{}, errors.E(errors.Invalid,
			fmt.Sprintf("similarity: %d values for %d column indices", len(values), p.NNZ()))
	}
	return CSR[I, F]{SparsityPattern: p, values: values}, nil
}

// RowValues returns the occupied columns of row r and their values.
func (m CSR[I, F]) RowValues(r int) ([]I, []F) {
	lo, hi := int(m.indptr[r]), int(m.indptr[r+1])
	return m.indices[lo:hi], m.values[lo:hi]
}

// Dense is a row-major matrix.
type Dense[F Float] struct {
	data         []F
	nRows, nCols int
}

// NewDense wraps row-major data of the given shape.
func NewDense[F Float](data []F, nRows, nCols int) (Dense[F], error) {
	if nRows < 0 || nCols < 0 || len(data) != nRows*nCols {
		return Dense[F]{}, errors.E(errors.Invalid,
			fmt.Sprintf("similarity: %d values do not form a %d x %d matrix", len(data), nRows, nCols))
	}
	return Dense[F]{data: data, nRows: nRows, nCols: nCols}, nil
}

// NRows returns the number of rows.
func (d Dense[F]) NRows() int { return d.nRows }

// NCols returns the number of columns.
func (d Dense[F]) NCols() int { return d.nCols }

// Row returns row r.
func (d Dense[F]) Row(r int) []F { return d.data[r*d.nCols : (r+1)*d.nCols] }

// Matrix is a dense result matrix.
type Matrix struct {
	NRow, NCol int
	Data       []float64 // row-major NRow*NCol array.
}

func newMatrix(n, m int) *Matrix {
	return &Matrix{
		NRow: n,
		NCol: m,
		Data: make([]float64, n*m),
	}
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.NCol+j] }

// Row returns row i, sharing storage with m.
func (m *Matrix) Row(i int) []float64 { return m.Data[i*m.NCol : (i+1)*m.NCol] }

// Dense returns a gonum view of m sharing its storage, or nil if m has no
// elements.
func (m *Matrix) Dense() *mat.Dense {
	if m.NRow == 0 || m.NCol == 0 {
		return nil
	}
	return mat.NewDense(m.NRow, m.NCol, m.Data)
}

// String renders m one row per line with aligned columns.
func (m *Matrix) String() string {
	cells := make([]string, len(m.Data))
	width := 0
	for i, v := range m.Data {
		cells[i] = strconv.FormatFloat(v, 'g', 6, 64)
		if len(cells[i]) > width {
			width = len(cells[i])
		}
	}
	var sb strings.Builder
	for i := 0; i < m.NRow; i++ {
		for j := 0; j < m.NCol; j++ {
			if j > 0 {
				sb.WriteString(" | ")
			}
			fmt.Fprintf(&sb, "%*s", width, cells[i*m.NCol+j])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
