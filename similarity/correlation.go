package similarity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// standardized is a dense matrix whose rows have been centered and scaled to
// unit norm, so that the dot product of two rows is their Pearson
// correlation.  Constant rows are all zero.
type standardized struct {
	nRows, nCols int
	data         []float64
}

func standardize[F Float](d Dense[F], rank bool, parallelism int) (*standardized, error) {
	z := &standardized{
		nRows: d.NRows(),
		nCols: d.NCols(),
		data:  make([]float64, d.NRows()*d.NCols()),
	}
	if z.nCols == 0 {
		return z, nil
	}
	err := forEachRowRange(z.nRows, parallelism, func(start, end int) {
		var order []int
		for r := start; r < end; r++ {
			x := z.data[r*z.nCols : (r+1)*z.nCols]
			for c, v := range d.Row(r) {
				x[c] = float64(v)
			}
			if rank {
				order = averageRanks(x, order)
			}
			standardizeRow(x)
		}
	})
	return z, err
}

func standardizeRow(x []float64) {
	if floats.Max(x) == floats.Min(x) {
		for c := range x {
			x[c] = 0
		}
		return
	}
	floats.AddConst(-stat.Mean(x, nil), x)
	norm := floats.Norm(x, 2)
	if norm == 0 {
		for c := range x {
			x[c] = 0
		}
		return
	}
	floats.Scale(1/norm, x)
}

func (z *standardized) dense() *mat.Dense {
	return mat.NewDense(z.nRows, z.nCols, z.data)
}

func rankLess(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	return math.IsNaN(b) || a < b
}

func rankEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// averageRanks replaces x with its 1-based ranks.  Tied values share the
// mean of the ranks they span, and NaNs rank after every number.  order is
// scratch space; the possibly grown slice is returned.
func averageRanks(x []float64, order []int) []int {
	order = order[:0]
	for i := range x {
		order = append(order, i)
	}
	sort.Slice(order, func(i, j int) bool { return rankLess(x[order[i]], x[order[j]]) })
	ranks := make([]float64, len(x))
	for lo := 0; lo < len(order); {
		hi := lo + 1
		for hi < len(order) && rankEqual(x[order[hi]], x[order[lo]]) {
			hi++
		}
		// Positions lo..hi-1 hold ranks lo+1..hi.
		mean := float64(lo+1+hi) / 2
		for k := lo; k < hi; k++ {
			ranks[order[k]] = mean
		}
		lo = hi
	}
	copy(x, ranks)
	return order
}

func correlate[F, G Float](op string, a Dense[F], b *Dense[G], rank bool, opts Opts) (*Matrix, error) {
	if b != nil {
		if err := checkShape(a.NCols(), b.NCols()); err != nil {
			return nil, err
		}
	}
	if err := opts.rejectWeights(op); err != nil {
		return nil, err
	}
	parallelism := opts.parallelism()
	za, err := standardize(a, rank, parallelism)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return selfProduct(za), nil
	}
	zb, err := standardize(*b, rank, parallelism)
	if err != nil {
		return nil, err
	}
	return crossProduct(za, zb), nil
}

func crossProduct(za, zb *standardized) *Matrix {
	out := newMatrix(za.nRows, zb.nRows)
	if za.nRows == 0 || zb.nRows == 0 || za.nCols == 0 {
		return out
	}
	out.Dense().Mul(za.dense(), zb.dense().T())
	for i, v := range out.Data {
		out.Data[i] = clamp(v)
	}
	return out
}

// selfProduct computes z * z^T through a symmetric rank-k update, so the
// result is exactly symmetric.
func selfProduct(z *standardized) *Matrix {
	n := z.nRows
	out := newMatrix(n, n)
	if n == 0 || z.nCols == 0 {
		return out
	}
	var sym mat.SymDense
	sym.SymOuterK(1, z.dense())
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := clamp(sym.At(i, j))
			out.Data[i*n+j] = v
			out.Data[j*n+i] = v
		}
	}
	return out
}

// Pearson returns the symmetric rows(a) x rows(a) matrix of Pearson
// correlations between a's rows.  A constant row correlates 0 with every row,
// including itself.  Column weights are not supported.
func Pearson[F Float](a Dense[F], opts Opts) (*Matrix, error) {
	return correlate[F, F]("Pearson", a, nil, false, opts)
}

// PearsonCross returns the rows(a) x rows(b) matrix of Pearson correlations.
func PearsonCross[F, G Float](a Dense[F], b Dense[G], opts Opts) (*Matrix, error) {
	return correlate("PearsonCross", a, &b, false, opts)
}

// Spearman is Pearson on the per-row average ranks of a.
func Spearman[F Float](a Dense[F], opts Opts) (*Matrix, error) {
	return correlate[F, F]("Spearman", a, nil, true, opts)
}

// SpearmanCross is PearsonCross on per-row average ranks.
func SpearmanCross[F, G Float](a Dense[F], b Dense[G], opts Opts) (*Matrix, error) {
	return correlate("SpearmanCross", a, &b, true, opts)
}
