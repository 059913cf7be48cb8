package similarity

type sparseKernel int

const (
	jaccardKernel sparseKernel = iota
	cosineKernel
)

func (k sparseKernel) String() string {
	if k == cosineKernel {
		return "Cosine"
	}
	return "Jaccard"
}

// score turns an accumulated intersection (Jaccard) or dot product (cosine)
// into a similarity.
func (k sparseKernel) score(acc, massA, massB float64) float64 {
	if k == jaccardKernel {
		union := massA + massB - acc
		if union <= 0 {
			return 0
		}
		return acc / union
	}
	if massA == 0 || massB == 0 {
		return 0
	}
	return clamp(acc / (massA * massB))
}

// clamp limits v to [-1, 1].  NaN passes through.
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// sparseSimilarity computes the rows(a) x rows(b) similarity matrix.  With
// self set, a and b are the same matrix and only the upper triangle is
// accumulated; each cell is mirrored into the lower triangle by the worker
// that owns its row.
func sparseSimilarity(a, b *sparseRows, self bool, k sparseKernel, opts Opts) (*Matrix, error) {
	if err := checkShape(a.nCols, b.nCols); err != nil {
		return nil, err
	}
	if err := opts.checkWeights(a.nCols); err != nil {
		return nil, err
	}
	var (
		n, m    = a.nRows(), b.nRows()
		weights = opts.Weights
		out     = newMatrix(n, m)
		bc      = b.columns(weights)
	)
	err := forEachRowRange(n, opts.parallelism(), func(start, end int) {
		var (
			acc     = make([]float64, m)
			seen    = make([]bool, m)
			touched []int
		)
		for i := start; i < end; i++ {
			var minRow int
			var massA float64
			if self {
				minRow, massA = i, bc.rowMass[i]
			} else {
				massA = a.mass(i, weights)
			}
			for p := a.ptr[i]; p < a.ptr[i+1]; p++ {
				c := a.cols[p]
				va := weightOf(weights, c)
				if k == cosineKernel {
					va *= a.vals[p]
				}
				lo, hi := bc.span(c, minRow)
				for q := lo; q < hi; q++ {
					j := bc.rows[q]
					if !seen[j] {
						seen[j] = true
						touched = append(touched, j)
					}
					if k == cosineKernel {
						acc[j] += va * bc.values[q]
					} else {
						acc[j] += va
					}
				}
			}
			row := out.Row(i)
			for _, j := range touched {
				v := k.score(acc[j], massA, bc.rowMass[j])
				row[j] = v
				if self {
					out.Data[j*m+i] = v
				}
				acc[j] = 0
				seen[j] = false
			}
			touched = touched[:0]
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Jaccard returns the symmetric rows(a) x rows(a) matrix of Jaccard indices
// between the column sets of a's rows.  With opts.Weights, set sizes are
// sums of column weights.  Rows with no weight have similarity 0 to every
// row, including themselves; every other row has similarity 1 to itself.
func Jaccard[I Index](a SparsityPattern[I], opts Opts) (*Matrix, error) {
	s := a.widen()
	return sparseSimilarity(s, s, true, jaccardKernel, opts)
}

// JaccardCross returns the rows(a) x rows(b) matrix of Jaccard indices.  a
// and b must have the same number of columns.
func JaccardCross[I, J Index](a SparsityPattern[I], b SparsityPattern[J], opts Opts) (*Matrix, error) {
	if err := checkShape(a.NCols(), b.NCols()); err != nil {
		return nil, err
	}
	return sparseSimilarity(a.widen(), b.widen(), false, jaccardKernel, opts)
}

// Cosine returns the symmetric rows(a) x rows(a) matrix of cosine
// similarities between a's rows.  With opts.Weights, each value is scaled by
// its column's weight first.  A row of norm 0 has similarity 0 to every row.
func Cosine[I Index, F Float](a CSR[I, F], opts Opts) (*Matrix, error) {
	s := a.widenValues()
	return sparseSimilarity(s, s, true, cosineKernel, opts)
}

// CosineCross returns the rows(a) x rows(b) matrix of cosine similarities.
func CosineCross[I, J Index, F, G Float](a CSR[I, F], b CSR[J, G], opts Opts) (*Matrix, error) {
	if err := checkShape(a.NCols(), b.NCols()); err != nil {
		return nil, err
	}
	return sparseSimilarity(a.widenValues(), b.widenValues(), false, cosineKernel, opts)
}
