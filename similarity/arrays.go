package similarity

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// SparseArrays is an untyped CSR matrix, as handed over by a caller that only
// knows its element types at run time.  IndPtr and Indices must both be one
// of []int32, []int64, []uint32 or []uint64, and Data, when used, []float32
// or []float64.
type SparseArrays struct {
	IndPtr, Indices, Data interface{}
	NRows, NCols          int
}

// DenseArrays is an untyped row-major matrix.  Data is []float32 or
// []float64.
type DenseArrays struct {
	Data         interface{}
	NRows, NCols int
}

func unsupported(what string, v interface{}) error {
	return errors.E(errors.NotSupported, fmt.Sprintf("similarity: unsupported type %T for %s", v, what))
}

func resolvePattern[I Index](indptr []I, a *SparseArrays) (SparsityPattern[I], error) {
	indices, ok := a.Indices.([]I)
	if !ok {
		return SparsityPattern[I]{}, unsupported("indices", a.Indices)
	}
	p, err := NewSparsityPattern(indptr, indices, a.NCols)
	if err != nil {
		return p, err
	}
	if p.NRows() != a.NRows {
		return p, errors.E(errors.Invalid, fmt.Sprintf("similarity: %d row pointers for %d rows", len(indptr), a.NRows))
	}
	return p, nil
}

func resolveRows[I Index](indptr []I, a *SparseArrays, withValues bool) (*sparseRows, error) {
	p, err := resolvePattern(indptr, a)
	if err != nil {
		return nil, err
	}
	if !withValues {
		return p.widen(), nil
	}
	switch data := a.Data.(type) {
	case []float32:
		m, err := NewCSRFromPattern(p, data)
		if err != nil {
			return nil, err
		}
		return m.widenValues(), nil
	case []float64:
		m, err := NewCSRFromPattern(p, data)
		if err != nil {
			return nil, err
		}
		return m.widenValues(), nil
	}
	return nil, unsupported("data", a.Data)
}

// resolveSparse dispatches on the index type of a.
func resolveSparse(a *SparseArrays, withValues bool) (*sparseRows, error) {
	switch indptr := a.IndPtr.(type) {
	case []int32:
		return resolveRows(indptr, a, withValues)
	case []int64:
		return resolveRows(indptr, a, withValues)
	case []uint32:
		return resolveRows(indptr, a, withValues)
	case []uint64:
		return resolveRows(indptr, a, withValues)
	}
	return nil, unsupported("row pointers", a.IndPtr)
}

func sparseArrays(a, b *SparseArrays, k sparseKernel, opts Opts) (*Matrix, error) {
	if b != nil {
		if err := checkShape(a.NCols, b.NCols); err != nil {
			return nil, err
		}
	}
	withValues := k == cosineKernel
	ra, err := resolveSparse(a, withValues)
	if err != nil {
		return nil, errors.E(err, "similarity."+k.String()+"Arrays: first operand")
	}
	if b == nil {
		return sparseSimilarity(ra, ra, true, k, opts)
	}
	rb, err := resolveSparse(b, withValues)
	if err != nil {
		return nil, errors.E(err, "similarity."+k.String()+"Arrays: second operand")
	}
	return sparseSimilarity(ra, rb, false, k, opts)
}

// JaccardArrays is Jaccard (b == nil) or JaccardCross on untyped arrays.
// Data is ignored.  An unsupported element type yields an
// errors.NotSupported error.
func JaccardArrays(a, b *SparseArrays, opts Opts) (*Matrix, error) {
	return sparseArrays(a, b, jaccardKernel, opts)
}

// CosineArrays is Cosine (b == nil) or CosineCross on untyped arrays.
func CosineArrays(a, b *SparseArrays, opts Opts) (*Matrix, error) {
	return sparseArrays(a, b, cosineKernel, opts)
}

// resolveDense standardizes a after dispatching on its value type.
func resolveDense(a *DenseArrays, rank bool, parallelism int) (*standardized, error) {
	switch data := a.Data.(type) {
	case []float32:
		d, err := NewDense(data, a.NRows, a.NCols)
		if err != nil {
			return nil, err
		}
		return standardize(d, rank, parallelism)
	case []float64:
		d, err := NewDense(data, a.NRows, a.NCols)
		if err != nil {
			return nil, err
		}
		return standardize(d, rank, parallelism)
	}
	return nil, unsupported("data", a.Data)
}

func denseArrays(op string, a, b *DenseArrays, rank bool, opts Opts) (*Matrix, error) {
	if b != nil {
		if err := checkShape(a.NCols, b.NCols); err != nil {
			return nil, err
		}
	}
	if err := opts.rejectWeights(op); err != nil {
		return nil, err
	}
	parallelism := opts.parallelism()
	za, err := resolveDense(a, rank, parallelism)
	if err != nil {
		return nil, errors.E(err, "similarity."+op+": first operand")
	}
	if b == nil {
		return selfProduct(za), nil
	}
	zb, err := resolveDense(b, rank, parallelism)
	if err != nil {
		return nil, errors.E(err, "similarity."+op+": second operand")
	}
	return crossProduct(za, zb), nil
}

// PearsonArrays is Pearson (b == nil) or PearsonCross on untyped arrays.
func PearsonArrays(a, b *DenseArrays, opts Opts) (*Matrix, error) {
	return denseArrays("PearsonArrays", a, b, false, opts)
}

// SpearmanArrays is Spearman (b == nil) or SpearmanCross on untyped arrays.
func SpearmanArrays(a, b *DenseArrays, opts Opts) (*Matrix, error) {
	return denseArrays("SpearmanArrays", a, b, true, opts)
}
