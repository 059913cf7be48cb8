package similarity

import (
	"math"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArraysMatchTyped(t *testing.T) {
	// Rows: {0: 1, 2: 2}, {1: 3}, {0: 4, 1: 5, 2: 6}.
	indptr := []int64{0, 2, 3, 6}
	indices := []int64{0, 2, 1, 0, 1, 2}
	values := []float64{1, 2, 3, 4, 5, 6}

	typed, err := NewCSR(indptr, indices, values, 3)
	require.NoError(t, err)
	wantJaccard, err := Jaccard(typed.SparsityPattern, Opts{})
	require.NoError(t, err)
	wantCosine, err := Cosine(typed, Opts{})
	require.NoError(t, err)

	convert := func(kind string) *SparseArrays {
		a := &SparseArrays{NRows: 3, NCols: 3}
		switch kind {
		case "int32":
			p, c := make([]int32, len(indptr)), make([]int32, len(indices))
			for i, v := range indptr {
				p[i] = int32(v)
			}
			for i, v := range indices {
				c[i] = int32(v)
			}
			a.IndPtr, a.Indices = p, c
		case "uint32":
			p, c := make([]uint32, len(indptr)), make([]uint32, len(indices))
			for i, v := range indptr {
				p[i] = uint32(v)
			}
			for i, v := range indices {
				c[i] = uint32(v)
			}
			a.IndPtr, a.Indices = p, c
		case "uint64":
			p, c := make([]uint64, len(indptr)), make([]uint64, len(indices))
			for i, v := range indptr {
				p[i] = uint64(v)
			}
			for i, v := range indices {
				c[i] = uint64(v)
			}
			a.IndPtr, a.Indices = p, c
		default:
			a.IndPtr, a.Indices = indptr, indices
		}
		v32 := make([]float32, len(values))
		for i, v := range values {
			v32[i] = float32(v)
		}
		a.Data = v32
		return a
	}
	for _, kind := range []string{"int32", "int64", "uint32", "uint64"} {
		a := convert(kind)
		got, err := JaccardArrays(a, nil, Opts{})
		require.NoError(t, err, kind)
		assert.Equal(t, wantJaccard.Data, got.Data, kind)
		got, err = CosineArrays(a, nil, Opts{})
		require.NoError(t, err, kind)
		assert.InDeltaSlice(t, wantCosine.Data, got.Data, 1e-12, kind)

		// Mixed index widths in the cross form.
		got, err = CosineArrays(a, convert("int64"), Opts{})
		require.NoError(t, err, kind)
		assert.InDeltaSlice(t, wantCosine.Data, got.Data, 1e-12, kind)
	}
}

func TestArraysUnsupported(t *testing.T) {
	good := &SparseArrays{IndPtr: []int32{0, 1}, Indices: []int32{0}, Data: []float64{1}, NRows: 1, NCols: 1}
	tests := []*SparseArrays{
		{IndPtr: []int16{0, 1}, Indices: []int16{0}, Data: []float64{1}, NRows: 1, NCols: 1},
		{IndPtr: []int32{0, 1}, Indices: []int64{0}, Data: []float64{1}, NRows: 1, NCols: 1},
		{IndPtr: []int32{0, 1}, Indices: []int32{0}, Data: []int{1}, NRows: 1, NCols: 1},
	}
	for i, a := range tests {
		_, err := CosineArrays(a, nil, Opts{})
		assert.True(t, errors.Is(errors.NotSupported, err), "case %d: %v", i, err)
		assert.Contains(t, err.Error(), "unsupported type")
		_, err = CosineArrays(good, a, Opts{})
		assert.True(t, errors.Is(errors.NotSupported, err), "case %d: %v", i, err)
	}
	// Jaccard ignores the data.
	_, err := JaccardArrays(tests[2], nil, Opts{})
	assert.NoError(t, err)

	_, err = PearsonArrays(&DenseArrays{Data: []int64{1, 2}, NRows: 1, NCols: 2}, nil, Opts{})
	assert.True(t, errors.Is(errors.NotSupported, err))

	bad := &SparseArrays{IndPtr: []int32{0, 1}, Indices: []int32{0}, NRows: 2, NCols: 1}
	_, err = JaccardArrays(bad, nil, Opts{})
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = JaccardArrays(good, &SparseArrays{IndPtr: []int32{0}, Indices: []int32{}, NCols: 2}, Opts{})
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestDenseArrays(t *testing.T) {
	data := []float64{
		1, 2, 3, 4,
		2, 4, 6, 9,
		4, 3, 2, 1,
	}
	want, err := NewDense(data, 3, 4)
	require.NoError(t, err)
	wantPearson, err := Pearson(want, Opts{})
	require.NoError(t, err)
	wantSpearman, err := Spearman(want, Opts{})
	require.NoError(t, err)

	data32 := make([]float32, len(data))
	for i, v := range data {
		data32[i] = float32(v)
	}
	for _, d := range []interface{}{data, data32} {
		a := &DenseArrays{Data: d, NRows: 3, NCols: 4}
		got, err := PearsonArrays(a, nil, Opts{})
		require.NoError(t, err)
		assert.InDeltaSlice(t, wantPearson.Data, got.Data, 1e-12)
		got, err = SpearmanArrays(a, a, Opts{})
		require.NoError(t, err)
		assert.InDeltaSlice(t, wantSpearman.Data, got.Data, 1e-12)
	}
	assert.InDelta(t, 1, wantSpearman.At(0, 1), 1e-12)
	assert.InDelta(t, -1, wantSpearman.At(0, 2), 1e-12)
}

func TestLinearRegression(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2.5*v - 1
	}
	slope, intercept, err := LinearRegression(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, slope, 1e-12)
	assert.InDelta(t, -1, intercept, 1e-12)

	_, _, err = LinearRegression(x, y[:3])
	assert.True(t, errors.Is(errors.Invalid, err))
	_, _, err = LinearRegression([]float64{1}, []float64{1})
	assert.True(t, errors.Is(errors.Invalid, err))
	_, _, err = LinearRegression([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestRegressJaccard(t *testing.T) {
	coverage := []float64{0.1, 0.2, 0.4, 0.8}
	n := len(coverage)
	jm := newMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			expected := 1 / (1/coverage[i] + 1/coverage[j] - 1)
			jm.Data[i*n+j] = 0.5*expected + 0.01
		}
	}
	slope, intercept, err := RegressJaccard(jm, coverage)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, slope, 1e-9)
	assert.InDelta(t, 0.01, intercept, 1e-9)

	_, _, err = RegressJaccard(jm, coverage[:3])
	assert.True(t, errors.Is(errors.Invalid, err))
	_, _, err = RegressJaccard(jm, []float64{0.1, 0, 0.4, 0.8})
	assert.True(t, errors.Is(errors.Invalid, err))
	assert.False(t, math.IsNaN(slope))
}
