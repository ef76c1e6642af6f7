// Package lsi implements the latent semantic indexing core: singular value
// decomposition of a term-document frequency matrix, the rank-k concept space
// derived from it, projection of raw frequency vectors into that space,
// cosine-similarity ranking, and incremental fold-in of new documents and terms.
//
// The package consumes only numeric matrices with ordered identifier lists;
// tokenization and corpus construction live in internal/corpus.
package lsi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// singularValueTolerance is the cutoff below which a singular value is treated
// as zero when estimating the numerical rank of a decomposition.
const singularValueTolerance = 1e-10

// SVD is a thin singular value decomposition A = U·diag(Sigma)·Vᵀ of an m×n
// term-document matrix. U is m×r and V is n×r with orthonormal columns, Sigma
// holds r non-negative singular values in descending order, r = min(m, n).
//
// The signs of a (uᵢ, vᵢ) column pair are only determined up to a consistent
// flip; callers must not assume a fixed sign.
type SVD struct {
	U     *mat.Dense
	Sigma []float64
	V     *mat.Dense
}

// Rank returns the numerical rank: the number of singular values above the
// zero tolerance.
func (d *SVD) Rank() int {
	r := 0
	for _, s := range d.Sigma {
		if s > singularValueTolerance {
			r++
		}
	}
	return r
}

// Decompose computes the thin SVD of the term-document matrix a.
// The matrix must be non-empty and free of NaN/Inf entries. A convergence
// failure in the underlying routine is surfaced as ErrDecomposition.
func Decompose(a mat.Matrix) (*SVD, error) {
	m, n := a.Dims()
	if m < 1 || n < 1 {
		return nil, fmt.Errorf("decompose: empty matrix (%dx%d)", m, n)
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if v := a.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("decompose: non-finite entry %v at (%d,%d)", v, i, j)
			}
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("decompose %dx%d matrix: %w", m, n, ErrDecomposition)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	return &SVD{
		U:     &u,
		Sigma: svd.Values(nil),
		V:     &v,
	}, nil
}
