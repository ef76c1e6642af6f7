// Package integration exercises the full pipeline (tokenizer, matrix builder,
// decomposition, query, fold-in) over a small book-title corpus with known
// reference values.
package integration

import "github.com/tuanthng/imi/internal/models"

// bookTitles is a 17-document corpus of applied-mathematics book titles.
// With a document-frequency cutoff of 2 it yields an 18-term vocabulary,
// small enough that the decomposition and query results can be checked
// against independently computed values.
var bookTitles = []struct {
	ID    string
	Title string
}{
	{"B1", "A Course on Integral Equations"},
	{"B2", "Attractors for Semigroups and Evolution Equations"},
	{"B3", "Automatic Differentiation of Algorithms: Theory, Implementation, and Application"},
	{"B4", "Geometrical Aspects of Partial Differential Equations"},
	{"B5", "Ideals, Varieties, and Algorithms - An Introduction to Computational Algebraic Geometry and Commutative Algebra"},
	{"B6", "Introduction to Hamiltonian Dynamical Systems and the N-Body Problem"},
	{"B7", "Knapsack Problems: Algorithms and Computer Implementations"},
	{"B8", "Methods of Solving Singular Systems of Ordinary Differential Equations"},
	{"B9", "Nonlinear Systems"},
	{"B10", "Ordinary Differential Equations"},
	{"B11", "Oscillation Theory for Neutral Differential Equations with Delay"},
	{"B12", "Oscillation Theory of Delay Differential Equations"},
	{"B13", "Pseudodifferential Operators and Nonlinear Partial Differential Equations"},
	{"B14", "Sinc Methods for Quadrature and Differential Equations"},
	{"B15", "Stability of Stochastic Differential Equations with Respect to Semi-Martingales"},
	{"B16", "The Boundary Integral Approach to Static and Dynamic Contact Problems"},
	{"B17", "The Double Mellin-Barnes Type Integrals and Their Applications to Convolution Theory"},
}

func corpusDocs() []*models.DocumentInput {
	docs := make([]*models.DocumentInput, 0, len(bookTitles))
	for _, b := range bookTitles {
		docs = append(docs, &models.DocumentInput{ID: b.ID, Content: b.Title})
	}
	return docs
}
