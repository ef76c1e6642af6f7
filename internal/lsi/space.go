package lsi

import (
	"fmt"
	"sync"
)

// ConceptSpace is the rank-k truncation of a term-document SVD together with
// the ordered term and document identifier lists. Rows of u are term
// coordinates, rows of v are document coordinates; identifier list positions
// correspond 1:1 to rows. k is fixed for the lifetime of the space; fold-in
// appends rows but never removes, reorders, or re-scales existing ones.
//
// A single RWMutex serializes appends against reads; read-only operations may
// run concurrently with each other.
type ConceptSpace struct {
	mu        sync.RWMutex
	k         int
	sigma     []float64
	u         [][]float64 // termCount × k
	v         [][]float64 // docCount × k
	termIDs   []string
	docIDs    []string
	termIndex map[string]int
	docIndex  map[string]int
}

// Build truncates the decomposition d to rank k and pairs it with the given
// identifier lists. k must satisfy 1 <= k <= rank; a k that would retain a
// zero singular value is rejected with ErrInvalidRank. Identifier list lengths
// must match the factor row counts, and identifiers must be unique.
func Build(d *SVD, k int, termIDs, docIDs []string) (*ConceptSpace, error) {
	if d == nil {
		return nil, fmt.Errorf("build: nil decomposition")
	}
	um, uk := d.U.Dims()
	vm, vk := d.V.Dims()
	if k < 1 || k > len(d.Sigma) || k > uk || k > vk {
		return nil, fmt.Errorf("build: k=%d with %d singular values: %w", k, len(d.Sigma), ErrInvalidRank)
	}
	if d.Sigma[k-1] <= singularValueTolerance {
		return nil, fmt.Errorf("build: k=%d exceeds numerical rank %d: %w", k, d.Rank(), ErrInvalidRank)
	}
	if len(termIDs) != um {
		return nil, fmt.Errorf("build: %d term ids for %d matrix rows: %w", len(termIDs), um, ErrIdentifierMismatch)
	}
	if len(docIDs) != vm {
		return nil, fmt.Errorf("build: %d document ids for %d matrix rows: %w", len(docIDs), vm, ErrIdentifierMismatch)
	}

	s := &ConceptSpace{
		k:         k,
		sigma:     make([]float64, k),
		u:         make([][]float64, 0, um),
		v:         make([][]float64, 0, vm),
		termIDs:   make([]string, 0, um),
		docIDs:    make([]string, 0, vm),
		termIndex: make(map[string]int, um),
		docIndex:  make(map[string]int, vm),
	}
	copy(s.sigma, d.Sigma[:k])

	for i, id := range termIDs {
		if _, ok := s.termIndex[id]; ok {
			return nil, fmt.Errorf("build: term %q: %w", id, ErrDuplicateIdentifier)
		}
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = d.U.At(i, j)
		}
		s.termIndex[id] = len(s.termIDs)
		s.termIDs = append(s.termIDs, id)
		s.u = append(s.u, row)
	}
	for i, id := range docIDs {
		if _, ok := s.docIndex[id]; ok {
			return nil, fmt.Errorf("build: document %q: %w", id, ErrDuplicateIdentifier)
		}
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = d.V.At(i, j)
		}
		s.docIndex[id] = len(s.docIDs)
		s.docIDs = append(s.docIDs, id)
		s.v = append(s.v, row)
	}
	return s, nil
}

// Rank returns the truncation rank k.
func (s *ConceptSpace) Rank() int { return s.k }

// TermCount returns the current number of terms.
func (s *ConceptSpace) TermCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.termIDs)
}

// DocumentCount returns the current number of documents.
func (s *ConceptSpace) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docIDs)
}

// SingularValues returns a copy of the k retained singular values.
func (s *ConceptSpace) SingularValues() []float64 {
	out := make([]float64, s.k)
	copy(out, s.sigma)
	return out
}

// TermIDs returns a copy of the ordered term identifier list.
func (s *ConceptSpace) TermIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.termIDs))
	copy(out, s.termIDs)
	return out
}

// DocumentIDs returns a copy of the ordered document identifier list.
func (s *ConceptSpace) DocumentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.docIDs))
	copy(out, s.docIDs)
	return out
}

// TermVector returns the concept-space coordinate of the given term.
func (s *ConceptSpace) TermVector(termID string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.termIndex[termID]
	if !ok {
		return nil, fmt.Errorf("term %q: %w", termID, ErrNotFound)
	}
	out := make([]float64, s.k)
	copy(out, s.u[i])
	return out, nil
}

// DocumentVector returns the concept-space coordinate of the given document.
func (s *ConceptSpace) DocumentVector(docID string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.docIndex[docID]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", docID, ErrNotFound)
	}
	out := make([]float64, s.k)
	copy(out, s.v[i])
	return out, nil
}

// WeightedTermVector returns the term coordinate scaled element-wise by the
// singular values. This is a derived view (used for plotting and display),
// not stored state.
func (s *ConceptSpace) WeightedTermVector(termID string) ([]float64, error) {
	vec, err := s.TermVector(termID)
	if err != nil {
		return nil, err
	}
	for j := range vec {
		vec[j] *= s.sigma[j]
	}
	return vec, nil
}

// WeightedDocumentVector is the document-side analogue of WeightedTermVector.
func (s *ConceptSpace) WeightedDocumentVector(docID string) ([]float64, error) {
	vec, err := s.DocumentVector(docID)
	if err != nil {
		return nil, err
	}
	for j := range vec {
		vec[j] *= s.sigma[j]
	}
	return vec, nil
}

// AppendDocument appends a projected document coordinate and its identifier.
// Validation happens before any mutation: on error the space is unchanged.
func (s *ConceptSpace) AppendDocument(docID string, coord []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docIndex[docID]; ok {
		return fmt.Errorf("append document %q: %w", docID, ErrDuplicateIdentifier)
	}
	if len(coord) != s.k {
		return fmt.Errorf("append document %q: %w", docID, &DimensionError{Expected: s.k, Actual: len(coord)})
	}
	row := make([]float64, s.k)
	copy(row, coord)
	s.docIndex[docID] = len(s.docIDs)
	s.docIDs = append(s.docIDs, docID)
	s.v = append(s.v, row)
	return nil
}

// AppendTerm appends a projected term coordinate and its identifier.
func (s *ConceptSpace) AppendTerm(termID string, coord []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.termIndex[termID]; ok {
		return fmt.Errorf("append term %q: %w", termID, ErrDuplicateIdentifier)
	}
	if len(coord) != s.k {
		return fmt.Errorf("append term %q: %w", termID, &DimensionError{Expected: s.k, Actual: len(coord)})
	}
	row := make([]float64, s.k)
	copy(row, coord)
	s.termIndex[termID] = len(s.termIDs)
	s.termIDs = append(s.termIDs, termID)
	s.u = append(s.u, row)
	return nil
}

// HasTerm reports whether the term is in the current vocabulary.
func (s *ConceptSpace) HasTerm(termID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.termIndex[termID]
	return ok
}

// HasDocument reports whether the document is in the space.
func (s *ConceptSpace) HasDocument(docID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docIndex[docID]
	return ok
}

// Snapshot is a deep copy of the full space state, for external persistence
// or display.
type Snapshot struct {
	Rank           int         `json:"rank"`
	SingularValues []float64   `json:"singular_values"`
	TermIDs        []string    `json:"term_ids"`
	DocumentIDs    []string    `json:"document_ids"`
	TermMatrix     [][]float64 `json:"term_matrix"`     // termCount × k
	DocumentMatrix [][]float64 `json:"document_matrix"` // docCount × k
}

// Snapshot returns a deep copy of the current Uk, Sigma, Vk and identifier lists.
func (s *ConceptSpace) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Snapshot{
		Rank:           s.k,
		SingularValues: make([]float64, s.k),
		TermIDs:        make([]string, len(s.termIDs)),
		DocumentIDs:    make([]string, len(s.docIDs)),
		TermMatrix:     make([][]float64, len(s.u)),
		DocumentMatrix: make([][]float64, len(s.v)),
	}
	copy(snap.SingularValues, s.sigma)
	copy(snap.TermIDs, s.termIDs)
	copy(snap.DocumentIDs, s.docIDs)
	for i, row := range s.u {
		r := make([]float64, s.k)
		copy(r, row)
		snap.TermMatrix[i] = r
	}
	for i, row := range s.v {
		r := make([]float64, s.k)
		copy(r, row)
		snap.DocumentMatrix[i] = r
	}
	return snap
}
