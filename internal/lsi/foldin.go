package lsi

import (
	"fmt"
	"sort"
)

// Updater folds new documents and terms into an existing ConceptSpace without
// recomputing the decomposition. It is the only mutator of a space after
// Build. Fold-in never touches Sigma and never reprojects existing rows, so
// the approximation drifts as items accumulate; callers needing full fidelity
// rebuild from a fresh decomposition periodically.
//
// Concurrent fold-ins on the same space must be serialized by the caller.
type Updater struct {
	space  *ConceptSpace
	strict bool
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithStrictTerms makes document fold-in fail with ErrUnknownTerm when the
// input references vocabulary the space does not have, instead of silently
// dropping those counts.
func WithStrictTerms() UpdaterOption {
	return func(u *Updater) { u.strict = true }
}

// NewUpdater creates an updater over the given space.
func NewUpdater(space *ConceptSpace, opts ...UpdaterOption) *Updater {
	u := &Updater{space: space}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// DocumentUpdate is one document to fold in: an identifier plus raw term
// frequency counts keyed by term identifier.
type DocumentUpdate struct {
	ID         string
	TermCounts map[string]float64
}

// TermUpdate is one term to fold in: an identifier plus raw frequency counts
// keyed by document identifier.
type TermUpdate struct {
	ID             string
	DocumentCounts map[string]float64
}

// FoldInDocument projects the document's frequency counts (restricted to the
// current vocabulary) and appends the result. Terms outside the vocabulary
// are dropped and returned, sorted, so the caller can log or reject them;
// under WithStrictTerms any unknown term is an error instead. The space is
// unchanged on error.
func (u *Updater) FoldInDocument(docID string, termCounts map[string]float64) ([]string, error) {
	freq, unknown := u.space.TermFrequencyVector(termCounts)
	if u.strict && len(unknown) > 0 {
		return nil, fmt.Errorf("fold in document %q: %q: %w", docID, unknown[0], ErrUnknownTerm)
	}
	coord, err := u.space.ProjectDocument(freq)
	if err != nil {
		return nil, fmt.Errorf("fold in document %q: %w", docID, err)
	}
	if err := u.space.AppendDocument(docID, coord); err != nil {
		return nil, err
	}
	return unknown, nil
}

// FoldInDocuments folds in documents in the supplied order. The whole batch
// is validated against the current space before any append, so a bad entry
// leaves the space unchanged.
func (u *Updater) FoldInDocuments(docs []DocumentUpdate) ([]string, error) {
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if u.space.HasDocument(d.ID) {
			return nil, fmt.Errorf("fold in document %q: %w", d.ID, ErrDuplicateIdentifier)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("fold in document %q: %w", d.ID, ErrDuplicateIdentifier)
		}
		seen[d.ID] = struct{}{}
		if u.strict {
			if _, unknown := u.space.TermFrequencyVector(d.TermCounts); len(unknown) > 0 {
				return nil, fmt.Errorf("fold in document %q: %q: %w", d.ID, unknown[0], ErrUnknownTerm)
			}
		}
	}
	var dropped []string
	for _, d := range docs {
		unknown, err := u.FoldInDocument(d.ID, d.TermCounts)
		if err != nil {
			return dropped, err
		}
		dropped = append(dropped, unknown...)
	}
	return dropped, nil
}

// FoldInTerm projects the term's frequency counts over the current document
// list (documents the space does not know contribute zero) and appends the
// result.
func (u *Updater) FoldInTerm(termID string, docCounts map[string]float64) error {
	freq := u.space.DocumentFrequencyVector(docCounts)
	coord, err := u.space.ProjectTerm(freq)
	if err != nil {
		return fmt.Errorf("fold in term %q: %w", termID, err)
	}
	return u.space.AppendTerm(termID, coord)
}

// FoldInTerms folds in terms in the supplied order, validating identifiers
// up front.
func (u *Updater) FoldInTerms(terms []TermUpdate) error {
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if u.space.HasTerm(t.ID) {
			return fmt.Errorf("fold in term %q: %w", t.ID, ErrDuplicateIdentifier)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("fold in term %q: %w", t.ID, ErrDuplicateIdentifier)
		}
		seen[t.ID] = struct{}{}
	}
	for _, t := range terms {
		if err := u.FoldInTerm(t.ID, t.DocumentCounts); err != nil {
			return err
		}
	}
	return nil
}

// FoldInDocumentWithTerms handles a document that introduces vocabulary the
// space has not seen. The ordering is load-bearing: the document is folded in
// first using only its existing-vocabulary counts, then each new term is
// folded in against the now-extended document list so its frequency vector
// can reference the new document's column. Returns the new term identifiers
// in the order they were appended.
// Strict mode does not apply here: the unknown terms are exactly what this
// method exists to fold in.
func (u *Updater) FoldInDocumentWithTerms(docID string, termCounts map[string]float64) ([]string, error) {
	freq, newTerms := u.space.TermFrequencyVector(termCounts)
	coord, err := u.space.ProjectDocument(freq)
	if err != nil {
		return nil, fmt.Errorf("fold in document %q: %w", docID, err)
	}
	if err := u.space.AppendDocument(docID, coord); err != nil {
		return nil, err
	}
	for _, term := range newTerms {
		if err := u.FoldInTerm(term, map[string]float64{docID: termCounts[term]}); err != nil {
			return newTerms, err
		}
	}
	return newTerms, nil
}

// TermFrequencyVector builds a dense frequency vector over the current
// vocabulary from sparse counts. Unknown terms are returned sorted.
func (s *ConceptSpace) TermFrequencyVector(counts map[string]float64) ([]float64, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	freq := make([]float64, len(s.termIDs))
	var unknown []string
	for term, count := range counts {
		i, ok := s.termIndex[term]
		if !ok {
			unknown = append(unknown, term)
			continue
		}
		freq[i] = count
	}
	sort.Strings(unknown)
	return freq, unknown
}

// DocumentFrequencyVector builds a dense frequency vector over the current
// document list from sparse counts. Unknown documents contribute zero.
func (s *ConceptSpace) DocumentFrequencyVector(counts map[string]float64) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	freq := make([]float64, len(s.docIDs))
	for doc, count := range counts {
		if i, ok := s.docIndex[doc]; ok {
			freq[i] = count
		}
	}
	return freq
}
