package lsi

import (
	"fmt"
	"math"
	"sort"
)

// Hit is a single ranked match: a document or term identifier with its
// cosine similarity to the query coordinate.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Cosine returns |a·b| / (‖a‖‖b‖) in [0,1]. The absolute value absorbs the
// sign ambiguity of the decomposition. Returns ErrDegenerateVector when
// either vector has zero norm.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: %w", &DimensionError{Expected: len(a), Actual: len(b)})
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, ErrDegenerateVector
	}
	score := math.Abs(dot) / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Min(score, 1), nil
}

// RankDocuments scores every document in the space against the query
// coordinate and returns those with score strictly above threshold, in
// descending score order. Ties keep the original document insertion order
// (stable sort, for reproducibility). Documents sitting at the origin have
// undefined similarity and are skipped. A degenerate query is an error.
func (s *ConceptSpace) RankDocuments(query []float64, threshold float64) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank(query, s.k, s.docIDs, s.v, threshold)
}

// RankTerms is the term-side analogue of RankDocuments.
func (s *ConceptSpace) RankTerms(query []float64, threshold float64) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank(query, s.k, s.termIDs, s.u, threshold)
}

func rank(query []float64, k int, ids []string, rows [][]float64, threshold float64) ([]Hit, error) {
	if len(query) != k {
		return nil, fmt.Errorf("rank: %w", &DimensionError{Expected: k, Actual: len(query)})
	}
	var qn float64
	for _, v := range query {
		qn += v * v
	}
	if qn == 0 {
		return nil, fmt.Errorf("rank: query %w", ErrDegenerateVector)
	}
	hits := make([]Hit, 0, len(ids))
	for i, row := range rows {
		score, err := Cosine(query, row)
		if err != nil {
			// Origin rows (e.g. an all-zero folded-in document) have no
			// defined angle to anything; they can never match.
			continue
		}
		if score > threshold {
			hits = append(hits, Hit{ID: ids[i], Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits, nil
}
