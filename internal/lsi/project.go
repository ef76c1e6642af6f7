package lsi

import "fmt"

// ProjectDocument maps a raw term-frequency vector into concept space via the
// pseudo-inverse relation q̂ = fᵀ·Uk·Σk⁻¹. freq must have exactly one entry
// per term in the *current* vocabulary, including previously folded-in terms.
// An all-zero vector projects to the origin, which is valid output.
func (s *ConceptSpace) ProjectDocument(freq []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(freq) != len(s.termIDs) {
		return nil, fmt.Errorf("project document: %w", &DimensionError{Expected: len(s.termIDs), Actual: len(freq)})
	}
	coord := make([]float64, s.k)
	for i, f := range freq {
		if f == 0 {
			continue
		}
		row := s.u[i]
		for j := 0; j < s.k; j++ {
			coord[j] += f * row[j]
		}
	}
	for j := 0; j < s.k; j++ {
		coord[j] /= s.sigma[j]
	}
	return coord, nil
}

// ProjectTerm is the dual projection t̂ = g·Vk·Σk⁻¹ for a raw frequency
// vector over the *current* document list.
func (s *ConceptSpace) ProjectTerm(freq []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(freq) != len(s.docIDs) {
		return nil, fmt.Errorf("project term: %w", &DimensionError{Expected: len(s.docIDs), Actual: len(freq)})
	}
	coord := make([]float64, s.k)
	for i, f := range freq {
		if f == 0 {
			continue
		}
		row := s.v[i]
		for j := 0; j < s.k; j++ {
			coord[j] += f * row[j]
		}
	}
	for j := 0; j < s.k; j++ {
		coord[j] /= s.sigma[j]
	}
	return coord, nil
}
