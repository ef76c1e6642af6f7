package corpus

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a term-document frequency matrix with its ordered identifier
// lists: rows are terms (alphabetical), columns are documents (insertion
// order). This is the immutable input to lsi.Decompose.
type Matrix struct {
	A       *mat.Dense
	TermIDs []string
	DocIDs  []string
}

// Builder accumulates documents and produces the term-document matrix.
// A term enters the vocabulary only when it occurs in at least minDocFreq
// distinct documents, which keeps one-off words out of the concept space.
type Builder struct {
	minDocFreq int
	docIDs     []string
	docSet     map[string]struct{}
	counts     []map[string]float64 // per document, parallel to docIDs
	docFreq    map[string]int
}

// NewBuilder creates a builder. minDocFreq values below 1 are treated as 1.
func NewBuilder(minDocFreq int) *Builder {
	if minDocFreq < 1 {
		minDocFreq = 1
	}
	return &Builder{
		minDocFreq: minDocFreq,
		docSet:     make(map[string]struct{}),
		docFreq:    make(map[string]int),
	}
}

// Add tokenizes text and records it under docID. Document identifiers must
// be unique.
func (b *Builder) Add(docID, text string) error {
	if docID == "" {
		return fmt.Errorf("add document: empty identifier")
	}
	if _, ok := b.docSet[docID]; ok {
		return fmt.Errorf("add document: duplicate identifier %q", docID)
	}
	counts := TermCounts(text)
	b.docSet[docID] = struct{}{}
	b.docIDs = append(b.docIDs, docID)
	b.counts = append(b.counts, counts)
	for term := range counts {
		b.docFreq[term]++
	}
	return nil
}

// DocumentCount returns the number of documents added so far.
func (b *Builder) DocumentCount() int { return len(b.docIDs) }

// TermCounts returns the recorded stem counts for docID, or nil when absent.
func (b *Builder) TermCounts(docID string) map[string]float64 {
	for i, id := range b.docIDs {
		if id == docID {
			return b.counts[i]
		}
	}
	return nil
}

// Matrix builds the term-document frequency matrix over the current
// vocabulary. It fails when no document or no qualifying term exists.
func (b *Builder) Matrix() (*Matrix, error) {
	if len(b.docIDs) == 0 {
		return nil, fmt.Errorf("build matrix: no documents")
	}
	var terms []string
	for term, df := range b.docFreq {
		if df >= b.minDocFreq {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("build matrix: no term occurs in %d or more documents", b.minDocFreq)
	}
	sort.Strings(terms)

	a := mat.NewDense(len(terms), len(b.docIDs), nil)
	for i, term := range terms {
		for j := range b.docIDs {
			if c, ok := b.counts[j][term]; ok {
				a.Set(i, j, c)
			}
		}
	}
	docIDs := make([]string, len(b.docIDs))
	copy(docIDs, b.docIDs)
	return &Matrix{A: a, TermIDs: terms, DocIDs: docIDs}, nil
}
