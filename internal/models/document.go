package models

import "fmt"

// DocumentInput is a document submitted for fold-in.
type DocumentInput struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// Validate checks the document input.
func (d *DocumentInput) Validate() error {
	if d.Content == "" && d.Title == "" {
		return fmt.Errorf("document has no content: %w", ErrInvalidInput)
	}
	return nil
}

// Text returns the text used for indexing: title and content concatenated.
func (d *DocumentInput) Text() string {
	if d.Title == "" {
		return d.Content
	}
	if d.Content == "" {
		return d.Title
	}
	return d.Title + "\n" + d.Content
}

// TermInput is a term submitted for fold-in: raw frequency counts keyed by
// document identifier. Documents the space does not know contribute zero.
type TermInput struct {
	ID             string             `json:"id"`
	DocumentCounts map[string]float64 `json:"document_counts"`
}

// Validate checks the term input.
func (t *TermInput) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("term identifier cannot be empty: %w", ErrInvalidInput)
	}
	if len(t.DocumentCounts) == 0 {
		return fmt.Errorf("term %q has no document counts: %w", t.ID, ErrInvalidInput)
	}
	return nil
}

// FoldInResult reports what a document fold-in did.
type FoldInResult struct {
	DocumentID string `json:"document_id"`
	// DroppedTerms are terms outside the vocabulary that were ignored.
	DroppedTerms []string `json:"dropped_terms,omitempty"`
	// NewTerms are terms that were folded in after the document (only when
	// the engine folds new vocabulary).
	NewTerms []string `json:"new_terms,omitempty"`
}
