// Package models defines the request and response structures shared by the
// engine, HTTP API, and CLI.
package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks request validation failures, so transport layers can
// distinguish caller mistakes from engine faults.
var ErrInvalidInput = errors.New("invalid input")

// ConceptQuery is a structured query: term identifiers (stems) with weights.
// Terms absent from the map have weight zero.
type ConceptQuery struct {
	// Terms maps term identifiers to their query weights.
	Terms map[string]float64 `json:"terms"`
	// Threshold keeps only documents scoring strictly above it. Zero means
	// "use the engine's configured default"; use a small negative value to
	// disable filtering entirely.
	Threshold float64 `json:"threshold,omitempty"`
	// Limit caps the number of returned results. Zero means no cap beyond
	// the threshold filter.
	Limit int `json:"limit,omitempty"`
	// IgnoreUnknown drops term identifiers the space does not know instead
	// of failing the query.
	IgnoreUnknown bool `json:"ignore_unknown,omitempty"`
}

// Validate checks the query and normalizes its fields.
func (q *ConceptQuery) Validate() error {
	if len(q.Terms) == 0 {
		return fmt.Errorf("query has no terms: %w", ErrInvalidInput)
	}
	for term, weight := range q.Terms {
		if term == "" {
			return fmt.Errorf("query has an empty term identifier: %w", ErrInvalidInput)
		}
		if weight < 0 {
			return fmt.Errorf("term %q has negative weight %v: %w", term, weight, ErrInvalidInput)
		}
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	return nil
}

// TextQuery is a free-text query; the engine runs it through the same
// tokenizer as the corpus and drops stems outside the vocabulary.
type TextQuery struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

// Validate checks the text query.
func (q *TextQuery) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("query text cannot be empty: %w", ErrInvalidInput)
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	return nil
}
