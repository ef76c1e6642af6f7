// Package cli provides output helpers for the imi command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tuanthng/imi/internal/models"
)

// OutputFormat is the format for query result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteQueryResults writes query results to w in the given format.
func WriteQueryResults(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeQueryResultsText(w, response)
		return nil
	}
}

func writeQueryResultsText(w io.Writer, response *models.QueryResponse) {
	fmt.Fprintf(w, "\n%d documents above %.2f in %dms\n", response.Total, response.Threshold, response.QueryTime)
	if len(response.DroppedTerms) > 0 {
		fmt.Fprintf(w, "(ignored unknown terms: %s)\n", strings.Join(response.DroppedTerms, ", "))
	}
	fmt.Fprintln(w)
	for _, r := range response.Results {
		fmt.Fprintf(w, "%3d. %-40s %.4f\n", r.Rank, r.DocumentID, r.Score)
	}
}

// ParseTermWeights parses "term=weight,term=weight" into a weight map.
// A bare term without "=" gets weight 1.
func ParseTermWeights(s string) (map[string]float64, error) {
	terms := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		term, weightStr, found := strings.Cut(part, "=")
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("empty term in %q", s)
		}
		weight := 1.0
		if found {
			if _, err := fmt.Sscanf(strings.TrimSpace(weightStr), "%g", &weight); err != nil {
				return nil, fmt.Errorf("bad weight for term %q: %w", term, err)
			}
		}
		terms[term] = weight
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("no terms in %q", s)
	}
	return terms, nil
}
