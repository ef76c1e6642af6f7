package models

// RankedDocument is a single query hit.
type RankedDocument struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// QueryResponse is the response for a concept or text query.
type QueryResponse struct {
	Results []*RankedDocument `json:"results"`
	// Total is the number of documents above the threshold before the limit
	// was applied.
	Total int `json:"total"`
	// DroppedTerms lists query terms that were not in the vocabulary and
	// were ignored (populated for text queries and ignore_unknown queries).
	DroppedTerms []string `json:"dropped_terms,omitempty"`
	Threshold    float64  `json:"threshold"`
	QueryTime    int64    `json:"query_time_ms"`
}
