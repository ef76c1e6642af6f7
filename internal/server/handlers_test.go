package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/tuanthng/imi/internal/config"
	"github.com/tuanthng/imi/internal/engine"
	"github.com/tuanthng/imi/internal/models"
)

func newTestServer(t *testing.T, build bool) *httptest.Server {
	t.Helper()
	eng := engine.New(
		&config.SpaceConfig{Rank: 2, DefaultThreshold: 0.9},
		&config.CorpusConfig{MinDocFreq: 2},
		zap.NewNop(),
	)
	if build {
		docs := []*models.DocumentInput{
			{ID: "d1", Content: "integral equations theory"},
			{ID: "d2", Content: "integral equations applications"},
			{ID: "d3", Content: "delay equations theory"},
			{ID: "d4", Content: "nonlinear systems applications"},
		}
		if err := eng.Build(context.Background(), docs); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
	}
	srv := NewServer(eng, &config.ServerConfig{}, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postBody(t *testing.T, ts *httptest.Server, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getPath(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	resp := getPath(t, ts, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestQueryEndpoint(t *testing.T) {
	ts := newTestServer(t, true)
	resp := postBody(t, ts, "/api/v1/query", &models.ConceptQuery{
		Terms:     map[string]float64{"integr": 1, "equat": 1},
		Threshold: -0.01,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if result.Total == 0 || len(result.Results) == 0 {
		t.Error("query returned no results")
	}
}

func TestQueryEndpointErrors(t *testing.T) {
	ts := newTestServer(t, true)

	tests := []struct {
		name       string
		query      *models.ConceptQuery
		wantStatus int
	}{
		{"unknown term", &models.ConceptQuery{Terms: map[string]float64{"zzz": 1}}, http.StatusNotFound},
		{"no terms", &models.ConceptQuery{}, http.StatusBadRequest},
		{"negative weight", &models.ConceptQuery{Terms: map[string]float64{"integr": -1}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postBody(t, ts, "/api/v1/query", tt.query)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestQueryEndpointInvalidBody(t *testing.T) {
	ts := newTestServer(t, true)
	resp, err := http.Post(ts.URL+"/api/v1/query", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestQueryEndpointNotReady(t *testing.T) {
	ts := newTestServer(t, false)
	resp := postBody(t, ts, "/api/v1/query", &models.ConceptQuery{Terms: map[string]float64{"integr": 1}})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestQueryTextEndpoint(t *testing.T) {
	ts := newTestServer(t, true)
	resp := postBody(t, ts, "/api/v1/query/text", &models.TextQuery{
		Text:      "theory of integral equations",
		Threshold: -0.01,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Results) == 0 {
		t.Error("text query returned no results")
	}
}

func TestAddDocumentEndpoint(t *testing.T) {
	ts := newTestServer(t, true)
	resp := postBody(t, ts, "/api/v1/documents", &models.DocumentInput{
		ID:      "d5",
		Content: "integral equations of applications",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var result models.FoldInResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.DocumentID != "d5" {
		t.Errorf("DocumentID = %q", result.DocumentID)
	}

	// The folded document now has a vector.
	vecResp := getPath(t, ts, "/api/v1/documents/d5/vector")
	if vecResp.StatusCode != http.StatusOK {
		t.Errorf("vector status = %d, want 200", vecResp.StatusCode)
	}

	// Folding the same identifier again conflicts.
	dup := postBody(t, ts, "/api/v1/documents", &models.DocumentInput{ID: "d5", Content: "integral"})
	if dup.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", dup.StatusCode)
	}
}

func TestAddTermEndpoint(t *testing.T) {
	ts := newTestServer(t, true)
	resp := postBody(t, ts, "/api/v1/terms", &models.TermInput{
		ID:             "numer",
		DocumentCounts: map[string]float64{"d1": 1, "d3": 1},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	vecResp := getPath(t, ts, "/api/v1/terms/numer/vector?weighted=true")
	if vecResp.StatusCode != http.StatusOK {
		t.Errorf("vector status = %d, want 200", vecResp.StatusCode)
	}
}

func TestVectorEndpointNotFound(t *testing.T) {
	ts := newTestServer(t, true)
	resp := getPath(t, ts, "/api/v1/documents/ghost/vector")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSpaceEndpoint(t *testing.T) {
	ts := newTestServer(t, true)
	resp := getPath(t, ts, "/api/v1/space")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var snap struct {
		Rank           int         `json:"rank"`
		SingularValues []float64   `json:"singular_values"`
		TermIDs        []string    `json:"term_ids"`
		DocumentIDs    []string    `json:"document_ids"`
		TermMatrix     [][]float64 `json:"term_matrix"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Rank != 2 || len(snap.TermIDs) != 4 || len(snap.DocumentIDs) != 4 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRebuildAndStatusEndpoints(t *testing.T) {
	ts := newTestServer(t, true)

	resp := getPath(t, ts, "/api/v1/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint = %d, want 200", resp.StatusCode)
	}
	var before engine.Status
	if err := json.NewDecoder(resp.Body).Decode(&before); err != nil {
		t.Fatal(err)
	}
	if !before.Ready || before.Documents != 4 {
		t.Errorf("status = %+v", before)
	}

	postBody(t, ts, "/api/v1/documents", &models.DocumentInput{ID: "d5", Content: "integral equations"})

	rebuild := postBody(t, ts, "/api/v1/rebuild", nil)
	if rebuild.StatusCode != http.StatusOK {
		t.Fatalf("rebuild status = %d, want 200", rebuild.StatusCode)
	}
	var after engine.Status
	if err := json.NewDecoder(rebuild.Body).Decode(&after); err != nil {
		t.Fatal(err)
	}
	if after.Documents != 5 || after.FoldedSinceBuild != 0 {
		t.Errorf("status after rebuild = %+v", after)
	}
}
