package engine

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/tuanthng/imi/internal/config"
	"github.com/tuanthng/imi/internal/lsi"
	"github.com/tuanthng/imi/internal/models"
)

// testDocs share enough vocabulary that every stem occurring twice survives
// the document-frequency cut: applic, equat, integr, theori.
var testDocs = []*models.DocumentInput{
	{ID: "d1", Content: "integral equations theory"},
	{ID: "d2", Content: "integral equations applications"},
	{ID: "d3", Content: "delay equations theory"},
	{ID: "d4", Content: "nonlinear systems applications"},
}

func newTestEngine(t *testing.T, spaceCfg config.SpaceConfig) *Engine {
	t.Helper()
	if spaceCfg.Rank == 0 {
		spaceCfg.Rank = 2
	}
	if spaceCfg.DefaultThreshold == 0 {
		spaceCfg.DefaultThreshold = 0.9
	}
	return New(&spaceCfg, &config.CorpusConfig{MinDocFreq: 2}, zap.NewNop())
}

func builtTestEngine(t *testing.T, spaceCfg config.SpaceConfig) *Engine {
	t.Helper()
	e := newTestEngine(t, spaceCfg)
	if err := e.Build(context.Background(), testDocs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return e
}

func TestEngineNotReady(t *testing.T) {
	e := newTestEngine(t, config.SpaceConfig{})
	if e.Ready() {
		t.Error("Ready() true before build")
	}
	_, err := e.Query(context.Background(), &models.ConceptQuery{Terms: map[string]float64{"integr": 1}})
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("Query before build: error = %v, want ErrNotReady", err)
	}
	_, err = e.AddDocument(context.Background(), &models.DocumentInput{Content: "text"})
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("AddDocument before build: error = %v, want ErrNotReady", err)
	}
	if st := e.Status(); st.Ready {
		t.Error("Status().Ready true before build")
	}
}

func TestEngineBuildAndStatus(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	if !e.Ready() {
		t.Fatal("Ready() false after build")
	}
	st := e.Status()
	if !st.Ready || st.Rank != 2 || st.Terms != 4 || st.Documents != 4 {
		t.Errorf("Status() = %+v", st)
	}
	if st.FoldedSinceBuild != 0 {
		t.Errorf("FoldedSinceBuild = %d, want 0", st.FoldedSinceBuild)
	}
}

func TestEngineClampsRank(t *testing.T) {
	// Four documents cannot support rank 10; the engine clamps to the
	// numerical rank instead of failing.
	e := builtTestEngine(t, config.SpaceConfig{Rank: 10})
	st := e.Status()
	if st.Rank < 1 || st.Rank > 4 {
		t.Errorf("clamped rank = %d, want within [1,4]", st.Rank)
	}
}

func TestEngineQuery(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	resp, err := e.Query(context.Background(), &models.ConceptQuery{
		Terms:     map[string]float64{"integr": 1, "equat": 1},
		Threshold: -0.01,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if resp.Total == 0 || len(resp.Results) == 0 {
		t.Fatal("query over its own corpus returned nothing")
	}
	for i, r := range resp.Results {
		if r.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, r.Rank)
		}
		if i > 0 && r.Score > resp.Results[i-1].Score {
			t.Error("results not in descending score order")
		}
	}
}

func TestEngineQueryUnknownTerm(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	_, err := e.Query(context.Background(), &models.ConceptQuery{
		Terms: map[string]float64{"integr": 1, "zebra": 1},
	})
	if !errors.Is(err, lsi.ErrNotFound) {
		t.Fatalf("unknown term: error = %v, want lsi.ErrNotFound", err)
	}

	resp, err := e.Query(context.Background(), &models.ConceptQuery{
		Terms:         map[string]float64{"integr": 1, "zebra": 1},
		Threshold:     -0.01,
		IgnoreUnknown: true,
	})
	if err != nil {
		t.Fatalf("Query with IgnoreUnknown failed: %v", err)
	}
	if len(resp.DroppedTerms) != 1 || resp.DroppedTerms[0] != "zebra" {
		t.Errorf("DroppedTerms = %v, want [zebra]", resp.DroppedTerms)
	}
}

func TestEngineQueryLimit(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	resp, err := e.Query(context.Background(), &models.ConceptQuery{
		Terms:     map[string]float64{"equat": 1},
		Threshold: -0.01,
		Limit:     1,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("got %d results, want 1", len(resp.Results))
	}
	if resp.Total <= 1 {
		t.Errorf("Total = %d, should count hits beyond the limit", resp.Total)
	}
}

func TestEngineQueryDefaultThreshold(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{DefaultThreshold: 0.5})
	resp, err := e.Query(context.Background(), &models.ConceptQuery{
		Terms: map[string]float64{"integr": 1},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if resp.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want configured default 0.5", resp.Threshold)
	}
	for _, r := range resp.Results {
		if r.Score <= 0.5 {
			t.Errorf("result %+v at or below threshold", r)
		}
	}
}

func TestEngineQueryText(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	resp, err := e.QueryText(context.Background(), &models.TextQuery{
		Text:      "the theory of integral equations and zebras",
		Threshold: -0.01,
	})
	if err != nil {
		t.Fatalf("QueryText failed: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Error("text query returned nothing")
	}
	// zebra stems to a term outside the vocabulary; text queries drop it.
	if len(resp.DroppedTerms) != 1 {
		t.Errorf("DroppedTerms = %v, want one entry", resp.DroppedTerms)
	}

	if _, err := e.QueryText(context.Background(), &models.TextQuery{Text: "of the and"}); err == nil {
		t.Error("query with no indexable terms accepted")
	}
}

func TestEngineAddDocument(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	result, err := e.AddDocument(context.Background(), &models.DocumentInput{
		ID:      "d5",
		Content: "integral theory with brand new vocabulary",
	})
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if result.DocumentID != "d5" {
		t.Errorf("DocumentID = %q", result.DocumentID)
	}
	if len(result.DroppedTerms) == 0 {
		t.Error("unknown stems should be reported as dropped")
	}
	if len(result.NewTerms) != 0 {
		t.Errorf("NewTerms = %v, want none without FoldNewTerms", result.NewTerms)
	}

	if _, err := e.DocumentVector("d5", false); err != nil {
		t.Errorf("folded document has no vector: %v", err)
	}
	if st := e.Status(); st.FoldedSinceBuild != 1 {
		t.Errorf("FoldedSinceBuild = %d, want 1", st.FoldedSinceBuild)
	}

	// The folded document must be findable.
	resp, err := e.Query(context.Background(), &models.ConceptQuery{
		Terms:     map[string]float64{"integr": 1, "theori": 1},
		Threshold: -0.01,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	found := false
	for _, r := range resp.Results {
		if r.DocumentID == "d5" {
			found = true
		}
	}
	if !found {
		t.Error("folded document missing from results")
	}
}

func TestEngineAddDocumentGeneratesID(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	result, err := e.AddDocument(context.Background(), &models.DocumentInput{Content: "integral equations"})
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if result.DocumentID == "" {
		t.Error("no identifier generated")
	}
}

func TestEngineAddDocumentDuplicate(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	_, err := e.AddDocument(context.Background(), &models.DocumentInput{ID: "d1", Content: "integral"})
	if !errors.Is(err, lsi.ErrDuplicateIdentifier) {
		t.Errorf("duplicate id: error = %v, want lsi.ErrDuplicateIdentifier", err)
	}
}

func TestEngineAddDocumentFoldNewTerms(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{FoldNewTerms: true})
	result, err := e.AddDocument(context.Background(), &models.DocumentInput{
		ID:      "d5",
		Content: "integral oscillation oscillation",
	})
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if len(result.NewTerms) != 1 {
		t.Fatalf("NewTerms = %v, want the oscillation stem", result.NewTerms)
	}
	if _, err := e.TermVector(result.NewTerms[0], false); err != nil {
		t.Errorf("new term has no vector: %v", err)
	}
	// Document plus one new term counts as two folded items.
	if st := e.Status(); st.FoldedSinceBuild != 2 {
		t.Errorf("FoldedSinceBuild = %d, want 2", st.FoldedSinceBuild)
	}
}

func TestEngineStrictFoldIn(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{StrictFoldIn: true})
	_, err := e.AddDocument(context.Background(), &models.DocumentInput{
		ID:      "d5",
		Content: "integral zebra",
	})
	if !errors.Is(err, lsi.ErrUnknownTerm) {
		t.Errorf("strict fold-in: error = %v, want lsi.ErrUnknownTerm", err)
	}
}

func TestEngineAddTerm(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	err := e.AddTerm(context.Background(), &models.TermInput{
		ID:             "numer",
		DocumentCounts: map[string]float64{"d1": 1, "d3": 2},
	})
	if err != nil {
		t.Fatalf("AddTerm failed: %v", err)
	}
	if _, err := e.TermVector("numer", false); err != nil {
		t.Errorf("folded term has no vector: %v", err)
	}
}

func TestEngineRebuildResetsDrift(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{RebuildAfter: 1})
	if _, err := e.AddDocument(context.Background(), &models.DocumentInput{ID: "d5", Content: "integral equations"}); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if st := e.Status(); !st.RebuildSuggested {
		t.Error("RebuildSuggested false after hitting RebuildAfter")
	}

	if err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	st := e.Status()
	if st.FoldedSinceBuild != 0 || st.RebuildSuggested {
		t.Errorf("Status after rebuild = %+v", st)
	}
	// The rebuild sees the folded document's raw counts at full fidelity.
	if st.Documents != 5 {
		t.Errorf("Documents = %d, want 5 after rebuild", st.Documents)
	}
	if _, err := e.DocumentVector("d5", false); err != nil {
		t.Errorf("folded document lost in rebuild: %v", err)
	}
}

func TestEngineVectors(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	raw, err := e.DocumentVector("d1", false)
	if err != nil {
		t.Fatalf("DocumentVector failed: %v", err)
	}
	weighted, err := e.DocumentVector("d1", true)
	if err != nil {
		t.Fatalf("weighted DocumentVector failed: %v", err)
	}
	if len(raw) != 2 || len(weighted) != 2 {
		t.Fatalf("vector lengths = %d, %d, want rank 2", len(raw), len(weighted))
	}
	if _, err := e.TermVector("integr", false); err != nil {
		t.Errorf("TermVector failed: %v", err)
	}
	if _, err := e.DocumentVector("missing", false); !errors.Is(err, lsi.ErrNotFound) {
		t.Errorf("missing document: error = %v, want lsi.ErrNotFound", err)
	}
}

func TestEngineSnapshot(t *testing.T) {
	e := builtTestEngine(t, config.SpaceConfig{})
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Rank != 2 || len(snap.TermIDs) != 4 || len(snap.DocumentIDs) != 4 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.SingularValues) != 2 {
		t.Errorf("SingularValues = %v", snap.SingularValues)
	}
}
