// Package engine wires the corpus pipeline and the LSI core into the
// retrieval engine behind the HTTP API and CLI.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tuanthng/imi/internal/config"
	"github.com/tuanthng/imi/internal/corpus"
	"github.com/tuanthng/imi/internal/lsi"
	"github.com/tuanthng/imi/internal/models"
)

// ErrNotReady is returned when the concept space has not been built yet.
var ErrNotReady = fmt.Errorf("concept space not built")

// Engine owns the concept space and the raw corpus counts needed to rebuild
// it. Queries run concurrently; fold-in and rebuild are serialized.
type Engine struct {
	mu       sync.RWMutex
	spaceCfg *config.SpaceConfig
	builder  *corpus.Builder
	space    *lsi.ConceptSpace
	updater  *lsi.Updater
	folded   int
	logger   *zap.Logger
}

// Status describes the current engine state.
type Status struct {
	Ready            bool `json:"ready"`
	Rank             int  `json:"rank"`
	Terms            int  `json:"terms"`
	Documents        int  `json:"documents"`
	FoldedSinceBuild int  `json:"folded_since_build"`
	RebuildSuggested bool `json:"rebuild_suggested"`
}

// New creates an engine. The space is empty until Build is called.
func New(spaceCfg *config.SpaceConfig, corpusCfg *config.CorpusConfig, logger *zap.Logger) *Engine {
	corpus.AddStopWords(corpusCfg.ExtraStopWords...)
	return &Engine{
		spaceCfg: spaceCfg,
		builder:  corpus.NewBuilder(corpusCfg.MinDocFreq),
		logger:   logger,
	}
}

// Build constructs the initial concept space from the given documents:
// term-document matrix, full SVD, rank-k truncation. A configured rank above
// the numerical rank of the corpus is clamped, with a warning.
func (e *Engine) Build(ctx context.Context, docs []*models.DocumentInput) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			return err
		}
		id := d.ID
		if id == "" {
			id = uuid.New().String()
		}
		if err := e.builder.Add(id, d.Text()); err != nil {
			return err
		}
	}
	return e.rebuildLocked()
}

// Rebuild recomputes the decomposition over all raw counts accumulated so
// far, replacing the space. This resets the fold-in approximation error.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rebuildLocked()
}

func (e *Engine) rebuildLocked() error {
	m, err := e.builder.Matrix()
	if err != nil {
		return err
	}
	svd, err := lsi.Decompose(m.A)
	if err != nil {
		return err
	}
	k := e.spaceCfg.Rank
	if r := svd.Rank(); k > r {
		e.logger.Warn("configured rank exceeds corpus rank, clamping",
			zap.Int("configured", k), zap.Int("rank", r))
		k = r
	}
	space, err := lsi.Build(svd, k, m.TermIDs, m.DocIDs)
	if err != nil {
		return err
	}
	var opts []lsi.UpdaterOption
	if e.spaceCfg.StrictFoldIn {
		opts = append(opts, lsi.WithStrictTerms())
	}
	e.space = space
	e.updater = lsi.NewUpdater(space, opts...)
	e.folded = 0
	e.logger.Info("concept space built",
		zap.Int("rank", k),
		zap.Int("terms", space.TermCount()),
		zap.Int("documents", space.DocumentCount()),
	)
	return nil
}

// Ready reports whether the concept space has been built.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.space != nil
}

func (e *Engine) currentSpace() (*lsi.ConceptSpace, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.space == nil {
		return nil, ErrNotReady
	}
	return e.space, nil
}

// threshold resolves a query threshold: zero means the configured default.
func (e *Engine) threshold(t float64) float64 {
	if t == 0 {
		return e.spaceCfg.DefaultThreshold
	}
	return t
}

// Query projects the weighted term set into concept space and ranks all
// documents against it. Unknown term identifiers fail with lsi.ErrNotFound
// unless the query sets IgnoreUnknown.
func (e *Engine) Query(ctx context.Context, q *models.ConceptQuery) (*models.QueryResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	space, err := e.currentSpace()
	if err != nil {
		return nil, err
	}
	freq, unknown := space.TermFrequencyVector(q.Terms)
	if len(unknown) > 0 && !q.IgnoreUnknown {
		return nil, fmt.Errorf("query term %q: %w", unknown[0], lsi.ErrNotFound)
	}
	return e.run(space, freq, e.threshold(q.Threshold), q.Limit, unknown)
}

// QueryText tokenizes free text the same way the corpus was tokenized and
// queries with the resulting stem counts. Stems outside the vocabulary are
// dropped and reported in the response.
func (e *Engine) QueryText(ctx context.Context, q *models.TextQuery) (*models.QueryResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	space, err := e.currentSpace()
	if err != nil {
		return nil, err
	}
	counts := corpus.TermCounts(q.Text)
	if len(counts) == 0 {
		return nil, fmt.Errorf("query %q has no indexable terms: %w", q.Text, models.ErrInvalidInput)
	}
	freq, unknown := space.TermFrequencyVector(counts)
	return e.run(space, freq, e.threshold(q.Threshold), q.Limit, unknown)
}

func (e *Engine) run(space *lsi.ConceptSpace, freq []float64, threshold float64, limit int, dropped []string) (*models.QueryResponse, error) {
	start := time.Now()
	coord, err := space.ProjectDocument(freq)
	if err != nil {
		return nil, err
	}
	hits, err := space.RankDocuments(coord, threshold)
	if err != nil {
		return nil, err
	}
	total := len(hits)
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	resp := &models.QueryResponse{
		Results:      make([]*models.RankedDocument, 0, len(hits)),
		Total:        total,
		DroppedTerms: dropped,
		Threshold:    threshold,
		QueryTime:    time.Since(start).Milliseconds(),
	}
	for i, h := range hits {
		resp.Results = append(resp.Results, &models.RankedDocument{
			DocumentID: h.ID,
			Score:      h.Score,
			Rank:       i + 1,
		})
	}
	return resp, nil
}

// AddDocument folds a document into the space. With FoldNewTerms enabled,
// vocabulary the document introduces is folded in after the document itself
// (two-phase); otherwise unknown terms are dropped (or rejected when
// StrictFoldIn is set). The raw counts are retained so a later Rebuild sees
// the document at full fidelity.
func (e *Engine) AddDocument(ctx context.Context, in *models.DocumentInput) (*models.FoldInResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.space == nil {
		return nil, ErrNotReady
	}
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}
	counts := corpus.TermCounts(in.Text())

	result := &models.FoldInResult{DocumentID: id}
	var err error
	if e.spaceCfg.FoldNewTerms {
		result.NewTerms, err = e.updater.FoldInDocumentWithTerms(id, counts)
	} else {
		result.DroppedTerms, err = e.updater.FoldInDocument(id, counts)
	}
	if err != nil {
		return nil, err
	}
	if err := e.builder.Add(id, in.Text()); err != nil {
		// The space mutation already happened; a builder collision here
		// would mean HasDocument missed it, which Build's id checks prevent.
		e.logger.Error("raw corpus out of sync with space", zap.String("id", id), zap.Error(err))
	}
	e.folded += 1 + len(result.NewTerms)
	if len(result.DroppedTerms) > 0 {
		e.logger.Debug("dropped unknown terms during fold-in",
			zap.String("id", id), zap.Strings("terms", result.DroppedTerms))
	}
	if e.spaceCfg.RebuildAfter > 0 && e.folded >= e.spaceCfg.RebuildAfter {
		e.logger.Warn("fold-in drift accumulating, rebuild recommended",
			zap.Int("folded_since_build", e.folded))
	}
	return result, nil
}

// AddTerm folds a term into the space from raw per-document counts.
// Note: terms added this way are not backed by raw corpus text, so a Rebuild
// regenerates the vocabulary without them unless their documents were added
// through AddDocument.
func (e *Engine) AddTerm(ctx context.Context, in *models.TermInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.space == nil {
		return ErrNotReady
	}
	if err := e.updater.FoldInTerm(in.ID, in.DocumentCounts); err != nil {
		return err
	}
	e.folded++
	return nil
}

// TermVector returns the concept-space coordinate of a term; weighted scales
// it by the singular values.
func (e *Engine) TermVector(termID string, weighted bool) ([]float64, error) {
	space, err := e.currentSpace()
	if err != nil {
		return nil, err
	}
	if weighted {
		return space.WeightedTermVector(termID)
	}
	return space.TermVector(termID)
}

// DocumentVector returns the concept-space coordinate of a document.
func (e *Engine) DocumentVector(docID string, weighted bool) ([]float64, error) {
	space, err := e.currentSpace()
	if err != nil {
		return nil, err
	}
	if weighted {
		return space.WeightedDocumentVector(docID)
	}
	return space.DocumentVector(docID)
}

// Snapshot returns a deep copy of the full space state for external
// persistence or display.
func (e *Engine) Snapshot() (*lsi.Snapshot, error) {
	space, err := e.currentSpace()
	if err != nil {
		return nil, err
	}
	return space.Snapshot(), nil
}

// Status returns the current engine state.
func (e *Engine) Status() *Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := &Status{FoldedSinceBuild: e.folded}
	if e.space != nil {
		st.Ready = true
		st.Rank = e.space.Rank()
		st.Terms = e.space.TermCount()
		st.Documents = e.space.DocumentCount()
		st.RebuildSuggested = e.spaceCfg.RebuildAfter > 0 && e.folded >= e.spaceCfg.RebuildAfter
	}
	return st
}
