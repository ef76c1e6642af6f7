package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tuanthng/imi/internal/engine"
	"github.com/tuanthng/imi/internal/lsi"
	"github.com/tuanthng/imi/internal/models"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var query models.ConceptQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("query request", zap.Int("terms", len(query.Terms)), zap.Float64("threshold", query.Threshold))
	response, err := s.engine.Query(r.Context(), &query)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleQueryText(w http.ResponseWriter, r *http.Request) {
	var query models.TextQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("text query request", zap.String("text", query.Text))
	response, err := s.engine.QueryText(r.Context(), &query)
	if err != nil {
		s.logger.Error("text query failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("fold-in document request", zap.String("id", input.ID), zap.String("title", input.Title))
	result, err := s.engine.AddDocument(r.Context(), &input)
	if err != nil {
		s.logger.Error("document fold-in failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleAddTerm(w http.ResponseWriter, r *http.Request) {
	var input models.TermInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("fold-in term request", zap.String("id", input.ID))
	if err := s.engine.AddTerm(r.Context(), &input); err != nil {
		s.logger.Error("term fold-in failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": input.ID, "status": "folded_in"})
}

func (s *Server) handleDocumentVector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	weighted := r.URL.Query().Get("weighted") == "true"
	vec, err := s.engine.DocumentVector(id, weighted)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "weighted": weighted, "vector": vec})
}

func (s *Server) handleTermVector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	weighted := r.URL.Query().Get("weighted") == "true"
	vec, err := s.engine.TermVector(id, weighted)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "weighted": weighted, "vector": vec})
}

func (s *Server) handleSpace(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot()
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Rebuild(r.Context()); err != nil {
		s.logger.Error("rebuild failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps engine error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lsi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lsi.ErrDuplicateIdentifier):
		return http.StatusConflict
	case errors.Is(err, lsi.ErrDimensionMismatch),
		errors.Is(err, lsi.ErrUnknownTerm),
		errors.Is(err, lsi.ErrDegenerateVector),
		errors.Is(err, lsi.ErrInvalidRank),
		errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotReady):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
