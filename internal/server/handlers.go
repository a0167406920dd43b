package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/ruiji/internal/models"
	"github.com/hyperjump/ruiji/internal/semantic"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(s.config.Search.DefaultTopK, s.config.Search.MaxTopK, s.config.Search.MinScore); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))

	start := time.Now()
	results, err := s.index.Search(r.Context(), query.Query, query.TopK)
	if err != nil {
		s.respondIndexError(w, err)
		return
	}
	if query.MinScore > 0 {
		filtered := results[:0]
		for _, res := range results {
			if res.Score >= query.MinScore {
				res.Rank = len(filtered) + 1
				filtered = append(filtered, res)
			}
		}
		results = filtered
	}
	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     query.Query,
	})
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid position")
		return
	}
	topK := 0
	if v := r.URL.Query().Get("top_k"); v != "" {
		topK, err = strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid top_k")
			return
		}
	}
	s.logger.Debug("similar request", zap.Int("position", position), zap.Int("top_k", topK))

	start := time.Now()
	doc, results, err := s.index.SimilarTo(r.Context(), position, topK)
	if err != nil {
		s.respondIndexError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     doc.Content,
	})
}

func (s *Server) handleReplaceCorpus(w http.ResponseWriter, r *http.Request) {
	var inputs []models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("corpus replace request", zap.Int("documents", len(inputs)))
	if err := s.index.Index(r.Context(), inputs); err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondIndexError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":    "indexed",
		"documents": s.index.Size(),
	})
}

func (s *Server) handleListCorpus(w http.ResponseWriter, r *http.Request) {
	docs := s.index.Documents()
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     len(docs),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid position")
		return
	}
	doc, err := s.index.Document(position)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents":  s.index.Size(),
		"dimensions": s.index.Dimensions(),
		"config": map[string]interface{}{
			"embedding_provider": s.config.Embedding.Provider,
			"default_top_k":      s.config.Search.DefaultTopK,
			"max_top_k":          s.config.Search.MaxTopK,
			"corpus_paths":       s.config.Corpus.Paths,
		},
	})
}

// respondIndexError maps semantic index errors onto HTTP statuses: caller
// errors become 400/404, embedder failures 502, the rest 500.
func (s *Server) respondIndexError(w http.ResponseWriter, err error) {
	var embErr *semantic.EmbeddingError
	switch {
	case errors.Is(err, semantic.ErrEmptyQuery):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, semantic.ErrPositionOutOfRange):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &embErr):
		s.logger.Error("embedding failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
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
