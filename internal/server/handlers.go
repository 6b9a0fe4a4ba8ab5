package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPosts(w http.ResponseWriter, r *http.Request) {
	req := pageRequestFromQuery(r)

	data, err := s.reader.GetPageData(r.Context(), req)
	if err != nil {
		s.logger.Error("get page data", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.reader.GetTotalCount(r.Context())
	if err != nil {
		s.logger.Error("get total count", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"totalCount": count})
}

func (s *Server) handleGetLastRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.reader.GetLastRun(r.Context())
	if err != nil {
		s.logger.Error("get last run", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if run == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs yet"})
		return
	}

	s.writeJSON(w, http.StatusOK, run)
}

// pageRequestFromQuery fills defaults for omitted parameters but passes
// explicit values through untouched; the query service decides what is
// valid and degrades the rest to an empty page.
func pageRequestFromQuery(r *http.Request) domain.PageRequest {
	q := r.URL.Query()

	req := domain.PageRequest{
		Page:          1,
		SortColumn:    domain.SortByPublished,
		SortDirection: domain.SortDesc,
		SearchText:    q.Get("search"),
		PageSize:      defaultPageSize,
	}

	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			req.Page = page
		}
	}
	if v := q.Get("sort"); v != "" {
		req.SortColumn = v
	}
	if v := q.Get("dir"); v != "" {
		req.SortDirection = v
	}
	if v := q.Get("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			req.PageSize = size
		}
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	return req
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
