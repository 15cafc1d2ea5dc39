package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/zaikan-ops/zaikan/internal/extract"
	"github.com/zaikan-ops/zaikan/internal/gemini"
	"github.com/zaikan-ops/zaikan/internal/pipeline"
	"github.com/zaikan-ops/zaikan/internal/record"
)

type parseRequest struct {
	Text string `json:"text"`
}

// parse handles POST /api/v1/parse/{domain}. Pipeline errors keep their full
// detail on the way out: the operator decides what to do with a failed parse,
// so nothing is summarized away.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domainParam(w, r)
	if !ok {
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "no text provided")
		return
	}

	session, err := s.pipe.Parse(r.Context(), domain, req.Text)
	if err != nil {
		var upstream *gemini.UpstreamError
		var noJSON *extract.NoJSONError
		switch {
		case errors.Is(err, gemini.ErrNotConfigured):
			respondError(w, http.StatusInternalServerError, err.Error())
		case errors.As(err, &upstream):
			respondJSON(w, http.StatusBadGateway, map[string]any{
				"error":  "ai api error",
				"status": upstream.Status,
				"body":   upstream.Body,
			})
		case errors.As(err, &noJSON):
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": "no JSON found in model output",
				"raw":   noJSON.Raw,
			})
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, session)
}

type checkDuplicateResponse struct {
	Duplicate bool `json:"duplicate"`
}

func (s *Server) checkDuplicate(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domainParam(w, r)
	if !ok {
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	dup, err := s.pipe.CheckDuplicate(r.Context(), domain, raw)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, checkDuplicateResponse{Duplicate: dup})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domainParam(w, r)
	if !ok {
		return
	}

	recs, err := s.pipe.Records(r.Context(), domain)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []record.Record{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": recs})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionParam(w, r)
	if !ok {
		return
	}
	session, err := s.pipe.Session(id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, session)
}

type updateItemRequest struct {
	Fields   map[string]any `json:"fields,omitempty"`
	Selected *bool          `json:"selected,omitempty"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionParam(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Fields) > 0 {
		if err := s.pipe.UpdateItem(id, index, req.Fields); err != nil {
			s.itemError(w, err)
			return
		}
	}
	if req.Selected != nil {
		if err := s.pipe.SetSelected(id, index, *req.Selected); err != nil {
			s.itemError(w, err)
			return
		}
	}

	session, err := s.pipe.Session(id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) commitSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionParam(w, r)
	if !ok {
		return
	}
	result, err := s.pipe.Commit(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) cancelSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionParam(w, r)
	if !ok {
		return
	}
	if err := s.pipe.Cancel(id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

func (s *Server) domainParam(w http.ResponseWriter, r *http.Request) (record.Domain, bool) {
	d, err := record.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return d, true
}

func (s *Server) sessionParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) itemError(w http.ResponseWriter, err error) {
	if errors.Is(err, pipeline.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}
