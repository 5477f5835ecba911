package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"cre_catalog/internal/app"
	"cre_catalog/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	s.mux.Get("/v1/properties", h.listProperties)
	s.mux.Get("/v1/properties/{propertyID}", h.getProperty)
	s.mux.Get("/v1/properties/{propertyID}/conflicts", h.listConflicts)
	s.mux.Get("/v1/stats", h.getStats)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON sends v with a weak ETag, honoring If-None-Match.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) errorProblem(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}
	writeProblem(w, http.StatusInternalServerError, "Internal Error", "query failed")
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")
	resp, err := h.Q.GetProperty(r.Context(), id)
	if err != nil {
		h.errorProblem(w, err, "property")
		return
	}
	writeJSON(w, r, resp)
}

func (h *Handlers) listConflicts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")
	resp, err := h.Q.GetProperty(r.Context(), id)
	if err != nil {
		h.errorProblem(w, err, "property")
		return
	}
	conflicts := resp.Conflicts
	if conflicts == nil {
		conflicts = []domain.Conflict{}
	}
	writeJSON(w, r, conflicts)
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	q := domain.CatalogQuery{Limit: 50}

	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		q.Limit = l
	}

	if cl := r.URL.Query().Get("classification"); cl != "" {
		switch domain.Classification(cl) {
		case domain.ClassUsable, domain.ClassFlagged, domain.ClassDiscarded:
			q.Classification = cl
		default:
			writeProblem(w, http.StatusBadRequest, "Invalid classification", "classification must be usable, flagged or discarded")
			return
		}
	}
	q.City = r.URL.Query().Get("city")

	out, err := h.Q.ListProperties(r.Context(), q)
	if err != nil {
		h.errorProblem(w, err, "properties")
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Q.Stats(r.Context())
	if err != nil {
		h.errorProblem(w, err, "stats")
		return
	}
	writeJSON(w, r, st)
}
