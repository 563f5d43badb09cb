// Package server exposes the event service over HTTP as a JSON API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amahle/discus-manager/internal/middleware"
	"github.com/amahle/discus-manager/internal/roster"
	"github.com/amahle/discus-manager/internal/service"
)

const maxUploadBytes = 10 << 20

// Server holds the HTTP handlers for one event service.
type Server struct {
	svc *service.EventService
}

// New creates a Server around the given event service.
func New(svc *service.EventService) *Server {
	return &Server{svc: svc}
}

// Router builds the full route tree, middleware included.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logging, middleware.Metrics, middleware.CORS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/roster/import", s.handleImport)
		r.Delete("/roster", s.handleClear)

		r.Post("/athletes", s.handleAddAthlete)
		r.Patch("/athletes/{id}", s.handleUpdateAthlete)

		r.Get("/categories", s.handleCategories)
		r.Route("/categories/{category}", func(r chi.Router) {
			r.Get("/results", s.handleResults)
			r.Post("/final", s.handleUnlockFinal)
			r.Get("/final", s.handleFinalRound)
			r.Get("/export", s.handleExport)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// handleImport replaces the roster from an uploaded start list. The file
// arrives as multipart form field "file"; an optional "category" field is
// used when the file has no Category column.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse upload: %v", err), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Upload needs a \"file\" form field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	n, err := s.svc.ImportStartList(r.Context(), file, header.Filename, r.FormValue("category"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Import rejected: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"loaded": n})
}

// AddAthleteDto is the input for a manual athlete entry.
type AddAthleteDto struct {
	Category string `json:"category"`
	House    string `json:"house"`
	Name     string `json:"name"`
}

func (s *Server) handleAddAthlete(w http.ResponseWriter, r *http.Request) {
	var input AddAthleteDto
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	a, err := s.svc.AddAthlete(r.Context(), input.Category, input.House, input.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAthleteDto is the input for a single-field update: field is "name"
// or one of "t1".."t5".
type UpdateAthleteDto struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) handleUpdateAthlete(w http.ResponseWriter, r *http.Request) {
	var input UpdateAthleteDto
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	err := s.svc.UpdateAthlete(r.Context(), pathParam(r, "id"), input.Field, input.Value)
	if errors.Is(err, roster.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearAll(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to clear event data: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.svc.Categories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"categories": categories,
		"known":      s.svc.KnownCategories(),
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Results(pathParam(r, "category")))
}

func (s *Server) handleUnlockFinal(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	if err := s.svc.UnlockFinal(r.Context(), category); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.FinalRound(category))
}

func (s *Server) handleFinalRound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.FinalRound(pathParam(r, "category")))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	// Buffer the file so an export error can still become a clean 4xx.
	var buf bytes.Buffer
	filename, err := s.svc.Export(pathParam(r, "category"), format, &buf)
	if err != nil {
		http.Error(w, fmt.Sprintf("Export failed: %v", err), http.StatusBadRequest)
		return
	}

	contentType := "text/csv"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

// pathParam returns a chi URL parameter with percent-encoding undone, so
// free-text categories like "Senior%20Boys" come back as typed.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
