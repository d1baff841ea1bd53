package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"roomsync/internal/app"
	"roomsync/internal/domain"
)

type Handlers struct{ O *app.Orchestrator }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/sources", h.setupSource)
	s.mux.Post("/v1/sources/{name}/sync", h.syncSource)
	s.mux.Get("/v1/sources/{name}/health", h.testConnection)
	s.mux.Get("/v1/integrations/status", h.integrationStatus)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

type sourceConfigBody struct {
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	Endpoint        string   `json:"endpoint"`
	APIKey          string   `json:"api_key"`
	APISecret       string   `json:"api_secret"`
	ProtocolVersion string   `json:"protocol_version"`
	Active          *bool    `json:"active"`
	SyncIntervalSec int      `json:"sync_interval_secs"`
	SyncFacets      []string `json:"sync_facets"`
}

func (h *Handlers) setupSource(w http.ResponseWriter, r *http.Request) {
	var body sourceConfigBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected a JSON source config")
		return
	}
	active := true
	if body.Active != nil {
		active = *body.Active
	}
	cfg := domain.SourceConfig{
		Name:            body.Name,
		Kind:            domain.SourceKind(body.Kind),
		Endpoint:        body.Endpoint,
		APIKey:          body.APIKey,
		APISecret:       body.APISecret,
		ProtocolVersion: body.ProtocolVersion,
		Active:          active,
		SyncInterval:    time.Duration(body.SyncIntervalSec) * time.Second,
		SyncFacets:      body.SyncFacets,
	}
	if err := h.O.SetupSource(r.Context(), cfg); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid source config", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": cfg.Name, "status": "configured"})
}

func (h *Handlers) syncSource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	result, err := h.O.SyncSource(r.Context(), name)
	switch {
	case errors.Is(err, domain.ErrUnknownSource):
		writeProblem(w, http.StatusNotFound, "Unknown source", name)
		return
	case errors.Is(err, domain.ErrSourceInactive):
		writeProblem(w, http.StatusConflict, "Source inactive", name)
		return
	case err != nil:
		// transport failure: the cycle result still carries counts + summary
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) testConnection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	pr, err := h.O.TestConnection(r.Context(), name)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Unknown source", name)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}

func (h *Handlers) integrationStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.O.IntegrationStatus(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Status unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}
