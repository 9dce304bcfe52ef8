// Package web exposes the filtered event set over HTTP: the calendar
// feed, the three structured dumps, the distinct-value suggestion
// endpoints, and the reload hook. Page rendering lives elsewhere; this
// surface is data only.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"folklist/internal/config"
	"folklist/internal/events"
	"folklist/internal/export"
	"folklist/internal/filter"
	appLog "folklist/internal/log"
)

// Refresher rebuilds a snapshot from the configured source.
type Refresher func(ctx context.Context) (*events.Store, error)

// Server serves one published snapshot at a time. Every request loads
// the current snapshot once and works against it in full; a concurrent
// refresh swaps the pointer without affecting in-flight requests.
type Server struct {
	cfg     *config.Config
	holder  *events.Holder
	refresh Refresher
	router  *chi.Mux

	// refreshMu serializes snapshot builds, never reads.
	refreshMu sync.Mutex
}

// NewServer constructs the HTTP server around a snapshot holder.
func NewServer(cfg *config.Config, holder *events.Holder, refresh Refresher) *Server {
	s := &Server{
		cfg:     cfg,
		holder:  holder,
		refresh: refresh,
		router:  chi.NewRouter(),
	}
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Get("/index.ics", s.handleICS)
	s.router.Get("/index.json", s.handleJSON)
	s.router.Get("/index.yaml", s.handleYAML)
	s.router.Get("/index.toml", s.handleTOML)

	s.router.Get("/bands", s.handleBands)
	s.router.Get("/callers", s.handleCallers)
	s.router.Get("/organisations", s.handleOrganisations)
	s.router.Get("/cities", s.handleCities)

	s.router.Post("/reload", s.handleReload)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	f := filter.Decode(r.URL.Query())
	// The feed hides cancelled events unless asked for them.
	if f.Cancelled == filter.TriUnset {
		f.Cancelled = filter.TriFalse
	}
	evs := filter.Apply(f, s.holder.Current().All(), time.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(export.ICS(evs, f.Title())))
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	f := filter.Decode(r.URL.Query())
	evs := filter.Apply(f, s.holder.Current().All(), time.Now())
	body, err := export.JSON(evs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleYAML(w http.ResponseWriter, r *http.Request) {
	f := filter.Decode(r.URL.Query())
	evs := filter.Apply(f, s.holder.Current().All(), time.Now())
	body, err := export.YAML(evs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleTOML(w http.ResponseWriter, r *http.Request) {
	f := filter.Decode(r.URL.Query())
	evs := filter.Apply(f, s.holder.Current().All(), time.Now())
	body, err := export.TOML(evs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/toml; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) handleBands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.holder.Current().Bands())
}

func (s *Server) handleCallers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.holder.Current().Callers())
}

func (s *Server) handleOrganisations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.holder.Current().Organisations())
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.holder.Current().Cities())
}

// handleReload rebuilds the snapshot on demand. The previously published
// snapshot keeps serving if the rebuild fails.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReloadToken == "" {
		writeError(w, http.StatusNotFound, "reload disabled")
		return
	}
	token := r.FormValue("reload_token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.ReloadToken)) != 1 {
		writeError(w, http.StatusUnauthorized, "bad reload token")
		return
	}

	s.refreshMu.Lock()
	store, err := s.refresh(r.Context())
	s.refreshMu.Unlock()
	if err != nil {
		appLog.Error("reload failed, keeping current snapshot", err)
		writeError(w, http.StatusBadGateway, "reload failed")
		return
	}
	s.holder.Publish(store)

	type reloadResponse struct {
		Events int `json:"events"`
	}
	writeJSON(w, http.StatusOK, reloadResponse{Events: len(store.All())})
}

// requestLogger logs one line per request through the app logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
