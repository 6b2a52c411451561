// Package server exposes the engine over HTTP: a compute endpoint plus
// read access to recorded runs.
package server

import (
	"encoding/json"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/munitax/internal/config"
	"github.com/sells-group/munitax/internal/engine"
	"github.com/sells-group/munitax/internal/filing"
	"github.com/sells-group/munitax/internal/model"
	"github.com/sells-group/munitax/internal/store"
)

// Server wires the engine and the run store into an HTTP handler.
// The store may be nil, in which case runs are not recorded and the
// run endpoints report the store unavailable.
type Server struct {
	engine  *engine.Engine
	store   store.Store
	limiter *clientLimiter
}

// New creates a Server.
func New(eng *engine.Engine, st store.Store, cfg config.ServerConfig) *Server {
	return &Server{
		engine:  eng,
		store:   st,
		limiter: newClientLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
	}
}

// Router builds the chi handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(s.rateLimit)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/breakdown", s.handleBreakdown)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body unreadable")
		return
	}

	in, err := filing.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown, err := s.engine.ComputeFilingBreakdown(*in)
	if err != nil {
		// Factor validation errors are input problems, not server faults.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if s.store != nil {
		digest, derr := filing.Digest(in)
		if derr == nil {
			run := &model.Run{
				Filer:     in.Filer,
				Period:    in.Period,
				Digest:    digest,
				Status:    model.RunStatusComplete,
				Input:     in,
				Breakdown: breakdown,
			}
			if serr := s.store.CreateRun(r.Context(), run); serr != nil {
				zap.L().Warn("record run failed", zap.Error(serr))
			}
		}
	}

	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run store not configured")
		return
	}
	filter := store.RunFilter{
		Filer:  r.URL.Query().Get("filer"),
		Period: r.URL.Query().Get("period"),
	}
	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run store not configured")
		return
	}
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.allow(host) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
