// Package httpapi implements the HTTP/API Surface (spec.md §6): a thin
// adapter that validates input and dispatches to the Project Store,
// Timeline/Action validators, TTS Profile & Cache, and Job Queue Gateway.
// Routing and rate limiting follow the chi + go-chi/httprate stack the
// example corpus's own REST services use (ManuGH-xg2g's
// internal/api/middleware), adapted to this system's handlers.
package httpapi

import (
	"log/slog"
	"time"

	"github.com/apresai/narrated-demo/internal/browser"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/mediatool"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/apresai/narrated-demo/internal/ttscache"
	"github.com/apresai/narrated-demo/internal/ttsrender"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Server wires every collaborator a handler needs. Handlers are methods
// on Server so they share these without package-level globals, mirroring
// the teacher's explicit-dependency-injection Config pattern.
type Server struct {
	Store         *project.Store
	Queue         *queue.Gateway
	TTSCache      *ttscache.Cache
	TTSPreview    *ttscache.Cache
	TTSClient     *ttsrender.Client
	MediaTool     *mediatool.Runner
	BrowserProber browser.Prober
	Config        config.Config
	Log           *slog.Logger
	Now           func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// RateLimitConfig mirrors the teacher's httprate wiring: requests per
// window, keyed by client IP, per spec.md §5's "bounded worker pool...
// sized by the provider's concurrency budget" ambient concern extended to
// the HTTP ingress as well.
type RateLimitConfig struct {
	RequestLimit int
	WindowSize   time.Duration
}

// NewRouter builds the chi router with the canonical middleware stack
// (Recoverer, RequestID, rate limit) applied, grounded on
// ManuGH-xg2g/internal/api/middleware/stack.go's ApplyStack ordering.
func NewRouter(s *Server, rl RateLimitConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestID)
	if rl.RequestLimit > 0 {
		r.Use(httprate.LimitByIP(rl.RequestLimit, rl.WindowSize))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/health/deps", s.handleHealthDeps)

	r.Post("/projects", s.handleCreateProject)
	r.Get("/projects/{id}", s.handleGetProject)
	r.Patch("/projects/{id}/settings", s.handlePatchSettings)

	r.Post("/projects/{id}/timeline/import", s.handleImportTimeline)
	r.Get("/projects/{id}/timeline", s.handleGetTimeline)
	r.Patch("/projects/{id}/timeline/narration/{event_id}", s.handlePatchNarrationEvent)
	r.Post("/projects/{id}/timeline/actions/validate", s.handleValidateActions)

	r.Post("/projects/{id}/tts/profile", s.handleUpsertTTSProfile)
	r.Get("/projects/{id}/tts/profile", s.handleGetTTSProfile)
	r.Post("/projects/{id}/tts/preview", s.handleTTSPreview)

	r.Post("/projects/{id}/render", s.handleEnqueueRender)
	r.Post("/projects/{id}/run", s.handleEnqueueRender)
	r.Post("/projects/{id}/demo/run", s.handleEnqueueDemoRun)
	r.Get("/projects/{id}/demo/runs", s.handleGetDemoRuns)

	r.Get("/jobs/{job_id}", s.handleGetJob)

	return r
}
