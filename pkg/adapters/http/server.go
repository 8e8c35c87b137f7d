package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/spotlist"
	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/internal/runtime"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
	"github.com/aretw0/spotlist/pkg/runner"
	"github.com/aretw0/spotlist/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine is the wizard core as seen by the HTTP host.
type Engine interface {
	ports.WizardEngine
	ConfirmManual(ctx context.Context, state *domain.State, addr domain.ManualAddress) (*domain.State, error)
	Catalog() ports.CopyCatalog
}

// Checker reports the health of a dependency.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Server holds the handlers of the wizard API.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager

	logger   *slog.Logger
	metrics  http.Handler
	checkers map[string]Checker
	sanitize func(string) (string, error)
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts a Prometheus handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithChecker adds a named dependency to /health.
func WithChecker(name string, c Checker) Option {
	return func(s *Server) {
		s.checkers[name] = c
	}
}

// WithMaxInputSize caps the size of free-text field values.
func WithMaxInputSize(limit int) Option {
	return func(s *Server) {
		s.sanitize = func(in string) (string, error) {
			return runner.SanitizeWithLimit(in, limit)
		}
	}
}

// NewServer wires the handlers without building a router.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		logger:   logging.NewNop(),
		checkers: make(map[string]Checker),
		sanitize: runner.SanitizeInput,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler of the wizard API.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/steps", s.ListSteps)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Post("/sessions", s.CreateSession)
	r.Route("/sessions/{sessionId}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/update", s.UpdateFields)
		r.Post("/next", s.NextStep)
		r.Post("/back", s.PreviousStep)
		r.Post("/locate", s.BeginLocate)
		r.Post("/locate/fetch", s.FetchLocation)
		r.Put("/locate/{generation}", s.ResolveLocate)
		r.Post("/location/manual", s.ConfirmManualLocation)
		r.Get("/submission", s.GetSubmission)
		r.Get("/events", s.SubscribeEvents)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Spotlist API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health. Any failing checker turns the status into 503.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(s.checkers))
	for name, c := range s.checkers {
		if err := c.Check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	resp := map[string]any{"status": "ok"}
	if status != http.StatusOK {
		resp["status"] = "degraded"
	}
	if len(checks) > 0 {
		resp["checks"] = checks
	}
	s.respond(w, status, resp)
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	s.respond(w, http.StatusOK, map[string]string{
		"app":         "spotlist-http",
		"version":     strings.TrimSpace(spotlist.Version),
		"api_version": apiVersion,
	})
}

// StepInfo describes one step of the wizard.
type StepInfo struct {
	ID       string          `json:"id"`
	Number   int             `json:"number"`
	Terminal bool            `json:"terminal"`
	Next     string          `json:"next,omitempty"`
	Prev     string          `json:"prev,omitempty"`
	Copy     domain.StepCopy `json:"copy"`
}

// ListSteps handles GET /steps.
func (s *Server) ListSteps(w http.ResponseWriter, r *http.Request) {
	steps := s.Engine.Steps()
	out := make([]StepInfo, 0, len(steps))
	for _, step := range steps {
		info := StepInfo{ID: step.String(), Number: int(step), Terminal: step.Terminal()}
		if next, ok := step.Next(); ok {
			info.Next = next.String()
		}
		if prev, ok := step.Prev(); ok {
			info.Prev = prev.String()
		}
		if c := s.Engine.Catalog(); c != nil {
			sc, err := c.StepCopy(r.Context(), step)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			info.Copy = sc
		}
		out = append(out, info)
	}
	s.respond(w, http.StatusOK, out)
}

// SessionResponse is the body of every session operation.
type SessionResponse struct {
	State      *domain.State `json:"state"`
	View       domain.View   `json:"view"`
	Moved      *bool         `json:"moved,omitempty"`
	Generation *uint64       `json:"generation,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, status int, state *domain.State, decorate func(*SessionResponse)) {
	view, err := s.Engine.Render(r.Context(), state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := SessionResponse{State: state, View: view}
	if decorate != nil {
		decorate(&resp)
	}
	s.respond(w, status, resp)
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// writeError maps domain sentinels to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var locErr *runtime.LocateError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrWrongBranch),
		errors.Is(err, domain.ErrStaleLocate),
		errors.Is(err, domain.ErrIncomplete):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrLocateUnavailable), errors.As(err, &locErr):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	s.respond(w, status, map[string]string{"error": err.Error()})
}
