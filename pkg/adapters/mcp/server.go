package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/spotlist"
	"github.com/aretw0/spotlist/internal/dto"
	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/internal/runtime"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
	"github.com/aretw0/spotlist/pkg/runner"
	"github.com/aretw0/spotlist/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StepsURI is the resource describing the wizard steps.
const StepsURI = "spotlist://steps"

// TurnResponse is the result of every session tool. It mirrors the HTTP session response.
type TurnResponse struct {
	State      *domain.State `json:"state" jsonschema_description:"The stored session state"`
	View       domain.View   `json:"view" jsonschema_description:"What to present for the current step"`
	Moved      *bool         `json:"moved,omitempty" jsonschema_description:"Whether next/back changed the step"`
	Generation *uint64       `json:"generation,omitempty" jsonschema_description:"Geolocation request generation"`
	Error      string        `json:"error,omitempty" jsonschema_description:"Retryable user-facing message"`
}

// Engine is the wizard core as seen by the MCP host.
type Engine interface {
	ports.WizardEngine
	ConfirmManual(ctx context.Context, state *domain.State, addr domain.ManualAddress) (*domain.State, error)
	Catalog() ports.CopyCatalog
}

// Server wraps the wizard and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("spotlist-mcp", strings.TrimSpace(spotlist.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server (tests, custom transports).
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Tool arguments.
type (
	sessionArgs struct {
		SessionID string `json:"session_id"`
	}
	updateArgs struct {
		SessionID string `json:"session_id"`
		Field     string `json:"field"`
		Value     string `json:"value"`
	}
	manualArgs struct {
		SessionID string `json:"session_id"`
		State     string `json:"state"`
		District  string `json:"district"`
		City      string `json:"city"`
		Landmark  string `json:"landmark"`
	}
	positionArgs struct {
		SessionID string   `json:"session_id"`
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Error     string   `json:"error"`
	}
)

func sessionIDParam(required bool) mcp.ToolOption {
	if required {
		return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier"))
	}
	return mcp.WithString("session_id", mcp.Description("Session identifier (generated when omitted)"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a parking-space listing, or resume it when the session exists."),
		sessionIDParam(false),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("render_session",
		mcp.WithDescription("Show the current step of a session without changing it."),
		sessionIDParam(true),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("update_field",
		mcp.WithDescription("Write one field. Writes are never rejected for being incomplete; validation happens on next_step."),
		sessionIDParam(true),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name"),
			mcp.Enum(domain.FieldOwnerType, domain.FieldOtherOwnerType, domain.FieldAtLocationNow,
				domain.FieldSlots, domain.FieldContact, domain.FieldSpaceType, domain.FieldOtherSpaceType)),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value; empty clears the field")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleUpdate))

	s.mcpServer.AddTool(mcp.NewTool("next_step",
		mcp.WithDescription("Advance when the current step is complete. Reports missing fields otherwise."),
		sessionIDParam(true),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleNext))

	s.mcpServer.AddTool(mcp.NewTool("previous_step",
		mcp.WithDescription("Go back one step. Values are kept."),
		sessionIDParam(true),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("fetch_location",
		mcp.WithDescription("Resolve the current position with the server-side locator (atLocationNow must be yes)."),
		sessionIDParam(true),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleFetch))

	s.mcpServer.AddTool(mcp.NewTool("report_position",
		mcp.WithDescription("Record a device position obtained by the client, or the error it got."),
		sessionIDParam(true),
		mcp.WithNumber("lat", mcp.Description("Latitude"), mcp.Min(-90), mcp.Max(90)),
		mcp.WithNumber("lng", mcp.Description("Longitude"), mcp.Min(-180), mcp.Max(180)),
		mcp.WithString("error", mcp.Description("Set instead of lat/lng when the device could not locate")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleReportPosition))

	s.mcpServer.AddTool(mcp.NewTool("confirm_manual_location",
		mcp.WithDescription("Confirm an address picked manually (atLocationNow is no). Blank parts are skipped."),
		sessionIDParam(true),
		mcp.WithString("state", mcp.Description("State")),
		mcp.WithString("district", mcp.Description("District")),
		mcp.WithString("city", mcp.Description("City")),
		mcp.WithString("landmark", mcp.Description("Landmark")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleManual))

	s.mcpServer.AddTool(mcp.NewTool("get_submission",
		mcp.WithDescription("Return the assembled listing record once every step is valid."),
		sessionIDParam(true),
		mcp.WithOutputSchema[domain.SubmissionRecord](),
	), mcp.NewStructuredToolHandler(s.handleSubmission))
}

func (s *Server) turn(ctx context.Context, state *domain.State) (TurnResponse, error) {
	view, err := s.engine.Render(ctx, state)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return TurnResponse{State: state, View: view}, nil
}

func (s *Server) update(ctx context.Context, sessionID string, fn session.UpdateFunc) (TurnResponse, error) {
	if sessionID == "" {
		return TurnResponse{}, fmt.Errorf("session_id is required")
	}
	_, after, err := s.sessions.Update(ctx, sessionID, fn)
	if err != nil {
		return TurnResponse{}, err
	}
	return s.turn(ctx, after)
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (TurnResponse, error) {
	id := args.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	state, _, err := s.sessions.LoadOrStart(ctx, id)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return s.turn(ctx, state)
}

func (s *Server) handleRender(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (TurnResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return TurnResponse{}, err
	}
	return s.turn(ctx, state)
}

func (s *Server) handleUpdate(ctx context.Context, _ mcp.CallToolRequest, args updateArgs) (TurnResponse, error) {
	clean, err := runner.SanitizeInput(args.Value)
	if err != nil {
		s.logger.Warn("MCP update: input rejected", "error", err, "size", len(args.Value))
		return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if args.Field == domain.FieldLocation {
		return TurnResponse{}, fmt.Errorf("%w: use fetch_location, report_position or confirm_manual_location", domain.ErrUnknownField)
	}
	cmd, err := dto.DecodeCommand(dto.FieldUpdate{Field: args.Field, Value: clean})
	if err != nil {
		return TurnResponse{}, err
	}
	return s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.engine.Apply(ctx, state, cmd)
	})
}

func (s *Server) handleNext(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (TurnResponse, error) {
	var moved bool
	resp, err := s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, ok, err := s.engine.Next(ctx, state)
		moved = ok
		return next, err
	})
	if err == nil {
		resp.Moved = &moved
	}
	return resp, err
}

func (s *Server) handleBack(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (TurnResponse, error) {
	var moved bool
	resp, err := s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, ok, err := s.engine.Back(ctx, state)
		moved = ok
		return next, err
	})
	if err == nil {
		resp.Moved = &moved
	}
	return resp, err
}

func (s *Server) handleFetch(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (TurnResponse, error) {
	var locErr *runtime.LocateError
	resp, err := s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, err := s.engine.FetchLocation(ctx, state)
		if err != nil && errors.As(err, &locErr) {
			return next, nil
		}
		return next, err
	})
	if err == nil && locErr != nil {
		resp.Error = locErr.Message
	}
	return resp, err
}

// handleReportPosition opens and resolves a request in one locked update.
func (s *Server) handleReportPosition(ctx context.Context, _ mcp.CallToolRequest, args positionArgs) (TurnResponse, error) {
	var pos *domain.Position
	var cause error
	switch {
	case args.Error != "":
		cause = errors.New(args.Error)
	case args.Lat != nil && args.Lng != nil:
		pos = &domain.Position{Lat: *args.Lat, Lng: *args.Lng}
	default:
		return TurnResponse{}, fmt.Errorf("%w: lat and lng, or error, are required", domain.ErrInvalidValue)
	}

	var generation uint64
	resp, err := s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		pending, gen, err := s.engine.BeginLocate(ctx, state)
		if err != nil {
			return nil, err
		}
		generation = gen
		return s.engine.ResolveLocate(ctx, pending, gen, pos, cause)
	})
	if err == nil {
		resp.Generation = &generation
		resp.Error = resp.State.Locate.Error
	}
	return resp, err
}

func (s *Server) handleManual(ctx context.Context, _ mcp.CallToolRequest, args manualArgs) (TurnResponse, error) {
	addr := domain.ManualAddress{State: args.State, District: args.District, City: args.City, Landmark: args.Landmark}
	for _, part := range []*string{&addr.State, &addr.District, &addr.City, &addr.Landmark} {
		clean, err := runner.SanitizeInput(*part)
		if err != nil {
			return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		*part = clean
	}
	return s.update(ctx, args.SessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.engine.ConfirmManual(ctx, state, addr)
	})
}

func (s *Server) handleSubmission(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (domain.SubmissionRecord, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return domain.SubmissionRecord{}, err
	}
	return domain.Assemble(state)
}

// stepEntry is one element of the steps resource.
type stepEntry struct {
	ID       string          `json:"id"`
	Number   int             `json:"number"`
	Terminal bool            `json:"terminal"`
	Copy     domain.StepCopy `json:"copy"`
}

func (s *Server) stepsJSON(ctx context.Context) ([]byte, error) {
	var entries []stepEntry
	for _, step := range s.engine.Steps() {
		entry := stepEntry{ID: step.String(), Number: int(step), Terminal: step.Terminal()}
		if c := s.engine.Catalog(); c != nil {
			sc, err := c.StepCopy(ctx, step)
			if err != nil {
				return nil, err
			}
			entry.Copy = sc
		}
		entries = append(entries, entry)
	}
	return json.Marshal(entries)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StepsURI, "Wizard Steps",
		mcp.WithResourceDescription("Steps of the listing wizard with their questions and choices"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.stepsJSON(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe steps: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StepsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
