package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/spotlist/internal/dto"
	"github.com/aretw0/spotlist/internal/runtime"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	oapi "github.com/oapi-codegen/runtime"
)

var errBadRequest = errors.New("bad request")

// maxBodySize bounds every JSON request body.
const maxBodySize = 64 << 10

func (s *Server) sessionID(r *http.Request) (string, error) {
	var id string
	err := oapi.BindStyledParameterWithOptions("simple", "sessionId", chi.URLParam(r, "sessionId"), &id,
		oapi.BindStyledParameterOptions{ParamLocation: oapi.ParamLocationPath, Required: true})
	if err != nil {
		return "", fmt.Errorf("%w: sessionId: %v", errBadRequest, err)
	}
	return id, nil
}

// decodeBody reads a JSON body into a generic value and validates it against schema.
// An empty body decodes to nil and is accepted when allowEmpty is set.
func decodeBody(r *http.Request, schema string, allowEmpty bool) (any, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		if allowEmpty {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: empty body", errBadRequest)
	}
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if err := validateBody(schema, body); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return body, nil
}

// mutate runs fn under the session lock, publishes the diff and responds with the new view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, state *domain.State) (*domain.State, error), decorate func(*SessionResponse)) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	before, after, err := s.Sessions.Update(r.Context(), id, fn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.Publish(before, after)
	s.respondSession(w, r, http.StatusOK, after, decorate)
}

// CreateSession handles POST /sessions. Without a session_id a random one is assigned.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r, "CreateSessionRequest", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := ""
	if m, ok := body.(map[string]any); ok {
		id, _ = m["session_id"].(string)
	}
	if id == "" {
		id = uuid.NewString()
	}

	state, created, err := s.Sessions.LoadOrStart(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.Streams.Publish(nil, state)
	}
	s.respondSession(w, r, status, state, nil)
}

// GetSession handles GET /sessions/{sessionId}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondSession(w, r, http.StatusOK, state, nil)
}

// DeleteSession handles DELETE /sessions/{sessionId}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFields handles POST /sessions/{sessionId}/update.
// The body is a single {field, value} or a batch under "updates".
func (s *Server) UpdateFields(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r, "UpdateRequest", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmds, err := s.commands(body.(map[string]any))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mutate(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		for _, cmd := range cmds {
			var applyErr error
			if state, applyErr = s.Engine.Apply(ctx, state, cmd); applyErr != nil {
				return nil, applyErr
			}
		}
		return state, nil
	}, nil)
}

func (s *Server) commands(body map[string]any) ([]domain.Command, error) {
	var updates []dto.FieldUpdate
	if raw, ok := body["updates"].([]any); ok {
		for _, item := range raw {
			m, _ := item.(map[string]any)
			field, _ := m["field"].(string)
			updates = append(updates, dto.FieldUpdate{Field: field, Value: m["value"]})
		}
	}
	if field, ok := body["field"].(string); ok {
		updates = append(updates, dto.FieldUpdate{Field: field, Value: body["value"]})
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no field to update", errBadRequest)
	}

	cmds := make([]domain.Command, 0, len(updates))
	for _, u := range updates {
		if str, ok := u.Value.(string); ok {
			clean, err := s.sanitize(str)
			if err != nil {
				return nil, err
			}
			u.Value = clean
		}
		cmd, err := dto.DecodeCommand(u)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// NextStep handles POST /sessions/{sessionId}/next.
func (s *Server) NextStep(w http.ResponseWriter, r *http.Request) {
	var moved bool
	s.mutate(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, ok, err := s.Engine.Next(ctx, state)
		moved = ok
		return next, err
	}, func(resp *SessionResponse) {
		resp.Moved = &moved
	})
}

// PreviousStep handles POST /sessions/{sessionId}/back.
func (s *Server) PreviousStep(w http.ResponseWriter, r *http.Request) {
	var moved bool
	s.mutate(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, ok, err := s.Engine.Back(ctx, state)
		moved = ok
		return next, err
	}, func(resp *SessionResponse) {
		resp.Moved = &moved
	})
}

// BeginLocate handles POST /sessions/{sessionId}/locate.
// The client resolves the position itself and reports it under the returned generation.
func (s *Server) BeginLocate(w http.ResponseWriter, r *http.Request) {
	var generation uint64
	s.mutate(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, gen, err := s.Engine.BeginLocate(ctx, state)
		generation = gen
		return next, err
	}, func(resp *SessionResponse) {
		resp.Generation = &generation
	})
}

// FetchLocation handles POST /sessions/{sessionId}/locate/fetch.
// A failed fetch is still saved: the response carries the retryable message.
func (s *Server) FetchLocation(w http.ResponseWriter, r *http.Request) {
	var locErr *runtime.LocateError
	s.mutate(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		next, err := s.Engine.FetchLocation(ctx, state)
		if err != nil && errors.As(err, &locErr) {
			return next, nil
		}
		return next, err
	}, func(resp *SessionResponse) {
		if locErr != nil {
			resp.Error = locErr.Message
		}
	})
}

// ResolveLocate handles PUT /sessions/{sessionId}/locate/{generation}.
func (s *Server) ResolveLocate(w http.ResponseWriter, r *http.Request) {
	var generation int64
	err := oapi.BindStyledParameterWithOptions("simple", "generation", chi.URLParam(r, "generation"), &generation,
		oapi.BindStyledParameterOptions{ParamLocation: oapi.ParamLocationPath, Required: true})
	if err != nil || generation < 1 {
		s.writeError(w, r, fmt.Errorf("%w: generation must be a positive integer", errBadRequest))
		return
	}

	body, err := decodeBody(r, "ResolveLocateRequest", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m := body.(map[string]any)

	var pos *domain.Position
	if raw, ok := m["position"]; ok && raw != nil {
		p, err := dto.DecodePosition(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		pos = &p
	}
	var cause error
	if msg, _ := m["error"].(string); msg != "" {
		cause = errors.New(msg)
		pos = nil
	}

	s.mutate(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.ResolveLocate(ctx, state, uint64(generation), pos, cause)
	}, func(resp *SessionResponse) {
		resp.Error = resp.State.Locate.Error
	})
}

// ConfirmManualLocation handles POST /sessions/{sessionId}/location/manual.
func (s *Server) ConfirmManualLocation(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r, "ManualAddress", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	addr, err := dto.DecodeManualAddress(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, part := range []*string{&addr.State, &addr.District, &addr.City, &addr.Landmark} {
		if *part, err = s.sanitize(*part); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	s.mutate(w, r, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return s.Engine.ConfirmManual(ctx, state, addr)
	}, nil)
}

// GetSubmission handles GET /sessions/{sessionId}/submission.
func (s *Server) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := domain.Assemble(state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, rec)
}

// SubscribeEvents handles GET /sessions/{sessionId}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var watch *string
	if err := oapi.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: watch: %v", errBadRequest, err))
		return
	}
	var watchList []string
	if watch != nil && *watch != "" {
		watchList = strings.Split(*watch, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
