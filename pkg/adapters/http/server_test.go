package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/spotlist"
	"github.com/aretw0/spotlist/pkg/adapters/geo"
	"github.com/aretw0/spotlist/pkg/adapters/memory"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
	"github.com/aretw0/spotlist/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server    *Server
	handler   http.Handler
	collector *memory.Collector
}

func newFixture(t *testing.T, locator ports.Locator, opts ...Option) *fixture {
	t.Helper()
	collector := memory.NewCollector()
	wizardOpts := []spotlist.Option{spotlist.WithSubmissionSink(collector)}
	if locator != nil {
		wizardOpts = append(wizardOpts, spotlist.WithLocator(locator))
	}
	wizard, err := spotlist.New(wizardOpts...)
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore(), session.WithStarter(wizard.Start))
	server := NewServer(wizard, sessions, opts...)
	return &fixture{server: server, handler: server.Routes(), collector: collector}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestGetSwagger_Valid(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, "Spotlist API", doc.Info.Title)
	assert.NotNil(t, doc.Paths.Find("/sessions/{sessionId}/locate/{generation}"))
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t, nil, WithChecker("store", CheckerFunc(func(ctx context.Context) error { return nil })))

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"store":"ok"}}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/info", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"api_version":"0.1.0"`)

	rec = f.do(t, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")
}

func TestHealth_Degraded(t *testing.T) {
	f := newFixture(t, nil, WithChecker("redis", CheckerFunc(func(ctx context.Context) error {
		return errors.New("connection refused")
	})))

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestListSteps(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/steps", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var steps []StepInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &steps))
	require.Len(t, steps, 5)
	assert.Equal(t, "owner_type", steps[0].ID)
	assert.Equal(t, "location", steps[0].Next)
	assert.Empty(t, steps[0].Prev)
	assert.True(t, steps[4].Terminal)
	assert.Equal(t, "Submission Complete", steps[4].Copy.Title)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "abc"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)
	assert.Equal(t, "abc", resp.State.SessionID)
	assert.Equal(t, 1, resp.View.Number)
	assert.Equal(t, "Next", resp.View.NextLabel)

	rec = f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "abc"})
	assert.Equal(t, http.StatusOK, rec.Code, "second create resumes")

	rec = f.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decodeSession(t, rec).State.SessionID)

	rec = f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "../etc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionNotFound(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/sessions/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/sessions/ghost/next", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAndNavigate(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "s"})

	rec := f.do(t, http.MethodPost, "/sessions/s/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	require.NotNil(t, resp.Moved)
	assert.False(t, *resp.Moved, "blocked without owner type")
	assert.Equal(t, []string{domain.FieldOwnerType}, resp.View.Missing)

	rec = f.do(t, http.MethodPost, "/sessions/s/update", map[string]any{"field": "ownerType", "value": "other"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeSession(t, rec).View.ShowOtherInput)

	rec = f.do(t, http.MethodPost, "/sessions/s/update", map[string]any{
		"updates": []any{map[string]any{"field": "otherOwnerType", "value": "barn\x1b[31m"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "barn[31m", decodeSession(t, rec).State.OtherOwnerType, "control characters are stripped")

	rec = f.do(t, http.MethodPost, "/sessions/s/next", nil)
	resp = decodeSession(t, rec)
	assert.True(t, *resp.Moved)
	assert.Equal(t, domain.StepLocationEntry, resp.State.Step)

	rec = f.do(t, http.MethodPost, "/sessions/s/back", nil)
	resp = decodeSession(t, rec)
	assert.True(t, *resp.Moved)
	assert.Equal(t, domain.StepOwnerType, resp.State.Step)
	assert.Equal(t, domain.DirectionBackward, resp.State.Direction)
}

func TestUpdate_Rejected(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "s"})

	tests := []struct {
		name string
		body any
	}{
		{"unknown field", map[string]any{"updates": []any{map[string]any{"field": "nickname", "value": "x"}}}},
		{"bad enum", map[string]any{"field": "slots", "value": "1000"}},
		{"extra property", map[string]any{"field": "slots", "value": "upto20", "extra": true}},
		{"empty", map[string]any{}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/sessions/s/update", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdate_InputTooLarge(t *testing.T) {
	f := newFixture(t, nil, WithMaxInputSize(8))
	f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "s"})

	rec := f.do(t, http.MethodPost, "/sessions/s/update", map[string]any{"field": "otherSpaceType", "value": "a very long description"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// toLocationStep creates a session on step 2 with the given branch.
func toLocationStep(t *testing.T, f *fixture, id string, branch domain.Presence) {
	t.Helper()
	f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": id})
	f.do(t, http.MethodPost, "/sessions/"+id+"/update", map[string]any{"field": "ownerType", "value": "land"})
	require.True(t, *decodeSession(t, f.do(t, http.MethodPost, "/sessions/"+id+"/next", nil)).Moved)
	f.do(t, http.MethodPost, "/sessions/"+id+"/update", map[string]any{"field": "atLocationNow", "value": string(branch)})
}

func TestLocate_ClientResolved(t *testing.T) {
	f := newFixture(t, nil)
	toLocationStep(t, f, "loc", domain.PresenceYes)

	rec := f.do(t, http.MethodPost, "/sessions/loc/locate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeSession(t, rec)
	require.NotNil(t, first.Generation)
	assert.True(t, first.View.Locate.Pending)

	second := decodeSession(t, f.do(t, http.MethodPost, "/sessions/loc/locate", nil))
	require.Greater(t, *second.Generation, *first.Generation)

	rec = f.do(t, http.MethodPut, "/sessions/loc/locate/1", map[string]any{"position": map[string]any{"lat": 1.0, "lng": 2.0}})
	assert.Equal(t, http.StatusConflict, rec.Code, "superseded generation")

	rec = f.do(t, http.MethodPut, "/sessions/loc/locate/2", map[string]any{"position": map[string]any{"lat": 18.5204, "lng": 73.8567}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)
	assert.Equal(t, "Current Location (18.5204, 73.8567)", resp.State.Location.Address)
	assert.True(t, resp.View.CanNext)

	rec = f.do(t, http.MethodPut, "/sessions/loc/locate/zero", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocate_ClientReportsFailure(t *testing.T) {
	f := newFixture(t, nil)
	toLocationStep(t, f, "loc", domain.PresenceYes)
	f.do(t, http.MethodPost, "/sessions/loc/locate", nil)

	rec := f.do(t, http.MethodPut, "/sessions/loc/locate/1", map[string]any{"error": "PERMISSION_DENIED"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	assert.Equal(t, domain.LocateFailureMessage, resp.Error)
	assert.Empty(t, resp.State.Location.Address)
}

func TestLocate_WrongBranch(t *testing.T) {
	f := newFixture(t, nil)
	toLocationStep(t, f, "loc", domain.PresenceNo)

	rec := f.do(t, http.MethodPost, "/sessions/loc/locate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFetchLocation(t *testing.T) {
	f := newFixture(t, geo.Static{Position: domain.Position{Lat: 18.5204, Lng: 73.8567}})
	toLocationStep(t, f, "loc", domain.PresenceYes)

	rec := f.do(t, http.MethodPost, "/sessions/loc/locate/fetch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Current Location (18.5204, 73.8567)", decodeSession(t, rec).State.Location.Address)
}

func TestFetchLocation_FailureIsSaved(t *testing.T) {
	f := newFixture(t, geo.Unavailable{Err: geo.ErrPermissionDenied})
	toLocationStep(t, f, "loc", domain.PresenceYes)

	rec := f.do(t, http.MethodPost, "/sessions/loc/locate/fetch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.LocateFailureMessage, decodeSession(t, rec).Error)

	stored := decodeSession(t, f.do(t, http.MethodGet, "/sessions/loc", nil))
	assert.Equal(t, domain.LocateFailureMessage, stored.State.Locate.Error)
}

func TestManualLocation(t *testing.T) {
	f := newFixture(t, nil)
	toLocationStep(t, f, "m", domain.PresenceNo)

	view := decodeSession(t, f.do(t, http.MethodGet, "/sessions/m", nil)).View
	require.NotNil(t, view.Picker)
	assert.Contains(t, view.Picker.Cities, "Pune City")

	rec := f.do(t, http.MethodPost, "/sessions/m/location/manual", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)
	assert.Equal(t, domain.PlaceholderAddress, resp.State.Location.Address)
	assert.Nil(t, resp.State.Location.Lat)

	rec = f.do(t, http.MethodPost, "/sessions/m/location/manual", map[string]any{"city": "Pune City", "state": "Maharashtra"})
	assert.Equal(t, "Pune City, Maharashtra", decodeSession(t, rec).State.Location.Address)

	rec = f.do(t, http.MethodPost, "/sessions/m/location/manual", map[string]any{"zip": "411001"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmission(t *testing.T) {
	f := newFixture(t, nil)
	toLocationStep(t, f, "sub", domain.PresenceNo)

	rec := f.do(t, http.MethodGet, "/sessions/sub/submission", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.do(t, http.MethodPost, "/sessions/sub/location/manual", map[string]any{"city": "Pune City"})
	f.do(t, http.MethodPost, "/sessions/sub/next", nil)
	f.do(t, http.MethodPost, "/sessions/sub/update", map[string]any{"updates": []any{
		map[string]any{"field": "slots", "value": "upto20"},
		map[string]any{"field": "contact", "value": "9876543210"},
	}})
	f.do(t, http.MethodPost, "/sessions/sub/next", nil)
	f.do(t, http.MethodPost, "/sessions/sub/update", map[string]any{"field": "spaceType", "value": "type1"})

	rec = f.do(t, http.MethodPost, "/sessions/sub/next", nil)
	resp := decodeSession(t, rec)
	require.Equal(t, domain.StepComplete, resp.State.Step)
	assert.True(t, resp.View.Terminal)

	rec = f.do(t, http.MethodGet, "/sessions/sub/submission", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"ownerType": "land",
		"atLocationNow": "no",
		"location": {"address": "Pune City", "lat": null, "lng": null},
		"slots": "upto20",
		"contact": "9876543210",
		"spaceType": "type1"
	}`, rec.Body.String())

	_, ok := f.collector.Last("sub")
	assert.True(t, ok, "completion hands the record to the sink")
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "d"})

	rec := f.do(t, http.MethodDelete, "/sessions/d", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/sessions/d", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsMount(t *testing.T) {
	f := newFixture(t, nil, WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("spotlist_up 1"))
	})))

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, "spotlist_up 1", rec.Body.String())
}

func TestSubscribeEvents_Session(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/sessions", map[string]any{"session_id": "sse"})

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/sse/events?watch=fields", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := lines.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	require.Equal(t, "connected", readData())

	// A step move without field changes is filtered out by watch=fields.
	f.do(t, http.MethodPost, "/sessions/sse/update", map[string]any{"field": "ownerType", "value": "land"})
	f.do(t, http.MethodPost, "/sessions/sse/next", nil)
	f.do(t, http.MethodPost, "/sessions/sse/update", map[string]any{"field": "atLocationNow", "value": "no"})

	first := readData()
	assert.Contains(t, first, `"ownerType":"land"`)
	second := readData()
	assert.Contains(t, second, `"atLocationNow":"no"`)
	assert.NotContains(t, second, `"ownerType"`, "only changed fields are sent")
}

func TestMatchesWatch(t *testing.T) {
	stepOnly := `{"session_id":"s","step":"details"}`
	assert.True(t, matchesWatch(stepOnly, nil))
	assert.True(t, matchesWatch(stepOnly, []string{"step"}))
	assert.False(t, matchesWatch(stepOnly, []string{"fields", "locate"}))
	assert.True(t, matchesWatch(`{"session_id":"s","terminated":true}`, []string{" status "}))
}
