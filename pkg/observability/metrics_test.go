package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(false)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStepEnter(ctx, &domain.StepEvent{Step: domain.StepOwnerType, Direction: domain.DirectionForward})
	hooks.OnStepEnter(ctx, &domain.StepEvent{Step: domain.StepOwnerType, Direction: domain.DirectionForward})
	hooks.OnBlocked(ctx, &domain.StepEvent{Step: domain.StepDetails, Missing: []string{"contact"}})
	hooks.OnLocate(ctx, &domain.LocateEvent{Outcome: domain.LocateResolved, Duration: 200 * time.Millisecond})
	hooks.OnSubmit(ctx, &domain.SubmitEvent{OwnerType: domain.OwnerLand, Slots: domain.SlotsUpTo20})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepVisits.WithLabelValues("owner_type", "forward")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepBlocked.WithLabelValues("details")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocateOutcomes.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("land", "upto20", "ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics(false)
	m.Hooks().OnStepEnter(context.Background(), &domain.StepEvent{Step: domain.StepComplete, Direction: domain.DirectionForward})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `spotlist_step_visits_total{direction="forward",step="complete"} 1`))
}

func TestAuditHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.AuditHooks(logging.NewWithWriter(&buf, slog.LevelInfo, logging.FormatText))

	hooks.OnStepEnter(context.Background(), &domain.StepEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		Step:      domain.StepDetails,
		Direction: domain.DirectionBackward,
	})
	hooks.OnBlocked(context.Background(), &domain.StepEvent{Step: domain.StepDetails})

	out := buf.String()
	assert.Contains(t, out, "step_enter")
	assert.Contains(t, out, "step=details")
	assert.Contains(t, out, "direction=backward")
	assert.NotContains(t, out, "step_blocked", "blocked steps log at debug")
}
