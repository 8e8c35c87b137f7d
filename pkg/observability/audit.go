package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/spotlist/pkg/domain"
)

// AuditHooks logs every lifecycle event at info level (blocked steps at debug).
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter",
				"session_id", e.SessionID,
				"step", e.Step.String(),
				"direction", string(e.Direction))
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_leave", "session_id", e.SessionID, "step", e.Step.String())
		},
		OnBlocked: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_blocked",
				"session_id", e.SessionID,
				"step", e.Step.String(),
				"missing", e.Missing)
		},
		OnLocate: func(ctx context.Context, e *domain.LocateEvent) {
			logger.InfoContext(ctx, "locate",
				"session_id", e.SessionID,
				"generation", e.Generation,
				"outcome", string(e.Outcome),
				"duration", e.Duration)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.InfoContext(ctx, "submit",
				"session_id", e.SessionID,
				"owner_type", string(e.OwnerType),
				"is_error", e.IsError)
		},
	}
}
