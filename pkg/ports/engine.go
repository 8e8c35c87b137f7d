package ports

import (
	"context"

	"github.com/aretw0/spotlist/pkg/domain"
)

// WizardEngine defines the stateless wizard core used by the hosts (HTTP, MCP, terminal).
// Every operation takes the current state and returns a new one; the input is never mutated.
type WizardEngine interface {
	// Start creates the initial state of a session.
	Start(ctx context.Context, sessionID string) (*domain.State, error)

	// Render calculates the presentation of the current step without advancing it.
	Render(ctx context.Context, state *domain.State) (domain.View, error)

	// Apply overwrites one field. It is never blocked by validation.
	Apply(ctx context.Context, state *domain.State, cmd domain.Command) (*domain.State, error)

	// Next advances when the current step's gate holds. moved is false on a no-op.
	Next(ctx context.Context, state *domain.State) (next *domain.State, moved bool, err error)

	// Back retreats one step. moved is false on a no-op.
	Back(ctx context.Context, state *domain.State) (next *domain.State, moved bool, err error)

	// FetchLocation runs the device-geolocation branch synchronously.
	FetchLocation(ctx context.Context, state *domain.State) (*domain.State, error)

	// BeginLocate starts an asynchronous geolocation request and returns its generation.
	BeginLocate(ctx context.Context, state *domain.State) (*domain.State, uint64, error)

	// ResolveLocate applies the outcome of the request identified by generation.
	ResolveLocate(ctx context.Context, state *domain.State, generation uint64, pos *domain.Position, cause error) (*domain.State, error)

	// ConfirmLocation records the address returned by the manual picker.
	ConfirmLocation(ctx context.Context, state *domain.State, address string) (*domain.State, error)

	// Steps returns the transition table for introspection.
	Steps() []domain.Step
}
