package ports

import (
	"context"
	"time"

	"github.com/aretw0/spotlist/pkg/domain"
)

// LocateOptions mirrors the hints a device geolocation API accepts.
type LocateOptions struct {
	// Timeout bounds the wait for a fix. Zero means the caller's context decides.
	Timeout time.Duration

	// HighAccuracy asks the provider for its most precise source (GPS over network).
	HighAccuracy bool
}

// Locator supplies the current device position.
// Implementations must honour ctx cancellation; a timeout is reported as an error.
type Locator interface {
	Locate(ctx context.Context, opts LocateOptions) (domain.Position, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context, opts LocateOptions) (domain.Position, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context, opts LocateOptions) (domain.Position, error) {
	return f(ctx, opts)
}
