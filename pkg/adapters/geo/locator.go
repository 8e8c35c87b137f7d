// Package geo provides device-geolocation providers for hosts that have no
// browser: fixed fixes for terminals and tests, and an always-failing provider
// for deployments where positions only come from clients.
package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
	"github.com/caarlos0/env/v11"
)

// ErrPermissionDenied mirrors the browser error raised when the user refuses access.
var ErrPermissionDenied = errors.New("geolocation permission denied")

// Static always reports the same fix, optionally after a delay.
type Static struct {
	Position domain.Position
	Delay    time.Duration
}

// Locate returns the fixed position unless ctx ends first.
func (s Static) Locate(ctx context.Context, _ ports.LocateOptions) (domain.Position, error) {
	if s.Delay <= 0 {
		return s.Position, ctx.Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.Position{}, ctx.Err()
	case <-timer.C:
		return s.Position, nil
	}
}

// Unavailable fails every request with Err (ErrPermissionDenied by default).
type Unavailable struct {
	Err error
}

func (u Unavailable) Locate(ctx context.Context, _ ports.LocateOptions) (domain.Position, error) {
	if u.Err != nil {
		return domain.Position{}, u.Err
	}
	return domain.Position{}, fmt.Errorf("%w: %w", domain.ErrLocateUnavailable, ErrPermissionDenied)
}

// EnvFix is the environment shape of a fixed position.
type EnvFix struct {
	Lat      *float64      `env:"LAT"`
	Lng      *float64      `env:"LNG"`
	Accuracy float64       `env:"ACCURACY"`
	Delay    time.Duration `env:"DELAY"`
}

// FromEnv builds a Static locator from SPOTLIST_GEO_LAT / SPOTLIST_GEO_LNG
// (plus optional _ACCURACY and _DELAY). It returns Unavailable when no fix is set.
func FromEnv() (ports.Locator, error) {
	fix, err := env.ParseAsWithOptions[EnvFix](env.Options{Prefix: "SPOTLIST_GEO_"})
	if err != nil {
		return nil, fmt.Errorf("parsing geolocation env: %w", err)
	}
	if fix.Lat == nil || fix.Lng == nil {
		return Unavailable{}, nil
	}
	return Static{
		Position: domain.Position{Lat: *fix.Lat, Lng: *fix.Lng, Accuracy: fix.Accuracy},
		Delay:    fix.Delay,
	}, nil
}
