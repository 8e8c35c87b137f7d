package process

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

// Locator obtains the device position from an external command such as
// termux-location or a gpsd client. The command prints one JSON object with
// either lat/lng or latitude/longitude, plus an optional accuracy.
type Locator struct {
	runner *Runner
	name   string
}

var _ ports.Locator = (*Locator)(nil)

// NewLocator registers cmd on a private runner and returns a Locator for it.
func NewLocator(cmd CommandConfig) *Locator {
	if cmd.Name == "" {
		cmd.Name = "locator"
	}
	return &Locator{runner: NewRunner(WithCommands(cmd)), name: cmd.Name}
}

type fix struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
}

func (l *Locator) Locate(ctx context.Context, opts ports.LocateOptions) (domain.Position, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	out, err := l.runner.Run(ctx, l.name, nil, map[string]any{
		"high_accuracy": opts.HighAccuracy,
		"timeout_ms":    opts.Timeout.Milliseconds(),
	})
	if err != nil {
		return domain.Position{}, err
	}

	var f fix
	if err := json.Unmarshal(out, &f); err != nil {
		return domain.Position{}, fmt.Errorf("decoding %s output: %w", l.name, err)
	}
	lat, lng := f.Lat, f.Lng
	if lat == nil {
		lat = f.Latitude
	}
	if lng == nil {
		lng = f.Longitude
	}
	if lat == nil || lng == nil {
		return domain.Position{}, fmt.Errorf("%s output has no coordinates", l.name)
	}
	return domain.Position{Lat: *lat, Lng: *lng, Accuracy: f.Accuracy}, nil
}
