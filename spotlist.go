package spotlist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/spotlist/internal/runtime"
	loamAdapter "github.com/aretw0/spotlist/pkg/adapters/loam"
	"github.com/aretw0/spotlist/pkg/adapters/memory"
	"github.com/aretw0/spotlist/pkg/adapters/sink"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

// Wizard is the high-level entry point for the spotlist library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Wizard struct {
	runtime     *runtime.Engine
	catalog     ports.CopyCatalog
	catalogDir  string
	sink        ports.SubmissionSink
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
}

var _ ports.WizardEngine = (*Wizard)(nil)

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = w.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithCatalog injects the step copy source, bypassing the built-in text.
func WithCatalog(c ports.CopyCatalog) Option {
	return func(w *Wizard) {
		w.catalog = c
	}
}

// WithCatalogDir reads step copy overrides from a Loam repository at dir.
// Steps without an override keep the built-in text.
func WithCatalogDir(dir string) Option {
	return func(w *Wizard) {
		w.catalogDir = dir
	}
}

// WithSubmissionSink sets where completed listings go (default: log).
func WithSubmissionSink(s ports.SubmissionSink) Option {
	return func(w *Wizard) {
		w.sink = s
	}
}

// WithLocator sets the device geolocation source.
func WithLocator(l ports.Locator) Option {
	return func(w *Wizard) {
		w.runtimeOpts = append(w.runtimeOpts, runtime.WithLocator(l))
	}
}

// WithLocateTimeout bounds a single geolocation request.
func WithLocateTimeout(d time.Duration) Option {
	return func(w *Wizard) {
		w.runtimeOpts = append(w.runtimeOpts, runtime.WithLocateTimeout(d))
	}
}

// WithHighAccuracy sets the accuracy hint passed to the locator.
func WithHighAccuracy(enabled bool) Option {
	return func(w *Wizard) {
		w.runtimeOpts = append(w.runtimeOpts, runtime.WithHighAccuracy(enabled))
	}
}

// WithPickerOptions replaces the choices of the manual location picker.
func WithPickerOptions(p domain.PickerOptions) Option {
	return func(w *Wizard) {
		w.runtimeOpts = append(w.runtimeOpts, runtime.WithPickerOptions(p))
	}
}

// New initializes a Wizard.
// Without options it uses the built-in step copy and logs completed listings.
func New(opts ...Option) (*Wizard, error) {
	w := &Wizard{}
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if w.catalog == nil {
		w.catalog = memory.NewCatalog(nil)
		if w.catalogDir != "" {
			abs, err := filepath.Abs(w.catalogDir)
			if err != nil {
				return nil, fmt.Errorf("invalid catalog path: %w", err)
			}
			c, err := loamAdapter.Open(abs, w.catalog)
			if err != nil {
				return nil, fmt.Errorf("failed to open catalog: %w", err)
			}
			w.catalog = c
		}
	}

	if w.sink == nil {
		w.sink = sink.NewLog(w.logger)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(w.logger),
		runtime.WithLifecycleHooks(w.hooks),
		runtime.WithCatalog(w.catalog),
		runtime.WithSubmissionSink(w.sink),
	}
	runtimeOpts = append(runtimeOpts, w.runtimeOpts...)
	w.runtime = runtime.NewEngine(runtimeOpts...)

	return w, nil
}

// Start creates the initial state of a session and triggers lifecycle hooks.
func (w *Wizard) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	return w.runtime.Start(ctx, sessionID)
}

// Render calculates the view of the current step without transitioning.
func (w *Wizard) Render(ctx context.Context, state *domain.State) (domain.View, error) {
	return w.runtime.Render(ctx, state)
}

// Apply overwrites one field.
func (w *Wizard) Apply(ctx context.Context, state *domain.State, cmd domain.Command) (*domain.State, error) {
	return w.runtime.Apply(ctx, state, cmd)
}

// Next advances when the current step is valid.
func (w *Wizard) Next(ctx context.Context, state *domain.State) (*domain.State, bool, error) {
	return w.runtime.Next(ctx, state)
}

// Back retreats one step.
func (w *Wizard) Back(ctx context.Context, state *domain.State) (*domain.State, bool, error) {
	return w.runtime.Back(ctx, state)
}

// FetchLocation asks the locator for the current position and records it.
func (w *Wizard) FetchLocation(ctx context.Context, state *domain.State) (*domain.State, error) {
	return w.runtime.FetchLocation(ctx, state)
}

// BeginLocate marks an asynchronous geolocation request as pending.
func (w *Wizard) BeginLocate(ctx context.Context, state *domain.State) (*domain.State, uint64, error) {
	return w.runtime.BeginLocate(ctx, state)
}

// ResolveLocate applies the result of a request started by BeginLocate.
func (w *Wizard) ResolveLocate(ctx context.Context, state *domain.State, generation uint64, pos *domain.Position, cause error) (*domain.State, error) {
	return w.runtime.ResolveLocate(ctx, state, generation, pos, cause)
}

// ConfirmLocation records an address chosen in the manual picker.
func (w *Wizard) ConfirmLocation(ctx context.Context, state *domain.State, address string) (*domain.State, error) {
	return w.runtime.ConfirmLocation(ctx, state, address)
}

// ConfirmManual composes the picker fields into an address and records it.
func (w *Wizard) ConfirmManual(ctx context.Context, state *domain.State, addr domain.ManualAddress) (*domain.State, error) {
	return w.runtime.ConfirmManual(ctx, state, addr)
}

// Steps returns every step in order.
func (w *Wizard) Steps() []domain.Step {
	return w.runtime.Steps()
}

// Catalog returns the step copy source in use.
func (w *Wizard) Catalog() ports.CopyCatalog {
	return w.catalog
}
