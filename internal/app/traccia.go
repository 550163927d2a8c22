// Package app wires settings, routes and the trail engine together for the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/traccia/internal/adapters/logging"
	"github.com/felixgeelhaar/traccia/internal/domain/config"
	"github.com/felixgeelhaar/traccia/internal/domain/trail"
	"github.com/felixgeelhaar/traccia/internal/ports"
	"github.com/felixgeelhaar/traccia/internal/routes/text"
)

// Traccia is the main application orchestrator for the text-cleaning route.
type Traccia struct {
	loader *config.Loader
}

// New creates a new Traccia application.
func New() *Traccia {
	return &Traccia{loader: config.NewLoader()}
}

// LoadSettings loads the settings file at path, or the defaults when path is empty.
func (a *Traccia) LoadSettings(path string) (*config.Settings, error) {
	if path == "" {
		return config.Default(), nil
	}
	return a.loader.Load(path)
}

// Open builds the route described by settings and wraps it in a Session.
// When tracing is enabled the trail logs through the logger carried by ctx.
func (a *Traccia) Open(ctx context.Context, settings *config.Settings) (*Session, error) {
	if settings == nil {
		settings = config.Default()
	}

	opts := []trail.Option{trail.WithTags(settings.Tags)}
	if settings.Name != "" {
		opts = append(opts, trail.WithTrailName(settings.Name))
	}
	if settings.RunID != "" {
		opts = append(opts, trail.WithRunID(settings.RunID))
	}
	if settings.Trace {
		if logger := ports.LoggerFromContext(ctx); logger != nil {
			opts = append(opts, trail.WithLogger(logger))
		}
	}

	route, err := text.NewRoute(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build route: %w", err)
	}

	for _, name := range settings.Disabled {
		if err := route.Trail.Remove(name); err != nil {
			return nil, &config.UserError{
				Code:       config.ErrCodeConfigInvalid,
				Message:    fmt.Sprintf("cannot disable unknown step %q", name),
				Context:    "disabled",
				Suggestion: fmt.Sprintf("Known steps: %v", route.Trail.Names()),
				Underlying: err,
			}
		}
	}

	return NewSession(route.Trail)
}

// Run cleans input and returns the resulting footprint. On a step failure
// the footprint reflects the state handed to the failing step.
func (a *Traccia) Run(ctx context.Context, settings *config.Settings, input string) (*text.Footprint, error) {
	session, err := a.Open(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	logger := loggerFrom(ctx)
	fp := text.NewFootprint(input)
	out, err := session.Execute(fp)
	if err != nil {
		logger.Error(ctx, "run failed", ports.F("error", err))
		return fp, err
	}

	result, ok := out.(*text.Footprint)
	if !ok {
		return fp, fmt.Errorf("route returned %T, want *text.Footprint", out)
	}
	logger.Info(ctx, "run finished",
		ports.F("run_id", result.Metadata().RunID()),
		ports.F("steps", result.Metadata().Len()))
	return result, nil
}

// loggerFrom returns the logger carried by ctx, or a logger that discards everything.
func loggerFrom(ctx context.Context) ports.Logger {
	if logger := ports.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return logging.NewNopLogger()
}

// DryRun plans the route for input without running any step.
func (a *Traccia) DryRun(ctx context.Context, settings *config.Settings, input string) (trail.Preview, error) {
	session, err := a.Open(ctx, settings)
	if err != nil {
		return trail.Preview{}, err
	}
	defer session.Close()

	return session.DryRun(text.NewFootprint(input))
}

// Validate reports structural problems in the configured route.
func (a *Traccia) Validate(ctx context.Context, settings *config.Settings) ([]trail.Violation, error) {
	session, err := a.Open(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return session.Validate()
}

// Describe summarizes the configured route.
func (a *Traccia) Describe(ctx context.Context, settings *config.Settings) (trail.Description, string, error) {
	session, err := a.Open(ctx, settings)
	if err != nil {
		return trail.Description{}, "", err
	}
	defer session.Close()

	desc, err := session.Describe()
	if err != nil {
		return trail.Description{}, "", err
	}
	pretty, err := session.Pretty()
	if err != nil {
		return trail.Description{}, "", err
	}
	return desc, pretty, nil
}
