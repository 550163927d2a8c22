// Package config loads and validates traccia run settings.
package config

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/traccia/internal/ports"
)

// Logging formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Settings configures how a route's trail is built and run.
type Settings struct {
	// Name overrides the trail name.
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`
	// RunID pins the run id instead of generating one per run.
	RunID string `yaml:"run_id,omitempty" toml:"run_id,omitempty"`
	// Tags are default tags applied to every run.
	Tags map[string]string `yaml:"tags,omitempty" toml:"tags,omitempty"`
	// Trace logs every step at debug level.
	Trace bool `yaml:"trace,omitempty" toml:"trace,omitempty"`
	// Disabled lists step names removed from the route before running.
	Disabled []string `yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	Logging  Logging  `yaml:"logging,omitempty" toml:"logging,omitempty"`
}

// Logging configures the console logger.
type Logging struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
}

// Default returns settings that leave the route as built.
func Default() *Settings {
	return &Settings{
		Tags: map[string]string{},
		Logging: Logging{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Validate checks the settings and reports every problem found.
func (s *Settings) Validate() error {
	var errs ErrorList

	if strings.TrimSpace(s.Name) != s.Name {
		errs.AddInvalid("name", "must not start or end with whitespace", "Remove the surrounding spaces.")
	}
	if strings.TrimSpace(s.RunID) != s.RunID {
		errs.AddInvalid("run_id", "must not start or end with whitespace", "Remove the surrounding spaces.")
	}
	for k := range s.Tags {
		if strings.TrimSpace(k) == "" {
			errs.AddInvalid("tags", "tag keys must not be empty", "Give every tag a key.")
			break
		}
	}

	seen := make(map[string]bool, len(s.Disabled))
	for _, name := range s.Disabled {
		switch {
		case strings.TrimSpace(name) == "":
			errs.AddInvalid("disabled", "step names must not be empty", "Remove the empty entry.")
		case seen[name]:
			errs.AddInvalid("disabled", fmt.Sprintf("step %q listed twice", name), "List each step once.")
		}
		seen[name] = true
	}

	if _, err := ports.ParseLevel(s.Logging.Level); err != nil {
		errs.AddInvalid("logging.level", err.Error(), "Use one of: debug, info, warn, error.")
	}
	switch strings.ToLower(s.Logging.Format) {
	case "", FormatText, FormatJSON:
	default:
		errs.AddInvalid("logging.format", fmt.Sprintf("unknown format %q", s.Logging.Format), "Use text or json.")
	}

	return errs.AsError()
}

// LogLevel returns the parsed logging level, defaulting to info.
func (s *Settings) LogLevel() ports.Level {
	level, err := ports.ParseLevel(s.Logging.Level)
	if err != nil {
		return ports.LevelInfo
	}
	return level
}

// JSONLogs reports whether logs should be written as JSON.
func (s *Settings) JSONLogs() bool {
	return strings.EqualFold(s.Logging.Format, FormatJSON)
}

// normalize fills zero values with defaults after decoding.
func (s *Settings) normalize() {
	if s.Tags == nil {
		s.Tags = map[string]string{}
	}
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = FormatText
	}
}
