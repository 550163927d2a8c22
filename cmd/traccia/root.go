package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/traccia/internal/adapters/logging"
	"github.com/felixgeelhaar/traccia/internal/app"
	"github.com/felixgeelhaar/traccia/internal/domain/config"
	"github.com/felixgeelhaar/traccia/internal/domain/trail"
	"github.com/felixgeelhaar/traccia/internal/ports"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	logJSON  bool
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "traccia",
	Short: "Run text through an ordered trail of steps",
	Long: `Traccia threads a footprint through an ordered chain of named steps and
records every invocation in the footprint's metadata.

The built-in route cleans text:
  strip_text → normalize_unicode → normalize_spaces → lowercase → stats`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the settings file")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace every step and show technical error details")

	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(versionCmd)
}

// setup loads the settings, applies the global flags and returns a context
// carrying the configured logger.
func setup(cmd *cobra.Command) (context.Context, *config.Settings, error) {
	settings, err := app.New().LoadSettings(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if logLevel != "" {
		if _, err := ports.ParseLevel(logLevel); err != nil {
			return nil, nil, &config.UserError{
				Code:       config.ErrCodeConfigInvalid,
				Message:    err.Error(),
				Context:    "--log-level",
				Suggestion: "Use one of: debug, info, warn, error.",
			}
		}
		settings.Logging.Level = logLevel
	}
	if logJSON {
		settings.Logging.Format = config.FormatJSON
	}
	if verbose {
		settings.Trace = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd.ErrOrStderr(), settings)
	return ports.ContextWithLogger(ctx, logger), settings, nil
}

// newLogger builds the console logger. Tracing needs debug entries, so it
// lowers the level when the settings ask for a trace.
func newLogger(w io.Writer, settings *config.Settings) ports.Logger {
	level := settings.LogLevel()
	if settings.Trace {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(settings.JSONLogs()),
	)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) && list.Len() > 1 {
		if verbose {
			return list.Format()
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d problems in settings:", list.Len())
		for _, ue := range list.Errors() {
			fmt.Fprintf(&b, "\n  - %s", ue.Error())
			if ue.Suggestion != "" {
				fmt.Fprintf(&b, "\n    Suggestion: %s", ue.Suggestion)
			}
		}
		return b.String()
	}

	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Error()
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var trailErr *trail.Error
	if errors.As(err, &trailErr) {
		if verbose {
			return trailErr.Format()
		}
		msg := trailErr.Error()
		if trailErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", trailErr.Suggestion)
		}
		return msg
	}

	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Error.Render("Error:"), formatError(err))
}
