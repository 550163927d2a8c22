package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/traccia/internal/app"
	"github.com/felixgeelhaar/traccia/internal/domain/trail"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the trail structure without running it",
	Long: `Validate checks the configured trail for structural problems: missing
steps, empty or duplicate names, a name index out of step with the
sequence, and step bodies of the wrong shape. No step is invoked.

Exit codes:
  0 - Trail is valid
  1 - Problems found, or the settings could not be loaded

Examples:
  traccia validate
  traccia validate --config traccia.yaml --json`,
	RunE: runValidate,
}

var validateJSON bool

// errInvalidTrail is returned when validation finds problems.
var errInvalidTrail = errors.New("trail is invalid")

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output results as JSON")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx, settings, err := setup(cmd)
	if err != nil {
		if validateJSON {
			outputValidationJSON(cmd, nil, err)
		}
		return err
	}

	a := app.New()
	violations, err := a.Validate(ctx, settings)
	if err != nil {
		if validateJSON {
			outputValidationJSON(cmd, nil, err)
		}
		return err
	}

	if validateJSON {
		outputValidationJSON(cmd, violations, nil)
	} else {
		desc, _, err := a.Describe(ctx, settings)
		if err != nil {
			return err
		}
		printViolations(cmd.OutOrStdout(), desc.Name, violations)
	}

	if len(violations) > 0 {
		return fmt.Errorf("%w: %d problem(s)", errInvalidTrail, len(violations))
	}
	return nil
}

func outputValidationJSON(cmd *cobra.Command, violations []trail.Violation, err error) {
	output := struct {
		Valid      bool              `json:"valid"`
		Violations []trail.Violation `json:"violations,omitempty"`
		Error      string            `json:"error,omitempty"`
	}{}

	if err != nil {
		output.Error = err.Error()
	} else {
		output.Valid = len(violations) == 0
		output.Violations = violations
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}
