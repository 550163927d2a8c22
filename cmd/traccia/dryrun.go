package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/traccia/internal/app"
)

var dryRunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Show which steps would run without running them",
	Long: `Dry-run walks the trail and lists the steps that a run would invoke,
with the tags it would apply. No step is executed and no metadata is
written.

Examples:
  traccia dry-run
  traccia dry-run --config traccia.toml --json`,
	RunE: runDryRun,
}

var dryRunJSON bool

func init() {
	rootCmd.AddCommand(dryRunCmd)

	dryRunCmd.Flags().BoolVar(&dryRunJSON, "json", false, "output the preview as JSON")
}

func runDryRun(cmd *cobra.Command, _ []string) error {
	ctx, settings, err := setup(cmd)
	if err != nil {
		return err
	}

	preview, err := app.New().DryRun(ctx, settings, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRunJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}

	printPreview(out, preview)
	return nil
}
