package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/traccia/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clean text through the trail",
	Long: `Run executes every step of the text-cleaning trail in order and prints
the cleaned text, its statistics and the execution records.

Input is taken from --text, --file, or stdin.

Examples:
  traccia run --text "  Hello   World  "
  traccia run --file notes.txt --json
  echo "Some TEXT" | traccia run --config traccia.yaml`,
	RunE: runRun,
}

var (
	runText string
	runFile string
	runJSON bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runText, "text", "", "text to clean")
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "file to read text from")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the result as JSON")
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, settings, err := setup(cmd)
	if err != nil {
		return err
	}

	input, err := readInput(cmd, runText, runFile)
	if err != nil {
		return err
	}

	fp, runErr := app.New().Run(ctx, settings, input)
	if fp == nil {
		return runErr
	}

	// On a step failure the partial result is still printed.
	out := cmd.OutOrStdout()

	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fp.Result()); err != nil {
			return err
		}
		return runErr
	}

	printResult(out, fp)
	return runErr
}
