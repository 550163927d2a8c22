package main

import (
	"bytes"
	"strings"
	"testing"
)

// executeCommand runs the root command with args and returns stdout and stderr.
// Flag variables are reset first because cobra keeps them between runs.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cfgFile, logLevel, logJSON, verbose = "", "", false, false
	runText, runFile, runJSON = "", "", false
	dryRunJSON = false
	validateJSON = false
	describeFormat = "text"

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}
