package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// readInput returns --text, else the contents of --file, else stdin.
func readInput(cmd *cobra.Command, textFlag, fileFlag string) (string, error) {
	if textFlag != "" && fileFlag != "" {
		return "", fmt.Errorf("--text and --file are mutually exclusive")
	}
	if textFlag != "" {
		return textFlag, nil
	}
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
