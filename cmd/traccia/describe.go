package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/traccia/internal/app"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the configured trail",
	Long: `Describe prints the trail name, its steps in execution order, the
default tags and whether tracing is on.

Examples:
  traccia describe
  traccia describe --format yaml`,
	RunE: runDescribe,
}

var describeFormat string

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().StringVarP(&describeFormat, "format", "o", "text", "output format (text, json, yaml)")
	_ = describeCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	ctx, settings, err := setup(cmd)
	if err != nil {
		return err
	}

	desc, pretty, err := app.New().Describe(ctx, settings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch describeFormat {
	case "text", "":
		_, _ = fmt.Fprintln(out, pretty)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(desc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", describeFormat)
	}
}
