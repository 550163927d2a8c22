package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/traccia/internal/domain/trail"
	"github.com/felixgeelhaar/traccia/internal/routes/text"
)

// Theme colors (Catppuccin inspired).
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"} // Green
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
)

// cliStyles holds the styles used for human-readable output.
type cliStyles struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var styles = cliStyles{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	Key:     lipgloss.NewStyle().Foreground(colorMuted).Width(12),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
}

// outcomeStyle picks the style for a record outcome.
func outcomeStyle(o trail.Outcome) lipgloss.Style {
	switch {
	case o.IsSuccess():
		return styles.Success
	case o.IsPlanned():
		return styles.Warning
	default:
		return styles.Error
	}
}

func field(w io.Writer, key string, value any) {
	_, _ = fmt.Fprintf(w, "  %s %v\n", styles.Key.Render(key), value)
}

func printRecords(w io.Writer, records []trail.ExecutionRecord) {
	for _, rec := range records {
		outcome := outcomeStyle(rec.Outcome).Render(rec.Outcome.String())
		line := fmt.Sprintf("  %d. %-18s %s", rec.Index+1, rec.StepName, outcome)
		if !rec.Outcome.IsPlanned() {
			line += " " + styles.Muted.Render(rec.Duration().String())
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func printTags(w io.Writer, tags map[string]string) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + tags[k]
	}
	field(w, "tags", strings.Join(pairs, " "))
}

// printResult renders a run for humans.
func printResult(w io.Writer, fp *text.Footprint) {
	meta := fp.Metadata()

	_, _ = fmt.Fprintln(w, styles.Title.Render("Result"))
	field(w, "text", fmt.Sprintf("%q", fp.Text))
	field(w, "chars", fp.CharCount)
	field(w, "words", fp.WordCount)
	field(w, "empty", fp.IsEmpty)
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, styles.Title.Render("Trail"))
	field(w, "run id", meta.RunID())
	printTags(w, meta.Tags())
	printRecords(w, meta.Records())
}

// printPreview renders a dry run for humans.
func printPreview(w io.Writer, p trail.Preview) {
	_, _ = fmt.Fprintln(w, styles.Title.Render("Dry run: "+p.Trail))
	printTags(w, p.Tags)
	printRecords(w, p.Records)
	_, _ = fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("%d step(s) would run; nothing was executed.", p.Len())))
}

// printViolations renders validation results for humans.
func printViolations(w io.Writer, name string, violations []trail.Violation) {
	if len(violations) == 0 {
		_, _ = fmt.Fprintf(w, "%s %s is valid\n", styles.Success.Render("✓"), name)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s has %d problem(s):\n", styles.Error.Render("✗"), name, len(violations))
	for _, v := range violations {
		_, _ = fmt.Fprintf(w, "  - %s\n", v.String())
	}
}
