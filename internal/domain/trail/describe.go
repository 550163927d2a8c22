package trail

import (
	"fmt"
	"sort"
	"strings"
)

// Description is a structured summary of a trail.
type Description struct {
	Name        string            `json:"name" yaml:"name"`
	StepCount   int               `json:"step_count" yaml:"step_count"`
	Steps       []string          `json:"steps" yaml:"steps"`
	DefaultTags map[string]string `json:"default_tags" yaml:"default_tags"`
	Trace       bool              `json:"trace" yaml:"trace"`
}

// Describe returns a structured summary of the trail.
func (t *Trail) Describe() Description {
	return Description{
		Name:        t.Name(),
		StepCount:   len(t.steps),
		Steps:       t.Names(),
		DefaultTags: t.Tags(),
		Trace:       t.logger != nil,
	}
}

// Pretty returns a human-readable multi-line description.
func (t *Trail) Pretty() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trail: %s\n", t.Name())
	fmt.Fprintf(&b, "  steps (%d):\n", len(t.steps))
	for i, s := range t.steps {
		fmt.Fprintf(&b, "    %d. %s\n", i+1, s.Name())
	}

	if len(t.tags) > 0 {
		b.WriteString("  default tags:\n")
		keys := make([]string, 0, len(t.tags))
		for k := range t.tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    - %s = %s\n", k, t.tags[k])
		}
	}

	fmt.Fprintf(&b, "  trace: %t", t.logger != nil)
	return b.String()
}
