// Package text is the text-cleaning route: a footprint carrying a string
// and the steps that normalize it and collect statistics.
package text

import "github.com/felixgeelhaar/traccia/internal/domain/trail"

// Footprint carries the text being cleaned and the statistics computed
// by the stats step.
type Footprint struct {
	trail.Base

	Text      string `json:"text" yaml:"text"`
	CharCount int    `json:"char_count" yaml:"char_count"`
	WordCount int    `json:"word_count" yaml:"word_count"`
	IsEmpty   bool   `json:"is_empty" yaml:"is_empty"`
}

// NewFootprint creates a footprint for text with a fresh ledger.
func NewFootprint(text string) *Footprint {
	return &Footprint{Base: trail.NewBase(), Text: text}
}

// Result is the serializable outcome of a run.
type Result struct {
	Text      string                 `json:"text" yaml:"text"`
	CharCount int                    `json:"char_count" yaml:"char_count"`
	WordCount int                    `json:"word_count" yaml:"word_count"`
	IsEmpty   bool                   `json:"is_empty" yaml:"is_empty"`
	Metadata  trail.MetadataSnapshot `json:"metadata" yaml:"metadata"`
}

// Result returns the footprint's fields and a snapshot of its ledger.
func (f *Footprint) Result() Result {
	return Result{
		Text:      f.Text,
		CharCount: f.CharCount,
		WordCount: f.WordCount,
		IsEmpty:   f.IsEmpty,
		Metadata:  f.Metadata().Snapshot(),
	}
}
