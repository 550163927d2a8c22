package testutil

import (
	"github.com/felixgeelhaar/traccia/internal/domain/trail"
)

// RecordingFootprint records the order in which steps touched it.
type RecordingFootprint struct {
	trail.Base
	Calls []string
	Value int
}

// NewRecordingFootprint creates a footprint with a fresh ledger.
func NewRecordingFootprint() *RecordingFootprint {
	return &RecordingFootprint{Base: trail.NewBase()}
}

// UnstableFootprint breaks the identity contract by returning a new ledger
// on every call.
type UnstableFootprint struct{}

// Metadata returns a different instance each time.
func (UnstableFootprint) Metadata() *trail.Metadata {
	return trail.NewMetadata()
}

// NilMetadataFootprint returns no ledger at all.
type NilMetadataFootprint struct{}

// Metadata returns nil.
func (NilMetadataFootprint) Metadata() *trail.Metadata {
	return nil
}
