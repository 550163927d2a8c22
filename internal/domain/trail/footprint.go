package trail

// Footprint is the shared state threaded through a Trail.
// Implementations must return the same *Metadata from every call to
// Metadata for the lifetime of the footprint.
type Footprint interface {
	Metadata() *Metadata
}

// Base is an embeddable Footprint implementation.
// Use NewBase; the zero value has no ledger and fails the contract check.
type Base struct {
	meta *Metadata
}

// NewBase allocates the ledger once.
func NewBase() Base {
	return Base{meta: NewMetadata()}
}

// Metadata implements Footprint.
func (b *Base) Metadata() *Metadata {
	return b.meta
}

// checkFootprint verifies the identity-stability contract before a run.
func checkFootprint(op string, fp Footprint) (*Metadata, error) {
	if isNil(fp) {
		return nil, newContractViolationError(op, "footprint is nil")
	}
	first := fp.Metadata()
	if first == nil {
		return nil, newContractViolationError(op, "Metadata() returned nil")
	}
	if second := fp.Metadata(); second != first {
		return nil, newContractViolationError(op, "Metadata() returned a different instance on consecutive calls")
	}
	return first, nil
}
