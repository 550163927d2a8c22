package testutil

import (
	"fmt"

	"github.com/felixgeelhaar/traccia/internal/domain/trail"
)

// AppendStep returns a step that appends its name to RecordingFootprint.Calls.
func AppendStep(name string) trail.Step {
	return trail.Must(trail.NewFunc(func(fp trail.Footprint) (trail.Footprint, error) {
		rec, ok := fp.(*RecordingFootprint)
		if !ok {
			return fp, fmt.Errorf("unexpected footprint %T", fp)
		}
		rec.Calls = append(rec.Calls, name)
		return rec, nil
	}, trail.WithName(name)))
}

// AppendSteps returns one AppendStep per name.
func AppendSteps(names ...string) []trail.Step {
	steps := make([]trail.Step, len(names))
	for i, name := range names {
		steps[i] = AppendStep(name)
	}
	return steps
}

// FailingStep returns a step that records its call and then fails with err.
func FailingStep(name string, err error) trail.Step {
	return trail.Must(trail.NewFunc(func(fp trail.Footprint) (trail.Footprint, error) {
		if rec, ok := fp.(*RecordingFootprint); ok {
			rec.Calls = append(rec.Calls, name)
		}
		return fp, err
	}, trail.WithName(name)))
}

// PanickingStep returns a step that panics with v.
func PanickingStep(name string, v any) trail.Step {
	return trail.Must(trail.NewFunc(func(trail.Footprint) (trail.Footprint, error) {
		panic(v)
	}, trail.WithName(name)))
}

// Adder is a stateful handler that adds N to RecordingFootprint.Value and
// counts its own invocations.
type Adder struct {
	N     int
	Calls int
}

// Handle implements trail.Handler.
func (a *Adder) Handle(fp trail.Footprint) (trail.Footprint, error) {
	a.Calls++
	rec, ok := fp.(*RecordingFootprint)
	if !ok {
		return fp, fmt.Errorf("unexpected footprint %T", fp)
	}
	rec.Value += a.N
	return rec, nil
}
