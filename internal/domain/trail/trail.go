// Package trail implements the sequential step engine: an ordered,
// name-indexed collection of steps that threads a footprint through each
// step and records every invocation in the footprint's metadata.
//
// A Trail is not safe for concurrent use. Callers that share a trail
// across goroutines must serialize access themselves.
package trail

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/traccia/internal/ports"
)

// DefaultName is used when a trail is created without WithTrailName.
const DefaultName = "Trail"

// TagTrail is the metadata tag key holding the trail name during a run.
const TagTrail = "trail"

// Trail is a mutable ordered sequence of uniquely named steps. The zero
// value is an empty trail named DefaultName; New applies options.
type Trail struct {
	name   string
	steps  []Step
	index  map[string]int // step name -> position in steps
	tags   map[string]string
	runID  func() string
	clock  func() time.Time
	logger ports.Logger
}

// Option configures a Trail.
type Option func(*Trail)

// WithTrailName sets the trail name recorded in the "trail" tag.
func WithTrailName(name string) Option {
	return func(t *Trail) {
		if name != "" {
			t.name = name
		}
	}
}

// WithTag adds a default tag applied to the metadata at the start of every run.
func WithTag(key, value string) Option {
	return func(t *Trail) {
		t.tags[key] = value
	}
}

// WithTags adds several default tags.
func WithTags(tags map[string]string) Option {
	return func(t *Trail) {
		for k, v := range tags {
			t.tags[k] = v
		}
	}
}

// WithRunID pins the run id instead of generating a fresh one per run.
func WithRunID(id string) Option {
	return func(t *Trail) {
		if id != "" {
			t.runID = func() string { return id }
		}
	}
}

// WithRunIDFunc sets the run id generator.
func WithRunIDFunc(fn func() string) Option {
	return func(t *Trail) {
		if fn != nil {
			t.runID = fn
		}
	}
}

// WithClock sets the time source used for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(t *Trail) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithLogger enables tracing of runs through the given logger.
// A nil logger keeps the trail silent.
func WithLogger(logger ports.Logger) Option {
	return func(t *Trail) {
		t.logger = logger
	}
}

// New creates an empty trail.
func New(opts ...Option) *Trail {
	t := &Trail{
		name:  DefaultName,
		index: make(map[string]int),
		tags:  make(map[string]string),
		runID: func() string { return uuid.New().String() },
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// From creates a trail from an initial ordered list of steps.
func From(steps []Step, opts ...Option) (*Trail, error) {
	t := New(opts...)
	if err := t.Add(steps...); err != nil {
		return nil, err
	}
	return t, nil
}

// Name returns the trail name.
func (t *Trail) Name() string {
	if t.name == "" {
		return DefaultName
	}
	return t.name
}

func (t *Trail) nextRunID() string {
	if t.runID == nil {
		return uuid.New().String()
	}
	return t.runID()
}

func (t *Trail) now() time.Time {
	if t.clock == nil {
		return time.Now().UTC()
	}
	return t.clock()
}

// Len returns the number of steps.
func (t *Trail) Len() int {
	return len(t.steps)
}

// Names returns the step names in execution order.
func (t *Trail) Names() []string {
	names := make([]string, len(t.steps))
	for i, s := range t.steps {
		names[i] = s.Name()
	}
	return names
}

// Tags returns a copy of the default tags.
func (t *Trail) Tags() map[string]string {
	return copyTags(t.tags)
}

// Contains reports whether a step with the given name is present.
func (t *Trail) Contains(name string) bool {
	_, ok := t.index[name]
	return ok
}

// IndexOf returns the position of the named step.
func (t *Trail) IndexOf(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, newNotFoundError("index_of", name)
	}
	return i, nil
}

// Step returns the named step.
func (t *Trail) Step(name string) (Step, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, newNotFoundError("step", name)
	}
	return t.steps[i], nil
}

// Steps returns a copy of the steps in execution order.
func (t *Trail) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Add appends steps at the end.
func (t *Trail) Add(steps ...Step) error {
	if err := t.checkNew("add", "", steps); err != nil {
		return err
	}
	t.splice(len(t.steps), 0, steps)
	return nil
}

// InsertBefore inserts steps immediately before the named step.
func (t *Trail) InsertBefore(target string, steps ...Step) error {
	pos, ok := t.index[target]
	if !ok {
		return newNotFoundError("insert_before", target)
	}
	if err := t.checkNew("insert_before", "", steps); err != nil {
		return err
	}
	t.splice(pos, 0, steps)
	return nil
}

// InsertAfter inserts steps immediately after the named step.
func (t *Trail) InsertAfter(target string, steps ...Step) error {
	pos, ok := t.index[target]
	if !ok {
		return newNotFoundError("insert_after", target)
	}
	if err := t.checkNew("insert_after", "", steps); err != nil {
		return err
	}
	t.splice(pos+1, 0, steps)
	return nil
}

// Replace swaps the named step for the given steps at the same position.
// Replacement names may reuse target but must not collide with any other step.
func (t *Trail) Replace(target string, steps ...Step) error {
	pos, ok := t.index[target]
	if !ok {
		return newNotFoundError("replace", target)
	}
	if len(steps) == 0 {
		err := newInvalidStepError(target, "replace needs at least one replacement step")
		err.Op = "replace"
		err.Suggestion = "Use Remove to delete a step."
		return err
	}
	if err := t.checkNew("replace", target, steps); err != nil {
		return err
	}
	t.splice(pos, 1, steps)
	return nil
}

// Remove deletes the named step.
func (t *Trail) Remove(target string) error {
	pos, ok := t.index[target]
	if !ok {
		return newNotFoundError("remove", target)
	}
	t.splice(pos, 1, nil)
	return nil
}

// checkNew validates steps about to enter the trail. A name equal to
// freed is allowed because that step is leaving in the same operation.
func (t *Trail) checkNew(op, freed string, steps []Step) error {
	seen := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		if isNil(s) {
			err := newInvalidStepError("", "step is nil")
			err.Op = op
			return err
		}
		name := s.Name()
		if err := checkName(name); err != nil {
			err.(*Error).Op = op
			return err
		}
		if _, dup := seen[name]; dup {
			return newDuplicateNameError(op, name)
		}
		seen[name] = struct{}{}
		if _, exists := t.index[name]; exists && name != freed {
			return newDuplicateNameError(op, name)
		}
	}
	return nil
}

// splice removes del steps at pos, inserts steps there and reindexes the
// shifted tail.
func (t *Trail) splice(pos, del int, steps []Step) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	for _, s := range t.steps[pos : pos+del] {
		delete(t.index, s.Name())
	}

	tail := append([]Step(nil), t.steps[pos+del:]...)
	t.steps = append(append(t.steps[:pos], steps...), tail...)

	for i := pos; i < len(t.steps); i++ {
		t.index[t.steps[i].Name()] = i
	}
}
