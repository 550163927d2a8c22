package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/traccia/internal/domain/trail"
)

// State represents the session's lifecycle state.
type State string

const (
	// StateIdle indicates no run is in progress and the last one succeeded.
	StateIdle State = "idle"
	// StateExecuting indicates Execute is running the trail.
	StateExecuting State = "executing"
	// StateDryRunning indicates DryRun is planning the trail.
	StateDryRunning State = "dry_running"
	// StateFailed indicates the last run ended with an error.
	StateFailed State = "failed"
)

// Event types for the session state machine.
const (
	EventExecute = "EXECUTE"
	EventDryRun  = "DRY_RUN"
	EventDone    = "DONE"
	EventFail    = "FAIL"
)

// ErrSessionBusy is returned when an operation is attempted while another
// one holds the session, including calls made from inside a running step.
var ErrSessionBusy = errors.New("session is busy")

// Lifecycle is the state machine context: counters kept across runs.
type Lifecycle struct {
	Runs      int
	DryRuns   int
	Failures  int
	LastRunID string
	LastError string
}

// Session owns one Trail and serializes every operation on it.
// Operations never wait: overlapping or re-entrant calls fail with
// ErrSessionBusy.
type Session struct {
	mu    sync.Mutex // held for the whole of each operation
	trail *trail.Trail

	stateMu   sync.Mutex // guards interp and lifecycle
	interp    *statekit.Interpreter[Lifecycle]
	lifecycle Lifecycle
}

// NewSession wraps t and starts its lifecycle machine in the idle state.
func NewSession(t *trail.Trail) (*Session, error) {
	if t == nil {
		return nil, fmt.Errorf("trail is required")
	}

	s := &Session{trail: t}
	interp, err := buildSessionMachine(s)
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}
	s.interp = interp
	s.interp.Start()
	return s, nil
}

// buildSessionMachine constructs the lifecycle machine. Actions write to
// the session's lifecycle through the captured pointer; they run inside
// send, which already holds stateMu.
func buildSessionMachine(s *Session) (*statekit.Interpreter[Lifecycle], error) {
	machine, err := statekit.NewMachine[Lifecycle]("traccia-session").
		WithInitial("idle").
		WithContext(Lifecycle{}).
		WithAction("countRun", func(_ *Lifecycle, _ statekit.Event) {
			s.lifecycle.Runs++
		}).
		WithAction("countDryRun", func(_ *Lifecycle, _ statekit.Event) {
			s.lifecycle.DryRuns++
		}).
		WithAction("recordDone", func(_ *Lifecycle, event statekit.Event) {
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				if id, ok := payload["run_id"].(string); ok && id != "" {
					s.lifecycle.LastRunID = id
				}
			}
		}).
		WithAction("recordFailure", func(_ *Lifecycle, event statekit.Event) {
			s.lifecycle.Failures++
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				if id, ok := payload["run_id"].(string); ok && id != "" {
					s.lifecycle.LastRunID = id
				}
				if err, ok := payload["error"].(error); ok {
					s.lifecycle.LastError = err.Error()
				}
			}
		}).
		State("idle").
		OnEntry("recordDone").
		On(EventExecute).Target("executing").
		On(EventDryRun).Target("dry_running").Done().
		State("executing").
		OnEntry("countRun").
		On(EventDone).Target("idle").
		On(EventFail).Target("failed").Done().
		State("dry_running").
		OnEntry("countDryRun").
		On(EventDone).Target("idle").
		On(EventFail).Target("failed").Done().
		State("failed").
		OnEntry("recordFailure").
		On(EventExecute).Target("executing").
		On(EventDryRun).Target("dry_running").Done().
		Build()

	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

func (s *Session) send(event string, payload map[string]interface{}) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.interp.Send(statekit.Event{Type: statekit.EventType(event), Payload: payload})
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return State(s.interp.State().Value)
}

// Lifecycle returns a copy of the run counters.
func (s *Session) Lifecycle() Lifecycle {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.lifecycle
}

// Close stops the lifecycle machine.
func (s *Session) Close() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.interp.Stop()
}

// Execute runs the trail over fp.
func (s *Session) Execute(fp trail.Footprint) (trail.Footprint, error) {
	if !s.mu.TryLock() {
		return fp, ErrSessionBusy
	}
	defer s.mu.Unlock()

	s.send(EventExecute, nil)
	out, err := s.trail.Execute(fp)

	payload := map[string]interface{}{}
	if err == nil || errors.Is(err, trail.ErrStepExecution) {
		payload["run_id"] = fp.Metadata().RunID()
	}
	if err != nil {
		payload["error"] = err
		s.send(EventFail, payload)
		return out, err
	}
	s.send(EventDone, payload)
	return out, nil
}

// DryRun plans the trail over fp without running any step.
func (s *Session) DryRun(fp trail.Footprint) (trail.Preview, error) {
	if !s.mu.TryLock() {
		return trail.Preview{}, ErrSessionBusy
	}
	defer s.mu.Unlock()

	s.send(EventDryRun, nil)
	preview, err := s.trail.DryRun(fp)
	if err != nil {
		s.send(EventFail, map[string]interface{}{"error": err})
		return preview, err
	}
	s.send(EventDone, nil)
	return preview, nil
}

// Validate reports structural problems in the trail.
func (s *Session) Validate() ([]trail.Violation, error) {
	var violations []trail.Violation
	err := s.locked(func(t *trail.Trail) error {
		violations = t.Validate()
		return nil
	})
	return violations, err
}

// Describe returns a structured summary of the trail.
func (s *Session) Describe() (trail.Description, error) {
	var desc trail.Description
	err := s.locked(func(t *trail.Trail) error {
		desc = t.Describe()
		return nil
	})
	return desc, err
}

// Pretty returns the human-readable trail description.
func (s *Session) Pretty() (string, error) {
	var out string
	err := s.locked(func(t *trail.Trail) error {
		out = t.Pretty()
		return nil
	})
	return out, err
}

// Add appends steps to the trail.
func (s *Session) Add(steps ...trail.Step) error {
	return s.locked(func(t *trail.Trail) error { return t.Add(steps...) })
}

// InsertBefore inserts steps before target.
func (s *Session) InsertBefore(target string, steps ...trail.Step) error {
	return s.locked(func(t *trail.Trail) error { return t.InsertBefore(target, steps...) })
}

// InsertAfter inserts steps after target.
func (s *Session) InsertAfter(target string, steps ...trail.Step) error {
	return s.locked(func(t *trail.Trail) error { return t.InsertAfter(target, steps...) })
}

// Replace swaps target for steps.
func (s *Session) Replace(target string, steps ...trail.Step) error {
	return s.locked(func(t *trail.Trail) error { return t.Replace(target, steps...) })
}

// Remove deletes target from the trail.
func (s *Session) Remove(target string) error {
	return s.locked(func(t *trail.Trail) error { return t.Remove(target) })
}

func (s *Session) locked(fn func(t *trail.Trail) error) error {
	if !s.mu.TryLock() {
		return ErrSessionBusy
	}
	defer s.mu.Unlock()
	return fn(s.trail)
}
