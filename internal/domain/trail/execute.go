package trail

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/traccia/internal/ports"
)

// Errors describing step misbehaviour, wrapped in a STEP_EXECUTION error.
var (
	ErrNilFootprint = errors.New("step returned a nil footprint")
	ErrStepPanicked = errors.New("step panicked")
)

// Execute invokes every step in order, threading the returned footprint
// into the next step, and records each invocation in the ledger of the
// footprint passed in.
//
// On the first failure it records the failed step, stops, and returns the
// footprint as it was handed to the failing step together with a
// STEP_EXECUTION error. Effects of earlier steps are not undone.
func (t *Trail) Execute(fp Footprint) (Footprint, error) {
	meta, err := checkFootprint("execute", fp)
	if err != nil {
		return fp, err
	}

	runID := t.nextRunID()
	runTags := t.runTags()
	meta.beginRun(runID, runTags, t.now())

	ctx := context.Background()
	log := t.traceLogger(ports.F("run_id", runID))
	if log != nil {
		log.Debug(ctx, "trail starting", ports.F("steps", len(t.steps)))
	}

	current := fp
	for i, s := range t.steps {
		if log != nil {
			log.Debug(ctx, "step starting", ports.F("step", s.Name()), ports.F("index", i))
		}

		rec := ExecutionRecord{
			StepName:  s.Name(),
			Index:     i,
			Tags:      copyTags(runTags),
			StartedAt: t.now(),
		}
		next, stepErr := invoke(s, current)
		rec.FinishedAt = t.now()

		if stepErr != nil {
			rec.Outcome = Failed(stepErr.Error())
			meta.appendRecord(rec)
			meta.finishRun(rec.FinishedAt)
			if log != nil {
				log.Debug(ctx, "step failed", ports.F("step", s.Name()), ports.F("index", i), ports.F("error", stepErr.Error()))
			}
			return current, newStepExecutionError(s.Name(), i, stepErr)
		}

		rec.Outcome = OutcomeSuccess
		meta.appendRecord(rec)
		if log != nil {
			log.Debug(ctx, "step finished", ports.F("step", s.Name()), ports.F("index", i), ports.F("duration", rec.Duration().String()))
		}
		current = next
	}

	meta.finishRun(t.now())
	if log != nil {
		log.Debug(ctx, "trail finished", ports.F("handlers", meta.Handlers()))
	}
	return current, nil
}

// invoke calls the step and turns panics and nil results into errors.
func invoke(s Step, fp Footprint) (next Footprint, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			err = fmt.Errorf("%w: %v", ErrStepPanicked, r)
		}
	}()

	next, err = s.Invoke(fp)
	if err != nil {
		return next, err
	}
	if isNil(next) {
		return nil, ErrNilFootprint
	}
	return next, nil
}

// Preview is the would-run ledger produced by DryRun.
type Preview struct {
	Trail   string            `json:"trail" yaml:"trail"`
	Tags    map[string]string `json:"tags" yaml:"tags"`
	Records []ExecutionRecord `json:"records" yaml:"records"`
}

// Len returns the number of planned records.
func (p Preview) Len() int {
	return len(p.Records)
}

// Names returns the planned step names in order.
func (p Preview) Names() []string {
	names := make([]string, len(p.Records))
	for i, rec := range p.Records {
		names[i] = rec.StepName
	}
	return names
}

// DryRun plans a run without committing anything to the footprint's
// metadata: no run id is assigned and no records or tags are written.
// Step bodies are not invoked, so the footprint's own state is untouched too.
func (t *Trail) DryRun(fp Footprint) (Preview, error) {
	if _, err := checkFootprint("dry_run", fp); err != nil {
		return Preview{}, err
	}

	ctx := context.Background()
	log := t.traceLogger(ports.F("mode", "dry-run"))

	runTags := t.runTags()
	preview := Preview{
		Trail:   t.Name(),
		Tags:    runTags,
		Records: make([]ExecutionRecord, 0, len(t.steps)),
	}
	for i, s := range t.steps {
		if log != nil {
			log.Debug(ctx, "step planned", ports.F("step", s.Name()), ports.F("index", i))
		}
		now := t.now()
		preview.Records = append(preview.Records, ExecutionRecord{
			StepName:   s.Name(),
			Index:      i,
			Tags:       copyTags(runTags),
			StartedAt:  now,
			FinishedAt: now,
			Outcome:    OutcomePlanned,
		})
	}
	return preview, nil
}

func (t *Trail) runTags() map[string]string {
	tags := copyTags(t.tags)
	tags[TagTrail] = t.Name()
	return tags
}

func (t *Trail) traceLogger(fields ...ports.Field) ports.Logger {
	if t.logger == nil {
		return nil
	}
	return t.logger.With(append([]ports.Field{ports.F("trail", t.Name())}, fields...)...)
}
