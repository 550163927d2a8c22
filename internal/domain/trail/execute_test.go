package trail_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/traccia/internal/adapters/logging"
	"github.com/felixgeelhaar/traccia/internal/domain/trail"
	"github.com/felixgeelhaar/traccia/internal/ports"
	"github.com/felixgeelhaar/traccia/internal/testutil"
)

// tickingClock returns a clock that advances one millisecond per call.
func tickingClock() func() time.Time {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func TestTrail_Execute_Order(t *testing.T) {
	t.Parallel()

	tr, err := trail.From(testutil.AppendSteps("a", "b", "c"),
		trail.WithTrailName("Ordered"),
		trail.WithRunID("run-1"),
		trail.WithClock(tickingClock()),
	)
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	out, err := tr.Execute(fp)
	require.NoError(t, err)

	assert.Same(t, fp, out)
	assert.Equal(t, []string{"a", "b", "c"}, fp.Calls)

	meta := fp.Metadata()
	assert.Equal(t, "run-1", meta.RunID())
	assert.Equal(t, []string{"a", "b", "c"}, meta.Handlers())

	records := meta.Records()
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i, rec.Index)
		assert.Equal(t, trail.OutcomeSuccess, rec.Outcome)
		assert.Equal(t, "Ordered", rec.Tags[trail.TagTrail])
		assert.Positive(t, rec.Duration())
	}
	assert.False(t, meta.StartedAt().IsZero())
	assert.True(t, meta.FinishedAt().After(meta.StartedAt()))

	trailTag, ok := meta.Tag(trail.TagTrail)
	assert.True(t, ok)
	assert.Equal(t, "Ordered", trailTag)
}

func TestTrail_Execute_InsertedOrder(t *testing.T) {
	t.Parallel()

	tr, err := trail.From(testutil.AppendSteps("b"))
	require.NoError(t, err)
	require.NoError(t, tr.InsertBefore("b", testutil.AppendStep("a")))
	require.NoError(t, tr.InsertAfter("b", testutil.AppendStep("c")))

	fp := testutil.NewRecordingFootprint()
	_, err = tr.Execute(fp)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, fp.Calls)
	assert.Equal(t, []string{"a", "b", "c"}, fp.Metadata().Handlers())
}

func TestTrail_Execute_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tr, err := trail.From([]trail.Step{
		testutil.AppendStep("a"),
		testutil.FailingStep("b", boom),
		testutil.AppendStep("c"),
	})
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	out, err := tr.Execute(fp)
	require.Error(t, err)

	assert.ErrorIs(t, err, trail.ErrStepExecution)
	assert.ErrorIs(t, err, boom)

	var trailErr *trail.Error
	require.True(t, errors.As(err, &trailErr))
	assert.Equal(t, "b", trailErr.Step)
	assert.Equal(t, 1, trailErr.Index)
	assert.Contains(t, err.Error(), `step "b" (index 1)`)

	assert.Same(t, fp, out)
	assert.Equal(t, []string{"a", "b"}, fp.Calls, "c never runs")

	records := fp.Metadata().Records()
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].StepName)
	assert.True(t, records[0].Outcome.IsSuccess())
	assert.Equal(t, "b", records[1].StepName)
	assert.Equal(t, 1, records[1].Index)
	assert.True(t, records[1].Outcome.IsFailure())
	assert.Equal(t, "boom", records[1].Outcome.Reason())

	assert.Equal(t, []string{"a"}, fp.Metadata().Handlers())
	assert.False(t, fp.Metadata().FinishedAt().IsZero())
}

func TestTrail_Execute_PanicBecomesFailure(t *testing.T) {
	t.Parallel()

	tr, err := trail.From([]trail.Step{
		testutil.AppendStep("a"),
		testutil.PanickingStep("b", "kaboom"),
	})
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	_, err = tr.Execute(fp)

	assert.ErrorIs(t, err, trail.ErrStepExecution)
	assert.ErrorIs(t, err, trail.ErrStepPanicked)
	assert.Contains(t, err.Error(), "kaboom")

	records := fp.Metadata().Records()
	require.Len(t, records, 2)
	assert.True(t, records[1].Outcome.IsFailure())
}

func TestTrail_Execute_NilResultBecomesFailure(t *testing.T) {
	t.Parallel()

	nilStep := trail.Must(trail.NewFunc(func(trail.Footprint) (trail.Footprint, error) {
		return nil, nil
	}, trail.WithName("drop")))

	tr, err := trail.From([]trail.Step{nilStep, testutil.AppendStep("after")})
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	out, err := tr.Execute(fp)

	assert.ErrorIs(t, err, trail.ErrNilFootprint)
	assert.Same(t, fp, out)
	assert.Empty(t, fp.Calls)
}

func TestTrail_Execute_NewFootprintSharingLedger(t *testing.T) {
	t.Parallel()

	// A step may hand on a new footprint as long as the ledger travels with it.
	fork := trail.Must(trail.NewFunc(func(fp trail.Footprint) (trail.Footprint, error) {
		rec := fp.(*testutil.RecordingFootprint)
		next := &testutil.RecordingFootprint{Base: rec.Base, Value: rec.Value + 100}
		return next, nil
	}, trail.WithName("fork")))

	tr, err := trail.From([]trail.Step{fork, testutil.AppendStep("after")})
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	out, err := tr.Execute(fp)
	require.NoError(t, err)

	next, ok := out.(*testutil.RecordingFootprint)
	require.True(t, ok)
	assert.NotSame(t, fp, next)
	assert.Equal(t, 100, next.Value)
	assert.Equal(t, []string{"after"}, next.Calls)
	assert.Same(t, fp.Metadata(), next.Metadata())
	assert.Equal(t, []string{"fork", "after"}, fp.Metadata().Handlers())
}

func TestTrail_Execute_ContractViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fp   trail.Footprint
	}{
		{name: "nil footprint", fp: nil},
		{name: "nil metadata", fp: testutil.NilMetadataFootprint{}},
		{name: "unstable metadata", fp: testutil.UnstableFootprint{}},
		{name: "zero base", fp: &testutil.RecordingFootprint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := &testutil.Adder{N: 1}
			tr, err := trail.From([]trail.Step{trail.Must(trail.NewStateful(a))})
			require.NoError(t, err)

			_, err = tr.Execute(tt.fp)
			assert.ErrorIs(t, err, trail.ErrContractViolation)
			assert.Zero(t, a.Calls, "no step runs on a broken footprint")

			_, err = tr.DryRun(tt.fp)
			assert.ErrorIs(t, err, trail.ErrContractViolation)
		})
	}
}

func TestTrail_Execute_RunIDs(t *testing.T) {
	t.Parallel()

	t.Run("fresh per run", func(t *testing.T) {
		t.Parallel()

		tr := newTrail(t, "a")
		fp := testutil.NewRecordingFootprint()

		_, err := tr.Execute(fp)
		require.NoError(t, err)
		first := fp.Metadata().RunID()

		_, err = tr.Execute(fp)
		require.NoError(t, err)
		second := fp.Metadata().RunID()

		assert.NotEmpty(t, first)
		assert.NotEmpty(t, second)
		assert.NotEqual(t, first, second)
	})

	t.Run("custom generator", func(t *testing.T) {
		t.Parallel()

		n := 0
		tr, err := trail.From(testutil.AppendSteps("a"), trail.WithRunIDFunc(func() string {
			n++
			return "gen-" + strings.Repeat("x", n)
		}))
		require.NoError(t, err)

		fp := testutil.NewRecordingFootprint()
		_, err = tr.Execute(fp)
		require.NoError(t, err)
		assert.Equal(t, "gen-x", fp.Metadata().RunID())
	})
}

func TestTrail_Execute_ReexecutionAppendsRecords(t *testing.T) {
	t.Parallel()

	adder := &testutil.Adder{N: 5}
	tr, err := trail.From([]trail.Step{
		trail.Must(trail.NewStateful(adder)),
		testutil.AppendStep("mark"),
	}, trail.WithRunID("fixed"))
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	for range 2 {
		_, err = tr.Execute(fp)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, adder.Calls, "handler state persists across runs")
	assert.Equal(t, 10, fp.Value)
	assert.Equal(t, []string{"Adder", "mark", "Adder", "mark"}, fp.Metadata().Handlers())

	records := fp.Metadata().Records()
	require.Len(t, records, 4)
	assert.Equal(t, 0, records[2].Index)
}

func TestTrail_Execute_Tags(t *testing.T) {
	t.Parallel()

	tr, err := trail.From(testutil.AppendSteps("a"),
		trail.WithTrailName("Tagged"),
		trail.WithTag("env", "test"),
	)
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	_, err = tr.Execute(fp)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"env": "test", "trail": "Tagged"}, fp.Metadata().Tags())
	assert.Equal(t, "test", fp.Metadata().Records()[0].Tags["env"])
}

func TestTrail_Execute_Trace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(
		logging.WithOutput(&buf),
		logging.WithLevel(ports.LevelDebug),
		logging.WithTimestamp(false),
	)

	tr, err := trail.From(testutil.AppendSteps("a", "b"),
		trail.WithTrailName("Traced"),
		trail.WithRunID("r-1"),
		trail.WithLogger(logger),
	)
	require.NoError(t, err)
	assert.True(t, tr.Describe().Trace)

	_, err = tr.Execute(testutil.NewRecordingFootprint())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "trail starting")
	assert.Contains(t, out, "step starting trail=Traced run_id=r-1 step=a index=0")
	assert.Contains(t, out, "step finished trail=Traced run_id=r-1 step=b index=1")
	assert.Contains(t, out, "trail finished")
}

func TestTrail_Execute_SilentWithoutLogger(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a")
	assert.False(t, tr.Describe().Trace)

	_, err := tr.Execute(testutil.NewRecordingFootprint())
	require.NoError(t, err)
}

func TestTrail_DryRun_DoesNotCommit(t *testing.T) {
	t.Parallel()

	tr, err := trail.From(testutil.AppendSteps("a", "b"),
		trail.WithTrailName("Preview"),
		trail.WithRunID("first"),
	)
	require.NoError(t, err)

	fp := testutil.NewRecordingFootprint()
	_, err = tr.Execute(fp)
	require.NoError(t, err)

	before := fp.Metadata().Snapshot()

	preview, err := tr.DryRun(fp)
	require.NoError(t, err)

	assert.Equal(t, 2, preview.Len())
	assert.Equal(t, []string{"a", "b"}, preview.Names())
	assert.Equal(t, "Preview", preview.Trail)
	for i, rec := range preview.Records {
		assert.Equal(t, i, rec.Index)
		assert.Equal(t, trail.OutcomePlanned, rec.Outcome)
		assert.True(t, rec.Outcome.IsPlanned())
	}

	assert.Equal(t, before, fp.Metadata().Snapshot(), "metadata is untouched")
	assert.Equal(t, "first", fp.Metadata().RunID())
	assert.Equal(t, []string{"a", "b"}, fp.Calls, "step bodies are not invoked")
}

func TestTrail_DryRun_FreshFootprint(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "b", "c")
	fp := testutil.NewRecordingFootprint()

	preview, err := tr.DryRun(fp)
	require.NoError(t, err)

	assert.Equal(t, 3, preview.Len())
	assert.Empty(t, fp.Metadata().RunID())
	assert.Zero(t, fp.Metadata().Len())
	assert.Empty(t, fp.Calls)
}
