package trail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/traccia/internal/domain/trail"
	"github.com/felixgeelhaar/traccia/internal/testutil"
)

func newTrail(t *testing.T, names ...string) *trail.Trail {
	t.Helper()

	tr, err := trail.From(testutil.AppendSteps(names...))
	require.NoError(t, err)
	return tr
}

func TestTrail_Empty(t *testing.T) {
	t.Parallel()

	tr := trail.New()

	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Names())
	assert.Equal(t, trail.DefaultName, tr.Name())
	assert.Empty(t, tr.Validate())
}

func TestTrail_ZeroValue(t *testing.T) {
	t.Parallel()

	var tr trail.Trail
	assert.Equal(t, trail.DefaultName, tr.Name())

	require.NoError(t, tr.Add(testutil.AppendSteps("a", "b")...))
	require.NoError(t, tr.InsertBefore("a", testutil.AppendStep("first")))
	assert.Equal(t, []string{"first", "a", "b"}, tr.Names())
	assert.Empty(t, tr.Validate())

	fp := testutil.NewRecordingFootprint()
	_, err := tr.Execute(fp)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "a", "b"}, fp.Metadata().Handlers())
	assert.NotEmpty(t, fp.Metadata().RunID())

	trailTag, ok := fp.Metadata().Tag(trail.TagTrail)
	require.True(t, ok)
	assert.Equal(t, trail.DefaultName, trailTag)
}

func TestTrail_From(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "b", "c")

	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, []string{"a", "b", "c"}, tr.Names())

	_, err := trail.From(testutil.AppendSteps("a", "a"))
	assert.ErrorIs(t, err, trail.ErrDuplicateName)
}

func TestTrail_Add(t *testing.T) {
	t.Parallel()

	tr := trail.New()
	require.NoError(t, tr.Add(testutil.AppendStep("a")))
	require.NoError(t, tr.Add(testutil.AppendSteps("b", "c")...))

	assert.Equal(t, []string{"a", "b", "c"}, tr.Names())
}

func TestTrail_Add_DuplicateLeavesTrailUnchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		steps []trail.Step
	}{
		{name: "existing name", steps: testutil.AppendSteps("b")},
		{name: "existing name later in batch", steps: testutil.AppendSteps("d", "a")},
		{name: "repeated within batch", steps: testutil.AppendSteps("d", "d")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := newTrail(t, "a", "b", "c")
			err := tr.Add(tt.steps...)

			assert.ErrorIs(t, err, trail.ErrDuplicateName)
			assert.Equal(t, []string{"a", "b", "c"}, tr.Names())
			assert.False(t, tr.Contains("d"))
			assert.Empty(t, tr.Validate())
		})
	}
}

func TestTrail_Add_NilStep(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a")
	err := tr.Add(testutil.AppendStep("b"), nil)

	assert.ErrorIs(t, err, trail.ErrInvalidStep)
	assert.Equal(t, []string{"a"}, tr.Names())
}

func TestTrail_InsertBefore(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "c")
	require.NoError(t, tr.InsertBefore("c", testutil.AppendStep("b")))
	assert.Equal(t, []string{"a", "b", "c"}, tr.Names())

	require.NoError(t, tr.InsertBefore("a", testutil.AppendSteps("x", "y")...))
	assert.Equal(t, []string{"x", "y", "a", "b", "c"}, tr.Names())
	assert.Empty(t, tr.Validate())
}

func TestTrail_InsertAfter(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "c")
	require.NoError(t, tr.InsertAfter("a", testutil.AppendStep("b")))
	assert.Equal(t, []string{"a", "b", "c"}, tr.Names())

	require.NoError(t, tr.InsertAfter("c", testutil.AppendSteps("d", "e")...))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, tr.Names())

	idx, err := tr.IndexOf("e")
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
}

func TestTrail_Insert_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		op      func(tr *trail.Trail) error
		wantErr error
	}{
		{
			name:    "before missing target",
			op:      func(tr *trail.Trail) error { return tr.InsertBefore("z", testutil.AppendStep("x")) },
			wantErr: trail.ErrNotFound,
		},
		{
			name:    "after missing target",
			op:      func(tr *trail.Trail) error { return tr.InsertAfter("z", testutil.AppendStep("x")) },
			wantErr: trail.ErrNotFound,
		},
		{
			name:    "before collides with target",
			op:      func(tr *trail.Trail) error { return tr.InsertBefore("c", testutil.AppendStep("c")) },
			wantErr: trail.ErrDuplicateName,
		},
		{
			name:    "after collides with other step",
			op:      func(tr *trail.Trail) error { return tr.InsertAfter("a", testutil.AppendStep("c")) },
			wantErr: trail.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := newTrail(t, "a", "c")
			err := tt.op(tr)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{"a", "c"}, tr.Names())
		})
	}
}

func TestTrail_Replace_PreservesPosition(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "b", "c")
	require.NoError(t, tr.Replace("b", testutil.AppendStep("d")))

	assert.Equal(t, []string{"a", "d", "c"}, tr.Names())
	assert.False(t, tr.Contains("b"))
	assert.Empty(t, tr.Validate())
}

func TestTrail_Replace_Variants(t *testing.T) {
	t.Parallel()

	t.Run("same name", func(t *testing.T) {
		t.Parallel()
		tr := newTrail(t, "a", "b", "c")
		replacement := testutil.AppendStep("b")

		require.NoError(t, tr.Replace("b", replacement))

		got, err := tr.Step("b")
		require.NoError(t, err)
		assert.Same(t, replacement, got)
		assert.Equal(t, []string{"a", "b", "c"}, tr.Names())
	})

	t.Run("several steps", func(t *testing.T) {
		t.Parallel()
		tr := newTrail(t, "a", "b", "c")

		require.NoError(t, tr.Replace("b", testutil.AppendSteps("x", "y")...))
		assert.Equal(t, []string{"a", "x", "y", "c"}, tr.Names())
		assert.Empty(t, tr.Validate())
	})

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()
		tr := newTrail(t, "a", "c")

		err := tr.Replace("z", testutil.AppendStep("x"))
		assert.ErrorIs(t, err, trail.ErrNotFound)
		assert.Equal(t, []string{"a", "c"}, tr.Names())
	})

	t.Run("collides with other step", func(t *testing.T) {
		t.Parallel()
		tr := newTrail(t, "a", "b", "c")

		err := tr.Replace("b", testutil.AppendStep("c"))
		assert.ErrorIs(t, err, trail.ErrDuplicateName)
		assert.Equal(t, []string{"a", "b", "c"}, tr.Names())
	})

	t.Run("no replacement", func(t *testing.T) {
		t.Parallel()
		tr := newTrail(t, "a", "b")

		err := tr.Replace("b")
		assert.ErrorIs(t, err, trail.ErrInvalidStep)
		assert.Equal(t, []string{"a", "b"}, tr.Names())
	})
}

func TestTrail_Remove(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "b", "c")
	require.NoError(t, tr.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, tr.Names())

	idx, err := tr.IndexOf("c")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	require.NoError(t, tr.Add(testutil.AppendStep("b")))
	assert.Equal(t, []string{"a", "c", "b"}, tr.Names())
	assert.Empty(t, tr.Validate())
}

func TestTrail_Remove_NotFound(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "c")
	err := tr.Remove("z")

	assert.ErrorIs(t, err, trail.ErrNotFound)
	assert.Equal(t, []string{"a", "c"}, tr.Names())
}

func TestTrail_Remove_LastStep(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a")
	require.NoError(t, tr.Remove("a"))

	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Validate())

	out, err := tr.Execute(testutil.NewRecordingFootprint())
	require.NoError(t, err)
	assert.Empty(t, out.Metadata().Records())
}

func TestTrail_Lookup(t *testing.T) {
	t.Parallel()

	tr := newTrail(t, "a", "b")

	step, err := tr.Step("b")
	require.NoError(t, err)
	assert.Equal(t, "b", step.Name())

	_, err = tr.Step("z")
	assert.ErrorIs(t, err, trail.ErrNotFound)

	_, err = tr.IndexOf("z")
	assert.ErrorIs(t, err, trail.ErrNotFound)

	steps := tr.Steps()
	steps[0] = nil
	assert.Empty(t, tr.Validate(), "Steps returns a copy")
}

func TestTrail_Describe(t *testing.T) {
	t.Parallel()

	tr, err := trail.From(testutil.AppendSteps("strip", "lower"),
		trail.WithTrailName("TextCleaning"),
		trail.WithTag("example", "text-cleaning"),
		trail.WithTags(map[string]string{"env": "dev"}),
	)
	require.NoError(t, err)

	desc := tr.Describe()
	assert.Equal(t, "TextCleaning", desc.Name)
	assert.Equal(t, 2, desc.StepCount)
	assert.Equal(t, []string{"strip", "lower"}, desc.Steps)
	assert.Equal(t, map[string]string{"example": "text-cleaning", "env": "dev"}, desc.DefaultTags)
	assert.False(t, desc.Trace)

	expected := "Trail: TextCleaning\n" +
		"  steps (2):\n" +
		"    1. strip\n" +
		"    2. lower\n" +
		"  default tags:\n" +
		"    - env = dev\n" +
		"    - example = text-cleaning\n" +
		"  trace: false"
	assert.Equal(t, expected, tr.Pretty())
}
