package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *UserError
		expected string
	}{
		{
			name:     "simple message",
			err:      &UserError{Code: ErrCodeConfigNotFound, Message: "settings file not found"},
			expected: "settings file not found",
		},
		{
			name:     "message with context",
			err:      &UserError{Code: ErrCodeConfigNotFound, Message: "settings file not found", Context: "traccia.yaml"},
			expected: "settings file not found (at traccia.yaml)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUserError_Format(t *testing.T) {
	t.Parallel()

	err := &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "invalid YAML syntax",
		Context:    "traccia.yaml (line 3)",
		Suggestion: "Check the YAML syntax.",
		Underlying: errors.New("yaml: line 3: mapping values are not allowed"),
	}

	expected := "[CONFIG_PARSE] invalid YAML syntax\n" +
		"  Location: traccia.yaml (line 3)\n" +
		"  Suggestion: Check the YAML syntax.\n" +
		"  Cause: yaml: line 3: mapping values are not allowed"
	assert.Equal(t, expected, err.Format())
}

func TestUserError_Is(t *testing.T) {
	t.Parallel()

	err := NewConfigNotFoundError("traccia.yaml")

	assert.ErrorIs(t, err, &UserError{Code: ErrCodeConfigNotFound})
	assert.NotErrorIs(t, err, &UserError{Code: ErrCodeConfigParse})
	assert.True(t, IsUserError(err, ErrCodeConfigNotFound))
	assert.False(t, IsUserError(errors.New("plain"), ErrCodeConfigNotFound))
}

func TestErrorList(t *testing.T) {
	t.Parallel()

	var list ErrorList
	assert.NoError(t, list.AsError())

	list.AddInvalid("name", "must not be blank", "Set a name.")
	require.Error(t, list.AsError())
	assert.Equal(t, "name: must not be blank (at name)", list.Error())

	list.AddInvalid("logging.format", `unknown format "xml"`, "Use text or json.")
	assert.Equal(t, 2, list.Len())
	assert.Contains(t, list.Error(), "2 errors occurred")
	assert.Contains(t, list.Format(), "--- Error 2 ---")

	errs := list.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "logging.format", errs[1].Context)
	errs[0] = nil
	assert.NotNil(t, list.Errors()[0])

	err := list.AsError()
	assert.True(t, IsUserError(err, ErrCodeConfigInvalid))
	assert.ErrorIs(t, err, &UserError{Code: ErrCodeConfigInvalid})
	require.NotNil(t, GetUserError(err))
	assert.Equal(t, "name", GetUserError(err).Context)
}

func TestLineContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		err      error
		expected string
	}{
		{name: "no error", path: "a.yaml", err: nil, expected: "a.yaml"},
		{name: "no line", path: "a.yaml", err: errors.New("boom"), expected: "a.yaml"},
		{name: "with line", path: "a.yaml", err: errors.New("yaml: line 7: bad"), expected: "a.yaml (line 7)"},
		{name: "without path", path: "", err: errors.New("line 2: bad"), expected: "line 2"},
		{name: "line without number", path: "a.yaml", err: errors.New("line x"), expected: "a.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, lineContext(tt.path, tt.err))
		})
	}
}
