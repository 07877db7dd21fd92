package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("backend exploded")
	err := Wrap(CodeInferenceError, "inference failed", cause)

	require.EqualError(t, err, "inference failed: backend exploded")
	require.ErrorIs(t, err, cause)
	require.True(t, IsCode(err, CodeInferenceError))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: ""},
		{name: "app error", err: Wrap(CodeUnknownModel, "unknown", nil), want: CodeUnknownModel},
		{name: "wrapped app error", err: fmt.Errorf("outer: %w", Wrap(CodeCancelled, "stop", nil)), want: CodeCancelled},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
