package summarizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

var testCatalog = []ModelSpec{
	{ID: "facebook/bart-large-cnn", MaxInputTokens: 1024},
	{ID: "t5-small", MaxInputTokens: 512},
	{ID: "google/pegasus-xsum", MaxInputTokens: 512},
}

func newTestRegistry(t *testing.T, backend *stubBackend) *Registry {
	t.Helper()
	registry, err := NewRegistry(context.Background(), backend, "", nil, newTestLogger())
	require.NoError(t, err)
	return registry
}

func TestNewRegistry(t *testing.T) {
	t.Run("first catalog entry is the default", func(t *testing.T) {
		registry := newTestRegistry(t, newStubBackend(testCatalog...))
		require.Equal(t, "facebook/bart-large-cnn", registry.ActiveModel())
		require.Equal(t, []string{"facebook/bart-large-cnn", "t5-small", "google/pegasus-xsum"}, registry.ListModels())
	})

	t.Run("explicit default", func(t *testing.T) {
		registry, err := NewRegistry(context.Background(), newStubBackend(testCatalog...), "t5-small", nil, newTestLogger())
		require.NoError(t, err)
		require.Equal(t, "t5-small", registry.ActiveModel())
	})

	t.Run("empty catalog", func(t *testing.T) {
		_, err := NewRegistry(context.Background(), newStubBackend(), "", nil, newTestLogger())
		require.Error(t, err)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := NewRegistry(context.Background(), newStubBackend(testCatalog[0], testCatalog[0]), "", nil, newTestLogger())
		require.Error(t, err)
	})

	t.Run("default fails to load", func(t *testing.T) {
		backend := newStubBackend(testCatalog...)
		backend.loadErr["facebook/bart-large-cnn"] = errBackendDown
		_, err := NewRegistry(context.Background(), backend, "", nil, newTestLogger())
		require.Equal(t, apperrors.CodeLoadError, apperrors.CodeOf(err))
	})
}

func TestRegistrySwitch(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		loadErr    error
		wantCode   string
		wantActive string
	}{
		{name: "registered model", target: "t5-small", wantActive: "t5-small"},
		{name: "already active", target: "facebook/bart-large-cnn", wantActive: "facebook/bart-large-cnn"},
		{name: "unknown model", target: "gpt-neo", wantCode: apperrors.CodeUnknownModel, wantActive: "facebook/bart-large-cnn"},
		{name: "load failure", target: "google/pegasus-xsum", loadErr: errBackendDown, wantCode: apperrors.CodeLoadError, wantActive: "facebook/bart-large-cnn"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := newStubBackend(testCatalog...)
			if tt.loadErr != nil {
				backend.loadErr[tt.target] = tt.loadErr
			}
			registry := newTestRegistry(t, backend)

			err := registry.Switch(context.Background(), tt.target)
			if tt.wantCode == "" {
				require.NoError(t, err)
			} else {
				require.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			}
			require.Equal(t, tt.wantActive, registry.ActiveModel())
		})
	}
}

func TestRegistrySwitchNoopSkipsLoad(t *testing.T) {
	backend := newStubBackend(testCatalog...)
	registry := newTestRegistry(t, backend)

	require.NoError(t, registry.Switch(context.Background(), "facebook/bart-large-cnn"))
	require.EqualValues(t, 1, backend.loads.Load())
}

func TestRegistryCancelledLoad(t *testing.T) {
	backend := newStubBackend(testCatalog...)
	registry := newTestRegistry(t, backend)
	backend.loadErr["t5-small"] = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := registry.Switch(ctx, "t5-small")
	require.Equal(t, apperrors.CodeCancelled, apperrors.CodeOf(err))
	require.Equal(t, "facebook/bart-large-cnn", registry.ActiveModel())
}

func TestRegistryRetiresModelAfterLeases(t *testing.T) {
	backend := newStubBackend(testCatalog...)
	registry := newTestRegistry(t, backend)
	original := backend.models["facebook/bart-large-cnn"]

	handle, release := registry.Acquire()
	require.Equal(t, "facebook/bart-large-cnn", handle.Spec.ID)
	require.Same(t, original, handle.Model)

	require.NoError(t, registry.Switch(context.Background(), "t5-small"))
	require.Equal(t, "t5-small", registry.ActiveModel())

	// the leased model keeps serving until it is released
	time.Sleep(20 * time.Millisecond)
	require.False(t, original.closed.Load())

	release()
	release()
	require.Eventually(t, original.closed.Load, time.Second, 5*time.Millisecond)

	next, releaseNext := registry.Acquire()
	defer releaseNext()
	require.Equal(t, "t5-small", next.Spec.ID)
	require.Equal(t, 512, next.Spec.MaxInputTokens)
}

func TestRegistryClose(t *testing.T) {
	backend := newStubBackend(testCatalog...)
	registry := newTestRegistry(t, backend)

	require.NoError(t, registry.Close())
	require.True(t, backend.models["facebook/bart-large-cnn"].closed.Load())
}
