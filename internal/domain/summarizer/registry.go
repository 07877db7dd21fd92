package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
	"github.com/yanqian/text-summarizer/pkg/metrics"
)

// Handle is a loaded model together with its catalog entry.
type Handle struct {
	Spec  ModelSpec
	Model Model

	inflight sync.WaitGroup
}

// Registry owns the process-wide active model.
type Registry struct {
	backend Backend
	catalog []ModelSpec
	index   map[string]ModelSpec
	metrics *metrics.Collector
	logger  *slog.Logger

	switchMu sync.Mutex
	mu       sync.RWMutex
	active   *Handle
}

// NewRegistry loads defaultID from the backend and makes it active.
func NewRegistry(ctx context.Context, backend Backend, defaultID string, collector *metrics.Collector, logger *slog.Logger) (*Registry, error) {
	catalog := backend.Models()
	if len(catalog) == 0 {
		return nil, errors.New("model catalog cannot be empty")
	}
	index := make(map[string]ModelSpec, len(catalog))
	for _, spec := range catalog {
		if _, dup := index[spec.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q", spec.ID)
		}
		index[spec.ID] = spec
	}
	if defaultID == "" {
		defaultID = catalog[0].ID
	}

	r := &Registry{
		backend: backend,
		catalog: catalog,
		index:   index,
		metrics: collector,
		logger:  logger.With("component", "summarizer.registry"),
	}
	handle, err := r.load(ctx, defaultID)
	if err != nil {
		return nil, err
	}
	r.active = handle
	r.logger.Info("default model loaded", "model", defaultID)
	return r, nil
}

// ListModels returns registered model ids in catalog order.
func (r *Registry) ListModels() []string {
	ids := make([]string, 0, len(r.catalog))
	for _, spec := range r.catalog {
		ids = append(ids, spec.ID)
	}
	return ids
}

// ActiveModel returns the id of the active model.
func (r *Registry) ActiveModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active.Spec.ID
}

// Acquire leases the active model. The lease must be released once inference is done;
// a model replaced by Switch is closed only after its last lease is released.
func (r *Registry) Acquire() (*Handle, func()) {
	r.mu.RLock()
	handle := r.active
	handle.inflight.Add(1)
	r.mu.RUnlock()

	var once sync.Once
	return handle, func() { once.Do(handle.inflight.Done) }
}

// Switch loads id and makes it active. On failure the previous model stays active.
func (r *Registry) Switch(ctx context.Context, id string) error {
	if _, ok := r.index[id]; !ok {
		r.metrics.ObserveSwitch("unknown")
		return apperrors.Wrap(apperrors.CodeUnknownModel, fmt.Sprintf("model %q is not registered", id), nil)
	}

	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	if r.ActiveModel() == id {
		r.metrics.ObserveSwitch("noop")
		return nil
	}

	handle, err := r.load(ctx, id)
	if err != nil {
		r.metrics.ObserveSwitch("failed")
		return err
	}

	r.mu.Lock()
	previous := r.active
	r.active = handle
	r.mu.Unlock()

	r.metrics.ObserveSwitch("ok")
	r.logger.Info("active model switched", "from", previous.Spec.ID, "to", id)
	go r.retire(previous)
	return nil
}

// Close releases the active model.
func (r *Registry) Close() error {
	r.mu.Lock()
	handle := r.active
	r.mu.Unlock()
	handle.inflight.Wait()
	return closeModel(handle.Model)
}

func (r *Registry) load(ctx context.Context, id string) (*Handle, error) {
	model, err := r.backend.Load(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.CodeCancelled, fmt.Sprintf("loading model %q cancelled", id), err)
		}
		return nil, apperrors.Wrap(apperrors.CodeLoadError, fmt.Sprintf("failed to load model %q", id), err)
	}
	if model == nil {
		return nil, apperrors.Wrap(apperrors.CodeLoadError, fmt.Sprintf("backend returned no model for %q", id), nil)
	}
	return &Handle{Spec: r.index[id], Model: model}, nil
}

func (r *Registry) retire(handle *Handle) {
	handle.inflight.Wait()
	if err := closeModel(handle.Model); err != nil {
		r.logger.Warn("closing retired model failed", "model", handle.Spec.ID, "error", err)
	}
}

func closeModel(model Model) error {
	if closer, ok := model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
