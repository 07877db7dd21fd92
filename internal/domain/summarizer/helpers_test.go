package summarizer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

// wordEstimator counts whitespace separated fields.
type wordEstimator struct{}

func (wordEstimator) Count(text string) int {
	return len(strings.Fields(text))
}

type stubModel struct {
	id       string
	calls    atomic.Int32
	closed   atomic.Bool
	generate func(ctx context.Context, text string, params GenerationParameters) (string, error)
}

func (m *stubModel) ID() string { return m.id }

func (m *stubModel) Generate(ctx context.Context, text string, params GenerationParameters) (string, error) {
	m.calls.Add(1)
	if m.generate != nil {
		return m.generate(ctx, text, params)
	}
	return firstWord(text) + ".", nil
}

func (m *stubModel) Close() error {
	m.closed.Store(true)
	return nil
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(fields[0], ".!?")
}

type stubBackend struct {
	specs   []ModelSpec
	models  map[string]*stubModel
	loadErr map[string]error
	loads   atomic.Int32
}

func newStubBackend(specs ...ModelSpec) *stubBackend {
	b := &stubBackend{
		specs:   specs,
		models:  make(map[string]*stubModel, len(specs)),
		loadErr: make(map[string]error),
	}
	for _, spec := range specs {
		b.models[spec.ID] = &stubModel{id: spec.ID}
	}
	return b
}

func (b *stubBackend) Models() []ModelSpec { return b.specs }

func (b *stubBackend) Load(_ context.Context, id string) (Model, error) {
	b.loads.Add(1)
	if err := b.loadErr[id]; err != nil {
		return nil, err
	}
	return b.models[id], nil
}

var errBackendDown = errors.New("backend down")

// memoryCache is a map-backed Cache for engine tests.
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
