package huggingface

import (
	"context"
	"fmt"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
)

// Backend serves catalog models through the Inference API summarization task.
type Backend struct {
	client  *Client
	catalog []summarizer.ModelSpec
}

// NewBackend constructs the backend over the given catalog.
func NewBackend(client *Client, catalog []summarizer.ModelSpec) *Backend {
	return &Backend{client: client, catalog: catalog}
}

func (b *Backend) Models() []summarizer.ModelSpec {
	out := make([]summarizer.ModelSpec, len(b.catalog))
	copy(out, b.catalog)
	return out
}

// Load probes the deployment so a switch to an unreachable model fails up front.
func (b *Backend) Load(ctx context.Context, id string) (summarizer.Model, error) {
	status, err := b.client.Status(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("probe model %s: %w", id, err)
	}
	if status.State == "" {
		return nil, fmt.Errorf("model %s is not deployed", id)
	}
	return &model{client: b.client, id: id}, nil
}

type model struct {
	client *Client
	id     string
}

func (m *model) ID() string { return m.id }

func (m *model) Generate(ctx context.Context, text string, params summarizer.GenerationParameters) (string, error) {
	return m.client.Summarize(ctx, m.id, text, Parameters{
		MaxLength: params.MaxLength,
		MinLength: params.MinLength,
		NumBeams:  params.NumBeams,
		DoSample:  params.DoSample,
	})
}

var _ summarizer.Backend = (*Backend)(nil)
