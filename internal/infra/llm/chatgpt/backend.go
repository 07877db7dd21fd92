package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
)

const systemPrompt = "You are a summarization model. Reply with the summary only, written as plain prose in the language of the input."

// Backend serves chat models as summarizers. Length limits are passed as word counts in
// the prompt and as a completion token cap.
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

// Load verifies the model is reachable before it is handed out.
func (b *Backend) Load(ctx context.Context, id string) (summarizer.Model, error) {
	if err := b.client.RetrieveModel(ctx, id); err != nil {
		return nil, fmt.Errorf("probe chat model %s: %w", id, err)
	}
	return &model{client: b.client, id: id}, nil
}

type model struct {
	client *Client
	id     string
}

func (m *model) ID() string { return m.id }

func (m *model) Generate(ctx context.Context, text string, params summarizer.GenerationParameters) (string, error) {
	req := ChatCompletionRequest{
		Model: m.id,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(text, params)},
		},
		MaxTokens: params.MaxLength * 2,
	}
	if params.DoSample {
		req.Temperature = 0.7
	}
	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chatgpt returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(text string, params summarizer.GenerationParameters) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the text below in at most %d words", params.MaxLength)
	if params.MinLength > 0 {
		fmt.Fprintf(&sb, " and at least %d words", params.MinLength)
	}
	sb.WriteString(".\n\n")
	sb.WriteString(text)
	return sb.String()
}

var _ summarizer.Backend = (*Backend)(nil)
