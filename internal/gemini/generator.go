package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/genai"
)

// textGenerator is the LLM call surface the analyzer depends on. Tests swap
// in a fake; production uses the Gemini API.
type textGenerator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func newGeminiGenerator(ctx context.Context, apiKey, model string) (*geminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{client: client, model: model}, nil
}

// generate calls the model, retrying transient API failures with exponential
// backoff. Safety blocks and empty responses are permanent.
func (g *geminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	op := func() (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}

		text, err := responseText(resp)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		return text, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(4),
	)
}

// responseText extracts the concatenated text parts of the first candidate.
// Returns ErrContentBlocked for safety-stopped candidates and
// ErrEmptyResponse when no text came back.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
