// Package llm provides single-prompt chat completion over an OpenAI-compatible API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"github.com/bull/repo-rag/internal/embedding"
)

// ErrEmptyResponse is returned when the model produced no choices.
var ErrEmptyResponse = errors.New("llm returned no choices")

// Chat completes prompts with one configured model.
type Chat struct {
	client *openai.Client
	model  string
}

// NewChat creates a completer for model using client.
func NewChat(client *openai.Client, model string) *Chat {
	return &Chat{client: client, model: model}
}

// Model returns the configured model name.
func (c *Chat) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the reply text.
// Rate limit errors are retried with exponential backoff.
func (c *Chat) Complete(ctx context.Context, prompt string) (string, error) {
	var reply string

	operation := func() error {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: openai.ChatModel(c.model),
		})
		if err != nil {
			if embedding.IsRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(ErrEmptyResponse)
		}
		reply = resp.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(embedding.NewBackOff(), ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
