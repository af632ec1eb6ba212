package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ErrMissingOpenAIKey is returned verbatim to callers, so the text matches
// the documented output contract.
var ErrMissingOpenAIKey = errors.New("OPENAI_API_KEY environment variable not set")

// LLMClient is the completion surface the insight analyzer needs. The token
// count is the prompt plus completion usage reported by the API.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, int64, error)
}

// OpenAIClient wraps the official OpenAI Go SDK. A custom base URL points it
// at any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIClient creates a chat completion client for the given model
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client:    openai.NewClient(options...),
		model:     model,
		maxTokens: insightsMaxTokens,
	}
}

// Complete sends a single user prompt and returns the completion text and
// the total tokens used
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, int64, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", 0, err
	}
	if len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("no response choices from completion API")
	}

	tokens := resp.Usage.PromptTokens + resp.Usage.CompletionTokens
	return resp.Choices[0].Message.Content, tokens, nil
}
