package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nnarayan/naru-server/internal/session"
)

// Fixed generation parameters for every completion call.
const (
	completionTemperature = 0.7
	completionMaxTokens   = 500
)

// GroqCompleter calls an OpenAI-compatible chat completion endpoint. Groq's
// API speaks this protocol, so the official client works against it with a
// base URL override.
type GroqCompleter struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewGroqCompleter builds a completer for the given credential, endpoint
// and model.
func NewGroqCompleter(apiKey, baseURL, model string, timeout time.Duration) *GroqCompleter {
	return &GroqCompleter{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		model:   model,
		timeout: timeout,
	}
}

// Complete implements Completer. Each call is attempted exactly once.
func (g *GroqCompleter) Complete(ctx context.Context, turns []session.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case session.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Content))
		case session.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		default:
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(completionTemperature),
		MaxTokens:   openai.Int(completionMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}
