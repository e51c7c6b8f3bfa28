package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/criticdev/gh-critic/internal/core"
)

// ErrModelAPI is returned when the AI endpoint rejects the request,
// is unreachable, or returns a malformed response. No retry happens;
// the failure surfaces immediately so the user can re-invoke the tool.
var ErrModelAPI = errors.New("model API request failed")

// Generator produces a review by sending the rendered prompt to an
// OpenAI-compatible chat completion endpoint.
type Generator struct {
	client *openai.Client
	prompt *PromptTemplate
	model  string
	logger *slog.Logger
}

// NewGenerator creates a Generator for the given endpoint. baseURL
// points at an OpenAI-compatible API; apiKey may be a placeholder for
// proxies that do not enforce auth.
func NewGenerator(baseURL, apiKey, model string, prompt *PromptTemplate, logger *slog.Logger) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")

	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		prompt: prompt,
		model:  model,
		logger: logger,
	}
}

// Model returns the model identifier reviews are generated with.
func (g *Generator) Model() string {
	return g.model
}

// GenerateReview renders the prompt for the PR and performs a single
// synchronous chat completion call, blocking until the endpoint
// responds. The returned text is free-form markdown.
func (g *Generator) GenerateReview(ctx context.Context, ref core.PullRequestRef, data *core.PullRequestData) (string, error) {
	system, user, err := g.prompt.Render(ref, data)
	if err != nil {
		return "", err
	}

	g.logger.Info("sending pull request for review", "pr", ref.String(), "model", g.model)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelAPI, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrModelAPI)
	}
	review := resp.Choices[0].Message.Content
	if strings.TrimSpace(review) == "" {
		return "", fmt.Errorf("%w: response content is empty", ErrModelAPI)
	}

	g.logger.Debug("review generated", "pr", ref.String(), "chars", len(review))
	return review, nil
}
