// Package llm generates natural-language answers from retrieved context.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the model produces no choices.
var ErrEmptyCompletion = errors.New("model returned no completion choices")

// Generator produces an answer to a prompt given supporting context text.
type Generator interface {
	Generate(ctx context.Context, model, systemPrompt, prompt, contextText string) (string, error)
}

// OpenAIGenerator implements Generator using the OpenAI chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator creates a generator backed by the given client.
func NewOpenAIGenerator(client *openai.Client) *OpenAIGenerator {
	return &OpenAIGenerator{client: client}
}

// Generate runs a single chat completion with the system prompt and a user
// message combining the retrieved articles with the original question.
func (g *OpenAIGenerator) Generate(ctx context.Context, model, systemPrompt, prompt, contextText string) (string, error) {
	userMessage := fmt.Sprintf(
		"Based on these news articles:\n\n%s\n\nAnswer this question: %s",
		contextText, prompt,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}
