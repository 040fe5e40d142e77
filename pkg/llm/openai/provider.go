package openai

import (
	"context"
	"errors"
	"fmt"

	"oxbow-be/pkg/llm"

	openaigo "github.com/sashabaranov/go-openai"
)

var ErrEmptyResponse = errors.New("openai: empty response")

// Provider talks to the OpenAI chat completions API or any compatible
// endpoint when baseURL is set.
type Provider struct {
	client *openaigo.Client
	model  string
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(apiKey, baseURL, model string) *Provider {
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{
		client: openaigo.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Temperature: 0.7, Model: p.model}, opts...)

	messages := make([]openaigo.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = openaigo.ChatMessageRoleAssistant
		}
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	req := openaigo.ChatCompletionRequest{
		Model:       options.Model,
		Messages:    messages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
	}
	if options.JSONMode {
		req.ResponseFormat = &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openaigo.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "content_filter" {
			return "", fmt.Errorf("%w: %s", llm.ErrContentPolicy, apiErr.Message)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openaigo.FinishReasonContentFilter {
		return "", llm.ErrContentPolicy
	}
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: %s", llm.ErrContentPolicy, choice.Message.Refusal)
	}
	if choice.Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return choice.Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: openaigo.ChatMessageRoleUser, Content: prompt}}, opts...)
}
