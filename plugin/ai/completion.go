package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// CompletionService is the answer generation interface consumed by the
// chat-turn handler. The retrieval core ranks evidence; this service turns
// the ranked evidence into a natural-language answer.
type CompletionService interface {
	// Complete performs synchronous chat completion.
	Complete(ctx context.Context, messages []Message) (string, int, error)
}

type completionService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(cfg *CompletionConfig) (CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("completion API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &completionService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete returns the answer text and the total tokens used.
func (s *completionService) Complete(ctx context.Context, messages []Message) (string, int, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, message := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    chatMessages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", 0, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, errors.New("empty completion response")
	}

	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
}
