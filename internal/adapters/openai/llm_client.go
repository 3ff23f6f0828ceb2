package openai

import (
	"context"
	"fmt"

	"github.com/autou/mail-triage/internal/core"
	"github.com/autou/mail-triage/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the LLMClient interface using OpenAI
type OpenAIClient struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	maxBodySize int
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) *OpenAIClient {
	client := openai.NewClient(apiKey)

	return &OpenAIClient{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// ModelName identifies the underlying model for logging
func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

// ClassifyEmail classifies the email and generates a suggested reply
func (c *OpenAIClient) ClassifyEmail(ctx context.Context, input *core.EmailInput) (*core.ClassificationResult, error) {
	body := utils.TruncateText(input.Content, c.maxBodySize)
	if len(body) < len(input.Content) {
		c.logger.Debug("Email body truncated",
			zap.Int("original_size", len(input.Content)),
			zap.Int("truncated_size", len(body)))
	}

	prompt := core.BuildTriagePrompt(body)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email triage assistant. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: "json",
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	var llmResponse core.LLMResponse
	if err := utils.DecodeLLMJSON(resp.Choices[0].Message.Content, &llmResponse); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response as JSON: %w", err)
	}

	return llmResponse.ToResult()
}
