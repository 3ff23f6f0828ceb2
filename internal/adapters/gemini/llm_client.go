package gemini

import (
	"context"
	"fmt"

	"github.com/autou/mail-triage/internal/core"
	"github.com/autou/mail-triage/internal/utils"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client      *genai.Client
	model       *genai.GenerativeModel
	modelName   string
	maxBodySize int
	logger      *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:      client,
		model:       model,
		modelName:   modelName,
		maxBodySize: maxBodySize,
		logger:      logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ModelName identifies the underlying model for logging
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// ClassifyEmail classifies the email and generates a suggested reply
func (c *GeminiClient) ClassifyEmail(ctx context.Context, input *core.EmailInput) (*core.ClassificationResult, error) {
	body := utils.TruncateText(input.Content, c.maxBodySize)
	if len(body) < len(input.Content) {
		c.logger.Debug("Email body truncated",
			zap.Int("original_size", len(input.Content)),
			zap.Int("truncated_size", len(body)))
	}

	prompt := core.BuildTriagePrompt(body)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var llmResponse core.LLMResponse
	if err := utils.DecodeLLMJSON(responseText, &llmResponse); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response as JSON: %w", err)
	}

	return llmResponse.ToResult()
}
