// Package gemini wraps the Gemini text API for single-label classification.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model answers without a label.
var ErrEmptyResponse = errors.New("empty response from model")

// Client sends one utterance per request and constrains the answer to a
// fixed label set.
type Client struct {
	client       *genai.Client
	model        string
	systemPrompt string
	logger       *zap.Logger
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		client:       client,
		model:        model,
		systemPrompt: DefaultSystemPrompt,
		logger:       logger,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Label asks the model to pick one of labels for text.
func (c *Client) Label(ctx context.Context, text string, labels []string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: c.systemPrompt},
			},
		},
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "text/x.enum",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeString,
			Enum: labels,
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(resp.Text()))
	if label == "" {
		return "", ErrEmptyResponse
	}
	c.logger.Debug("📥 Received label from Gemini", zap.String("text", text), zap.String("label", label))
	return label, nil
}
