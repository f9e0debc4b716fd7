package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient wraps the generative model used for card generation and,
// when OCR is enabled, image text extraction. Constructed once in main
// and shared read-only across requests; per-call model handles keep
// concurrent generations independent.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(apiKey, modelName string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, modelName: modelName}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

func (c *GeminiClient) newModel() *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)
	// Moderate temperature: variety over determinism, without
	// destabilizing the JSON structure.
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)
	return model
}

// GenerateText runs one chat-style completion and returns the raw text.
func (c *GeminiClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := c.newModel()
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty content")
	}
	return text, nil
}

// ExtractImageText performs OCR on an uploaded image via the multimodal
// model.
func (c *GeminiClient) ExtractImageText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image payload is empty")
	}

	format := strings.TrimPrefix(mimeType, "image/")
	prompt := "Transcribe all readable text from the provided image verbatim. Return plain text only, without markdown, headers, or explanations."

	resp, err := c.newModel().GenerateContent(ctx,
		genai.Text(prompt),
		genai.ImageData(format, image),
	)
	if err != nil {
		return "", fmt.Errorf("Gemini OCR error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty OCR text")
	}

	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
