package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const anthropicVersion = "bedrock-2023-05-31"

const analysisTimeout = 60 * time.Second

type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// ClaudeAnalyzer invokes an anthropic-messages model on Bedrock with one
// image block and one text block.
type ClaudeAnalyzer struct {
	client    InvokeModelAPI
	modelID   string
	maxTokens int
}

var _ Analyzer = (*ClaudeAnalyzer)(nil)

func NewClaudeAnalyzer(client InvokeModelAPI, modelID string, maxTokens int) *ClaudeAnalyzer {
	return &ClaudeAnalyzer{client: client, modelID: modelID, maxTokens: maxTokens}
}

type claudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeContentBlock struct {
	Type   string             `json:"type"`
	Source *claudeImageSource `json:"source,omitempty"`
	Text   string             `json:"text,omitempty"`
}

type claudeMessage struct {
	Role    string               `json:"role"`
	Content []claudeContentBlock `json:"content"`
}

type claudeRequest struct {
	Messages         []claudeMessage `json:"messages"`
	MaxTokens        int             `json:"max_tokens"`
	AnthropicVersion string          `json:"anthropic_version"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
}

func (a *ClaudeAnalyzer) AnalyzeImage(ctx context.Context, img ImagePayload, prompt string) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Messages: []claudeMessage{{
			Role: "user",
			Content: []claudeContentBlock{
				{
					Type: "image",
					Source: &claudeImageSource{
						Type:      "base64",
						MediaType: img.MediaType,
						Data:      base64.StdEncoding.EncodeToString(img.Data),
					},
				},
				{Type: "text", Text: prompt},
			},
		}},
		MaxTokens:        a.maxTokens,
		AnthropicVersion: anthropicVersion,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal analysis request: %v", ErrInference, err)
	}

	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	resp, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: analysis model %s: %v", ErrInference, a.modelID, err)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse analysis response: %v", ErrInference, err)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	slog.Warn("analysis response had no text content, using fallback", "model", a.modelID)
	return FallbackLayoutDescription, nil
}
