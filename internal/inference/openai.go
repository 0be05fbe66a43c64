package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
)

// OpenAIAnalyzer is the alternate analysis backend, sending the image as a
// base64 data URL through the chat completions API.
type OpenAIAnalyzer struct {
	client    openai.Client
	model     string
	maxTokens int
}

var _ Analyzer = (*OpenAIAnalyzer)(nil)

func NewOpenAIAnalyzer(model string, maxTokens int) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client:    openai.NewClient(),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (a *OpenAIAnalyzer) AnalyzeImage(ctx context.Context, img ImagePayload, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	dataURL := fmt.Sprintf("data:%s;base64,%s", img.MediaType, base64.StdEncoding.EncodeToString(img.Data))

	res, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
				openai.TextContentPart(prompt),
			}),
		},
		Model:               a.model,
		MaxCompletionTokens: openai.Int(int64(a.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: analysis model %s: %v", ErrInference, a.model, err)
	}

	if len(res.Choices) == 0 || res.Choices[0].Message.Content == "" {
		slog.Warn("analysis response had no content, using fallback", "model", a.model)
		return FallbackLayoutDescription, nil
	}

	return res.Choices[0].Message.Content, nil
}
