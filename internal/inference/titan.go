package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Generation calls run noticeably longer than analysis calls, so they get a
// wider deadline.
const generationTimeout = 5 * time.Minute

const maxTitanSeed = 2147483646

// TitanGenerator invokes a Titan-style text-to-image model on Bedrock,
// requesting exactly one image of fixed dimensions per call.
type TitanGenerator struct {
	client  InvokeModelAPI
	modelID string
	seed    func() int64
}

var _ ImageGenerator = (*TitanGenerator)(nil)

func NewTitanGenerator(client InvokeModelAPI, modelID string) *TitanGenerator {
	return &TitanGenerator{
		client:  client,
		modelID: modelID,
		seed:    func() int64 { return time.Now().UnixNano() % maxTitanSeed },
	}
}

type titanTextToImageParams struct {
	Text string `json:"text"`
}

type titanImageGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed"`
}

type titanImageRequest struct {
	TaskType              string                     `json:"taskType"`
	TextToImageParams     titanTextToImageParams     `json:"textToImageParams"`
	ImageGenerationConfig titanImageGenerationConfig `json:"imageGenerationConfig"`
}

type titanImageResponse struct {
	Images []string `json:"images"`
	Error  string   `json:"error"`
}

func (g *TitanGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(titanImageRequest{
		TaskType:          "TEXT_IMAGE",
		TextToImageParams: titanTextToImageParams{Text: prompt},
		ImageGenerationConfig: titanImageGenerationConfig{
			NumberOfImages: 1,
			Height:         1024,
			Width:          1024,
			CfgScale:       8.0,
			Seed:           g.seed(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal generation request: %v", ErrInference, err)
	}

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	resp, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generation model %s: %v", ErrInference, g.modelID, err)
	}

	var parsed titanImageResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse generation response: %v", ErrInference, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: generation model %s: %s", ErrInference, g.modelID, parsed.Error)
	}
	if len(parsed.Images) == 0 {
		return nil, fmt.Errorf("%w: generation model %s returned no images", ErrInference, g.modelID)
	}

	img, err := base64.StdEncoding.DecodeString(parsed.Images[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode generated image: %v", ErrInference, err)
	}
	return img, nil
}
