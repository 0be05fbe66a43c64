package inference

import (
	"context"
	"errors"
)

var ErrInference = errors.New("inference error")

// FallbackLayoutDescription is returned when the analysis model responds
// without the expected content. It is phrased as a usable generation prompt
// so a degraded analysis never aborts an image-generation run.
const FallbackLayoutDescription = "a simple rectangular room with a single door and a single window"

// ImagePayload carries an image to a multimodal model.
type ImagePayload struct {
	Data      []byte
	MediaType string
}

// Analyzer produces text from an image plus an instruction prompt.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, img ImagePayload, prompt string) (string, error)
}

// ImageGenerator produces image bytes from a text prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
