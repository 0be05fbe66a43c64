package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

var ErrConfiguration = errors.New("invalid configuration")

const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatPNG  = "png"
)

const (
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
)

// Config holds every setting the pipeline processes read from the
// environment. Model identifiers and the output bucket are validated up
// front so a misconfigured process fails before any network call.
type Config struct {
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`

	AnalysisProvider  string `env:"ANALYSIS_PROVIDER" envDefault:"bedrock"`
	AnalysisModelID   string `env:"ANALYSIS_MODEL_ID,notEmpty,required"`
	GenerationModelID string `env:"GENERATION_MODEL_ID"`
	OpenAIModel       string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	MaxOutputTokens   int    `env:"MAX_OUTPUT_TOKENS" envDefault:"4096"`

	OutputFormat string `env:"OUTPUT_FORMAT" envDefault:"png"`
	OutputBucket string `env:"OUTPUT_BUCKET"`

	DatabaseURL       string `env:"DATABASE_URL"`
	RabbitMQURL       string `env:"RABBITMQ_URL"`
	WorkerConcurrency int    `env:"CONCURRENCY" envDefault:"1"`
	APIPort           string `env:"API_PORT" envDefault:"8001"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.OutputFormat {
	case FormatJSON, FormatHTML, FormatPNG:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrConfiguration, c.OutputFormat)
	}

	switch c.AnalysisProvider {
	case ProviderBedrock, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown analysis provider %q", ErrConfiguration, c.AnalysisProvider)
	}

	if c.OutputFormat != FormatJSON && c.OutputBucket == "" {
		return fmt.Errorf("%w: OUTPUT_BUCKET is required for %s output", ErrConfiguration, c.OutputFormat)
	}
	if c.OutputFormat == FormatPNG && c.GenerationModelID == "" {
		return fmt.Errorf("%w: GENERATION_MODEL_ID is required for png output", ErrConfiguration)
	}
	return nil
}
