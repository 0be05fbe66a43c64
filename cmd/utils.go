package cmd

import (
	"context"
	"flag"
	"log"

	"floorplan-backend/internal/config"
	"floorplan-backend/internal/inference"
	"floorplan-backend/internal/storage"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

func CreateObjectStore(cfg *config.Config) storage.ObjectStore {
	store, err := storage.NewS3ObjectStore(storage.S3ClientConfig{
		Endpoint:        cfg.S3EndpointURL,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}
	return store
}

func CreateBedrockClient(ctx context.Context, region string) *bedrockruntime.Client {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return bedrockruntime.NewFromConfig(awsCfg)
}

func CreateAnalyzer(ctx context.Context, cfg *config.Config) inference.Analyzer {
	switch cfg.AnalysisProvider {
	case config.ProviderOpenAI:
		return inference.NewOpenAIAnalyzer(cfg.OpenAIModel, cfg.MaxOutputTokens)
	default:
		return inference.NewClaudeAnalyzer(CreateBedrockClient(ctx, cfg.S3Region), cfg.AnalysisModelID, cfg.MaxOutputTokens)
	}
}

func CreateGenerator(ctx context.Context, cfg *config.Config) inference.ImageGenerator {
	if cfg.OutputFormat != config.FormatPNG {
		return nil
	}
	return inference.NewTitanGenerator(CreateBedrockClient(ctx, cfg.S3Region), cfg.GenerationModelID)
}
