package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"mediagen/internal/infra"
	"mediagen/internal/providers"
	"mediagen/internal/providers/elevenlabs"
	"mediagen/internal/providers/openai"
	"mediagen/internal/providers/polly"
	"mediagen/internal/providers/replicate"
	"mediagen/internal/providers/twilio"
	"mediagen/internal/storage"
)

// buildRegistry resolves every capability once from cfg. A missing credential
// leaves its capability disabled.
func buildRegistry(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*providers.Registry, storage.Mirror, error) {
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	var set providers.Set

	if cfg.OpenAIEnabled() {
		client, err := openai.NewClient(openai.Options{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			ImageModel:     cfg.OpenAIImageModel,
			ChatModel:      cfg.OpenAIChatModel,
			HTTPClient:     httpClient,
			Logger:         logger,
			RequestTimeout: cfg.ProviderTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai: %w", err)
		}
		set.Image = client
		set.Chat = client
	}

	if cfg.ReplicateEnabled() {
		client, err := replicate.NewClient(replicate.Options{
			APIToken:       cfg.ReplicateAPIToken,
			BaseURL:        cfg.ReplicateBaseURL,
			ModelVersion:   cfg.ReplicateVideoVersion,
			HTTPClient:     httpClient,
			Logger:         logger,
			RequestTimeout: cfg.ProviderTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("replicate: %w", err)
		}
		set.Video = client
	}

	var awsCfg *aws.Config
	if cfg.AWSEnabled() {
		loaded, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
			awsconfig.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("aws config: %w", err)
		}
		awsCfg = &loaded
	}

	switch {
	case cfg.ElevenLabsEnabled():
		client, err := elevenlabs.NewClient(elevenlabs.Options{
			APIKey:         cfg.ElevenLabsKey,
			BaseURL:        cfg.ElevenLabsBaseURL,
			Model:          cfg.ElevenLabsModel,
			HTTPClient:     httpClient,
			Logger:         logger,
			RequestTimeout: cfg.ProviderTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("elevenlabs: %w", err)
		}
		set.Speech = client
	case awsCfg != nil:
		set.Speech = polly.NewFromConfig(*awsCfg, logger)
	}

	if cfg.TwilioEnabled() {
		client, err := twilio.NewClient(twilio.Options{
			AccountSID:     cfg.TwilioSID,
			AuthToken:      cfg.TwilioToken,
			FromNumber:     cfg.TwilioPhone,
			BaseURL:        cfg.TwilioBaseURL,
			HTTPClient:     httpClient,
			Logger:         logger,
			RequestTimeout: cfg.ProviderTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("twilio: %w", err)
		}
		set.Call = client
	}

	var mirror storage.Mirror
	if awsCfg != nil && cfg.S3Enabled() {
		mirror = storage.NewS3MirrorFromConfig(*awsCfg, cfg.AWSBucketName)
	}

	services := map[string]bool{
		"openai":     cfg.OpenAIEnabled(),
		"elevenlabs": cfg.ElevenLabsEnabled(),
		"polly":      awsCfg != nil,
		"replicate":  cfg.ReplicateEnabled(),
		"twilio":     cfg.TwilioEnabled(),
		"s3":         mirror != nil,
	}
	return providers.NewRegistry(set, services), mirror, nil
}
