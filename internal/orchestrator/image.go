package orchestrator

import (
	"context"

	"mediagen/internal/domain"
	"mediagen/internal/providers"
	"mediagen/internal/providers/image"
	"mediagen/internal/storage"
)

const (
	defaultImageSize    = "1024x1024"
	defaultImageQuality = "standard"
)

// GenerateImage renders one image for in and persists it.
func (s *Service) GenerateImage(ctx context.Context, in ImageInput) (*domain.Artifact, error) {
	in.normalize()
	log := s.opLogger(domain.CapabilityImage, in.CorrelationID)
	if err := validateInput(&in); err != nil {
		return nil, fail(log, err, "image request rejected")
	}
	if in.Size == "" {
		in.Size = defaultImageSize
	}
	if in.Quality == "" {
		in.Quality = defaultImageQuality
	}
	if in.Style == "" {
		in.Style = image.StyleNatural
	}
	gen, err := s.registry.Image()
	if err != nil {
		return nil, fail(log, err, "image provider unavailable")
	}
	req := domain.NewGenerationRequest(domain.CapabilityImage, in.CorrelationID, map[string]any{
		"prompt":  in.Prompt,
		"size":    in.Size,
		"quality": in.Quality,
		"style":   in.Style,
	})
	log.Info().Str("provider", gen.Name()).Str("size", in.Size).Str("style", in.Style).Msg("generating image")

	res, err := withRetry(ctx, s.retry, func(ctx context.Context) (*providers.ImageResult, error) {
		return gen.GenerateImage(ctx, providers.ImageRequest{
			Prompt:        image.StylePrompt(in.Prompt, in.Style),
			Size:          in.Size,
			Quality:       in.Quality,
			CorrelationID: req.CorrelationID,
		})
	})
	if err != nil {
		return nil, fail(log, err, "image generation failed")
	}

	metadata := map[string]string{
		"prompt":  in.Prompt,
		"style":   in.Style,
		"size":    in.Size,
		"quality": in.Quality,
	}
	if res.RevisedPrompt != "" {
		metadata["revisedPrompt"] = res.RevisedPrompt
	}
	artifact, err := s.persister.Persist(ctx, storage.ArtifactInput{
		Capability:  domain.CapabilityImage,
		Data:        res.Data,
		ContentType: res.ContentType,
		Ext:         "png",
		Hint:        in.Prompt,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fail(log, err, "persist image failed")
	}
	log.Info().Str("file", artifact.FileName).Bool("mirrored", artifact.DurableURL != "").Msg("image generated")
	return artifact, nil
}
