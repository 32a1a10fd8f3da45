package orchestrator

import (
	"context"

	"mediagen/internal/domain"
	"mediagen/internal/providers"
	"mediagen/internal/storage"
)

// Synthesize converts in.Text to audio and persists it.
func (s *Service) Synthesize(ctx context.Context, in SpeechInput) (*domain.Artifact, error) {
	in.normalize()
	log := s.opLogger(domain.CapabilitySpeech, in.CorrelationID)
	if err := validateInput(&in); err != nil {
		return nil, fail(log, err, "speech request rejected")
	}
	synth, err := s.registry.Speech()
	if err != nil {
		return nil, fail(log, err, "speech provider unavailable")
	}
	req := domain.NewGenerationRequest(domain.CapabilitySpeech, in.CorrelationID, map[string]any{
		"text":  in.Text,
		"voice": in.Voice,
		"model": in.Model,
	})
	log.Info().Str("provider", synth.Name()).Str("voice", in.Voice).Int("chars", len([]rune(in.Text))).Msg("synthesizing speech")

	res, err := withRetry(ctx, s.retry, func(ctx context.Context) (*providers.SpeechResult, error) {
		return synth.Synthesize(ctx, providers.SpeechRequest{
			Text:          in.Text,
			Voice:         in.Voice,
			Model:         in.Model,
			CorrelationID: req.CorrelationID,
		})
	})
	if err != nil {
		return nil, fail(log, err, "speech synthesis failed")
	}

	metadata := map[string]string{"provider": synth.Name()}
	if in.Voice != "" {
		metadata["voice"] = in.Voice
	}
	artifact, err := s.persister.Persist(ctx, storage.ArtifactInput{
		Capability:  domain.CapabilitySpeech,
		Data:        res.Data,
		ContentType: res.ContentType,
		Ext:         "mp3",
		Hint:        in.Text,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fail(log, err, "persist speech failed")
	}
	log.Info().Str("file", artifact.FileName).Bool("mirrored", artifact.DurableURL != "").Msg("speech synthesized")
	return artifact, nil
}
