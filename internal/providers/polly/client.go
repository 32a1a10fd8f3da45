package polly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"mediagen/internal/domain"
	"mediagen/internal/infra"
	"mediagen/internal/providers"
)

const providerName = "polly"

// Voices maps the public voice names to Polly voice ids.
var Voices = map[string]types.VoiceId{
	"default":      types.VoiceIdJoanna,
	"female":       types.VoiceIdJoanna,
	"male":         types.VoiceIdMatthew,
	"professional": types.VoiceIdSalli,
}

// VoiceID resolves a voice alias. Empty selects Joanna; other names are
// passed through as Polly voice ids.
func VoiceID(name string) types.VoiceId {
	name = strings.TrimSpace(name)
	if name == "" {
		return Voices["default"]
	}
	if id, ok := Voices[strings.ToLower(name)]; ok {
		return id
	}
	return types.VoiceId(name)
}

// API is the subset of the Polly client used by the synthesizer.
type API interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Synthesizer is the fallback speech adapter backed by Amazon Polly.
type Synthesizer struct {
	api    API
	logger *infra.Logger
}

// New wraps a Polly API client.
func New(api API, logger *infra.Logger) *Synthesizer {
	return &Synthesizer{api: api, logger: infra.LoggerOrDiscard(logger)}
}

// NewFromConfig builds the synthesizer from a loaded AWS config. The SDK
// retryer is disabled; retries are decided by the caller.
func NewFromConfig(cfg aws.Config, logger *infra.Logger) *Synthesizer {
	return New(polly.NewFromConfig(cfg, func(o *polly.Options) {
		o.Retryer = aws.NopRetryer{}
	}), logger)
}

// Name identifies the provider in logs and errors.
func (s *Synthesizer) Name() string { return providerName }

// Synthesize converts text to MP3 audio.
func (s *Synthesizer) Synthesize(ctx context.Context, req providers.SpeechRequest) (*providers.SpeechResult, error) {
	if s.api == nil {
		return nil, fmt.Errorf("polly: client is not configured")
	}
	voice := VoiceID(req.Voice)
	out, err := s.api.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(req.Text),
		OutputFormat: types.OutputFormatMp3,
		VoiceId:      voice,
	})
	if err != nil {
		return nil, classify(err)
	}
	if out == nil || out.AudioStream == nil {
		return nil, &domain.ProviderError{Provider: providerName, Detail: "empty audio stream"}
	}
	defer out.AudioStream.Close()
	audio, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Detail: "read audio: " + err.Error()}
	}
	if len(audio) == 0 {
		return nil, &domain.ProviderError{Provider: providerName, Detail: "empty audio stream"}
	}
	s.logger.Debug().
		Str("voice_id", string(voice)).
		Str("correlation_id", req.CorrelationID).
		Int("bytes", len(audio)).
		Msg("polly: synthesized speech")
	return &providers.SpeechResult{Data: audio, ContentType: "audio/mpeg"}, nil
}

// classify separates service rejections, which carry an HTTP status, from
// failures that never reached the service. The SDK wraps send failures in a
// ResponseError too, with a zero status.
func classify(err error) error {
	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return providers.Transport(providerName, err)
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() > 0 {
		return &domain.ProviderError{Provider: providerName, StatusCode: respErr.HTTPStatusCode(), Detail: err.Error()}
	}
	return providers.Transport(providerName, err)
}

var _ providers.SpeechSynthesizer = (*Synthesizer)(nil)
