package twilio

import (
	"strings"

	"github.com/twilio/twilio-go/twiml"
)

const (
	DefaultVoice    = "alice"
	DefaultLanguage = "en-US"
	DefaultMessage  = "Hello from GEM Enterprise."
	FallbackMessage = "Sorry, there was an error processing your call."
)

// Script is what a placed call says once answered.
type Script struct {
	Message  string
	Voice    string
	Language string
}

// sayVoices maps the public voice aliases onto voices <Say> accepts.
var sayVoices = map[string]string{
	"default":      DefaultVoice,
	"female":       DefaultVoice,
	"professional": DefaultVoice,
	"male":         "man",
	"alice":        "alice",
	"man":          "man",
	"woman":        "woman",
}

// SayVoice resolves name to a voice Twilio can speak with. Polly.* and
// Google.* neural voices pass through; anything else uses DefaultVoice.
func SayVoice(name string) string {
	name = strings.TrimSpace(name)
	if v, ok := sayVoices[strings.ToLower(name)]; ok {
		return v
	}
	if strings.HasPrefix(name, "Polly.") || strings.HasPrefix(name, "Google.") {
		return name
	}
	return DefaultVoice
}

// RenderTwiML renders a Say followed by a Hangup.
func RenderTwiML(s Script) (string, error) {
	message := strings.TrimSpace(s.Message)
	if message == "" {
		message = DefaultMessage
	}
	voice := SayVoice(s.Voice)
	language := strings.TrimSpace(s.Language)
	if language == "" {
		language = DefaultLanguage
	}
	return twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: message, Voice: voice, Language: language},
		&twiml.VoiceHangup{},
	})
}

// FallbackTwiML is served when a script cannot be rendered.
func FallbackTwiML() string {
	out, err := RenderTwiML(Script{Message: FallbackMessage})
	if err != nil {
		return `<?xml version="1.0" encoding="UTF-8"?><Response><Say>` + FallbackMessage + `</Say><Hangup/></Response>`
	}
	return out
}
