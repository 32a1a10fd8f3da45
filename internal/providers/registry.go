package providers

import (
	"sort"

	"mediagen/internal/domain"
)

// Set holds the adapters configured at startup. Nil entries disable a capability.
type Set struct {
	Image  ImageGenerator
	Video  VideoGenerator
	Speech SpeechSynthesizer
	Chat   ChatResponder
	Call   CallPlacer
}

// Registry maps capabilities to adapters. It is resolved once at startup and
// read-only afterwards.
type Registry struct {
	set      Set
	services map[string]bool
}

// NewRegistry builds a registry. services carries per-provider configuration
// flags for the health report (e.g. "openai": true, "s3": false).
func NewRegistry(set Set, services map[string]bool) *Registry {
	flags := make(map[string]bool, len(services))
	for name, ok := range services {
		flags[name] = ok
	}
	return &Registry{set: set, services: flags}
}

// Image returns the image adapter or a ProviderUnavailableError.
func (r *Registry) Image() (ImageGenerator, error) {
	if r == nil || r.set.Image == nil {
		return nil, unavailable(domain.CapabilityImage)
	}
	return r.set.Image, nil
}

// Video returns the video adapter or a ProviderUnavailableError.
func (r *Registry) Video() (VideoGenerator, error) {
	if r == nil || r.set.Video == nil {
		return nil, unavailable(domain.CapabilityVideo)
	}
	return r.set.Video, nil
}

// Speech returns the speech adapter or a ProviderUnavailableError.
func (r *Registry) Speech() (SpeechSynthesizer, error) {
	if r == nil || r.set.Speech == nil {
		return nil, unavailable(domain.CapabilitySpeech)
	}
	return r.set.Speech, nil
}

// Chat returns the chat adapter or a ProviderUnavailableError.
func (r *Registry) Chat() (ChatResponder, error) {
	if r == nil || r.set.Chat == nil {
		return nil, unavailable(domain.CapabilityChat)
	}
	return r.set.Chat, nil
}

// Call returns the telephony adapter or a ProviderUnavailableError.
func (r *Registry) Call() (CallPlacer, error) {
	if r == nil || r.set.Call == nil {
		return nil, unavailable(domain.CapabilityCall)
	}
	return r.set.Call, nil
}

// Enabled reports whether a capability has an adapter.
func (r *Registry) Enabled(c domain.Capability) bool {
	if r == nil {
		return false
	}
	switch c {
	case domain.CapabilityImage:
		return r.set.Image != nil
	case domain.CapabilityVideo:
		return r.set.Video != nil
	case domain.CapabilitySpeech:
		return r.set.Speech != nil
	case domain.CapabilityChat:
		return r.set.Chat != nil
	case domain.CapabilityCall:
		return r.set.Call != nil
	default:
		return false
	}
}

// Capabilities returns the capability health map.
func (r *Registry) Capabilities() map[string]bool {
	out := make(map[string]bool, len(domain.Capabilities))
	for _, c := range domain.Capabilities {
		out[string(c)] = r.Enabled(c)
	}
	return out
}

// Services returns a copy of the per-provider configuration flags.
func (r *Registry) Services() map[string]bool {
	out := make(map[string]bool)
	if r == nil {
		return out
	}
	for name, ok := range r.services {
		out[name] = ok
	}
	return out
}

// ServiceNames lists configured provider names in sorted order.
func (r *Registry) ServiceNames() []string {
	var names []string
	for name, ok := range r.Services() {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func unavailable(c domain.Capability) error {
	return &domain.ProviderUnavailableError{Capability: c}
}
