package domain

// Capability enumerates generation/communication functions offered by the service.
type Capability string

const (
	CapabilityImage  Capability = "image"
	CapabilityVideo  Capability = "video"
	CapabilitySpeech Capability = "speech"
	CapabilityChat   Capability = "chat"
	CapabilityCall   Capability = "call"
)

// Capabilities lists every capability in a stable order.
var Capabilities = []Capability{
	CapabilityImage,
	CapabilityVideo,
	CapabilitySpeech,
	CapabilityChat,
	CapabilityCall,
}

// GenerationRequest is the accepted, immutable form of an inbound request.
type GenerationRequest struct {
	Capability    Capability
	Params        map[string]any
	CorrelationID string
}

// NewGenerationRequest copies params so later changes by the caller are not observed.
func NewGenerationRequest(capability Capability, correlationID string, params map[string]any) GenerationRequest {
	cloned := make(map[string]any, len(params))
	for k, v := range params {
		cloned[k] = v
	}
	return GenerationRequest{Capability: capability, Params: cloned, CorrelationID: correlationID}
}

// Param returns a named option, or nil when absent.
func (r GenerationRequest) Param(name string) any {
	if r.Params == nil {
		return nil
	}
	return r.Params[name]
}
