package orchestrator

import (
	"context"
	"net/url"

	"mediagen/internal/domain"
	"mediagen/internal/providers"
	"mediagen/internal/providers/twilio"
)

// CallResult identifies a placed call.
type CallResult struct {
	CallID   string
	Status   string
	ScriptID string
}

// PlaceCall validates the destination and asks the telephony provider to call
// it. Placement is never retried.
func (s *Service) PlaceCall(ctx context.Context, in CallInput) (*CallResult, error) {
	in.normalize()
	log := s.opLogger(domain.CapabilityCall, in.CorrelationID)
	if err := validateInput(&in); err != nil {
		return nil, fail(log, err, "call request rejected")
	}
	placer, err := s.registry.Call()
	if err != nil {
		return nil, fail(log, err, "call provider unavailable")
	}
	req := domain.NewGenerationRequest(domain.CapabilityCall, in.CorrelationID, map[string]any{
		"to":    in.To,
		"voice": in.Voice,
	})

	scriptID := s.newID()
	s.scripts.Put(scriptID, twilio.Script{Message: in.Message, Voice: twilio.SayVoice(in.Voice)})
	res, err := placer.PlaceCall(ctx, providers.CallRequest{
		To:            in.To,
		ScriptURL:     s.scriptURL(in.BaseURL, scriptID),
		CallbackURL:   in.CallbackURL,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		s.scripts.Delete(scriptID)
		return nil, fail(log, err, "call placement failed")
	}
	log.Info().Str("call_id", res.CallID).Str("status", res.Status).Msg("call placed")
	return &CallResult{CallID: res.CallID, Status: res.Status, ScriptID: scriptID}, nil
}

// CallScript returns the stored script for a placed call.
func (s *Service) CallScript(id string) (twilio.Script, bool) {
	if id == "" {
		return twilio.Script{}, false
	}
	return s.scripts.Get(id)
}

func (s *Service) scriptURL(requestBase, scriptID string) string {
	base := s.publicBaseURL
	if base == "" {
		base = requestBase
	}
	return base + s.scriptPath + "?call_id=" + url.QueryEscape(scriptID)
}
