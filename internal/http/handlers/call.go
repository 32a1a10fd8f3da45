package handlers

import (
	"net/http"
	"strings"

	"mediagen/internal/middleware"
	"mediagen/internal/orchestrator"
	"mediagen/internal/providers/twilio"
)

type callResponse struct {
	Success bool   `json:"success"`
	CallID  string `json:"callId"`
	Status  string `json:"status"`
}

func (a *App) PlaceCall(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.CallInput
	if !a.decode(w, r, &in) {
		return
	}
	in.CorrelationID = middleware.RequestIDFromContext(r.Context())
	in.BaseURL = requestBaseURL(r)
	res, err := a.Service.PlaceCall(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, callResponse{Success: true, CallID: res.CallID, Status: res.Status})
}

// CallTwiML serves the script for a placed call. Unknown ids get the default
// greeting and rendering failures the fallback apology.
func (a *App) CallTwiML(w http.ResponseWriter, r *http.Request) {
	script, _ := a.Service.CallScript(r.URL.Query().Get("call_id"))
	body, err := twilio.RenderTwiML(script)
	if err != nil {
		a.Logger.Error().Err(err).Msg("render twiml failed")
		body = twilio.FallbackTwiML()
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.SplitN(proto, ",", 2)[0])
	}
	return scheme + "://" + r.Host
}
