package orchestrator

import "time"

// HealthReport summarizes which providers and capabilities are configured.
type HealthReport struct {
	Status       string          `json:"status"`
	Services     map[string]bool `json:"services"`
	Capabilities map[string]bool `json:"capabilities"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Health never calls a provider.
func (s *Service) Health() HealthReport {
	return HealthReport{
		Status:       "healthy",
		Services:     s.registry.Services(),
		Capabilities: s.registry.Capabilities(),
		Timestamp:    s.now().UTC(),
	}
}
