// internal/rank/lead_scorer.go
package rank

import (
	"strings"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
)

// LeadScorer adds config weights for each positive signal on top of a base
// and clamps to 0..100. Weights are validated non-negative at load.
type LeadScorer struct {
	W config.Scoring
}

func (s LeadScorer) Score(l domain.Lead) int {
	w := s.W
	score := w.Base

	if l.EmailValid {
		score += w.ValidEmail
	}
	switch {
	case l.EmailConfidence >= 90:
		score += w.ConfidenceHigh
	case l.EmailConfidence >= 70:
		score += w.ConfidenceMedium
	}
	if l.PhoneValid {
		score += w.ValidPhone
	}
	if l.RevenueEstimate != "" && l.RevenueEstimate != domain.Unknown {
		score += w.KnownRevenue
	}
	if len(l.TechStack) > 0 {
		score += w.TechStack
	}
	if l.EmployeeEstimate != "" {
		score += w.KnownEmployees
	}
	if strings.TrimSpace(l.ContactName) != "" {
		score += w.ContactName
	}
	if len(l.SocialLinks) > 0 {
		score += w.SocialLinks
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
