package enrich

import (
	"math"
	"strings"

	"leadgen-engine/internal/domain"
)

var placeholderDescriptions = map[string]bool{
	domain.NoDescription: true,
	"N/A":                true,
	"":                   true,
}

// contactQuality rates contact information on a 0..5 scale.
func contactQuality(l domain.Lead) float64 {
	score := 0.0

	if l.EmailValid {
		switch {
		case l.EmailConfidence >= 90:
			score += 2.5
		case l.EmailConfidence >= 70:
			score += 2
		default:
			score += 1.5
		}
	}
	if strings.TrimSpace(l.ContactName) != "" {
		score += 0.75
	}
	if l.ContactPosition != "" || l.ContactDepartment != "" {
		score += 0.75
	}
	if l.PhoneValid {
		score += 1
	}
	if len(l.SocialLinks) > 0 {
		score += 0.5
	}
	if !placeholderDescriptions[l.Description] {
		score += 0.5
	}

	return math.Min(5, math.RoundToEven(score*10)/10)
}
