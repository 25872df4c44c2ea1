package enrich

import "leadgen-engine/internal/domain"

// estimateEmployees buckets an additive signal score built from tech stack
// size, domain age and social presence.
func estimateEmployees(techCount int, age domain.DomainAge, socialCount int) string {
	score := 0

	switch {
	case techCount > 5:
		score += 100
	case techCount > 3:
		score += 50
	default:
		score += 10
	}

	if age.Known {
		switch {
		case age.Years > 10:
			score += 100
		case age.Years > 5:
			score += 50
		default:
			score += 20
		}
	}

	score += socialCount * 10

	switch {
	case score > 150:
		return "100-500"
	case score > 100:
		return "50-100"
	case score > 50:
		return "10-50"
	default:
		return "1-10"
	}
}

func estimateRevenue(table map[string]string, employees string) string {
	if r, ok := table[employees]; ok {
		return r
	}
	return domain.Unknown
}
