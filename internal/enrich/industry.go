package enrich

import (
	"strings"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
)

// classifyIndustry returns the first industry in table order with a keyword
// present in the description, name and tech blob.
func classifyIndustry(rules []config.Rule, description, name string, tech []string) string {
	lowTech := make([]string, len(tech))
	for i, t := range tech {
		lowTech[i] = strings.ToLower(t)
	}
	blob := strings.ToLower(description) + " " + strings.ToLower(name) + " " + strings.Join(lowTech, " ")

	for _, r := range rules {
		for _, kw := range r.Any {
			if strings.Contains(blob, strings.ToLower(kw)) {
				return r.Tag
			}
		}
	}
	return domain.DefaultIndustry
}
