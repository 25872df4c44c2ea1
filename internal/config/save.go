package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if strings.TrimSpace(cfg.App.Addr) == "" {
		errs = append(errs, "app.addr is required")
	}
	if cfg.Scraper.TimeoutSeconds <= 0 {
		errs = append(errs, "scraper.timeout_seconds must be > 0")
	}
	if cfg.Hunter.TimeoutSeconds <= 0 {
		errs = append(errs, "hunter.timeout_seconds must be > 0")
	}
	if cfg.Workers.Count <= 0 {
		errs = append(errs, "workers.count must be > 0")
	}
	if cfg.Workers.QueueSize <= 0 {
		errs = append(errs, "workers.queue_size must be > 0")
	}

	s := cfg.Scoring
	weights := map[string]int{
		"valid_email":       s.ValidEmail,
		"confidence_high":   s.ConfidenceHigh,
		"confidence_medium": s.ConfidenceMedium,
		"valid_phone":       s.ValidPhone,
		"known_revenue":     s.KnownRevenue,
		"tech_stack":        s.TechStack,
		"known_employees":   s.KnownEmployees,
		"contact_name":      s.ContactName,
		"social_links":      s.SocialLinks,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("scoring.%s must be >= 0", name))
		}
	}
	if s.Base < 0 || s.Base > 100 {
		errs = append(errs, "scoring.base must be 0..100")
	}

	checkRules := func(name string, rules []Rule) {
		seen := map[string]bool{}
		for i, r := range rules {
			if r.Tag == "" {
				errs = append(errs, fmt.Sprintf("%s[%d].tag is required", name, i))
			}
			if seen[r.Tag] {
				errs = append(errs, fmt.Sprintf("%s[%d].tag %q is duplicated", name, i, r.Tag))
			}
			seen[r.Tag] = true
			if len(r.Any) == 0 {
				errs = append(errs, fmt.Sprintf("%s[%d].any must have at least 1 term", name, i))
			}
			for j, term := range r.Any {
				if term == "" {
					errs = append(errs, fmt.Sprintf("%s[%d].any[%d] cannot be empty", name, i, j))
				}
			}
		}
	}

	checkRules("heuristics.tech_stack", cfg.Heuristics.TechStack)
	checkRules("heuristics.industries", cfg.Heuristics.Industries)
	checkRules("heuristics.social_platforms", cfg.Heuristics.SocialPlatforms)

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
