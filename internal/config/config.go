// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Rule maps a named tag to a list of substrings. Used for tech-stack
// signatures and industry keywords; order in the list is significant.
type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight,omitempty" json:"weight,omitempty"`
	Any    []string `yaml:"any" json:"any"`
}

type Config struct {
	App struct {
		Addr     string `yaml:"addr" json:"addr"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		Env      string `yaml:"env" json:"env"`
		LogLevel string `yaml:"log_level" json:"log_level"`
	} `yaml:"app" json:"app"`

	Scraper struct {
		UserAgent      string   `yaml:"user_agent" json:"user_agent"`
		TimeoutSeconds int      `yaml:"timeout_seconds" json:"timeout_seconds"`
		SearchLimit    int      `yaml:"search_limit" json:"search_limit"`
		DemoURLs       []string `yaml:"demo_urls" json:"demo_urls"`
		HostRPS        float64  `yaml:"host_rps" json:"host_rps"`
		HostBurst      int      `yaml:"host_burst" json:"host_burst"`
	} `yaml:"scraper" json:"scraper"`

	Hunter struct {
		BaseURL           string  `yaml:"base_url" json:"base_url"`
		APIKey            string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
		TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		Limit             int     `yaml:"limit" json:"limit"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`
	} `yaml:"hunter" json:"hunter"`

	Enrichment struct {
		TechTimeoutSeconds  int    `yaml:"tech_timeout_seconds" json:"tech_timeout_seconds"`
		WhoisTimeoutSeconds int    `yaml:"whois_timeout_seconds" json:"whois_timeout_seconds"`
		PhoneRegion         string `yaml:"phone_region" json:"phone_region"`
	} `yaml:"enrichment" json:"enrichment"`

	Workers struct {
		Count     int `yaml:"count" json:"count"`
		QueueSize int `yaml:"queue_size" json:"queue_size"`
	} `yaml:"workers" json:"workers"`

	Scoring Scoring `yaml:"scoring" json:"scoring"`

	Heuristics Heuristics `yaml:"heuristics" json:"heuristics"`
}

// Scoring holds the additive lead score weights.
type Scoring struct {
	Base             int `yaml:"base" json:"base"`
	ValidEmail       int `yaml:"valid_email" json:"valid_email"`
	ConfidenceHigh   int `yaml:"confidence_high" json:"confidence_high"`
	ConfidenceMedium int `yaml:"confidence_medium" json:"confidence_medium"`
	ValidPhone       int `yaml:"valid_phone" json:"valid_phone"`
	KnownRevenue     int `yaml:"known_revenue" json:"known_revenue"`
	TechStack        int `yaml:"tech_stack" json:"tech_stack"`
	KnownEmployees   int `yaml:"known_employees" json:"known_employees"`
	ContactName      int `yaml:"contact_name" json:"contact_name"`
	SocialLinks      int `yaml:"social_links" json:"social_links"`
}

// Heuristics are the lookup tables shared by the scraper, validator and
// enricher. Loaded once and passed down; never mutated after start.
type Heuristics struct {
	TechStack          []Rule            `yaml:"tech_stack" json:"tech_stack"`
	Industries         []Rule            `yaml:"industries" json:"industries"`
	DisposableDomains  []string          `yaml:"disposable_domains" json:"disposable_domains"`
	FreeMailDomains    []string          `yaml:"free_mail_domains" json:"free_mail_domains"`
	Providers          map[string]string `yaml:"providers" json:"providers"`
	Typos              map[string]string `yaml:"typos" json:"typos"`
	PlaceholderEmails  []string          `yaml:"placeholder_emails" json:"placeholder_emails"`
	SocialPlatforms    []Rule            `yaml:"social_platforms" json:"social_platforms"`
	RevenueByEmployees map[string]string `yaml:"revenue_by_employees" json:"revenue_by_employees"`
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var fromFile Config
	if err := yaml.Unmarshal(b, &fromFile); err != nil {
		return cfg, err
	}
	return Merge(cfg, fromFile), nil
}
