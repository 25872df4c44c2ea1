package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string, lower bool) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			if lower {
				x = key
			}
			ys = append(ys, x)
		}
		return ys
	}

	h := &out.Heuristics
	h.DisposableDomains = trimList(h.DisposableDomains, true)
	h.FreeMailDomains = trimList(h.FreeMailDomains, true)
	h.PlaceholderEmails = trimList(h.PlaceholderEmails, true)
	out.Scraper.DemoURLs = trimList(out.Scraper.DemoURLs, false)

	lowerRules := func(rules []Rule) []Rule {
		rs := make([]Rule, len(rules))
		for i, r := range rules {
			rs[i] = Rule{Tag: strings.TrimSpace(r.Tag), Weight: r.Weight, Any: trimList(r.Any, true)}
		}
		return rs
	}
	h.TechStack = lowerRules(h.TechStack)
	h.Industries = lowerRules(h.Industries)
	h.SocialPlatforms = lowerRules(h.SocialPlatforms)

	out.Hunter.BaseURL = strings.TrimRight(strings.TrimSpace(out.Hunter.BaseURL), "/")

	if err := Validate(out); err != nil {
		for _, line := range strings.Split(err.Error(), "\n- ")[1:] {
			res.addErr("%s", line)
		}
	}

	if u, err := url.Parse(out.Hunter.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("hunter.base_url must be an absolute URL")
	}
	if out.Hunter.Limit > 100 {
		res.addWarn("hunter.limit is %d; the domain-search API caps results at 100.", out.Hunter.Limit)
	}
	if out.Hunter.RequestsPerSecond > 15 {
		res.addWarn("hunter.requests_per_second is high (%.1f) and may exhaust API quota.", out.Hunter.RequestsPerSecond)
	}
	if out.Scraper.TimeoutSeconds > 30 {
		res.addWarn("scraper.timeout_seconds is %d; slow sites will hold a worker that long.", out.Scraper.TimeoutSeconds)
	}
	if len(out.Scraper.DemoURLs) == 0 {
		res.addWarn("scraper.demo_urls is empty; search scrapes will return nothing.")
	}
	if out.Workers.Count > 16 {
		res.addWarn("workers.count is %d; each worker makes several outbound calls per lead.", out.Workers.Count)
	}
	for i, r := range h.Industries {
		for _, kw := range r.Any {
			if len(kw) <= 2 {
				res.addWarn("heuristics.industries[%d] (%s) keyword %q is very short and matches inside other words.", i, r.Tag, kw)
			}
		}
	}

	return out, res
}
