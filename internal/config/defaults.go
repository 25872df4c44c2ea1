package config

func Default() Config {
	var c Config

	c.App.Addr = "127.0.0.1:38472"
	c.App.DataDir = "."
	c.App.Env = "development"
	c.App.LogLevel = "info"

	c.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	c.Scraper.TimeoutSeconds = 10
	c.Scraper.SearchLimit = 5
	c.Scraper.DemoURLs = []string{
		"https://www.salesforce.com",
		"https://www.hubspot.com",
		"https://www.zendesk.com",
	}
	c.Scraper.HostRPS = 2
	c.Scraper.HostBurst = 4

	c.Hunter.BaseURL = "https://api.hunter.io/v2"
	c.Hunter.TimeoutSeconds = 10
	c.Hunter.Limit = 5
	c.Hunter.RequestsPerSecond = 2
	c.Hunter.Burst = 2

	c.Enrichment.TechTimeoutSeconds = 5
	c.Enrichment.WhoisTimeoutSeconds = 10
	c.Enrichment.PhoneRegion = "US"

	c.Workers.Count = 2
	c.Workers.QueueSize = 64

	c.Scoring = DefaultScoring()
	c.Heuristics = DefaultHeuristics()
	return c
}

func DefaultScoring() Scoring {
	return Scoring{
		Base:             50,
		ValidEmail:       20,
		ConfidenceHigh:   10,
		ConfidenceMedium: 5,
		ValidPhone:       10,
		KnownRevenue:     10,
		TechStack:        5,
		KnownEmployees:   5,
		ContactName:      5,
		SocialLinks:      5,
	}
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		TechStack: []Rule{
			{Tag: "React", Any: []string{"react.js", "reactjs", "_next"}},
			{Tag: "Vue", Any: []string{"vue.js", "vuejs"}},
			{Tag: "Angular", Any: []string{"angular", "ng-"}},
			{Tag: "WordPress", Any: []string{"wp-content", "wordpress"}},
			{Tag: "Shopify", Any: []string{"shopify", "cdn.shopify"}},
			{Tag: "Salesforce", Any: []string{"salesforce"}},
			{Tag: "HubSpot", Any: []string{"hubspot", "hs-analytics"}},
			{Tag: "Google Analytics", Any: []string{"google-analytics", "gtag"}},
			{Tag: "Stripe", Any: []string{"js.stripe.com"}},
			{Tag: "Intercom", Any: []string{"intercom"}},
			{Tag: "Zendesk", Any: []string{"zendesk"}},
		},
		Industries: []Rule{
			{Tag: "SaaS", Any: []string{"software", "saas", "cloud", "platform", "api"}},
			{Tag: "E-commerce", Any: []string{"shop", "store", "ecommerce", "retail", "shopify"}},
			{Tag: "Finance", Any: []string{"finance", "bank", "payment", "stripe", "fintech"}},
			{Tag: "Marketing", Any: []string{"marketing", "advertising", "hubspot", "seo"}},
			{Tag: "Healthcare", Any: []string{"health", "medical", "care", "hospital", "clinic"}},
			{Tag: "Education", Any: []string{"education", "learning", "school", "university", "course"}},
			{Tag: "Real Estate", Any: []string{"real estate", "property", "housing", "realty"}},
			{Tag: "Technology", Any: []string{"tech", "software", "it", "development", "react", "angular"}},
		},
		DisposableDomains: []string{
			"tempmail.com", "guerrillamail.com", "10minutemail.com",
			"throwaway.email", "mailinator.com",
		},
		FreeMailDomains: []string{"gmail.com", "outlook.com", "yahoo.com", "hotmail.com"},
		Providers: map[string]string{
			"gmail.com":      "Gmail",
			"outlook.com":    "Outlook",
			"hotmail.com":    "Hotmail",
			"yahoo.com":      "Yahoo",
			"icloud.com":     "iCloud",
			"protonmail.com": "ProtonMail",
		},
		Typos: map[string]string{
			"gmial.com":  "gmail.com",
			"gmai.com":   "gmail.com",
			"yahooo.com": "yahoo.com",
			"outlok.com": "outlook.com",
		},
		PlaceholderEmails: []string{"example.com", "domain.com", "yoursite"},
		SocialPlatforms: []Rule{
			{Tag: "linkedin", Any: []string{"linkedin.com"}},
			{Tag: "twitter", Any: []string{"twitter.com"}},
			{Tag: "facebook", Any: []string{"facebook.com"}},
			{Tag: "instagram", Any: []string{"instagram.com"}},
		},
		RevenueByEmployees: map[string]string{
			"1-10":    "$0-2M",
			"10-50":   "$2M-10M",
			"50-100":  "$10M-20M",
			"100-500": "$20M-100M",
		},
	}
}

// Merge fills anything left zero in c from base. Tables are replaced whole,
// never appended to, so a user list fully overrides the default one.
func Merge(base, c Config) Config {
	out := c

	str := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	num := func(dst *int, def int) {
		if *dst <= 0 {
			*dst = def
		}
	}
	flt := func(dst *float64, def float64) {
		if *dst <= 0 {
			*dst = def
		}
	}

	str(&out.App.Addr, base.App.Addr)
	str(&out.App.DataDir, base.App.DataDir)
	str(&out.App.Env, base.App.Env)
	str(&out.App.LogLevel, base.App.LogLevel)

	str(&out.Scraper.UserAgent, base.Scraper.UserAgent)
	num(&out.Scraper.TimeoutSeconds, base.Scraper.TimeoutSeconds)
	num(&out.Scraper.SearchLimit, base.Scraper.SearchLimit)
	if len(out.Scraper.DemoURLs) == 0 {
		out.Scraper.DemoURLs = base.Scraper.DemoURLs
	}
	flt(&out.Scraper.HostRPS, base.Scraper.HostRPS)
	num(&out.Scraper.HostBurst, base.Scraper.HostBurst)

	str(&out.Hunter.BaseURL, base.Hunter.BaseURL)
	str(&out.Hunter.APIKey, base.Hunter.APIKey)
	num(&out.Hunter.TimeoutSeconds, base.Hunter.TimeoutSeconds)
	num(&out.Hunter.Limit, base.Hunter.Limit)
	flt(&out.Hunter.RequestsPerSecond, base.Hunter.RequestsPerSecond)
	num(&out.Hunter.Burst, base.Hunter.Burst)

	num(&out.Enrichment.TechTimeoutSeconds, base.Enrichment.TechTimeoutSeconds)
	num(&out.Enrichment.WhoisTimeoutSeconds, base.Enrichment.WhoisTimeoutSeconds)
	str(&out.Enrichment.PhoneRegion, base.Enrichment.PhoneRegion)

	num(&out.Workers.Count, base.Workers.Count)
	num(&out.Workers.QueueSize, base.Workers.QueueSize)

	if out.Scoring == (Scoring{}) {
		out.Scoring = base.Scoring
	}

	h, bh := &out.Heuristics, base.Heuristics
	if len(h.TechStack) == 0 {
		h.TechStack = bh.TechStack
	}
	if len(h.Industries) == 0 {
		h.Industries = bh.Industries
	}
	if len(h.DisposableDomains) == 0 {
		h.DisposableDomains = bh.DisposableDomains
	}
	if len(h.FreeMailDomains) == 0 {
		h.FreeMailDomains = bh.FreeMailDomains
	}
	if len(h.Providers) == 0 {
		h.Providers = bh.Providers
	}
	if len(h.Typos) == 0 {
		h.Typos = bh.Typos
	}
	if len(h.PlaceholderEmails) == 0 {
		h.PlaceholderEmails = bh.PlaceholderEmails
	}
	if len(h.SocialPlatforms) == 0 {
		h.SocialPlatforms = bh.SocialPlatforms
	}
	if len(h.RevenueByEmployees) == 0 {
		h.RevenueByEmployees = bh.RevenueByEmployees
	}
	return out
}
