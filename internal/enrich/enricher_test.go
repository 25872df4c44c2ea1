package enrich

import (
	"context"
	"errors"
	"net"
	"net/http"
	"reflect"
	"testing"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/emailcheck"
	"leadgen-engine/internal/hunter"
	"leadgen-engine/internal/scrape"
)

type fakeFinder struct {
	contact *hunter.Contact
	err     error
	calls   int
}

func (f *fakeFinder) BestEmail(context.Context, string) (*hunter.Contact, error) {
	f.calls++
	return f.contact, f.err
}

type fakePages struct {
	page scrape.Page
	err  error
}

func (f fakePages) Get(context.Context, string) (scrape.Page, error) { return f.page, f.err }

type fakeWhois struct {
	info WhoisInfo
	err  error
	got  string
}

func (f *fakeWhois) Lookup(_ context.Context, d string) (WhoisInfo, error) {
	f.got = d
	return f.info, f.err
}

type mxAlways struct{}

func (mxAlways) LookupMX(context.Context, string) ([]*net.MX, error) {
	return []*net.MX{{Host: "mx.test.", Pref: 1}}, nil
}

var fixedNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEnricher(f EmailFinder, p PageFetcher, w WhoisLookup) *Enricher {
	h := config.DefaultHeuristics()
	return &Enricher{
		Finder:      f,
		Checker:     emailcheck.New(h, mxAlways{}),
		Pages:       p,
		Whois:       w,
		Heuristics:  h,
		PhoneRegion: "US",
		Now:         func() time.Time { return fixedNow },
	}
}

func TestEnrichNothingFound(t *testing.T) {
	e := newTestEnricher(
		&fakeFinder{},
		fakePages{err: errors.New("dial tcp: timeout")},
		&fakeWhois{err: errors.New("no whois server")},
	)

	in := domain.Lead{
		URL:         "https://example-corp.test",
		CompanyName: "Example Corp",
		Description: "cloud software platform",
		Email:       "scraped@example-corp.test",
	}
	got, out := e.EnrichDetailed(context.Background(), in)

	if got.Email != "" || got.EmailValid || got.EmailConfidence != 0 {
		t.Errorf("email fields = %q %v %d", got.Email, got.EmailValid, got.EmailConfidence)
	}
	if !reflect.DeepEqual(got.TechStack, []string{"Unknown"}) {
		t.Errorf("tech = %v", got.TechStack)
	}
	if got.DomainAge.Known || got.Registrar != "" {
		t.Errorf("domain = %v %q", got.DomainAge, got.Registrar)
	}
	if got.Industry != "SaaS" {
		t.Errorf("industry = %q", got.Industry)
	}
	if got.EmployeeEstimate != "1-10" || got.RevenueEstimate != "$0-2M" {
		t.Errorf("size = %q / %q", got.EmployeeEstimate, got.RevenueEstimate)
	}
	if got.PhoneValid || got.Phone != "" {
		t.Errorf("phone = %q %v", got.Phone, got.PhoneValid)
	}
	if got.ContactQuality != 0.5 {
		t.Errorf("contact quality = %v", got.ContactQuality)
	}
	if out.Email != nil {
		t.Error("no email report expected")
	}
	for _, step := range []string{"email", "tech_stack", "whois"} {
		if _, ok := out.Degraded[step]; !ok {
			t.Errorf("step %s should be reported degraded", step)
		}
	}
}

func TestEnrichWithContact(t *testing.T) {
	finder := &fakeFinder{contact: &hunter.Contact{
		Email: "pat.lee@stripe.com", Confidence: 40,
		FirstName: "Pat", LastName: "Lee", Position: "CTO",
	}}
	pages := fakePages{page: scrape.Page{
		Body:   []byte(`<script src="https://js.stripe.com/v3"></script><div id="__next" class="_next"></div>`),
		Header: http.Header{"X-Powered-By": {"Intercom-Widget"}},
	}}
	w := &fakeWhois{info: WhoisInfo{
		CreatedAt: fixedNow.AddDate(-12, 0, -10),
		Registrar: "MarkMonitor Inc.",
	}}
	e := newTestEnricher(finder, pages, w)

	in := domain.Lead{
		URL:         "https://www.shop.stripe.com",
		CompanyName: "Stripe",
		Description: "Online payment processing",
		Phone:       "(650) 253-0000",
		SocialLinks: map[string]string{"twitter": "https://twitter.com/stripe", "linkedin": "https://linkedin.com/company/stripe"},
	}
	got, out := e.EnrichDetailed(context.Background(), in)

	if got.Email != "pat.lee@stripe.com" || got.ContactName != "Pat Lee" || got.ContactPosition != "CTO" {
		t.Errorf("contact = %+v", got)
	}
	if !got.EmailValid || got.EmailConfidence != 100 {
		t.Errorf("validator should be authoritative: valid=%v conf=%d", got.EmailValid, got.EmailConfidence)
	}
	if got.EmailProvider != "Business Email" {
		t.Errorf("provider = %q", got.EmailProvider)
	}
	if out.Email == nil || !out.Email.Valid {
		t.Error("email report missing")
	}
	if want := []string{"React", "Stripe", "Intercom"}; !reflect.DeepEqual(got.TechStack, want) {
		t.Errorf("tech = %v, want %v", got.TechStack, want)
	}
	if w.got != "stripe.com" {
		t.Errorf("whois queried %q, want registrable domain", w.got)
	}
	if !got.DomainAge.Known || got.DomainAge.Years != 12 || got.Registrar != "MarkMonitor Inc." {
		t.Errorf("domain = %v %q", got.DomainAge, got.Registrar)
	}
	// tech 3 -> 10, age 12 -> 100, socials 2 -> 20 = 130
	if got.EmployeeEstimate != "50-100" || got.RevenueEstimate != "$10M-20M" {
		t.Errorf("size = %q / %q", got.EmployeeEstimate, got.RevenueEstimate)
	}
	if got.Industry != "Finance" {
		t.Errorf("industry = %q", got.Industry)
	}
	if !got.PhoneValid || got.PhoneE164 != "+16502530000" {
		t.Errorf("phone = %v %q", got.PhoneValid, got.PhoneE164)
	}
	// 2.5 + 0.75 + 0.75 + 1 + 0.5 + 0.5
	if got.ContactQuality != 5 {
		t.Errorf("contact quality = %v", got.ContactQuality)
	}
}

func TestEnrichMissingURLIsNoop(t *testing.T) {
	f := &fakeFinder{}
	e := newTestEnricher(f, fakePages{}, &fakeWhois{})
	in := domain.Lead{CompanyName: "Nowhere", Phone: "bad"}
	got := e.Enrich(context.Background(), in)
	if !reflect.DeepEqual(got, in) || f.calls != 0 {
		t.Fatalf("lead changed or finder called: %+v", got)
	}
}

func TestEnrichFinderErrorIsNoContact(t *testing.T) {
	e := newTestEnricher(&fakeFinder{err: &hunter.APIError{Status: 429, Details: "rate limited"}}, fakePages{err: errors.New("x")}, &fakeWhois{err: errors.New("x")})
	got, out := e.EnrichDetailed(context.Background(), domain.Lead{URL: "https://acme.test"})
	if got.Email != "" || got.EmailValid {
		t.Fatalf("got %+v", got)
	}
	var apiErr *hunter.APIError
	if !errors.As(out.Degraded["email"], &apiErr) {
		t.Fatalf("email degradation should keep the API error, got %v", out.Degraded["email"])
	}
}

func TestEstimateEmployees(t *testing.T) {
	cases := []struct {
		tech    int
		age     domain.DomainAge
		socials int
		want    string
	}{
		{6, domain.KnownAge(12), 2, "100-500"}, // 100+100+20
		{1, domain.DomainAge{}, 0, "1-10"},     // 10
		{4, domain.KnownAge(3), 0, "10-50"},    // 50+20
		{4, domain.KnownAge(6), 1, "50-100"},   // 50+50+10
		{0, domain.KnownAge(5), 3, "10-50"},    // 10+20+30
	}
	for _, c := range cases {
		if got := estimateEmployees(c.tech, c.age, c.socials); got != c.want {
			t.Errorf("estimateEmployees(%d, %v, %d) = %q, want %q", c.tech, c.age, c.socials, got, c.want)
		}
	}
	if got := estimateRevenue(config.DefaultHeuristics().RevenueByEmployees, "100-500"); got != "$20M-100M" {
		t.Errorf("revenue = %q", got)
	}
	if got := estimateRevenue(config.DefaultHeuristics().RevenueByEmployees, "5000+"); got != "Unknown" {
		t.Errorf("revenue = %q", got)
	}
}

func TestClassifyIndustryOrder(t *testing.T) {
	rules := config.DefaultHeuristics().Industries
	cases := []struct {
		desc, name string
		tech       []string
		want       string
	}{
		{"software bank", "", nil, "SaaS"},
		{"a local bank", "", nil, "Finance"},
		{"", "Acme", []string{"Shopify"}, "E-commerce"},
		{"we sell hats", "Hatco", []string{"Unknown"}, "General Business"},
		{"Real Estate listings", "", nil, "Real Estate"},
	}
	for _, c := range cases {
		if got := classifyIndustry(rules, c.desc, c.name, c.tech); got != c.want {
			t.Errorf("classifyIndustry(%q, %q, %v) = %q, want %q", c.desc, c.name, c.tech, got, c.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	cases := map[string]bool{
		"(555) 123-4567":  true,
		"+1 555 123 4567": true,
		"555.123.4567":    false,
		"12345":           false,
		"":                false,
		"N/A":             false,
	}
	for in, want := range cases {
		if got := validPhone(in); got != want {
			t.Errorf("validPhone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContactQualityRoundsAndCaps(t *testing.T) {
	l := domain.Lead{EmailValid: true, EmailConfidence: 95, ContactName: "A", Description: domain.NoDescription}
	if got := contactQuality(l); got != 3.2 {
		t.Errorf("got %v, want 3.2", got)
	}
	l = domain.Lead{
		EmailValid: true, EmailConfidence: 99, ContactName: "A", ContactDepartment: "sales",
		PhoneValid: true, SocialLinks: map[string]string{"x": "y"}, Description: "real",
	}
	if got := contactQuality(l); got != 5 {
		t.Errorf("got %v, want 5", got)
	}
	if got := contactQuality(domain.Lead{}); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestParseCreated(t *testing.T) {
	cases := map[string]string{
		"1997-09-15T04:00:00Z":              "1997-09-15",
		"2001-03-04":                        "2001-03-04",
		"15-Sep-1997":                       "1997-09-15",
		"garbage, 2010-01-02T00:00:00Z":     "2010-01-02",
		"2010-01-02T00:00:00Z, 2012-01-01":  "2010-01-02",
	}
	for in, want := range cases {
		got, ok := parseCreated(in)
		if !ok || got.Format("2006-01-02") != want {
			t.Errorf("parseCreated(%q) = %v %v, want %s", in, got, ok, want)
		}
	}
	if _, ok := parseCreated(""); ok {
		t.Error("empty date should not parse")
	}
}

func TestRegistrable(t *testing.T) {
	cases := map[string]string{
		"shop.acme.co.uk": "acme.co.uk",
		"acme.com":        "acme.com",
		"localhost":       "localhost",
	}
	for in, want := range cases {
		if got := registrable(in); got != want {
			t.Errorf("registrable(%q) = %q, want %q", in, got, want)
		}
	}
}
