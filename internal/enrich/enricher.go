// Package enrich turns a raw scraped record into a fully enriched lead.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/emailcheck"
	"leadgen-engine/internal/hunter"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/scrape/util"
)

type EmailFinder interface {
	BestEmail(ctx context.Context, siteURL string) (*hunter.Contact, error)
}

type EmailChecker interface {
	Check(ctx context.Context, email string) emailcheck.Report
}

var errNoContact = errors.New("no contact found")

type Enricher struct {
	Finder  EmailFinder
	Checker EmailChecker
	Pages   PageFetcher
	Whois   WhoisLookup

	Heuristics  config.Heuristics
	PhoneRegion string
	Log         *slog.Logger

	// Now is stubbed in tests.
	Now func() time.Time
}

// Outcome describes how an enrichment went, for logging and the email
// validation log.
type Outcome struct {
	Email    *emailcheck.Report
	Degraded map[string]error
}

func (e *Enricher) Enrich(ctx context.Context, lead domain.Lead) domain.Lead {
	l, _ := e.EnrichDetailed(ctx, lead)
	return l
}

// EnrichDetailed runs every step in order. No step can stop the ones after
// it; a missing URL returns the lead unchanged.
func (e *Enricher) EnrichDetailed(ctx context.Context, lead domain.Lead) (domain.Lead, Outcome) {
	out := Outcome{Degraded: map[string]error{}}
	if lead.URL == "" {
		return lead, out
	}

	log := e.Log
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("url", lead.URL)
	note := func(step string, degraded bool, err error) {
		if degraded {
			out.Degraded[step] = err
			log.Debug("enrichment step degraded", "step", step, "err", err)
		}
	}

	// 1. email discovery
	contact := e.findContact(ctx, lead.URL)
	note("email", contact.Degraded, contact.Err)
	if c := contact.Value; c != nil {
		lead.Email = c.Email
		lead.ContactName = c.FullName()
		lead.ContactPosition = c.Position
		lead.ContactDepartment = c.Department

		rep := e.Checker.Check(ctx, c.Email)
		lead.EmailValid = rep.Valid
		lead.EmailConfidence = rep.Confidence
		lead.EmailProvider = rep.Provider
		out.Email = &rep
	} else {
		lead.Email = ""
		lead.EmailValid = false
		lead.EmailConfidence = 0
	}

	// 2. tech stack
	tech := e.techStack(ctx, lead.URL)
	note("tech_stack", tech.Degraded, tech.Err)
	lead.TechStack = tech.Value

	// 3. domain info
	dom := e.domainInfo(ctx, lead.URL)
	note("whois", dom.Degraded, dom.Err)
	lead.DomainAge = dom.Value.Age
	if dom.Value.Registrar != "" {
		lead.Registrar = dom.Value.Registrar
	}

	// 4-5. size and revenue
	lead.EmployeeEstimate = estimateEmployees(len(lead.TechStack), lead.DomainAge, len(lead.SocialLinks))
	lead.RevenueEstimate = estimateRevenue(e.Heuristics.RevenueByEmployees, lead.EmployeeEstimate)

	// 6. industry
	lead.Industry = classifyIndustry(e.Heuristics.Industries, lead.Description, lead.CompanyName, lead.TechStack)

	// 7. phone
	if validPhone(lead.Phone) {
		lead.PhoneValid = true
		lead.PhoneE164 = toE164(lead.Phone, e.region())
	} else {
		lead.PhoneValid = false
		lead.Phone = ""
		lead.PhoneE164 = ""
	}

	// 8. contact quality
	lead.ContactQuality = contactQuality(lead)

	if len(out.Degraded) > 0 {
		log.Info("lead enriched with gaps", "degraded_steps", len(out.Degraded))
	}
	return lead, out
}

func (e *Enricher) findContact(ctx context.Context, siteURL string) Result[*hunter.Contact] {
	if e.Finder == nil {
		return degrade[*hunter.Contact](nil, hunter.ErrNoAPIKey)
	}
	c, err := e.Finder.BestEmail(ctx, siteURL)
	if err != nil {
		return degrade[*hunter.Contact](nil, err)
	}
	if c == nil || c.Email == "" {
		return degrade[*hunter.Contact](nil, errNoContact)
	}
	return ok(c)
}

func (e *Enricher) techStack(ctx context.Context, siteURL string) Result[[]string] {
	if e.Pages == nil {
		return degrade([]string{domain.Unknown}, errors.New("no page fetcher"))
	}
	return detectTech(ctx, e.Pages, e.Heuristics.TechStack, siteURL)
}

func (e *Enricher) domainInfo(ctx context.Context, siteURL string) Result[domainInfo] {
	if e.Whois == nil {
		return degrade(domainInfo{}, errors.New("no whois client"))
	}
	return lookupDomain(ctx, e.Whois, util.BareDomain(siteURL), e.now())
}

func (e *Enricher) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Enricher) region() string {
	if e.PhoneRegion != "" {
		return e.PhoneRegion
	}
	return "US"
}
