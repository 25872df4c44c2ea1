package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"

	"leadgen-engine/internal/domain"
)

var ErrNoCreationDate = errors.New("whois: no creation date")

type WhoisInfo struct {
	CreatedAt time.Time
	Registrar string
}

type WhoisLookup interface {
	Lookup(ctx context.Context, domain string) (WhoisInfo, error)
}

// PortWhois queries registry WHOIS servers over port 43.
type PortWhois struct {
	client *whois.Client
}

func NewPortWhois(timeout time.Duration) *PortWhois {
	return &PortWhois{client: whois.NewClient().SetTimeout(timeout)}
}

func (p *PortWhois) Lookup(ctx context.Context, dom string) (WhoisInfo, error) {
	type answer struct {
		raw string
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		raw, err := p.client.Whois(dom)
		ch <- answer{raw, err}
	}()

	var a answer
	select {
	case <-ctx.Done():
		return WhoisInfo{}, ctx.Err()
	case a = <-ch:
	}
	if a.err != nil {
		return WhoisInfo{}, fmt.Errorf("whois %s: %w", dom, a.err)
	}

	parsed, err := whoisparser.Parse(a.raw)
	if err != nil {
		return WhoisInfo{}, fmt.Errorf("whois parse %s: %w", dom, err)
	}

	var info WhoisInfo
	if parsed.Registrar != nil {
		info.Registrar = strings.TrimSpace(parsed.Registrar.Name)
	}
	if parsed.Domain == nil {
		return info, ErrNoCreationDate
	}
	created, ok := parseCreated(parsed.Domain.CreatedDate)
	if !ok {
		return info, ErrNoCreationDate
	}
	info.CreatedAt = created
	return info, nil
}

var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"January 2 2006",
	"Mon Jan 2 15:04:05 MST 2006",
}

// parseCreated accepts a single date or a comma separated list and returns
// the first one it understands.
func parseCreated(s string) (time.Time, bool) {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, layout := range createdLayouts {
			if t, err := time.Parse(layout, part); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// registrable reduces shop.acme.co.uk to acme.co.uk.
func registrable(bare string) string {
	if d, err := publicsuffix.EffectiveTLDPlusOne(bare); err == nil {
		return d
	}
	return bare
}

type domainInfo struct {
	Age       domain.DomainAge
	Registrar string
}

func lookupDomain(ctx context.Context, w WhoisLookup, bare string, now time.Time) Result[domainInfo] {
	if bare == "" {
		return degrade(domainInfo{}, errors.New("whois: empty domain"))
	}
	info, err := w.Lookup(ctx, registrable(bare))
	if err != nil {
		return degrade(domainInfo{}, err)
	}
	days := int(now.Sub(info.CreatedAt).Hours() / 24)
	return ok(domainInfo{
		Age:       domain.KnownAge(float64(days) / 365),
		Registrar: info.Registrar,
	})
}
