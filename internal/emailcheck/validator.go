// Package emailcheck scores a single email address for deliverability.
package emailcheck

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
)

var (
	formatRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	professionalRes = []*regexp.Regexp{
		regexp.MustCompile(`^[a-z]+\.[a-z]+$`), // john.doe
		regexp.MustCompile(`^[a-z]+[a-z]$`),    // jdoe
		regexp.MustCompile(`^[a-z]+_[a-z]+$`),  // john_doe
	}
)

// MXResolver is satisfied by *net.Resolver.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

type Validator struct {
	resolver   MXResolver
	timeout    time.Duration
	disposable map[string]bool
	freeMail   map[string]bool
	providers  map[string]string
	typos      map[string]string
}

// New builds a Validator from the heuristics tables. A nil resolver uses
// net.DefaultResolver.
func New(h config.Heuristics, r MXResolver) *Validator {
	if r == nil {
		r = net.DefaultResolver
	}
	v := &Validator{
		resolver:   r,
		timeout:    5 * time.Second,
		disposable: toSet(h.DisposableDomains),
		freeMail:   toSet(h.FreeMailDomains),
		providers:  map[string]string{},
		typos:      map[string]string{},
	}
	for k, p := range h.Providers {
		v.providers[strings.ToLower(k)] = p
	}
	for k, fix := range h.Typos {
		v.typos[strings.ToLower(k)] = fix
	}
	return v
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[strings.ToLower(strings.TrimSpace(x))] = true
	}
	return m
}

// Report is the full breakdown for one address. MX is resolved once.
type Report struct {
	Email        string `json:"email"`
	FormatOK     bool   `json:"format_ok"`
	Disposable   bool   `json:"disposable"`
	HasMX        bool   `json:"has_mx"`
	FreeMail     bool   `json:"free_mail"`
	Professional bool   `json:"professional"`
	Valid        bool   `json:"valid"`
	Confidence   int    `json:"confidence"`
	Provider     string `json:"provider"`
	Suggestion   string `json:"suggestion,omitempty"`
}

func (v *Validator) Check(ctx context.Context, email string) Report {
	rep := Report{Email: email, Provider: v.Provider(email), Suggestion: v.SuggestCorrection(email)}
	if email == "" {
		return rep
	}

	rep.FormatOK = CheckFormat(email)
	rep.Disposable = v.IsDisposable(email)
	rep.HasMX = v.CheckMX(ctx, email)
	rep.FreeMail = v.freeMail[domainOf(email)]
	rep.Professional = IsProfessional(email)

	rep.Valid = rep.FormatOK && !rep.Disposable && rep.HasMX
	rep.Confidence = confidenceFrom(rep)
	return rep
}

// Validate is format && !disposable && MX, evaluated left to right.
func (v *Validator) Validate(ctx context.Context, email string) bool {
	if email == "" {
		return false
	}
	if !CheckFormat(email) {
		return false
	}
	if v.IsDisposable(email) {
		return false
	}
	return v.CheckMX(ctx, email)
}

// Confidence is 0..100 and independent of Validate.
func (v *Validator) Confidence(ctx context.Context, email string) int {
	return v.Check(ctx, email).Confidence
}

func confidenceFrom(r Report) int {
	score := 0
	if r.FormatOK {
		score += 30
	}
	if !r.Disposable {
		score += 20
	}
	if r.HasMX {
		score += 30
	}
	if !r.FreeMail {
		score += 10
	}
	if r.Professional {
		score += 10
	}
	return min(100, score)
}

func CheckFormat(email string) bool {
	return formatRe.MatchString(email)
}

func (v *Validator) IsDisposable(email string) bool {
	d := domainOf(email)
	return d != "" && v.disposable[d]
}

func IsProfessional(email string) bool {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	local = strings.ToLower(local)
	for _, re := range professionalRes {
		if re.MatchString(local) {
			return true
		}
	}
	return false
}

// CheckMX reports whether the domain has an MX record. Known typo domains are
// rejected without a lookup. "No such host" is false; any other resolver
// failure, timeouts included, is treated as deliverable.
func (v *Validator) CheckMX(ctx context.Context, email string) bool {
	d := domainOf(email)
	if d == "" {
		return false
	}
	if _, typo := v.typos[d]; typo {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	mxs, err := v.resolver.LookupMX(ctx, d)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return false
		}
		return true
	}
	return len(mxs) > 0
}

func (v *Validator) Provider(email string) string {
	if !strings.Contains(email, "@") {
		return domain.Unknown
	}
	if p, ok := v.providers[domainOf(email)]; ok {
		return p
	}
	return domain.DefaultEmailVendor
}

// SuggestCorrection returns the address with a known-typo domain fixed, or "".
func (v *Validator) SuggestCorrection(email string) string {
	local, d, ok := strings.Cut(email, "@")
	if !ok || email == "" {
		return ""
	}
	if fix, ok := v.typos[strings.ToLower(d)]; ok {
		return local + "@" + fix
	}
	return ""
}

func domainOf(email string) string {
	_, d, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(d))
}
